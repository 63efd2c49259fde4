package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	orig := Log
	t.Cleanup(func() { Log = orig })

	t.Run("valid level", func(t *testing.T) {
		require.NoError(t, Initialize("debug"))
		assert.True(t, Log.Desugar().Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("warn level hides info", func(t *testing.T) {
		require.NoError(t, Initialize("warn"))
		assert.False(t, Log.Desugar().Core().Enabled(zapcore.InfoLevel))
		assert.True(t, Log.Desugar().Core().Enabled(zapcore.ErrorLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		err := Initialize("loud")
		assert.Error(t, err)
	})
}
