// Package rating holds the star-rating value rules shared by the catalog and
// review packages: the [1,5] bound, the request coercion and the one-decimal
// average.
package rating

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const (
	Min = 1
	Max = 5
)

var (
	ErrOutOfRange = fmt.Errorf("rating must be between %d and %d", Min, Max)
	ErrNotInteger = errors.New("rating must be a whole number")
)

// Validate reports whether v is an acceptable star rating.
func Validate(v int) error {
	if v < Min || v > Max {
		return ErrOutOfRange
	}
	return nil
}

// Value is a rating as it arrives in a request body. It accepts a JSON
// integer, an integral JSON number such as 4.0, or a string holding one of
// those. Anything else fails to decode. Bounds are not checked here.
type Value int

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrNotInteger
		}
		raw = strings.TrimSpace(s)
	} else if len(data) == 0 || (data[0] != '-' && (data[0] < '0' || data[0] > '9')) {
		return ErrNotInteger
	}

	n, err := parseWhole(raw)
	if err != nil {
		return err
	}
	*v = Value(n)
	return nil
}

func parseWhole(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, ErrNotInteger
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, ErrOutOfRange
	}
	return int(f), nil
}

// Average is a mean rating held in tenths so it can be formatted with exactly
// one fractional digit.
type Average int64

// NewAverage computes sum/count rounded half away from zero to one decimal.
// Ratings are positive so the rounding only ever moves away from zero upward.
func NewAverage(sum, count int64) Average {
	if count <= 0 {
		return 0
	}
	return Average((20*sum + count) / (2 * count))
}

func (a Average) Tenths() int64 { return int64(a) }

func (a Average) Float64() float64 { return float64(a) / 10 }

func (a Average) String() string {
	return fmt.Sprintf("%d.%d", int64(a)/10, int64(a)%10)
}

// MarshalJSON renders the average as a string, e.g. "4.5".
func (a Average) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

func (a *Average) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*a = Average(math.Round(f * 10))
	return nil
}
