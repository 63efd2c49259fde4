package httpx

import (
	"net/http"
	"strconv"
)

// PathID parses a positive integer path parameter. ok is false when the
// value is absent or not a base-10 integer.
func PathID(r *http.Request, name string) (id int64, ok bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// QueryInt returns the named query value as an int, or def when it is
// absent or not numeric.
func QueryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
