package handler

import (
	"net/http"
	"strconv"
)

// Listing bounds for count query parameters
const (
	DefaultCount = 10
	MaxCount     = 100
)

// countParam reads ?count, falling back to DefaultCount and capping at MaxCount.
// Values below one pass through; the services answer those with no result.
func countParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return DefaultCount, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewInvalidRequestError("count must be an integer")
	}
	return min(n, MaxCount), nil
}
