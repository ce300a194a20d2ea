// Package utils holds small helpers shared across layers, free of any
// domain knowledge.
package utils

import "strconv"

// AtoiDefault parses s as an int and returns def when s is empty or not a
// valid integer. The handlers use it for page and page_size query values,
// where a missing or garbled parameter should fall back to the default
// rather than fail the request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
