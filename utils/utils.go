// Package utils provides utility functions for the application.
package utils

import "strings"

func ToPtr[T any](v T) *T {
	return &v
}

// EmptyToNil returns nil for blank strings so optional columns stay NULL
// instead of storing empty text.
func EmptyToNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Clamp bounds v to the inclusive range [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
