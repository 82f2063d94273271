// Package format provides shared formatting utilities for report output.
package format

import "strconv"

// Millis formats a millisecond value with exactly one decimal digit.
func Millis(ms float64) string {
	return strconv.FormatFloat(ms, 'f', 1, 64)
}

// Count formats a record count.
func Count(n int) string {
	return strconv.Itoa(n)
}
