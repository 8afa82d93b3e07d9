// Package utils provides utility functions for the application.
package utils

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// MaxInt returns the larger of a and b
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// CeilDiv returns the ceiling of a/b for positive b
func CeilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
