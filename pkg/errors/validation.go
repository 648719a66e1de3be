package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateDimension checks that v is a finite, strictly positive length.
// name is used in the message (e.g. "width").
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidGeometry, "%s must be finite, got %g", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidGeometry, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateCount checks that a row, column or piece count is not negative.
// Zero is allowed and means "infer".
func ValidateCount(name string, n int) error {
	if n < 0 {
		return New(ErrCodeInvalidGeometry, "%s cannot be negative, got %d", name, n)
	}
	return nil
}

// ValidateFinite checks that v is neither NaN nor infinite.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite, got %g", name, v)
	}
	return nil
}

// ValidateOutputPath validates a file path supplied for generated output.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not escape the working directory once cleaned
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
