package valueobjects

import (
	pkgerrors "flowcanvas/pkg/errors"
)

// Size holds node dimensions in canvas units
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a size with validation
func NewSize(width, height float64) (Size, error) {
	if !isFinite(width) || !isFinite(height) {
		return Size{}, pkgerrors.NewValidationError("invalid dimensions: must be finite numbers")
	}
	if width <= 0 || height <= 0 {
		return Size{}, pkgerrors.NewValidationError("invalid dimensions: must be positive")
	}
	return Size{Width: width, Height: height}, nil
}

// Equals checks if two sizes are equal
func (s Size) Equals(other Size) bool {
	const epsilon = 1e-9
	return abs(s.Width-other.Width) < epsilon &&
		abs(s.Height-other.Height) < epsilon
}

// Valid reports whether the dimensions are positive finite numbers
func (s Size) Valid() bool {
	return isFinite(s.Width) && isFinite(s.Height) && s.Width > 0 && s.Height > 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
