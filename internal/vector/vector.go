// Package vector checks embedding vectors before they are persisted.
package vector

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrDimensionMismatch is returned when a vector length differs from the model's dimensionality
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrNonFinite is returned when a vector contains NaN or Inf
	ErrNonFinite = errors.New("embedding contains non-finite values")
	// ErrZeroVector is returned when every component is zero
	ErrZeroVector = errors.New("embedding is a zero vector")
)

// Validate checks that vec has exactly dims finite components and a non-zero norm.
// A dims of zero or less skips the length check.
func Validate(vec []float32, dims int) error {
	if dims > 0 && len(vec) != dims {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dims, len(vec))
	}
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}

	f := ToFloat64(vec)
	for i, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}
	if floats.Norm(f, 2) == 0 {
		return ErrZeroVector
	}
	return nil
}

// ToFloat64 widens vec for gonum
func ToFloat64(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
