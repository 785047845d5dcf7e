package vector_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceylonmate/culture-kb/internal/vector"
)

func unit(n int) []float32 {
	v := make([]float32, n)
	v[0] = 1
	return v
}

func TestValidate(t *testing.T) {
	require.NoError(t, vector.Validate(unit(768), 768))
}

func TestValidate_DimensionMismatch(t *testing.T) {
	err := vector.Validate(unit(384), 768)
	require.ErrorIs(t, err, vector.ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "expected 768, got 384")
}

func TestValidate_Empty(t *testing.T) {
	assert.ErrorIs(t, vector.Validate(nil, 0), vector.ErrDimensionMismatch)
}

func TestValidate_SkipsLengthCheckWithoutDims(t *testing.T) {
	assert.NoError(t, vector.Validate(unit(3), 0))
}

func TestValidate_NonFinite(t *testing.T) {
	v := unit(4)
	v[2] = float32(math.NaN())
	assert.ErrorIs(t, vector.Validate(v, 4), vector.ErrNonFinite)

	v[2] = float32(math.Inf(1))
	assert.ErrorIs(t, vector.Validate(v, 4), vector.ErrNonFinite)
}

func TestValidate_ZeroVector(t *testing.T) {
	assert.ErrorIs(t, vector.Validate(make([]float32, 768), 768), vector.ErrZeroVector)
}

func TestToFloat64_PreservesOrder(t *testing.T) {
	got := vector.ToFloat64([]float32{0.5, -1, 2})
	assert.Equal(t, []float64{0.5, -1, 2}, got)
}
