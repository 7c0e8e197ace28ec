package imu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
)

func TestSampleVectorAccessors(t *testing.T) {
	var s Sample
	for i, q := range bno055.Quantities {
		s.SetVector(q, bno055.Vector{X: float64(i), Y: 1, Z: 2})
	}
	for i, q := range bno055.Quantities {
		assert.Equal(t, bno055.Vector{X: float64(i), Y: 1, Z: 2}, s.Vector(q), q.String())
	}
	assert.Equal(t, bno055.Vector{X: 0, Y: 1, Z: 2}, s.Accel)
	assert.Equal(t, bno055.Vector{X: 3, Y: 1, Z: 2}, s.Euler)
}
