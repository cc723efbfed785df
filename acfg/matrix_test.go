package acfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix(t *testing.T) {
	m := NewMatrix(2, 3)
	assert.Equal(t, m.Rows(), 2)
	assert.Equal(t, m.Cols(), 3)

	m.Set(0, 1, 4)
	m.Set(1, 2, 7)
	assert.Equal(t, m.At(0, 1), 4.0)
	assert.Equal(t, m.At(1, 2), 7.0)
	assert.Equal(t, m.Row(0), []float64{0, 4, 0})
	assert.Equal(t, m.Row(1), []float64{0, 0, 7})
}

func TestSparse(t *testing.T) {
	s, err := NewSparse([][]int{{1}, {0, 2}, {}})
	if err != nil {
		t.Fatalf("NewSparse failed: %v", err)
	}

	assert.Equal(t, s.N(), 3)
	assert.Equal(t, s.NNZ(), 3)
	assert.Equal(t, s.At(0, 1), 1.0)
	assert.Equal(t, s.At(1, 0), 1.0)
	assert.Equal(t, s.At(1, 2), 1.0)
	assert.Equal(t, s.At(0, 0), 0.0)
	assert.Equal(t, s.At(2, 1), 0.0)
	assert.Equal(t, s.Row(1), []int{0, 2})

	dense := s.Dense()
	assert.Equal(t, dense.Row(0), []float64{0, 1, 0})
	assert.Equal(t, dense.Row(1), []float64{1, 0, 1})
	assert.Equal(t, dense.Row(2), []float64{0, 0, 0})
}

func TestSparseRejectsOutOfRange(t *testing.T) {
	_, err := NewSparse([][]int{{3}})
	assert.Error(t, err)
}
