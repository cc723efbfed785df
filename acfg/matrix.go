// Package acfg derives the numeric representation of a control-flow
// graph: one feature vector per block plus the adjacency structure over
// the same block ordering.
package acfg

import (
	"fmt"
	"slices"
)

// Matrix is a dense row-major float64 matrix.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// NewMatrix returns a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return m.rows
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	return m.cols
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Set stores v at row i, column j.
func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

// Row returns row i backed by the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// Sparse is a square 0/1 adjacency matrix in compressed sparse row
// form. Column indices are ascending within each row.
type Sparse struct {
	n      int
	rowPtr []int
	colInd []int
}

// NewSparse builds the adjacency matrix from per-row column indices.
// Each row must be sorted ascending.
func NewSparse(rows [][]int) (*Sparse, error) {
	s := &Sparse{
		n:      len(rows),
		rowPtr: make([]int, len(rows)+1),
	}
	for i, cols := range rows {
		for _, j := range cols {
			if j < 0 || j >= s.n {
				return nil, fmt.Errorf("column %d out of range for %d nodes", j, s.n)
			}
		}
		s.colInd = append(s.colInd, cols...)
		s.rowPtr[i+1] = len(s.colInd)
	}
	return s, nil
}

// N returns the node count.
func (s *Sparse) N() int {
	return s.n
}

// NNZ returns the number of stored edges.
func (s *Sparse) NNZ() int {
	return len(s.colInd)
}

// At returns 1 when the edge i->j exists.
func (s *Sparse) At(i, j int) float64 {
	row := s.colInd[s.rowPtr[i]:s.rowPtr[i+1]]
	if slices.Contains(row, j) {
		return 1
	}
	return 0
}

// Row returns the column indices of row i.
func (s *Sparse) Row(i int) []int {
	return s.colInd[s.rowPtr[i]:s.rowPtr[i+1]]
}

// Dense expands the adjacency into a dense matrix.
func (s *Sparse) Dense() *Matrix {
	m := NewMatrix(s.n, s.n)
	for i := 0; i < s.n; i++ {
		for _, j := range s.Row(i) {
			m.Set(i, j, 1)
		}
	}
	return m
}
