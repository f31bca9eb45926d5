package model

import "github.com/qlog/revsimplex/vector"

// Matrix is a sparse m×n real matrix kept in both column-major (CSC)
// and row-major (CSR) form. The simplex core reads columns when
// pricing extracts A_j and rows when the ratio test and refinement
// driver need a row's nonzero pattern; keeping both avoids
// transposing on every access, at the cost of double storage — cheap
// for the column/row counts this solver targets.
//
// Grounded on other_examples/asmuelle-sparsem__matrix.go's CSR layout,
// generalized to column-major-primary with a mirrored row index.
type Matrix struct {
	rows, cols int

	colPtr []int     // length cols+1
	colRow []int     // row index per stored entry, CSC order
	colVal []float64 // value per stored entry, CSC order

	rowPtr []int     // length rows+1
	rowCol []int     // column index per stored entry, CSR order
	rowVal []float64 // value per stored entry, CSR order
}

// NewMatrixFromColumns builds a Matrix from a dense column-major
// representation: cols[j] holds the m values of column j (zeros
// included). This is the natural shape to build an LP from, since
// columns are added one structural variable at a time.
func NewMatrixFromColumns(rows int, cols [][]float64) *Matrix {
	n := len(cols)
	m := &Matrix{rows: rows, cols: n}
	m.colPtr = make([]int, n+1)
	rowCount := make([]int, rows)

	for j, col := range cols {
		for i, v := range col {
			if v != 0 {
				m.colRow = append(m.colRow, i)
				m.colVal = append(m.colVal, v)
				rowCount[i]++
			}
		}
		m.colPtr[j+1] = len(m.colRow)
	}

	m.rowPtr = make([]int, rows+1)
	for i, c := range rowCount {
		m.rowPtr[i+1] = m.rowPtr[i] + c
	}
	m.rowCol = make([]int, len(m.colRow))
	m.rowVal = make([]float64, len(m.colVal))
	cursor := append([]int(nil), m.rowPtr[:rows]...)
	for j := 0; j < n; j++ {
		for k := m.colPtr[j]; k < m.colPtr[j+1]; k++ {
			i := m.colRow[k]
			pos := cursor[i]
			m.rowCol[pos] = j
			m.rowVal[pos] = m.colVal[k]
			cursor[i]++
		}
	}
	return m
}

// Dims returns (rows, cols).
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// Column returns column j as a sparse vector.
func (m *Matrix) Column(j int) *vector.Sparse {
	s := vector.NewSparse(m.rows)
	for k := m.colPtr[j]; k < m.colPtr[j+1]; k++ {
		s.Append(m.colRow[k], m.colVal[k])
	}
	return s
}

// Row returns row i as a sparse vector.
func (m *Matrix) Row(i int) *vector.Sparse {
	s := vector.NewSparse(m.cols)
	for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
		s.Append(m.rowCol[k], m.rowVal[k])
	}
	return s
}

// ColumnNNZ returns the number of stored entries in column j.
func (m *Matrix) ColumnNNZ(j int) int { return m.colPtr[j+1] - m.colPtr[j] }
