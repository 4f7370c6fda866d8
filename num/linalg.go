package num

import (
	"math"
)

// Solve returns x such that a x = b for a square matrix a, using Gaussian
// elimination with partial pivoting. It reports false if a is singular
// (a pivot compares equal to zero in f). Neither a nor b is modified.
func Solve[T any](f Field[T], a [][]T, b []T) ([]T, bool) {
	n := len(a)
	m := make([][]T, n)
	for i := range a {
		if len(a[i]) != n {
			panic("num: Solve requires a square matrix")
		}
		row := make([]T, n+1)
		copy(row, a[i])
		row[n] = b[i]
		m[i] = row
	}

	for col := 0; col < n; col++ {
		pivot := choosePivot(f, m, col, col)
		if pivot < 0 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		eliminate(f, m, col, col, n+1)
	}

	x := make([]T, n)
	for i := n - 1; i >= 0; i-- {
		acc := m[i][n]
		for j := i + 1; j < n; j++ {
			acc = f.Sub(acc, f.Mul(m[i][j], x[j]))
		}
		x[i] = f.Quo(acc, m[i][i])
	}

	return x, true
}

// Rank returns the rank of the matrix whose rows are given.
func Rank[T any](f Field[T], rows [][]T) int {
	if len(rows) == 0 {
		return 0
	}

	width := len(rows[0])
	m := make([][]T, len(rows))
	for i := range rows {
		m[i] = append([]T(nil), rows[i]...)
	}

	rank := 0
	for col := 0; col < width && rank < len(m); col++ {
		pivot := choosePivot(f, m, rank, col)
		if pivot < 0 {
			continue
		}
		m[rank], m[pivot] = m[pivot], m[rank]
		eliminate(f, m, rank, col, width)
		rank++
	}

	return rank
}

// choosePivot returns the row at or below start with the largest magnitude
// entry in col, or -1 if every candidate is zero.
func choosePivot[T any](f Field[T], m [][]T, start, col int) int {
	best := -1
	bestMag := -1.0
	for r := start; r < len(m); r++ {
		if f.Sign(m[r][col]) == 0 {
			continue
		}
		mag := math.Abs(f.Float64(m[r][col]))
		if mag > bestMag {
			best, bestMag = r, mag
		}
	}
	return best
}

// eliminate zeroes col in every row below pivotRow.
func eliminate[T any](f Field[T], m [][]T, pivotRow, col, width int) {
	p := m[pivotRow][col]
	for r := pivotRow + 1; r < len(m); r++ {
		if f.Sign(m[r][col]) == 0 {
			continue
		}
		factor := f.Quo(m[r][col], p)
		for c := col; c < width; c++ {
			m[r][c] = f.Sub(m[r][c], f.Mul(factor, m[pivotRow][c]))
		}
	}
}
