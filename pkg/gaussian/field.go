// Package gaussian builds the two-dimensional Gaussian intensity field used to
// shape rendered cells.
package gaussian

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultSigma is the spread applied along both axes when none is given.
const DefaultSigma = 7.0

// Sigma holds the standard deviation of the field along each axis, in pixels.
type Sigma struct {
	Row float64
	Col float64
}

// OrDefault returns s with zero or negative components replaced by DefaultSigma.
func (s Sigma) OrDefault() Sigma {
	if s.Row <= 0 {
		s.Row = DefaultSigma
	}
	if s.Col <= 0 {
		s.Col = DefaultSigma
	}
	return s
}

// Center is the position of the field's peak in patch coordinates.
type Center struct {
	Row float64
	Col float64
}

// GeometricCenter returns the middle pixel of a rows x cols patch, using the
// same integer halving as the canvas alignment step.
func GeometricCenter(rows, cols int) Center {
	return Center{Row: float64(rows / 2), Col: float64(cols / 2)}
}

// Field returns a rows x cols matrix holding
//
//	exp(-((c-mc)^2/(2*sc^2) + (r-mr)^2/(2*sr^2)))
//
// for every row r and column c. The peak value is 1 at center.
func Field(rows, cols int, center Center, sigma Sigma) *mat.Dense {
	sigma = sigma.OrDefault()
	field := mat.NewDense(rows, cols, nil)

	// The exponent separates into a row term and a column term.
	rowTerm := make([]float64, rows)
	for r := range rowTerm {
		d := float64(r) - center.Row
		rowTerm[r] = d * d / (2 * sigma.Row * sigma.Row)
	}
	colTerm := make([]float64, cols)
	for c := range colTerm {
		d := float64(c) - center.Col
		colTerm[c] = d * d / (2 * sigma.Col * sigma.Col)
	}

	for r := 0; r < rows; r++ {
		row := field.RawRowView(r)
		for c := range row {
			row[c] = math.Exp(-(colTerm[c] + rowTerm[r]))
		}
	}
	return field
}

// Apply multiplies patch elementwise by the field centered at center, in place.
func Apply(patch *mat.Dense, center Center, sigma Sigma) {
	rows, cols := patch.Dims()
	patch.MulElem(patch, Field(rows, cols, center, sigma))
}
