package specobj

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SlitEdges holds the left and right slit-edge traces of an exposure.
// Rows are spectral rows, columns are slits, values are spatial pixels.
type SlitEdges struct {
	Left  *mat.Dense
	Right *mat.Dense
}

// Dims returns (rows, slits) after checking both arrays agree.
func (e SlitEdges) Dims() (rows, slits int, err error) {
	if e.Left == nil || e.Right == nil {
		return 0, 0, fmt.Errorf("%w: missing slit edges", ErrInvalidGeometry)
	}
	lr, lc := e.Left.Dims()
	rr, rc := e.Right.Dims()
	if lr != rr || lc != rc {
		return 0, 0, fmt.Errorf("%w: left edges %dx%d, right edges %dx%d", ErrInvalidGeometry, lr, lc, rr, rc)
	}
	return lr, lc, nil
}

// SlitGeometry describes one slit at the reference row.
type SlitGeometry struct {
	SlitID int

	// Center is the slit midpoint as a fraction of the spatial axis.
	Center   float64
	Bounds   SpatialBounds
	Row      int
	LeftPix  float64
	RightPix float64
}

// RefRow converts a fractional row position into an index of an array with
// nrows rows, rounding half to even and clamping to the last row.
func RefRow(ypos float64, nrows int) int {
	row := int(math.RoundToEven(ypos * float64(nrows)))
	if row >= nrows {
		row = nrows - 1
	}
	if row < 0 {
		row = 0
	}
	return row
}

// SlitAt evaluates slit islit at fractional row ypos. The slit id is the
// slit centre in units of 1e-4 of the spatial axis.
func SlitAt(edges SlitEdges, nspat, islit int, ypos float64) (SlitGeometry, error) {
	rows, slits, err := edges.Dims()
	if err != nil {
		return SlitGeometry{}, err
	}
	if islit < 0 || islit >= slits {
		return SlitGeometry{}, fmt.Errorf("%w: slit %d of %d", ErrInvalidGeometry, islit, slits)
	}
	if nspat <= 0 {
		return SlitGeometry{}, fmt.Errorf("%w: nspat %d", ErrInvalidGeometry, nspat)
	}
	row := RefRow(ypos, rows)
	left := edges.Left.At(row, islit)
	right := edges.Right.At(row, islit)
	if !(left < right) {
		return SlitGeometry{}, fmt.Errorf("%w: slit %d edges left=%g right=%g at row %d",
			ErrDegenerateSlit, islit, left, right, row)
	}
	w := float64(nspat)
	center := 0.5 * (left + right) / w
	id := math.RoundToEven(center * 1e4)
	if id < 0 || id > MaxSlitID {
		return SlitGeometry{}, fmt.Errorf("%w: slit %d centre %.4f off detector", ErrInvalidGeometry, islit, center)
	}
	return SlitGeometry{
		SlitID:   int(id),
		Center:   center,
		Bounds:   SpatialBounds{Left: left / w, Right: right / w},
		Row:      row,
		LeftPix:  left,
		RightPix: right,
	}, nil
}

// FracPos returns the fractional position of spatial pixel x across the slit.
func (g SlitGeometry) FracPos(x float64) (float64, error) {
	den := g.RightPix - g.LeftPix
	if den == 0 {
		return 0, fmt.Errorf("%w: slit %d has zero width", ErrDegenerateSlit, g.SlitID)
	}
	return (x - g.LeftPix) / den, nil
}
