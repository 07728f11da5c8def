// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// ConstColumns builds an nrows x len(vals) matrix whose column j holds
// vals[j] in every row. Handy for straight slit edges and object traces.
func ConstColumns(nrows int, vals ...float64) *mat.Dense {
	m := mat.NewDense(nrows, len(vals), nil)
	for i := 0; i < nrows; i++ {
		m.SetRow(i, vals)
	}
	return m
}

// TiltedColumn builds an nrows x 1 matrix running linearly from start at
// row 0 with the given per-row slope.
func TiltedColumn(nrows int, start, slope float64) *mat.Dense {
	m := mat.NewDense(nrows, 1, nil)
	for i := 0; i < nrows; i++ {
		m.Set(i, 0, start+slope*float64(i))
	}
	return m
}
