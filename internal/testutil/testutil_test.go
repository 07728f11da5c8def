package testutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	AssertError(t, errors.New("test error"))
}

func TestAssertErrorIs(t *testing.T) {
	t.Parallel()

	base := errors.New("base")
	AssertErrorIs(t, fmt.Errorf("wrapped: %w", base), base)
}

func TestConstColumns(t *testing.T) {
	t.Parallel()

	m := ConstColumns(4, 300, 700)
	r, c := m.Dims()
	if r != 4 || c != 2 {
		t.Fatalf("Dims() = %dx%d, want 4x2", r, c)
	}
	for i := 0; i < r; i++ {
		if m.At(i, 0) != 300 || m.At(i, 1) != 700 {
			t.Errorf("row %d = (%g, %g), want (300, 700)", i, m.At(i, 0), m.At(i, 1))
		}
	}
}

func TestTiltedColumn(t *testing.T) {
	t.Parallel()

	m := TiltedColumn(3, 10, 0.5)
	want := []float64{10, 10.5, 11}
	for i, w := range want {
		if got := m.At(i, 0); got != w {
			t.Errorf("row %d = %g, want %g", i, got, w)
		}
	}
}
