package linalg

import (
	"math"
	"testing"
)

func TestDetIdentity(t *testing.T) {
	if d := Identity(5).Det(); math.Abs(d-1) > 1e-12 {
		t.Fatalf("expected det 1, got %f", d)
	}
}

func TestDetDiagonal(t *testing.T) {
	m := Diagonal([]float64{2, 3, 4})
	if d := m.Det(); math.Abs(d-24) > 1e-12 {
		t.Fatalf("expected det 24, got %f", d)
	}
}

func TestDetSingular(t *testing.T) {
	m := Zero(3)
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	// third row all zero
	if d := m.Det(); d != 0 {
		t.Fatalf("expected det 0 for singular matrix, got %f", d)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Zero(3)
	vals := [][]float64{
		{4, 1, 0},
		{1, 3, 1},
		{0, 1, 2},
	}
	for i := range vals {
		for j := range vals[i] {
			m.Set(i, j, vals[i][j])
		}
	}
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("expected invertible matrix")
	}
	// m · m⁻¹ should be identity
	for i := 0; i < 3; i++ {
		row := inv.MulVec([]float64{m.At(i, 0), m.At(i, 1), m.At(i, 2)})
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(row[j]-want) > 1e-10 {
				t.Fatalf("product not identity at (%d,%d): %f", i, j, row[j])
			}
		}
	}
}

func TestInverseSingular(t *testing.T) {
	m := Zero(2)
	if _, ok := m.Inverse(); ok {
		t.Fatal("expected singular matrix to fail inversion")
	}
}

func TestInverseRegularizedNeverFails(t *testing.T) {
	m := Zero(4)
	inv := m.InverseRegularized(1e-8)
	if inv == nil || inv.N != 4 {
		t.Fatal("expected a usable inverse for singular input")
	}
	for _, v := range inv.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("regularized inverse contains %f", v)
		}
	}
}

func TestOuterSymmetricPSD(t *testing.T) {
	x := []float64{1, -2, 0.5}
	m := Outer(x, 0.25)
	if !m.IsSymmetric(1e-12) {
		t.Fatal("outer product should be symmetric")
	}
	if !m.IsPSD(1e-10) {
		t.Fatal("scaled outer product should be PSD")
	}
}

func TestIsPSDRejectsNegative(t *testing.T) {
	m := Diagonal([]float64{1, -1})
	if m.IsPSD(1e-10) {
		t.Fatal("matrix with negative eigenvalue reported PSD")
	}
}

func TestSymmetrize(t *testing.T) {
	m := Zero(2)
	m.Set(0, 1, 1)
	m.Set(1, 0, 3)
	s := m.Symmetrize()
	if s.At(0, 1) != 2 || s.At(1, 0) != 2 {
		t.Fatalf("expected off-diagonals 2, got %f and %f", s.At(0, 1), s.At(1, 0))
	}
}

func TestVectorHelpers(t *testing.T) {
	if d := Dot([]float64{1, 2}, []float64{3, 4}); d != 11 {
		t.Fatalf("dot: expected 11, got %f", d)
	}
	if n := Norm([]float64{3, 4}); math.Abs(n-5) > 1e-12 {
		t.Fatalf("norm: expected 5, got %f", n)
	}
	s := Sub([]float64{3, 4}, []float64{1, 1})
	if s[0] != 2 || s[1] != 3 {
		t.Fatalf("sub: got %v", s)
	}
}
