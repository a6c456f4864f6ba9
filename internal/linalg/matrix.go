package linalg

import "math"

// #region matrix
// Matrix is a dense square matrix of order N, row-major.
// Belief covariances and information matrices are small (k=7 in the
// reference deployment), so everything here is plain loops over a slice.
type Matrix struct {
	N    int
	Data []float64
}

// Zero returns an n×n zero matrix.
func Zero(n int) *Matrix {
	return &Matrix{N: n, Data: make([]float64, n*n)}
}

// Identity returns an n×n identity matrix.
func Identity(n int) *Matrix {
	m := Zero(n)
	for i := 0; i < n; i++ {
		m.Data[i*n+i] = 1
	}
	return m
}

// Diagonal returns an n×n matrix with v on the diagonal.
func Diagonal(v []float64) *Matrix {
	m := Zero(len(v))
	for i, x := range v {
		m.Data[i*len(v)+i] = x
	}
	return m
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.N+j]
}

// Set assigns element (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i*m.N+j] = v
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{N: m.N, Data: make([]float64, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// #endregion matrix

// #region arithmetic

// Add returns m + other. Panics if orders differ; callers construct both
// sides from the same dimension set.
func (m *Matrix) Add(other *Matrix) *Matrix {
	if m.N != other.N {
		panic("linalg: order mismatch in Add")
	}
	out := m.Clone()
	for i := range out.Data {
		out.Data[i] += other.Data[i]
	}
	return out
}

// AddDiagonal returns m + v·I.
func (m *Matrix) AddDiagonal(v float64) *Matrix {
	out := m.Clone()
	for i := 0; i < m.N; i++ {
		out.Data[i*m.N+i] += v
	}
	return out
}

// Scale returns s·m.
func (m *Matrix) Scale(s float64) *Matrix {
	out := m.Clone()
	for i := range out.Data {
		out.Data[i] *= s
	}
	return out
}

// Outer returns the outer product x·xᵗ scaled by s.
func Outer(x []float64, s float64) *Matrix {
	n := len(x)
	m := Zero(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Data[i*n+j] = s * x[i] * x[j]
		}
	}
	return m
}

// MulVec returns m·x.
func (m *Matrix) MulVec(x []float64) []float64 {
	out := make([]float64, m.N)
	for i := 0; i < m.N; i++ {
		var sum float64
		for j := 0; j < m.N; j++ {
			sum += m.Data[i*m.N+j] * x[j]
		}
		out[i] = sum
	}
	return out
}

// Symmetrize returns (m + mᵗ)/2, washing out floating asymmetry.
func (m *Matrix) Symmetrize() *Matrix {
	out := m.Clone()
	for i := 0; i < m.N; i++ {
		for j := i + 1; j < m.N; j++ {
			avg := (m.At(i, j) + m.At(j, i)) / 2
			out.Set(i, j, avg)
			out.Set(j, i, avg)
		}
	}
	return out
}

// #endregion arithmetic

// #region determinant

// Det computes the determinant via LU decomposition with partial pivoting.
func (m *Matrix) Det() float64 {
	n := m.N
	if n == 0 {
		return 1
	}
	lu := m.Clone()
	det := 1.0
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(lu.At(r, col)) > math.Abs(lu.At(pivot, col)) {
				pivot = r
			}
		}
		if lu.At(pivot, col) == 0 {
			return 0
		}
		if pivot != col {
			swapRows(lu, pivot, col)
			det = -det
		}
		det *= lu.At(col, col)
		for r := col + 1; r < n; r++ {
			factor := lu.At(r, col) / lu.At(col, col)
			for c := col; c < n; c++ {
				lu.Set(r, c, lu.At(r, c)-factor*lu.At(col, c))
			}
		}
	}
	return det
}

func swapRows(m *Matrix, a, b int) {
	for c := 0; c < m.N; c++ {
		va, vb := m.At(a, c), m.At(b, c)
		m.Set(a, c, vb)
		m.Set(b, c, va)
	}
}

// #endregion determinant

// #region inverse

// Inverse computes m⁻¹ via Gauss-Jordan with partial pivoting.
// Returns ok=false for singular input; callers regularize and retry.
func (m *Matrix) Inverse() (*Matrix, bool) {
	n := m.N
	a := m.Clone()
	inv := Identity(n)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a.At(r, col)) > math.Abs(a.At(pivot, col)) {
				pivot = r
			}
		}
		pv := a.At(pivot, col)
		if pv == 0 || math.IsNaN(pv) || math.IsInf(pv, 0) {
			return nil, false
		}
		if pivot != col {
			swapRows(a, pivot, col)
			swapRows(inv, pivot, col)
		}
		pv = a.At(col, col)
		for c := 0; c < n; c++ {
			a.Set(col, c, a.At(col, c)/pv)
			inv.Set(col, c, inv.At(col, c)/pv)
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := a.At(r, col)
			if factor == 0 {
				continue
			}
			for c := 0; c < n; c++ {
				a.Set(r, c, a.At(r, c)-factor*a.At(col, c))
				inv.Set(r, c, inv.At(r, c)-factor*inv.At(col, c))
			}
		}
	}
	return inv, true
}

// InverseRegularized inverts m, adding ridge·I (doubling each retry) until
// the matrix becomes invertible. Never fails for finite input.
func (m *Matrix) InverseRegularized(ridge float64) *Matrix {
	cur := m
	eps := ridge
	for attempt := 0; attempt < 64; attempt++ {
		if inv, ok := cur.Inverse(); ok {
			return inv
		}
		cur = m.AddDiagonal(eps)
		eps *= 2
	}
	// Finite symmetric input always succeeds well before the cap; last
	// resort keeps the caller alive with a large-variance identity.
	return Identity(m.N)
}

// #endregion inverse

// #region psd

// IsSymmetric reports whether m equals its transpose within tol.
func (m *Matrix) IsSymmetric(tol float64) bool {
	for i := 0; i < m.N; i++ {
		for j := i + 1; j < m.N; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return false
			}
		}
	}
	return true
}

// IsPSD reports whether m is positive semi-definite, checked by attempting
// a Cholesky factorization of m + tol·I.
func (m *Matrix) IsPSD(tol float64) bool {
	n := m.N
	a := m.AddDiagonal(tol)
	l := Zero(n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a.At(i, j)
			for k := 0; k < j; k++ {
				sum -= l.At(i, k) * l.At(j, k)
			}
			if i == j {
				if sum < 0 {
					return false
				}
				l.Set(i, i, math.Sqrt(sum))
			} else {
				if l.At(j, j) == 0 {
					if math.Abs(sum) > tol {
						return false
					}
					continue
				}
				l.Set(i, j, sum/l.At(j, j))
			}
		}
	}
	return true
}

// #endregion psd

// #region vectors

// Dot returns the inner product of a and b.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the L2 norm of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Sub returns a - b element-wise.
func Sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// #endregion vectors
