// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// denseOp adapts a dense matrix to the matrix-free Operator surface.
type denseOp struct{ a *mat.Dense }

func (o *denseOp) Rows() int { r, _ := o.a.Dims(); return r }
func (o *denseOp) Cols() int { _, c := o.a.Dims(); return c }

func (o *denseOp) Apply(x, y []float64) {
	var v mat.VecDense
	v.MulVec(o.a, mat.NewVecDense(len(x), x))
	copy(y, v.RawVector().Data)
}

func (o *denseOp) ApplyTrans(x, y []float64) {
	var v mat.VecDense
	v.MulVec(o.a.T(), mat.NewVecDense(len(x), x))
	copy(y, v.RawVector().Data)
}

func TestOverdetermined(t *testing.T) {

	a := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		1, 0,
	})
	b := []float64{1, 2, 3, 4}

	x, st := CGLS(&denseOp{a}, b, 1e-10, 0)
	require.True(t, st.Converged)

	// the QR least-squares solution is the reference
	var qr mat.QR
	qr.Factorize(a)
	var want mat.VecDense
	require.NoError(t, qr.SolveVecTo(&want, false, mat.NewVecDense(4, b)))

	for j := range x {
		assert.InDelta(t, want.AtVec(j), x[j], 1e-8)
	}
}

func TestConsistentSquare(t *testing.T) {

	a := mat.NewDense(3, 3, []float64{
		4, 1, 0,
		1, 3, 1,
		0, 1, 2,
	})
	want := []float64{1, -2, 0.5}

	b := make([]float64, 3)
	(&denseOp{a}).Apply(want, b)

	x, st := CGLS(&denseOp{a}, b, 1e-12, 0)
	require.True(t, st.Converged)
	for j := range x {
		assert.InDelta(t, want[j], x[j], 1e-9)
	}
}

func TestZeroRhs(t *testing.T) {

	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	x, st := CGLS(&denseOp{a}, []float64{0, 0}, 1e-12, 0)
	assert.True(t, st.Converged)
	assert.Equal(t, 0, st.NumIter)
	assert.Equal(t, []float64{0, 0}, x)
}

func TestRhsDimension(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	assert.Panics(t, func() { CGLS(&denseOp{a}, []float64{1}, 0, 0) })
}
