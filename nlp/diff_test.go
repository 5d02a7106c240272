// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diffProblem builds a smooth two-variable model with two constraints and
// every derivative left to finite differences:
//
//	𝒇(𝐱) = x₀² + x₀x₁ + 2x₁²
//	𝒄(𝐱) = (x₀² + x₁ - 3, x₀x₁)
func diffProblem(t *testing.T) Problem {
	f := Funcs{
		N: 2, M: 2,
		Object: func(x []float64) float64 {
			return x[0]*x[0] + x[0]*x[1] + 2*x[1]*x[1]
		},
		Constraint: func(x, c []float64) {
			c[0] = x[0]*x[0] + x[1] - 3
			c[1] = x[0] * x[1]
		},
	}
	p, err := f.New()
	require.NoError(t, err)
	return p
}

func TestDiffGradient(t *testing.T) {
	p := diffProblem(t)

	x := []float64{1.2, -0.7}
	g := make([]float64, 2)
	p.Grad(x, g)

	assert.InDelta(t, 2*x[0]+x[1], g[0], 1e-6)
	assert.InDelta(t, x[0]+4*x[1], g[1], 1e-6)
}

func TestDiffJacobianProducts(t *testing.T) {
	p := diffProblem(t)
	x := []float64{1.2, -0.7}

	// 𝐉 = [2x₀ 1; x₁ x₀]
	v := []float64{0.3, -1.1}
	jv := make([]float64, 2)
	p.JProd(x, v, jv)
	assert.InDelta(t, 2*x[0]*v[0]+v[1], jv[0], 1e-6)
	assert.InDelta(t, x[1]*v[0]+x[0]*v[1], jv[1], 1e-6)

	u := []float64{0.5, 2.0}
	jtv := make([]float64, 2)
	p.JTProd(x, u, jtv)
	assert.InDelta(t, 2*x[0]*u[0]+x[1]*u[1], jtv[0], 1e-6)
	assert.InDelta(t, u[0]+x[0]*u[1], jtv[1], 1e-6)
}

func TestDiffLagHessian(t *testing.T) {
	p := diffProblem(t)
	x := []float64{1.2, -0.7}
	y := []float64{0.4, -1.3}

	// 𝒇″ = [2 1; 1 4], 𝒄₁″ = [2 0; 0 0], 𝒄₂″ = [0 1; 1 0]
	h := [2][2]float64{
		{2 - 2*y[0], 1 - y[1]},
		{1 - y[1], 4},
	}

	v := []float64{1, -2}
	hv := make([]float64, 2)
	p.HLagProd(x, y, v, hv)
	assert.InDelta(t, h[0][0]*v[0]+h[0][1]*v[1], hv[0], 1e-3)
	assert.InDelta(t, h[1][0]*v[0]+h[1][1]*v[1], hv[1], 1e-3)
}

func TestDiffKeepsClosures(t *testing.T) {

	called := false
	f := Funcs{
		N:        1,
		Object:   func(x []float64) float64 { return x[0] * x[0] },
		Gradient: func(x, g []float64) { called = true; g[0] = 2 * x[0] },
	}
	p, err := f.New()
	require.NoError(t, err)

	g := make([]float64, 1)
	p.Grad([]float64{3}, g)
	assert.True(t, called)
	assert.Equal(t, 6.0, g[0])
}
