// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// quadDriver prepares a driver on the quadratic model
//
//	q(𝐱) = ½𝐱ᵀ𝐀𝐱 - 𝐛ᵀ𝐱, 𝐀 = diag(1, 10), 𝐛 = (1, 1)
//
// with the location evaluated at x.
func quadDriver(t *testing.T, x []float64) *iterDriver {

	diag := []float64{1, 10}
	b := []float64{1, 1}

	p := &Problem{
		N: 2,
		Eval: func(x, g []float64) (f float64) {
			for i := range x {
				g[i] = diag[i]*x[i] - b[i]
				f += half*diag[i]*x[i]*x[i] - b[i]*x[i]
			}
			return
		},
		HProd: func(x, v, hv []float64) {
			for i := range v {
				hv[i] = diag[i] * v[i]
			}
		},
		Stop: Termination{MaxIterations: 100},
	}
	o, err := p.New(zerolog.Nop())
	require.NoError(t, err)

	loc := &iterLoc{x: x, g: make([]float64, 2)}
	loc.f = o.eval(loc.x, loc.g)
	return &iterDriver{optimizer: o, workspace: o.Init(), location: loc}
}

func TestCauchyDecrease(t *testing.T) {

	d := quadDriver(t, []float64{2, 2})
	ctx := &d.workspace.iterCtx

	const delta = 1.5
	q := d.cauchyPoint(delta)
	gs := floats.Dot(d.location.g, ctx.s)

	require.Negative(t, q)
	require.LessOrEqual(t, q, cauchyDec*gs)
	require.LessOrEqual(t, floats.Norm(ctx.s, 2), delta*(1+1e-12))
}

func TestCauchyAtMinimizer(t *testing.T) {

	// zero gradient produces a zero step and a zero model value
	d := quadDriver(t, []float64{1, 0.1})
	q := d.cauchyPoint(1.0)

	require.Zero(t, q)
	require.Zero(t, floats.Norm(d.workspace.s, 2))
}

func TestSubspaceRefinement(t *testing.T) {

	d := quadDriver(t, []float64{2, 2})
	const delta = 1.5

	q := d.cauchyPoint(delta)
	refined := d.refineSubspace(delta, q)

	require.LessOrEqual(t, refined, q+1e-12)
	require.LessOrEqual(t, floats.Norm(d.workspace.s, 2), delta*(1+1e-10))
}
