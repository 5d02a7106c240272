// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadratic(t *testing.T) {

	a := []float64{1, -2, 3}
	p := &Problem{
		N: 3,
		Eval: func(x, g []float64) (f float64) {
			for i := range x {
				d := x[i] - a[i]
				g[i] = d
				f += half * d * d
			}
			return
		},
		HProd: func(x, v, hv []float64) { copy(hv, v) },
		Stop:  Termination{MaxIterations: 50, AbsTolerance: 1e-8},
	}
	o, err := p.New(zerolog.Nop())
	require.NoError(t, err)

	r := o.Fit(make([]float64, 3), o.Init())

	require.True(t, r.OK)
	assert.Equal(t, ConvProjGradNorm, r.Status)
	assert.LessOrEqual(t, r.NumIter, 5)
	for i := range a {
		assert.InDelta(t, a[i], r.X[i], 1e-6)
	}
}

func TestRosenbrock(t *testing.T) {

	eval := func(x, g []float64) (f float64) {
		a, b := 1-x[0], x[1]-x[0]*x[0]
		g[0] = -2*a - 400*x[0]*b
		g[1] = 200 * b
		return a*a + 100*b*b
	}
	hprod := func(x, v, hv []float64) {
		hv[0] = (2+1200*x[0]*x[0]-400*x[1])*v[0] - 400*x[0]*v[1]
		hv[1] = -400*x[0]*v[0] + 200*v[1]
	}

	p := &Problem{
		N: 2, Eval: eval, HProd: hprod,
		Stop:   Termination{MaxIterations: 200, AbsTolerance: 1e-8},
		Bounds: []Bound{{Lower: -2, Upper: 2}, {Lower: -2, Upper: 2}},
	}
	o, err := p.New(zerolog.Nop())
	require.NoError(t, err)

	r := o.Fit([]float64{-1.2, 1}, o.Init())

	switch {
	case !r.OK:
		t.Fatal("TestRosenbrock: Not Converge")
	case math.Abs(r.X[0]-1) > 1e-5 || math.Abs(r.X[1]-1) > 1e-5:
		t.Fatal("TestRosenbrock: Wrong Minimizer")
	case r.F > 1e-9:
		t.Fatal("TestRosenbrock: Object Too Large")
	}
}

// Case Sources : https://github.com/scipy/scipy/blob/main/scipy/optimize/tests/test_slsqp.py (test_bounds_clipping)
func TestBoundClip(t *testing.T) {

	eval := func(x, g []float64) (f float64) {
		g[0] = 2*x[0] - 2
		return (x[0] - 1) * (x[0] - 1)
	}
	hprod := func(x, v, hv []float64) { hv[0] = 2 * v[0] }

	tests := []struct {
		init    float64
		bnd     []Bound
		desired float64
	}{
		{10, []Bound{{Lower: math.NaN(), Upper: 0}}, 0},
		{-10, []Bound{{Lower: 2, Upper: math.NaN()}}, 2},
		{-10, []Bound{{Lower: math.NaN(), Upper: 0}}, 0},
		{10, []Bound{{Lower: 2, Upper: math.NaN()}}, 2},
		{-0.5, []Bound{{Lower: -1, Upper: 0}}, 0},
		{10, []Bound{{Lower: -1, Upper: 0}}, 0},
	}

	for _, tt := range tests {
		p := &Problem{
			N: 1, Eval: eval, HProd: hprod,
			Stop:   Termination{MaxIterations: 50, AbsTolerance: 1e-8},
			Bounds: tt.bnd,
		}
		o, err := p.New(zerolog.Nop())
		require.NoError(t, err)

		r := o.Fit([]float64{tt.init}, o.Init())
		require.True(t, r.OK)
		assert.InDelta(t, tt.desired, r.X[0], 1e-8)
	}
}

func TestValidation(t *testing.T) {

	eval := func(x, g []float64) float64 { return 0 }
	hprod := func(x, v, hv []float64) {}
	stop := Termination{MaxIterations: 10}

	tests := []struct {
		name string
		spec Problem
	}{
		{"dimension", Problem{N: 0, Eval: eval, HProd: hprod, Stop: stop}},
		{"evaluation", Problem{N: 1, HProd: hprod, Stop: stop}},
		{"hessian product", Problem{N: 1, Eval: eval, Stop: stop}},
		{"iterations", Problem{N: 1, Eval: eval, HProd: hprod}},
		{"tolerance", Problem{N: 1, Eval: eval, HProd: hprod,
			Stop: Termination{MaxIterations: 10, AbsTolerance: -1}}},
		{"bounds size", Problem{N: 2, Eval: eval, HProd: hprod, Stop: stop,
			Bounds: []Bound{{Lower: 0, Upper: 1}}}},
		{"bound range", Problem{N: 1, Eval: eval, HProd: hprod, Stop: stop,
			Bounds: []Bound{{Lower: 1, Upper: 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.New(zerolog.Nop())
			assert.Error(t, err)
		})
	}
}

func TestEvalPanic(t *testing.T) {

	p := &Problem{
		N:     1,
		Eval:  func(x, g []float64) float64 { panic("model blew up") },
		HProd: func(x, v, hv []float64) { hv[0] = v[0] },
		Stop:  Termination{MaxIterations: 10},
	}
	o, err := p.New(zerolog.Nop())
	require.NoError(t, err)

	r := o.Fit([]float64{0}, o.Init())
	assert.False(t, r.OK)
	assert.Equal(t, HaltEvalPanic, r.Status)
	assert.Equal(t, 0, r.NumEval)
}

func TestIterationBudget(t *testing.T) {

	// a quartic valley with an untouchable tolerance: the budget bites first
	p := &Problem{
		N: 1,
		Eval: func(x, g []float64) float64 {
			g[0] = 4 * x[0] * x[0] * x[0]
			return x[0] * x[0] * x[0] * x[0]
		},
		HProd: func(x, v, hv []float64) { hv[0] = 12 * x[0] * x[0] * v[0] },
		Stop:  Termination{MaxIterations: 2},
	}
	o, err := p.New(zerolog.Nop())
	require.NoError(t, err)

	r := o.Fit([]float64{2}, o.Init())
	assert.False(t, r.OK)
	assert.Equal(t, OverIterLimit, r.Status)
	assert.Equal(t, 2, r.NumIter)
}

func TestWorkspaceReuse(t *testing.T) {

	p := &Problem{
		N: 2,
		Eval: func(x, g []float64) (f float64) {
			for i := range x {
				g[i] = x[i]
				f += half * x[i] * x[i]
			}
			return
		},
		HProd: func(x, v, hv []float64) { copy(hv, v) },
		Stop:  Termination{MaxIterations: 20, AbsTolerance: 1e-10},
	}
	o, err := p.New(zerolog.Nop())
	require.NoError(t, err)

	w := o.Init()
	r1 := o.Fit([]float64{5, -3}, w)
	r2 := o.Fit([]float64{-1, 8}, w)
	assert.True(t, r1.OK)
	assert.True(t, r2.OK)

	assert.Panics(t, func() { o.Fit([]float64{1}, w) })
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "first-order", ConvProjGradNorm.String())
	assert.Equal(t, "small-radius", ConvRadiusFloor.String())
	assert.Equal(t, "max-iteration", OverIterLimit.String())
	assert.Equal(t, "max-time", OverTimeLimit.String())
	assert.Equal(t, "eval-panic", HaltEvalPanic.String())
	assert.Equal(t, "unknown", Status(0).String())
}
