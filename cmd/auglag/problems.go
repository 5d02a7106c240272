// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math"

	"github.com/Egmara/Augmented-Lagrangian/nlp"
)

// builtins maps benchmark names to problem constructors.
// Problems without derivative closures exercise the finite-difference
// fallbacks of package nlp.
var builtins = map[string]func() (nlp.Problem, error){
	"hs6":        hs6,
	"hs7":        hs7,
	"rosenbrock": rosenbrock,
}

// hs6: 𝚖𝚒𝚗 (1-x₁)² subject to 10(x₂-x₁²) = 0, from the Hock-Schittkowski set.
func hs6() (nlp.Problem, error) {
	f := &nlp.Funcs{
		N: 2, M: 1,
		X0: []float64{-1.2, 1.0},
		Object: func(x []float64) float64 {
			return (1 - x[0]) * (1 - x[0])
		},
		Gradient: func(x, g []float64) {
			g[0] = -2 * (1 - x[0])
			g[1] = 0
		},
		Constraint: func(x, c []float64) {
			c[0] = 10 * (x[1] - x[0]*x[0])
		},
		JacProd: func(x, v, jv []float64) {
			jv[0] = -20*x[0]*v[0] + 10*v[1]
		},
		JacTransProd: func(x, v, jtv []float64) {
			jtv[0] = -20 * x[0] * v[0]
			jtv[1] = 10 * v[0]
		},
		LagHessProd: func(x, y, v, hv []float64) {
			hv[0] = 2*v[0] + 20*y[0]*v[0]
			hv[1] = 0
		},
	}
	return f.New()
}

// hs7: 𝚖𝚒𝚗 𝚕𝚗(1+x₁²) - x₂ subject to (1+x₁²)² + x₂² - 10 = 0.
// Derivatives are left to finite differences.
func hs7() (nlp.Problem, error) {
	f := &nlp.Funcs{
		N: 2, M: 1,
		X0: []float64{2, 2},
		Object: func(x []float64) float64 {
			return math.Log(1+x[0]*x[0]) - x[1]
		},
		Constraint: func(x, c []float64) {
			t := 1 + x[0]*x[0]
			c[0] = t*t + x[1]*x[1] - 10
		},
	}
	return f.New()
}

// rosenbrock: the classic banana valley inside the box [-2, 2]².
func rosenbrock() (nlp.Problem, error) {
	f := &nlp.Funcs{
		N:     2,
		X0:    []float64{-1.2, 1.0},
		Lower: []float64{-2, -2},
		Upper: []float64{2, 2},
		Object: func(x []float64) float64 {
			a, b := 1-x[0], x[1]-x[0]*x[0]
			return a*a + 100*b*b
		},
		Gradient: func(x, g []float64) {
			b := x[1] - x[0]*x[0]
			g[0] = -2*(1-x[0]) - 400*x[0]*b
			g[1] = 200 * b
		},
	}
	return f.New()
}
