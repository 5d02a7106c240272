// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lsq solves linear least-squares problems over matrix-free operators.
package lsq

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Operator is a matrix-free linear operator 𝐀 ∈ ℝʳˣᶜ.
type Operator interface {
	Rows() int
	Cols() int
	// Apply evaluates y = 𝐀·x (x length Cols, y length Rows).
	Apply(x, y []float64)
	// ApplyTrans evaluates y = 𝐀ᵀ·x (x length Rows, y length Cols).
	ApplyTrans(x, y []float64)
}

// Stats summarizes a CGLS run.
type Stats struct {
	NumIter   int     // Number of iterations performed.
	ResNorm   float64 // Final residual norm ‖𝐀ᵀ(𝐛 - 𝐀𝐱)‖₂ of the normal equations.
	Converged bool    // Whether the tolerance was reached.
}

// CGLS solves 𝚖𝚒𝚗 ‖𝐀𝐱 - 𝐛‖₂ with the conjugate gradient method applied to the
// normal equations 𝐀ᵀ𝐀𝐱 = 𝐀ᵀ𝐛, without ever forming 𝐀ᵀ𝐀.
//
// The iteration starts from 𝐱 = 0 and stops when
// ‖𝐀ᵀ(𝐛 - 𝐀𝐱)‖₂ ≤ tol·‖𝐀ᵀ𝐛‖₂ or after maxIter iterations
// (defaulted to 2×(rows+cols) when maxIter ≤ 0).
//
// Reference: Å. Björck, "Numerical Methods for Least Squares Problems", §7.4.
func CGLS(a Operator, b []float64, tol float64, maxIter int) ([]float64, Stats) {

	rows, cols := a.Rows(), a.Cols()
	if len(b) != rows {
		panic("rhs dimension not match operator")
	}
	if maxIter <= 0 {
		maxIter = 2 * (rows + cols)
	}
	if tol <= 0 {
		tol = 1e-12
	}

	x := make([]float64, cols)
	r := append([]float64(nil), b...) // r = 𝐛 - 𝐀𝐱
	s := make([]float64, cols)        // s = 𝐀ᵀr
	p := make([]float64, cols)
	q := make([]float64, rows)

	a.ApplyTrans(r, s)
	copy(p, s)
	gamma := floats.Dot(s, s)
	bound := tol * math.Sqrt(gamma)

	var st Stats
	st.ResNorm = math.Sqrt(gamma)
	if st.ResNorm <= bound || gamma == 0 {
		st.Converged = true
		return x, st
	}

	for st.NumIter < maxIter {
		a.Apply(p, q)
		qq := floats.Dot(q, q)
		if qq == 0 {
			break
		}
		alpha := gamma / qq
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, q)
		a.ApplyTrans(r, s)
		next := floats.Dot(s, s)
		st.NumIter++
		st.ResNorm = math.Sqrt(next)
		if st.ResNorm <= bound {
			st.Converged = true
			break
		}
		beta := next / gamma
		gamma = next
		for i, si := range s {
			p[i] = si + beta*p[i]
		}
	}
	return x, st
}
