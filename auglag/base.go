// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auglag

const (
	zero = 0.0
	one  = 1.0
	half = 0.5
)

// Tuning constants of the adaptive penalty/tolerance heuristic.
const (
	// initial penalty parameter μ₀
	muInit = 10.0
	// penalty growth factor applied when feasibility fails to improve
	muGrow = 100.0
	// initial inner tolerance η₀
	etaInit = 0.5
	// accepted progress shrinks the inner tolerance: η ← η/μ^0.9
	etaAcceptExp = 0.9
	// rejected progress resets the inner tolerance: η ← 1/μ^0.1
	etaRejectExp = 0.1
	// feasibility floor on ‖𝒄(𝐱)‖ for first-order convergence
	feasTol = 1.0e-8
)

// iteration budget per augmented-Lagrangian subproblem solve
const innerIterations = 500

// Status reports why the outer iteration stopped.
type Status int

const (
	// FirstOrder a first-order stationary point was reached.
	FirstOrder Status = iota + 1
	// MaxIter the iteration budget is exhausted.
	MaxIter
	// MaxTime the wall-clock budget is exhausted.
	MaxTime
	// MaxEval the evaluation budget is exhausted (reserved).
	MaxEval
	// InnerHalt the inner solver stopped for a reason of its own
	// (unconstrained path only, see Result.Inner).
	InnerHalt
)

func (s Status) String() string {
	switch s {
	case FirstOrder:
		return "first-order"
	case MaxIter:
		return "max-iteration"
	case MaxTime:
		return "max-time"
	case MaxEval:
		return "max-evaluations"
	case InnerHalt:
		return "inner-halt"
	}
	return "unknown"
}
