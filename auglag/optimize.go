// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package auglag solves equality-constrained nonlinear optimization problems
// with an augmented Lagrangian method.
//
//	minimize 𝒇(𝐱) subject to
//	  - equality constraints: 𝒄(𝐱) = 0
//	  - boundaries: 𝒍ᵢ ≤ 𝐱ᵢ ≤ 𝒖ᵢ (i = 1 ··· n)
//
// The constrained problem is replaced by a sequence of bound-constrained
// subproblems on the augmented Lagrangian
//
//	𝓛ᴬ(𝐱;𝐲,μ) = 𝒇(𝐱) - 𝐲ᵀ𝒄(𝐱) + (μ/2)‖𝒄(𝐱)‖²
//
// each solved by the trust-region method in package tron. Between subproblems
// the multiplier estimate 𝐲 is refined when the constraint violation has
// dropped below the inner tolerance η, and the penalty μ is increased sharply
// otherwise:
//
//	‖𝒄(𝐱)‖ ≤ η : 𝐲 ← 𝐲 - μ𝒄(𝐱) ; η ← η/μ^0.9
//	‖𝒄(𝐱)‖ > η : μ ← 100μ      ; η ← 1/μ^0.1
//
// First-order convergence is declared when the projected gradient of the
// Lagrangian and the constraint violation are both small:
//
//	‖P(𝐱 - 𝜵ℒ, 𝒍, 𝒖) - 𝐱‖₂ ≤ 𝚊𝚝𝚘𝚕 + 𝚛𝚝𝚘𝚕×‖𝚐𝚙₀‖₂ and ‖𝒄(𝐱)‖₂ ≤ 10⁻⁸
//
// Problems without constraints bypass the outer loop and are handed to the
// inner solver directly.
//
// # Reference
//
// A.R. Conn, N.I.M. Gould, Ph.L. Toint: "A globally convergent augmented
// Lagrangian algorithm for optimization with general constraints and simple
// bounds". SIAM Journal on Numerical Analysis 28(2), 1991.
package auglag

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/Egmara/Augmented-Lagrangian/nlp"
	"github.com/Egmara/Augmented-Lagrangian/tron"
)

// Termination specifies the stopping criteria for the outer iteration.
// Start from DefaultStop to get the documented defaults; a zero
// MaxIterations is honored literally and stops the method at the initial
// point.
type Termination struct {
	// The iteration stop when the number of outer iterations exceeds limit.
	MaxIterations int
	// Reserved evaluation budget; not consulted by the stopping logic yet.
	MaxEvaluations int
	// The iteration stop when the wall-clock time strictly exceeds limit.
	// A non-positive budget times out at the initial point.
	MaxSeconds float64
	// Absolute and relative tolerances on the dual feasibility measure.
	AbsTolerance float64
	RelTolerance float64
}

// DefaultStop returns the default stopping criteria.
func DefaultStop() Termination {
	return Termination{
		MaxIterations: 1000,
		MaxSeconds:    30.0,
		AbsTolerance:  1e-7,
		RelTolerance:  1e-7,
	}
}

// Spec specifies the problem and budgets for the augmented Lagrangian solver.
type Spec struct {
	Problem nlp.Problem
	Stop    Termination
}

// New creates a new augmented Lagrangian solver for the given problem.
// The logger receives the outer iteration table; the nested subproblem and
// least-squares solves are always kept quiet.
func (s *Spec) New(log zerolog.Logger) (solver *Solver, err error) {

	stop := s.Stop

	switch {
	case s.Problem == nil:
		err = errors.New("problem is required")
	case s.Problem.Dim() <= 0:
		err = errors.New("problem dimension must greater than 0")
	case s.Problem.NumCons() < 0:
		err = errors.New("constraint number must not less than 0")
	case stop.MaxIterations < 0:
		err = errors.New("max iteration must not less than 0")
	case math.IsNaN(stop.AbsTolerance) || stop.AbsTolerance < zero:
		err = errors.New("absolute tolerance must not less than 0")
	case math.IsNaN(stop.RelTolerance) || stop.RelTolerance < zero:
		err = errors.New("relative tolerance must not less than 0")
	}
	if err != nil {
		return
	}

	if lower, upper := s.Problem.Bounds(); len(lower) != s.Problem.Dim() || len(upper) != s.Problem.Dim() {
		return nil, errors.New("bounds size must equal to n")
	}

	solver = &Solver{
		solverSpec{
			problem: s.Problem,
			stop:    stop,
			logger:  log,
		},
	}
	return
}

type solverSpec struct {
	problem nlp.Problem
	stop    Termination
	logger  zerolog.Logger
}

// Solver implements the augmented Lagrangian method.
type Solver struct {
	solverSpec
}

// Result contains the final result of the optimization process.
type Result struct {
	Status      Status        // Final status of the outer iteration.
	Inner       tron.Status   // Last inner solve status (authoritative when there are no constraints).
	X           []float64     // Final solution.
	F           float64       // Final objective value.
	DualFeas    float64       // Projected Lagrangian gradient norm ‖𝚐𝚙‖₂.
	PrimalFeas  float64       // Constraint violation norm ‖𝒄(𝐱)‖₂.
	Multipliers []float64     // Final multiplier estimate (empty without constraints).
	Penalty     float64       // Final penalty parameter (zero without constraints).
	NumIter     int           // Number of outer iterations performed.
	Elapsed     time.Duration // Wall-clock time of the fit.
}

// Fit runs the method from x0, or from the problem's initial point when x0 is
// nil. The starting point is projected into the bounds first.
func (o *Solver) Fit(x0 []float64) *Result {

	if x0 == nil {
		x0 = o.problem.Init()
	}
	if len(x0) != o.problem.Dim() {
		panic("initial x dimension not match spec")
	}

	if o.problem.NumCons() == 0 {
		return o.fitUnconstrained(x0)
	}

	driver := outerDriver{spec: &o.solverSpec, log: iterLogger{o.logger}}
	return driver.mainLoop(x0)
}

// fitUnconstrained delegates a problem without equality constraints to the
// bound-constrained solver on the original objective. Primal feasibility is
// zero by definition and the inner solver's own status vocabulary carries
// through unchanged.
func (o *Solver) fitUnconstrained(x0 []float64) *Result {

	p, stop := o.problem, o.stop
	lower, upper := p.Bounds()

	if stop.MaxIterations <= 0 || stop.MaxSeconds <= 0 {
		// Budget exhausted before the first subproblem solve.
		start := time.Now()
		x := append([]float64(nil), x0...)
		projInit(x, lower, upper)
		g := make([]float64, len(x))
		gp := make([]float64, len(x))
		p.Grad(x, g)
		status := MaxIter
		if stop.MaxSeconds <= 0 {
			status = MaxTime
		}
		return &Result{
			Status:   status,
			X:        x,
			F:        p.Obj(x),
			DualFeas: ProjectedStep(gp, x, g, lower, upper),
			NumIter:  0,
			Elapsed:  time.Since(start),
		}
	}

	bounds := make([]tron.Bound, p.Dim())
	for i := range bounds {
		bounds[i] = tron.Bound{Lower: lower[i], Upper: upper[i]}
	}
	sub := &tron.Problem{
		N: p.Dim(),
		Eval: func(x, g []float64) float64 {
			p.Grad(x, g)
			return p.Obj(x)
		},
		HProd: func(x, v, hv []float64) {
			p.HLagProd(x, nil, v, hv)
		},
		Stop: tron.Termination{
			MaxIterations: stop.MaxIterations,
			MaxSeconds:    stop.MaxSeconds,
			AbsTolerance:  stop.AbsTolerance,
			RelTolerance:  stop.RelTolerance,
		},
		Bounds: bounds,
	}

	inner, err := sub.New(zerolog.Nop())
	if err != nil {
		panic(err)
	}
	res := inner.Fit(x0, inner.Init())

	return &Result{
		Status:     statusFromInner(res.Status),
		Inner:      res.Status,
		X:          res.X,
		F:          res.F,
		DualFeas:   res.DualFeas,
		PrimalFeas: zero,
		NumIter:    res.NumIter,
		Elapsed:    res.Elapsed,
	}
}

func statusFromInner(s tron.Status) Status {
	switch s {
	case tron.ConvProjGradNorm, tron.ConvRadiusFloor:
		return FirstOrder
	case tron.OverIterLimit:
		return MaxIter
	case tron.OverTimeLimit:
		return MaxTime
	}
	return InnerHalt
}
