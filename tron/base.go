// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

const (
	zero = 0.0
	one  = 1.0
	two  = 2.0
	half = 0.5
)

// Trust-region control constants (Lin & Moré defaults).
const (
	// step acceptance threshold on 𝚊𝚛𝚎𝚍/𝚙𝚛𝚎𝚍
	etaAccept = 1.0e-4
	// shrink the radius when 𝚊𝚛𝚎𝚍/𝚙𝚛𝚎𝚍 stays below this ratio
	etaShrink = 0.25
	// expand the radius when 𝚊𝚛𝚎𝚍/𝚙𝚛𝚎𝚍 exceeds this ratio at a full step
	etaExpand = 0.75
	sigShrink = 0.25
	sigExpand = 2.0
	radiusMax = 1.0e+10
	// sufficient model decrease factor μ₀ for the Cauchy search
	cauchyDec = 1.0e-2
	// interpolation/extrapolation trial budget for the Cauchy search
	cauchyBack = 40
	// relative residual reduction for the truncated CG refinement
	cgRelTol = 1.0e-2
	// the radius floor signalling stagnation
	radiusEps = 1.0e-12
)

// Status reports why the iteration stopped.
type Status int

const (
	iterLoop Status = 0
	iterConv Status = 1 << (4 + iota)
	iterStop
	iterHalt
)

const (
	// ConvProjGradNorm the projected gradient norm reached the tolerance.
	ConvProjGradNorm = iterConv | (1 + iota)
	// ConvRadiusFloor the trust region collapsed below machine resolution.
	ConvRadiusFloor
)

const (
	// OverIterLimit the iteration budget is exhausted.
	OverIterLimit = iterStop | (1 + iota)
	// OverTimeLimit the wall-clock budget is exhausted.
	OverTimeLimit
)

const (
	// HaltEvalPanic the evaluation callback panicked.
	HaltEvalPanic = iterHalt | (1 + iota)
)

func (s Status) String() string {
	switch s {
	case ConvProjGradNorm:
		return "first-order"
	case ConvRadiusFloor:
		return "small-radius"
	case OverIterLimit:
		return "max-iteration"
	case OverTimeLimit:
		return "max-time"
	case HaltEvalPanic:
		return "eval-panic"
	}
	return "unknown"
}
