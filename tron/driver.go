// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// iterDriver is the main driver for iterations in an optimization process,
// responsible for managing the flow of the optimization.
type iterDriver struct {
	optimizer *Optimizer
	workspace *Workspace
	location  *iterLoc
}

// nextLocation performs a protected function evaluation at x, storing the
// gradient in g. A panic inside the callback halts the iteration.
func (d *iterDriver) nextLocation(x, g []float64) (f float64, task Status) {
	o, w := d.optimizer, d.workspace
	func() {
		defer func() {
			if r := recover(); r != nil {
				task = HaltEvalPanic
			}
		}()
		f = o.eval(x, g)
		w.numEval++
	}()
	return
}

// computeStep builds the trial step for the current radius: projected Cauchy
// point followed by the CG refinement. Panics inside the Hessian product
// callback halt the iteration.
func (d *iterDriver) computeStep(delta float64) (q float64, task Status) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				task = HaltEvalPanic
			}
		}()
		q = d.cauchyPoint(delta)
		q = d.refineSubspace(delta, q)
	}()
	return
}

// mainLoop is the main execution loop of the iteration process: it checks the
// stopping conditions, computes a trust-region step, and accepts or rejects it
// by the ratio of actual to predicted reduction.
func (d *iterDriver) mainLoop() (task Status) {

	loc := d.location
	spec := &d.optimizer.iterSpec
	ctx := &d.workspace.iterCtx

	ctx.reset()
	ctx.start = time.Now()

	projInitX(loc.x, spec)
	if loc.f, task = d.nextLocation(loc.x, loc.g); task != iterLoop {
		return
	}

	gpnorm := projGradStep(ctx.gp, loc.x, loc.g, spec.lower, spec.upper)
	ctx.dualFeas = gpnorm
	tol := spec.stop.AbsTolerance + spec.stop.RelTolerance*gpnorm
	delta := gpnorm

	log := spec.logger
	log.Debug().Int("n", spec.n).Float64("f", loc.f).Float64("dual_feas", gpnorm).
		Msg("tron start")

	for {
		switch {
		case gpnorm <= tol:
			task = ConvProjGradNorm
		case ctx.iter >= spec.stop.MaxIterations:
			task = OverIterLimit
		case spec.stop.MaxSeconds > 0 && ctx.elapsed().Seconds() > spec.stop.MaxSeconds:
			task = OverTimeLimit
		}
		if task != iterLoop {
			break
		}

		var q float64
		if q, task = d.computeStep(delta); task != iterLoop {
			break
		}
		snorm := floats.Norm(ctx.s, 2)
		if snorm == zero {
			task = ConvRadiusFloor
			break
		}

		for i, xi := range loc.x {
			ctx.xt[i] = clamp(xi+ctx.s[i], spec.lower[i], spec.upper[i])
		}
		var ft float64
		if ft, task = d.nextLocation(ctx.xt, ctx.gt); task != iterLoop {
			break
		}

		ared, pred := loc.f-ft, -q
		rho := math.Inf(-1)
		if pred > zero {
			rho = ared / pred
		}

		if rho >= etaAccept {
			copy(loc.x, ctx.xt)
			copy(loc.g, ctx.gt)
			loc.f = ft
			gpnorm = projGradStep(ctx.gp, loc.x, loc.g, spec.lower, spec.upper)
			ctx.dualFeas = gpnorm
		}

		if !(rho > etaShrink) {
			delta = sigShrink * snorm
		} else if rho > etaExpand && snorm >= 0.99*delta {
			delta = math.Min(sigExpand*delta, radiusMax)
		}

		ctx.iter++
		log.Debug().Int("iter", ctx.iter).Float64("f", loc.f).
			Float64("dual_feas", gpnorm).Float64("radius", delta).
			Float64("ratio", rho).Msg("tron iterate")

		if delta < radiusEps*math.Max(one, floats.Norm(loc.x, 2)) {
			task = ConvRadiusFloor
			break
		}
	}

	log.Debug().Stringer("status", task).Int("iter", ctx.iter).
		Int("eval", ctx.numEval).Float64("f", loc.f).
		Float64("dual_feas", ctx.dualFeas).Msg("tron done")
	return
}
