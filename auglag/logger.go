// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auglag

import "github.com/rs/zerolog"

// iterLogger emits the outer iteration table: one header event naming the row
// fields and their types, then one row event per outer iteration. Nested
// solver calls never log through it; they receive their own disabled logger.
type iterLogger struct {
	zl zerolog.Logger
}

func (l iterLogger) header() {
	l.zl.Info().
		Str("iter", "int").
		Str("objective", "float64").
		Str("dual_feas", "float64").
		Str("primal_feas", "float64").
		Msg("outer iteration fields")
}

func (l iterLogger) row(iter int, objective, dualFeas, primalFeas float64) {
	l.zl.Info().
		Int("iter", iter).
		Float64("objective", objective).
		Float64("dual_feas", dualFeas).
		Float64("primal_feas", primalFeas).
		Msg("outer iterate")
}

func (l iterLogger) exit(status Status, iter int) {
	l.zl.Info().Stringer("status", status).Int("iter", iter).Msg("outer done")
}
