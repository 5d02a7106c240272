// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command auglag solves built-in benchmark problems with the augmented
// Lagrangian method.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Egmara/Augmented-Lagrangian/auglag"
)

// optionsFile is the YAML shape of --config.
type optionsFile struct {
	MaxIterations int     `yaml:"max_iterations"`
	MaxSeconds    float64 `yaml:"max_seconds"`
	AbsTolerance  float64 `yaml:"abs_tolerance"`
	RelTolerance  float64 `yaml:"rel_tolerance"`
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "auglag",
		Short:         "Augmented Lagrangian solver for equality-constrained problems",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(listCmd(), solveCmd())
	return root
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in benchmark problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(builtins))
			for name := range builtins {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func solveCmd() *cobra.Command {
	var (
		config string
		level  string
	)
	cmd := &cobra.Command{
		Use:   "solve <problem>",
		Short: "Solve a built-in benchmark problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			build, ok := builtins[args[0]]
			if !ok {
				return fmt.Errorf("unknown problem %q, try `auglag list`", args[0])
			}
			problem, err := build()
			if err != nil {
				return err
			}

			stop := auglag.DefaultStop()
			if config != "" {
				if err := loadOptions(config, &stop); err != nil {
					return err
				}
			}

			lvl, err := zerolog.ParseLevel(level)
			if err != nil {
				return err
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
				Level(lvl).With().Timestamp().Logger()

			spec := auglag.Spec{Problem: problem, Stop: stop}
			solver, err := spec.New(log)
			if err != nil {
				return err
			}
			res := solver.Fit(nil)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status      : %v\n", res.Status)
			fmt.Fprintf(out, "objective   : %.9e\n", res.F)
			fmt.Fprintf(out, "dual feas   : %.3e\n", res.DualFeas)
			fmt.Fprintf(out, "primal feas : %.3e\n", res.PrimalFeas)
			fmt.Fprintf(out, "iterations  : %d\n", res.NumIter)
			fmt.Fprintf(out, "elapsed     : %v\n", res.Elapsed)
			fmt.Fprintf(out, "x           : %.6v\n", res.X)
			if res.Status != auglag.FirstOrder {
				return fmt.Errorf("did not converge: %v", res.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&config, "config", "c", "", "YAML file with stopping options")
	cmd.Flags().StringVarP(&level, "level", "l", "info", "log level (trace..disabled)")
	return cmd
}

func loadOptions(path string, stop *auglag.Termination) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	opts := optionsFile{
		MaxIterations: stop.MaxIterations,
		MaxSeconds:    stop.MaxSeconds,
		AbsTolerance:  stop.AbsTolerance,
		RelTolerance:  stop.RelTolerance,
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return err
	}
	stop.MaxIterations = opts.MaxIterations
	stop.MaxSeconds = opts.MaxSeconds
	stop.AbsTolerance = opts.AbsTolerance
	stop.RelTolerance = opts.RelTolerance
	return nil
}
