// Copyright (c) 2025, The Fathom Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command fathom is the interactive front end to the inference engine:
// a read-eval loop over the shell command language, plus batch
// execution of script files.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xupit3r/fathom"
	"github.com/xupit3r/fathom/shell"
)

const version = "0.3.0"

var flags struct {
	trace    bool
	seed     int64
	maxDepth int
	maxSteps int
	strategy string
	conflict string
	rules    []string
}

func main() {
	root := &cobra.Command{
		Use:           "fathom",
		Short:         "symbolic inference over a fact base",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.BoolVar(&flags.trace, "trace", false, "log inference events")
	pf.Int64Var(&flags.seed, "seed", 1, "seed for the random conflict strategy")
	pf.IntVar(&flags.maxDepth, "max-depth", 10, "backward recursion cap")
	pf.IntVar(&flags.maxSteps, "max-steps", 1000, "forward round cap")
	pf.StringVar(&flags.strategy, "strategy", string(fathom.DepthFirst), "backward search order")
	pf.StringVar(&flags.conflict, "conflict-resolution", string(fathom.ByPriority), "forward tie-breaker")
	pf.StringSliceVar(&flags.rules, "load", nil, "YAML fact/rule files to load at startup")

	root.AddCommand(replCmd(), runCmd(), versionCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("fathom: %v", err))
		os.Exit(1)
	}
}

func newShell() (*shell.Shell, error) {
	cfg := fathom.Config{
		Strategy: fathom.Strategy(flags.strategy),
		MaxDepth: flags.maxDepth,
		MaxSteps: flags.maxSteps,
		Conflict: fathom.Conflict(flags.conflict),
		Trace:    flags.trace,
		Seed:     flags.seed,
	}
	opts := []fathom.Option{fathom.WithConfig(cfg)}
	if flags.trace {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, fathom.WithLogger(log))
	}
	eng, err := fathom.New(opts...)
	if err != nil {
		return nil, err
	}
	sh := shell.New(eng, os.Stdout)
	for _, path := range flags.rules {
		doc, err := shell.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := doc.ApplyTo(eng); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return sh, nil
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "interactive shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := newShell()
			if err != nil {
				return err
			}
			sh.EnableColor(true)
			prompt := color.New(color.FgCyan).Sprint("fathom> ")
			sc := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print(prompt)
				if !sc.Scan() {
					fmt.Println()
					return sc.Err()
				}
				line := strings.TrimSpace(sc.Text())
				if line == "" || strings.HasPrefix(line, ";") {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				if _, err := sh.Exec(line); err != nil {
					fmt.Println(color.RedString("error: %v", err))
				}
			}
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>...",
		Short: "execute script files, stopping at the first error",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := newShell()
			if err != nil {
				return err
			}
			for _, path := range args {
				input, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if _, _, err := sh.Batch(path, string(input)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the fathom version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("fathom", version)
		},
	}
}
