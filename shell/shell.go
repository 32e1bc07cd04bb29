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

// Package shell drives a fathom engine from line-oriented text commands.
// It is the interpreter behind the fathom CLI and is usable directly
// for scripted setups.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/xupit3r/fathom"
	"github.com/xupit3r/fathom/syntax"
)

// Shell interprets commands against one engine. Commands:
//
//	assert <term>            add a fact
//	retract <term>           remove a fact
//	rule <yaml mapping>      add a rule, e.g. rule {when: ["[:p ?x]"], then: ["[:q ?x]"]}
//	query <pattern>          match the fact base, no inference
//	ask <goal>               backward chaining, bindings only
//	prove <goal>             backward chaining, proof trees
//	explain <goal>           every proof, with depth-limit advisory
//	run                      forward chaining to fixed point
//	load <file>              apply a YAML fact/rule file
//	save <file>              write facts and rules to a YAML file
//	set <key> <value>        configure, e.g. set max-depth 20
//	facts | rules | stats    inspect
//	clear                    empty the fact base
//
// Blank lines and lines starting with ; are skipped.
type Shell struct {
	eng *fathom.Engine
	out io.Writer

	okf  func(format string, a ...any) string
	errf func(format string, a ...any) string
	dimf func(format string, a ...any) string
}

// New returns a shell writing uncolored output to out.
func New(eng *fathom.Engine, out io.Writer) *Shell {
	sh := &Shell{eng: eng, out: out}
	sh.EnableColor(false)
	return sh
}

// Engine returns the engine the shell drives.
func (sh *Shell) Engine() *fathom.Engine {
	return sh.eng
}

// EnableColor switches ANSI coloring of results on or off.
func (sh *Shell) EnableColor(on bool) {
	if on {
		sh.okf = color.New(color.FgGreen).SprintfFunc()
		sh.errf = color.New(color.FgRed).SprintfFunc()
		sh.dimf = color.New(color.Faint).SprintfFunc()
	} else {
		sh.okf = fmt.Sprintf
		sh.errf = fmt.Sprintf
		sh.dimf = fmt.Sprintf
	}
}

// Process interprets every line of input, reporting errors to the
// shell's writer and carrying on. Returns counts of assertions,
// retractions, queries (query/ask/prove/explain), and errors; name
// labels error output.
func (sh *Shell) Process(name, input string) (asserts, retracts, queries, errs int) {
	sc := bufio.NewScanner(strings.NewReader(input))
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		kind, err := sh.Exec(line)
		switch kind {
		case cmdAssert:
			asserts++
		case cmdRetract:
			retracts++
		case cmdQuery:
			queries++
		}
		if err != nil {
			errs++
			fmt.Fprintln(sh.out, sh.errf("%s:%d: %v", name, lineno, err))
		}
	}
	return
}

// Batch interprets input like Process but stops at the first error.
func (sh *Shell) Batch(name, input string) (asserts, retracts int, err error) {
	sc := bufio.NewScanner(strings.NewReader(input))
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		kind, execErr := sh.Exec(line)
		if execErr != nil {
			return asserts, retracts, fmt.Errorf("%s:%d: %w", name, lineno, execErr)
		}
		switch kind {
		case cmdAssert:
			asserts++
		case cmdRetract:
			retracts++
		}
	}
	return
}

type cmdKind int

const (
	cmdOther cmdKind = iota
	cmdAssert
	cmdRetract
	cmdQuery
)

// Exec runs a single command line.
func (sh *Shell) Exec(line string) (cmdKind, error) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "assert":
		return cmdAssert, sh.assert(rest)
	case "retract":
		return cmdRetract, sh.retract(rest)
	case "rule":
		return cmdOther, sh.rule(rest)
	case "query":
		return cmdQuery, sh.query(rest)
	case "ask":
		return cmdQuery, sh.ask(rest)
	case "prove":
		return cmdQuery, sh.prove(rest)
	case "explain":
		return cmdQuery, sh.explain(rest)
	case "run":
		return cmdOther, sh.run()
	case "load":
		return cmdOther, sh.load(rest)
	case "save":
		return cmdOther, sh.save(rest)
	case "set":
		return cmdOther, sh.set(rest)
	case "facts":
		return cmdOther, sh.facts()
	case "rules":
		return cmdOther, sh.rules()
	case "stats":
		return cmdOther, sh.stats()
	case "clear":
		sh.eng.Clear()
		fmt.Fprintln(sh.out, sh.okf("cleared"))
		return cmdOther, nil
	}
	return cmdOther, fmt.Errorf("unknown command %q", cmd)
}

func (sh *Shell) assert(arg string) error {
	t, err := syntax.ParseCompound(arg)
	if err != nil {
		return err
	}
	if err := sh.eng.Assert(t); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, sh.okf("asserted %v", t))
	return nil
}

func (sh *Shell) retract(arg string) error {
	t, err := syntax.ParseCompound(arg)
	if err != nil {
		return err
	}
	if err := sh.eng.Retract(t); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, sh.okf("retracted %v", t))
	return nil
}

func (sh *Shell) rule(arg string) error {
	var rd RuleDoc
	if err := yaml.Unmarshal([]byte(arg), &rd); err != nil {
		return fmt.Errorf("rule wants a YAML mapping with when/then: %w", err)
	}
	r, err := rd.Rule()
	if err != nil {
		return err
	}
	if err := sh.eng.AddRule(r); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, sh.okf("added %v", &r))
	return nil
}

func (sh *Shell) query(arg string) error {
	pattern, err := syntax.ParseTerm(arg)
	if err != nil {
		return err
	}
	bindings := sh.eng.Query(pattern, nil)
	fmt.Fprintln(sh.out, syntax.FormatBindings(bindings))
	return nil
}

func (sh *Shell) ask(arg string) error {
	goal, err := syntax.ParseTerm(arg)
	if err != nil {
		return err
	}
	bindings := sh.eng.Ask(goal)
	fmt.Fprintln(sh.out, syntax.FormatBindings(bindings))
	return nil
}

func (sh *Shell) prove(arg string) error {
	goal, err := syntax.ParseTerm(arg)
	if err != nil {
		return err
	}
	proofs := sh.eng.Prove(goal)
	if len(proofs) == 0 {
		fmt.Fprintln(sh.out, "no")
		return nil
	}
	for _, p := range proofs {
		fmt.Fprint(sh.out, syntax.FormatProof(p))
	}
	return nil
}

func (sh *Shell) explain(arg string) error {
	goal, err := syntax.ParseTerm(arg)
	if err != nil {
		return err
	}
	ex := sh.eng.Explain(goal)
	if len(ex.Proofs) == 0 {
		fmt.Fprintln(sh.out, "no")
	}
	for _, p := range ex.Proofs {
		fmt.Fprint(sh.out, syntax.FormatProof(p))
	}
	if ex.DepthLimited {
		fmt.Fprintln(sh.out, sh.dimf("(search pruned at max-depth; raise it for a complete enumeration)"))
	}
	return nil
}

func (sh *Shell) run() error {
	if err := sh.eng.RunForward(); err != nil {
		return err
	}
	st := sh.eng.Stats()
	fmt.Fprintln(sh.out, sh.okf("fixed point: %d facts after %d steps", st.Facts, st.ForwardSteps))
	return nil
}

func (sh *Shell) load(path string) error {
	d, err := LoadFile(path)
	if err != nil {
		return err
	}
	if err := d.ApplyTo(sh.eng); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, sh.okf("loaded %s: %d facts, %d rules", path, len(d.Facts), len(d.Rules)))
	return nil
}

func (sh *Shell) save(path string) error {
	if err := SaveFile(sh.eng, path); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, sh.okf("saved %s", path))
	return nil
}

func (sh *Shell) set(arg string) error {
	key, value, ok := strings.Cut(arg, " ")
	if !ok {
		return fmt.Errorf("set wants a key and a value")
	}
	if err := sh.eng.Configure(key, strings.TrimSpace(value)); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, sh.okf("%s = %s", key, strings.TrimSpace(value)))
	return nil
}

func (sh *Shell) facts() error {
	for _, f := range sh.eng.Facts() {
		fmt.Fprintln(sh.out, f)
	}
	return nil
}

func (sh *Shell) rules() error {
	for _, r := range sh.eng.Rules() {
		fmt.Fprintln(sh.out, &r)
	}
	return nil
}

func (sh *Shell) stats() error {
	st := sh.eng.Stats()
	fmt.Fprintf(sh.out, "facts %d  rules %d  forward-steps %d  proofs %d\n",
		st.Facts, st.Rules, st.ForwardSteps, st.ProofsProduced)
	if st.DepthLimited {
		fmt.Fprintln(sh.out, sh.dimf("(some backward search hit max-depth)"))
	}
	return nil
}
