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

package fathom

import (
	"sort"

	"go.uber.org/zap"
)

// An activation is a rule together with a substitution under which every
// antecedent matches the fact base and every bound consequent is a
// ground fact. Only novel activations — those whose firing would add at
// least one new fact — reach the agenda.
type activation struct {
	rule    *Rule
	s       Subst
	conseq  []Compound
	recency int64 // largest assertion serial among the facts matched
	seq     int   // agenda discovery order, the final deterministic key
}

// RunForward saturates the fact base under the rule set: each round
// builds the agenda of novel activations, fires the best one per the
// conflict-resolution chain, and repeats until a round finds the agenda
// empty. Facts are only ever added, so reaching max-steps rounds without
// an empty agenda returns a StepLimitError with everything derived so
// far still asserted.
func (e *Engine) RunForward() error {
	for round := 0; ; round++ {
		agenda := e.buildAgenda()
		if len(agenda) == 0 {
			e.trace("forward fixed point", zap.Int("rounds", round))
			return nil
		}
		if round >= e.cfg.MaxSteps {
			return &StepLimitError{Steps: e.cfg.MaxSteps}
		}
		e.orderAgenda(agenda)
		act := agenda[0]
		e.forwardSteps++
		e.trace("fire",
			zap.String("rule", act.rule.label()),
			zap.Stringer("bindings", act.s),
			zap.Int("agenda", len(agenda)))
		for _, c := range act.conseq {
			if err := e.fb.Assert(c); err != nil {
				return err
			}
		}
	}
}

// buildAgenda matches every rule's antecedents against the current fact
// base and keeps the novel activations, in rule order then match order.
func (e *Engine) buildAgenda() []*activation {
	var agenda []*activation
	for _, r := range e.rules {
		for _, st := range e.joinAntecedents(r) {
			conseq := make([]Compound, 0, len(r.Then))
			ground := true
			novel := false
			for _, pat := range r.Then {
				bound, ok := Bind(pat, st.s).(Compound)
				if !ok || !IsGround(bound) {
					ground = false
					break
				}
				conseq = append(conseq, bound)
				if !e.fb.Contains(bound) {
					novel = true
				}
			}
			if !ground || !novel {
				continue
			}
			agenda = append(agenda, &activation{
				rule:    r,
				s:       st.s,
				conseq:  conseq,
				recency: st.recency,
				seq:     len(agenda),
			})
		}
	}
	return agenda
}

type joinState struct {
	s       Subst
	recency int64
}

// joinAntecedents computes the substitutions under which every pattern
// of r.When matches some fact, by left-fold join: each pattern extends
// the accumulated bindings, so a variable bound by an earlier pattern is
// rechecked by every later one. An empty When yields the singleton empty
// binding.
func (e *Engine) joinAntecedents(r *Rule) []joinState {
	states := []joinState{{}}
	for _, pat := range r.When {
		var next []joinState
		for _, st := range states {
			for _, f := range e.fb.candidates(pat, st.s) {
				m, ok := Match(pat, f, st.s)
				if !ok {
					continue
				}
				rec := st.recency
				if q := e.fb.Seq(f); q > rec {
					rec = q
				}
				next = append(next, joinState{s: m, recency: rec})
			}
		}
		if len(next) == 0 {
			return nil
		}
		states = next
	}
	return states
}

// orderAgenda sorts activations by the configured tie-break chain. Every
// chain ends on the agenda discovery order, so the sort is total and a
// run is reproducible; random shuffles within priority ties using the
// engine's seeded source.
func (e *Engine) orderAgenda(agenda []*activation) {
	chain := conflictChain(e.cfg.Conflict)
	sort.SliceStable(agenda, func(i, j int) bool {
		for _, cmp := range chain {
			if c := cmp(agenda[i], agenda[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	if e.cfg.Conflict == ByRandom {
		e.shufflePriorityTies(agenda)
	}
}

type actCmp func(a, b *activation) int

func byPriority(a, b *activation) int { return b.rule.Priority - a.rule.Priority }

func bySpecificity(a, b *activation) int { return len(b.rule.When) - len(a.rule.When) }

func byRecency(a, b *activation) int {
	switch {
	case a.recency > b.recency:
		return -1
	case a.recency < b.recency:
		return 1
	}
	return 0
}

func bySeq(a, b *activation) int { return a.seq - b.seq }

func conflictChain(c Conflict) []actCmp {
	switch c {
	case ByRecency:
		return []actCmp{byRecency, byPriority, bySeq}
	case BySpecificity:
		return []actCmp{bySpecificity, byPriority, bySeq}
	case MRS:
		return []actCmp{byRecency, bySpecificity, byPriority, bySeq}
	case MEVIS:
		return []actCmp{bySpecificity, byRecency, byPriority, bySeq}
	default: // ByPriority and ByRandom order by priority first.
		return []actCmp{byPriority, bySeq}
	}
}

// shufflePriorityTies permutes each run of equal-priority activations
// with the engine's seeded source.
func (e *Engine) shufflePriorityTies(agenda []*activation) {
	start := 0
	for i := 1; i <= len(agenda); i++ {
		if i == len(agenda) || agenda[i].rule.Priority != agenda[start].rule.Priority {
			run := agenda[start:i]
			e.rng.Shuffle(len(run), func(a, b int) {
				run[a], run[b] = run[b], run[a]
			})
			start = i
		}
	}
}
