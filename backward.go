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
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// ProofKind tags how a goal was established.
type ProofKind int

const (
	// FactProof: the goal unified with a stored fact (or a builtin goal
	// held).
	FactProof ProofKind = iota
	// RuleProof: the goal unified with a rule consequent and every
	// antecedent was proved in turn.
	RuleProof
)

// Proof is one way a goal holds. For a RuleProof, Children holds one
// proof per antecedent, in the rule's antecedent order.
type Proof struct {
	Kind     ProofKind
	Goal     Term
	Bindings Subst
	Fact     Compound // the matched fact, when Kind is FactProof
	Rule     *Rule    // the applied rule, when Kind is RuleProof
	Children []*Proof
}

// Height is the height of the proof tree: 1 for a fact proof.
func (p *Proof) Height() int {
	h := 0
	for _, c := range p.Children {
		if ch := c.Height(); ch > h {
			h = ch
		}
	}
	return h + 1
}

// Explanation wraps the full proof enumeration for a goal with metadata.
type Explanation struct {
	Goal   Term
	Proofs []*Proof
	// DepthLimited reports that some branch of this search was pruned at
	// max-depth, so the enumeration may be incomplete.
	DepthLimited bool
}

// QueryOpt adjusts a single Prove/Ask call without touching the engine
// configuration.
type QueryOpt func(*queryOpts)

type queryOpts struct {
	limit    int
	maxDepth int
	strategy Strategy
}

// WithLimit caps the number of proofs (or bindings) returned; 0 means
// no cap.
func WithLimit(n int) QueryOpt {
	return func(o *queryOpts) { o.limit = n }
}

// WithMaxDepth overrides the engine's max-depth for this call.
func WithMaxDepth(n int) QueryOpt {
	return func(o *queryOpts) { o.maxDepth = n }
}

// WithStrategy overrides the engine's search strategy for this call.
func WithStrategy(s Strategy) QueryOpt {
	return func(o *queryOpts) { o.strategy = s }
}

func (e *Engine) queryOpts(opts []QueryOpt) queryOpts {
	o := queryOpts{
		maxDepth: e.cfg.MaxDepth,
		strategy: e.cfg.Strategy,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Prove enumerates proofs of goal up to max-depth. Unify/match failures
// and depth exhaustion yield no proofs rather than errors; depth
// exhaustion additionally sets the DepthLimited stat. Ordering follows
// the strategy: depth-first emits fact proofs then rule proofs, rule by
// rule; breadth-first orders shallower proof trees first;
// iterative-deepening reruns depth-first with growing caps,
// de-duplicating by (goal, bindings).
func (e *Engine) Prove(goal Term, opts ...QueryOpt) []*Proof {
	o := e.queryOpts(opts)
	e.trace("prove", zap.Stringer("goal", goal), zap.String("strategy", string(o.strategy)))
	var out []*Proof
	switch o.strategy {
	case BreadthFirst:
		out = e.proveBreadth(goal, o)
	case IterativeDeepening:
		out = e.proveIterative(goal, o)
	default:
		out = e.proveDepth(goal, o)
	}
	e.proofCount += len(out)
	e.trace("proved", zap.Stringer("goal", goal), zap.Int("proofs", len(out)))
	return out
}

// ProveOne returns the first proof in strategy order, if any.
func (e *Engine) ProveOne(goal Term, opts ...QueryOpt) (*Proof, bool) {
	proofs := e.Prove(goal, append(opts, WithLimit(1))...)
	if len(proofs) == 0 {
		return nil, false
	}
	return proofs[0], true
}

// Ask returns, for each proof of goal, the bindings restricted to the
// variables appearing in goal. Order follows the prover's order.
func (e *Engine) Ask(goal Term, opts ...QueryOpt) []Subst {
	vars := Vars(goal)
	proofs := e.Prove(goal, opts...)
	out := make([]Subst, 0, len(proofs))
	for _, p := range proofs {
		b := make(Subst, len(vars))
		for _, v := range vars {
			if resolved := Apply(v, p.Bindings); !Equal(resolved, v) {
				b[v] = resolved
			}
		}
		out = append(out, b)
	}
	return out
}

// Explain enumerates every proof of goal (no limit) and reports whether
// the search was depth-pruned.
func (e *Engine) Explain(goal Term, opts ...QueryOpt) *Explanation {
	o := e.queryOpts(opts)
	o.limit = 0
	p := &prover{e: e, maxDepth: o.maxDepth}
	var proofs []*Proof
	p.prove(goal, nil, 0, func(pr *Proof) bool {
		proofs = append(proofs, pr)
		return true
	})
	if p.depthHit {
		e.depthLimited = true
	}
	e.proofCount += len(proofs)
	return &Explanation{Goal: goal, Proofs: proofs, DepthLimited: p.depthHit}
}

func (e *Engine) proveDepth(goal Term, o queryOpts) []*Proof {
	p := &prover{e: e, maxDepth: o.maxDepth}
	var out []*Proof
	p.prove(goal, nil, 0, func(pr *Proof) bool {
		out = append(out, pr)
		return o.limit == 0 || len(out) < o.limit
	})
	if p.depthHit {
		e.depthLimited = true
	}
	return out
}

// proveBreadth materializes the depth-first enumeration, then orders
// shallower proof trees first (stable, so depth-first order breaks
// ties). The limit applies after ordering.
func (e *Engine) proveBreadth(goal Term, o queryOpts) []*Proof {
	full := o
	full.limit = 0
	out := e.proveDepth(goal, full)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Height() < out[j].Height()
	})
	if o.limit > 0 && len(out) > o.limit {
		out = out[:o.limit]
	}
	return out
}

func (e *Engine) proveIterative(goal Term, o queryOpts) []*Proof {
	seen := make(map[string]bool)
	var out []*Proof
	for depthCap := 0; depthCap <= o.maxDepth; depthCap++ {
		p := &prover{e: e, maxDepth: depthCap}
		stop := false
		p.prove(goal, nil, 0, func(pr *Proof) bool {
			k := Key(pr.Goal) + "|" + pr.Bindings.key()
			if seen[k] {
				return true
			}
			seen[k] = true
			out = append(out, pr)
			if o.limit > 0 && len(out) >= o.limit {
				stop = true
				return false
			}
			return true
		})
		if p.depthHit && depthCap == o.maxDepth {
			e.depthLimited = true
		}
		if stop {
			break
		}
	}
	return out
}

// prover carries one backward search: the depth cap, the loop-check
// frame stack, and a counter for fresh variables when rules are
// standardized apart.
type prover struct {
	e        *Engine
	maxDepth int
	frames   []string
	fresh    int
	depthHit bool
}

// prove enumerates proofs of goal under s at the given depth, passing
// each to emit. emit returning false stops the whole enumeration; prove
// propagates that as its own return value.
func (p *prover) prove(goal Term, s Subst, depth int, emit func(*Proof) bool) bool {
	if depth > p.maxDepth {
		p.depthHit = true
		return true
	}
	g := Apply(goal, s)

	if c, ok := g.(Compound); ok && len(c) > 0 {
		if h, ok := c.Head().(Symbol); ok {
			switch h {
			case symNot:
				return p.proveNot(c, s, depth, emit)
			case symEquals:
				return p.proveEquals(c, s, emit)
			case symNotEqual:
				return p.proveNotEqual(c, s, emit)
			}
		}
	}

	// Fact branch: every stored fact the goal unifies with.
	for _, f := range p.e.fb.candidates(g, s) {
		if s2, ok := Unify(g, f, s); ok {
			if !emit(&Proof{Kind: FactProof, Goal: g, Bindings: s2, Fact: f}) {
				return false
			}
		}
	}

	// Rule branch: every rule consequent the goal unifies with, with the
	// rule's variables standardized apart first. A frame records (rule,
	// goal); re-entering one already on the stack fails that path, which
	// keeps directly self-recursive rules from looping below max-depth.
	for ri, r := range p.e.rules {
		frame := fmt.Sprintf("%d|%s", ri, Key(g))
		if p.inFrame(frame) {
			continue
		}
		renamed := p.renameRule(r)
		for _, c := range renamed.Then {
			sc, ok := Unify(g, c, s)
			if !ok {
				continue
			}
			p.frames = append(p.frames, frame)
			more := p.proveSeq(renamed.When, sc, depth+1, nil, func(children []*Proof, sFinal Subst) bool {
				return emit(&Proof{
					Kind:     RuleProof,
					Goal:     g,
					Bindings: sFinal,
					Rule:     r,
					Children: children,
				})
			})
			p.frames = p.frames[:len(p.frames)-1]
			if !more {
				return false
			}
		}
	}
	return true
}

// proveSeq proves goals left to right, threading the substitution, and
// hands every complete combination of child proofs to done. This is the
// Cartesian product over antecedent proofs, built by backtracking.
func (p *prover) proveSeq(goals []Compound, s Subst, depth int, acc []*Proof, done func([]*Proof, Subst) bool) bool {
	if len(goals) == 0 {
		children := make([]*Proof, len(acc))
		copy(children, acc)
		return done(children, s)
	}
	return p.prove(goals[0], s, depth, func(pr *Proof) bool {
		return p.proveSeq(goals[1:], pr.Bindings, depth, append(acc, pr), done)
	})
}

// proveNot implements negation as failure: [:not g] holds, binding
// nothing, exactly when g has no proof. Sound only under the
// closed-world assumption.
func (p *prover) proveNot(c Compound, s Subst, depth int, emit func(*Proof) bool) bool {
	if len(c) != 2 {
		return true
	}
	found := false
	p.prove(c[1], s, depth+1, func(*Proof) bool {
		found = true
		return false
	})
	if found {
		return true
	}
	return emit(&Proof{Kind: FactProof, Goal: c, Bindings: s, Fact: c})
}

// proveEquals resolves the builtin [:= a b]: the two sides must unify,
// binding a variable side if needed. Never consults the fact base.
func (p *prover) proveEquals(c Compound, s Subst, emit func(*Proof) bool) bool {
	if len(c) != 3 {
		return true
	}
	s2, ok := Unify(c[1], c[2], s)
	if !ok {
		return true
	}
	bound, _ := Apply(c, s2).(Compound)
	return emit(&Proof{Kind: FactProof, Goal: c, Bindings: s2, Fact: bound})
}

// proveNotEqual resolves [:not= a b]: both sides ground and distinct.
func (p *prover) proveNotEqual(c Compound, s Subst, emit func(*Proof) bool) bool {
	if len(c) != 3 {
		return true
	}
	a := Apply(c[1], s)
	b := Apply(c[2], s)
	if !IsGround(a) || !IsGround(b) || Equal(a, b) {
		return true
	}
	return emit(&Proof{Kind: FactProof, Goal: c, Bindings: s, Fact: Compound{c[0], a, b}})
}

func (p *prover) inFrame(frame string) bool {
	for _, f := range p.frames {
		if f == frame {
			return true
		}
	}
	return false
}

// renameRule standardizes a rule apart: every variable is replaced by a
// fresh one so goal variables never collide with rule variables.
func (p *prover) renameRule(r *Rule) *Rule {
	seen := make(map[Var]bool)
	var vars []Var
	for _, pat := range r.When {
		collectVars(pat, seen, &vars)
	}
	for _, c := range r.Then {
		collectVars(c, seen, &vars)
	}
	if len(vars) == 0 {
		return r
	}
	renaming := make(Subst, len(vars))
	for _, v := range vars {
		p.fresh++
		renaming[v] = Var{Name: fmt.Sprintf("_r%d", p.fresh)}
	}
	out := &Rule{Name: r.Name, Priority: r.Priority}
	out.When = make([]Compound, len(r.When))
	for i, pat := range r.When {
		out.When[i] = Apply(pat, renaming).(Compound)
	}
	out.Then = make([]Compound, len(r.Then))
	for i, c := range r.Then {
		out.Then[i] = Apply(c, renaming).(Compound)
	}
	return out
}
