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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(name string) Compound { return Compound{Intern("person"), Intern(name)} }

func TestAskEnumeratesFacts(t *testing.T) {
	eng, err := New(WithFacts(person("alice"), person("bob")))
	require.NoError(t, err)

	got := eng.Ask(Compound{Intern("person"), Var{"who"}})
	require.Len(t, got, 2)
	assert.True(t, Equal(Intern("alice"), got[0][Var{"who"}]))
	assert.True(t, Equal(Intern("bob"), got[1][Var{"who"}]))
}

func TestAskLimit(t *testing.T) {
	eng, err := New(WithFacts(person("alice"), person("bob"), person("carol")))
	require.NoError(t, err)
	got := eng.Ask(Compound{Intern("person"), Var{"who"}}, WithLimit(2))
	assert.Len(t, got, 2)
}

func TestProveOne(t *testing.T) {
	eng, err := New(WithFacts(person("alice")))
	require.NoError(t, err)

	p, ok := eng.ProveOne(Compound{Intern("person"), Var{"who"}})
	require.True(t, ok)
	assert.Equal(t, FactProof, p.Kind)
	assert.True(t, Equal(person("alice"), p.Fact))

	_, ok = eng.ProveOne(Compound{Intern("person"), Intern("dave")})
	assert.False(t, ok)
}

func TestProveViaRule(t *testing.T) {
	parent := func(a, b Term) Compound { return Compound{Intern("parent"), a, b} }
	ancestor := func(a, b Term) Compound { return Compound{Intern("ancestor"), a, b} }
	alice, bob, carol := Intern("alice"), Intern("bob"), Intern("carol")

	eng, err := New(
		WithFacts(parent(alice, bob), parent(bob, carol)),
		WithRules(
			Rule{
				Name: "ancestor-base",
				When: []Compound{parent(Var{"x"}, Var{"y"})},
				Then: []Compound{ancestor(Var{"x"}, Var{"y"})},
			},
			Rule{
				Name: "ancestor-step",
				When: []Compound{ancestor(Var{"x"}, Var{"y"}), parent(Var{"y"}, Var{"z"})},
				Then: []Compound{ancestor(Var{"x"}, Var{"z"})},
			},
		),
	)
	require.NoError(t, err)

	proofs := eng.Prove(ancestor(alice, carol))
	require.NotEmpty(t, proofs)
	p := proofs[0]
	assert.Equal(t, RuleProof, p.Kind)
	assert.Equal(t, "ancestor-step", p.Rule.Name)
	require.Len(t, p.Children, 2)
	// Children follow the rule's antecedent order: the ancestor subgoal,
	// then the parent fact.
	assert.Equal(t, RuleProof, p.Children[0].Kind)
	assert.Equal(t, FactProof, p.Children[1].Kind)
	assert.True(t, Equal(parent(bob, carol), p.Children[1].Fact))

	// The goal with variables enumerates every derivable ancestor pair.
	seen := make(map[string]bool)
	for _, b := range eng.Ask(ancestor(Var{"a"}, Var{"d"})) {
		seen[Key(Apply(Var{"a"}, b))+"|"+Key(Apply(Var{"d"}, b))] = true
	}
	assert.True(t, seen[":alice|:bob"])
	assert.True(t, seen[":bob|:carol"])
	assert.True(t, seen[":alice|:carol"])
}

func TestBackwardSoundness(t *testing.T) {
	// Every proof's bindings applied to the goal yield a fact the
	// forward chainer also derives.
	parent := func(a, b Term) Compound { return Compound{Intern("parent"), a, b} }
	ancestor := func(a, b Term) Compound { return Compound{Intern("ancestor"), a, b} }
	rules := []Rule{
		{When: []Compound{parent(Var{"x"}, Var{"y"})}, Then: []Compound{ancestor(Var{"x"}, Var{"y"})}},
		{When: []Compound{ancestor(Var{"x"}, Var{"y"}), parent(Var{"y"}, Var{"z"})}, Then: []Compound{ancestor(Var{"x"}, Var{"z"})}},
	}
	facts := []Term{
		parent(Intern("a"), Intern("b")),
		parent(Intern("b"), Intern("c")),
		parent(Intern("c"), Intern("d")),
	}

	backward, err := New(WithFacts(facts...), WithRules(rules...))
	require.NoError(t, err)
	forward, err := New(WithFacts(facts...), WithRules(rules...))
	require.NoError(t, err)
	require.NoError(t, forward.RunForward())

	goal := ancestor(Var{"p"}, Var{"q"})
	for _, proof := range backward.Prove(goal) {
		derived := Apply(goal, proof.Bindings)
		assert.True(t, forward.Contains(derived), "unsound proof of %v", derived)
	}
}

func TestRecursiveRuleTerminates(t *testing.T) {
	p := Compound{Intern("p"), Intern("a"), Intern("b")}
	eng, err := New(
		WithFacts(p),
		WithRules(Rule{
			When: []Compound{{Intern("p"), Var{"x"}, Var{"y"}}},
			Then: []Compound{{Intern("p"), Var{"x"}, Var{"y"}}},
		}),
	)
	require.NoError(t, err)
	require.NoError(t, eng.Configure("max-depth", 5))

	proofs := eng.Prove(p)
	require.NotEmpty(t, proofs)
	// The direct fact match comes first under depth-first search; the
	// loop check stops the rule from re-entering itself, so the rule
	// contributes exactly one wrapping proof.
	assert.Equal(t, FactProof, proofs[0].Kind)
	assert.Len(t, proofs, 2)
}

func TestNegationAsFailure(t *testing.T) {
	eng, err := New(WithFacts(person("alice")))
	require.NoError(t, err)

	not := func(g Term) Compound { return Compound{Intern("not"), g} }

	proofs := eng.Prove(not(person("bob")))
	require.Len(t, proofs, 1)
	assert.Empty(t, eng.Ask(not(person("bob")))[0])

	assert.Empty(t, eng.Prove(not(person("alice"))))
}

func TestEqualsBuiltin(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	eq := func(a, b Term) Compound { return Compound{Intern("="), a, b} }

	got := eng.Ask(eq(Var{"x"}, Intern("alice")))
	require.Len(t, got, 1)
	assert.True(t, Equal(Intern("alice"), got[0][Var{"x"}]))

	assert.NotEmpty(t, eng.Prove(eq(Intern("a"), Intern("a"))))
	assert.Empty(t, eng.Prove(eq(Intern("a"), Intern("b"))))
}

func TestNotEqualBuiltin(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	ne := func(a, b Term) Compound { return Compound{Intern("not="), a, b} }

	assert.NotEmpty(t, eng.Prove(ne(Intern("a"), Intern("b"))))
	assert.Empty(t, eng.Prove(ne(Intern("a"), Intern("a"))))
	// Unbound sides never satisfy disequality.
	assert.Empty(t, eng.Prove(ne(Var{"x"}, Intern("a"))))
}

func TestDisequalityGuardsRule(t *testing.T) {
	// A not= antecedent keeps the reflexive pair out during backward
	// proof of the rule.
	likes := func(a, b Term) Compound { return Compound{Intern("likes"), a, b} }
	eng, err := New(
		WithFacts(likes(Intern("a"), Intern("b")), likes(Intern("c"), Intern("c"))),
		WithRules(Rule{
			When: []Compound{
				likes(Var{"x"}, Var{"y"}),
				{Intern("not="), Var{"x"}, Var{"y"}},
			},
			Then: []Compound{{Intern("pair"), Var{"x"}, Var{"y"}}},
		}),
	)
	require.NoError(t, err)

	all := eng.Ask(Compound{Intern("pair"), Var{"x"}, Var{"y"}})
	require.Len(t, all, 1)
	assert.True(t, Equal(Intern("a"), all[0][Var{"x"}]))
	assert.True(t, Equal(Intern("b"), all[0][Var{"y"}]))
}

func TestDepthLimitIsSilent(t *testing.T) {
	q := Compound{Intern("q"), Intern("a")}
	eng, err := New(
		WithFacts(q),
		WithRules(Rule{
			When: []Compound{{Intern("q"), Var{"x"}}},
			Then: []Compound{{Intern("p"), Var{"x"}}},
		}),
	)
	require.NoError(t, err)

	goal := Compound{Intern("p"), Intern("a")}
	require.NotEmpty(t, eng.Prove(goal))

	// With max-depth 0 the rule's antecedent is out of reach: no proofs,
	// no error, advisory flag set.
	proofs := eng.Prove(goal, WithMaxDepth(0))
	assert.Empty(t, proofs)
	assert.True(t, eng.Stats().DepthLimited)
}

func TestBreadthFirstOrdersShallowFirst(t *testing.T) {
	// Two derivations of p(a): one through a two-rule chain, one through
	// a single rule. Depth-first hits the deep one first because its
	// rule was added first; breadth-first reorders.
	p := Compound{Intern("p"), Intern("a")}
	eng, err := New(
		WithFacts(Compound{Intern("s"), Intern("a")}, Compound{Intern("r"), Intern("a")}),
		WithRules(
			Rule{Name: "deep", When: []Compound{{Intern("q"), Var{"x"}}}, Then: []Compound{{Intern("p"), Var{"x"}}}},
			Rule{Name: "q-from-s", When: []Compound{{Intern("s"), Var{"x"}}}, Then: []Compound{{Intern("q"), Var{"x"}}}},
			Rule{Name: "shallow", When: []Compound{{Intern("r"), Var{"x"}}}, Then: []Compound{{Intern("p"), Var{"x"}}}},
		),
	)
	require.NoError(t, err)

	df := eng.Prove(p)
	require.Len(t, df, 2)
	assert.Equal(t, "deep", df[0].Rule.Name)

	bf := eng.Prove(p, WithStrategy(BreadthFirst))
	require.Len(t, bf, 2)
	assert.Equal(t, "shallow", bf[0].Rule.Name)
	assert.LessOrEqual(t, bf[0].Height(), bf[1].Height())
}

func TestIterativeDeepeningDeduplicates(t *testing.T) {
	p := Compound{Intern("p"), Intern("a"), Intern("b")}
	eng, err := New(
		WithFacts(p),
		WithRules(Rule{
			When: []Compound{{Intern("p"), Var{"x"}, Var{"y"}}},
			Then: []Compound{{Intern("p"), Var{"x"}, Var{"y"}}},
		}),
	)
	require.NoError(t, err)

	proofs := eng.Prove(p, WithStrategy(IterativeDeepening))
	// The fact proof reappears at every cap but is emitted once; the
	// rule proof joins at cap 1.
	assert.Len(t, proofs, 2)
}

func TestExplain(t *testing.T) {
	q := Compound{Intern("q"), Intern("a")}
	eng, err := New(
		WithFacts(q),
		WithRules(Rule{
			Name: "lift",
			When: []Compound{{Intern("q"), Var{"x"}}},
			Then: []Compound{{Intern("p"), Var{"x"}}},
		}),
	)
	require.NoError(t, err)

	ex := eng.Explain(Compound{Intern("p"), Intern("a")})
	require.Len(t, ex.Proofs, 1)
	assert.False(t, ex.DepthLimited)
	assert.Equal(t, "lift", ex.Proofs[0].Rule.Name)

	ex = eng.Explain(Compound{Intern("p"), Intern("a")}, WithMaxDepth(0))
	assert.Empty(t, ex.Proofs)
	assert.True(t, ex.DepthLimited)
}

func TestProofCountStat(t *testing.T) {
	eng, err := New(WithFacts(person("alice"), person("bob")))
	require.NoError(t, err)
	eng.Prove(Compound{Intern("person"), Var{"who"}})
	assert.Equal(t, 2, eng.Stats().ProofsProduced)
}
