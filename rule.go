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

import "strings"

// Rule derives its consequents whenever all its antecedents match the
// fact base under one consistent substitution.
//
// Example, transitive ancestor:
//
//	Rule{
//		Name: "ancestor-step",
//		When: []Compound{
//			{Intern("ancestor"), Var{"x"}, Var{"y"}},
//			{Intern("parent"), Var{"y"}, Var{"z"}},
//		},
//		Then: []Compound{{Intern("ancestor"), Var{"x"}, Var{"z"}}},
//	}
type Rule struct {
	// When holds the antecedent patterns, matched left to right.
	When []Compound
	// Then holds the consequent patterns asserted when the rule fires.
	Then []Compound
	// Name is used only in traces and tie-break logs.
	Name string
	// Priority orders activations; higher fires first. Default 0.
	Priority int
}

// Validate checks the rule is well formed and safe: Then is non-empty,
// every pattern is a non-empty compound with no wildcards on the Then
// side, and every Then variable also occurs in When — with an empty When
// the consequents must be ground, since there is nothing to bind them.
func (r *Rule) Validate() error {
	if len(r.Then) == 0 {
		return validationf("rule %s has no consequents", r.label())
	}
	for _, p := range r.When {
		if len(p) == 0 {
			return validationf("rule %s has an empty antecedent pattern", r.label())
		}
	}
	bound := make(map[Var]bool)
	for _, p := range r.When {
		for _, v := range Vars(p) {
			bound[v] = true
		}
	}
	for _, c := range r.Then {
		if len(c) == 0 {
			return validationf("rule %s has an empty consequent pattern", r.label())
		}
		if hasWildcard(c) {
			return validationf("rule %s has a wildcard in a consequent", r.label())
		}
		for _, v := range Vars(c) {
			if !bound[v] {
				if len(r.When) == 0 {
					return validationf("rule %s has no antecedents, so consequents must be ground", r.label())
				}
				return validationf("rule %s is unsafe: %v appears in a consequent but no antecedent", r.label(), v)
			}
		}
	}
	return nil
}

func hasWildcard(t Term) bool {
	switch x := t.(type) {
	case Wildcard:
		return true
	case Compound:
		for _, e := range x {
			if hasWildcard(e) {
				return true
			}
		}
	}
	return false
}

func (r *Rule) label() string {
	if r.Name != "" {
		return r.Name
	}
	return "(unnamed)"
}

// String renders the rule as {name when [...] ... then [...] ...}.
func (r *Rule) String() string {
	var b strings.Builder
	b.WriteByte('{')
	if r.Name != "" {
		b.WriteString(r.Name)
		b.WriteByte(' ')
	}
	b.WriteString("when")
	for _, p := range r.When {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	b.WriteString(" then")
	for _, c := range r.Then {
		b.WriteByte(' ')
		b.WriteString(c.String())
	}
	b.WriteByte('}')
	return b.String()
}
