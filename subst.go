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
	"strings"
)

// Subst is a finite mapping from variables to terms. The wildcard never
// appears as a key, and no key reaches itself by chasing its image
// through the mapping (every extension is occurs-checked), so Apply
// terminates.
//
// The nil map is the empty substitution and is safe to read.
type Subst map[Var]Term

// Clone returns an independent copy of s.
func (s Subst) Clone() Subst {
	out := make(Subst, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Lookup returns the binding for v, if any. No chasing.
func (s Subst) Lookup(v Var) (Term, bool) {
	t, ok := s[v]
	return t, ok
}

// Apply replaces every bound variable in t by its image under s, chasing
// bindings until a non-variable or an unbound variable is reached.
// Compounds are rebuilt elementwise; atoms and wildcards pass through.
func Apply(t Term, s Subst) Term {
	if len(s) == 0 {
		return t
	}
	switch x := t.(type) {
	case Var:
		if bound, ok := s[x]; ok {
			return Apply(bound, s)
		}
		return x
	case Compound:
		out := make(Compound, len(x))
		for i, e := range x {
			out[i] = Apply(e, s)
		}
		return out
	}
	return t
}

// Bind is Apply under its pattern-matching name: the result is ground iff
// every variable in pattern is bound in s.
func Bind(pattern Term, s Subst) Term {
	return Apply(pattern, s)
}

// Occurs reports whether v appears anywhere inside t after chasing t
// through s. Binding a variable to a term in which it occurs would build
// an infinite term, so every Extend runs this check first.
func Occurs(v Var, t Term, s Subst) bool {
	switch x := t.(type) {
	case Var:
		if x == v {
			return true
		}
		if bound, ok := s[x]; ok {
			return Occurs(v, bound, s)
		}
		return false
	case Compound:
		for _, e := range x {
			if Occurs(v, e, s) {
				return true
			}
		}
	}
	return false
}

// Extend returns s plus the binding v -> Apply(t, s). It fails (ok=false)
// when the occurs check rejects the binding. The receiver is not
// modified.
func (s Subst) Extend(v Var, t Term) (Subst, bool) {
	resolved := Apply(t, s)
	if Occurs(v, resolved, s) {
		return nil, false
	}
	out := s.Clone()
	out[v] = resolved
	return out, true
}

// Compose resolves every value of s2 against s1, then overlays the
// resolved bindings onto a copy of s1, with s2 winning shared keys.
// Values taken over from s1 are not resolved against s2; Apply chases
// through them.
func Compose(s1, s2 Subst) Subst {
	out := s1.Clone()
	for k, v := range s2 {
		out[k] = Apply(v, s1)
	}
	return out
}

// String renders bindings as {?x -> :a, ?y -> 42} in sorted variable
// order, for logs and proof output.
func (s Subst) String() string {
	if len(s) == 0 {
		return "{}"
	}
	vars := make([]Var, 0, len(s))
	for v := range s {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range vars {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
		b.WriteString(" -> ")
		b.WriteString(s[v].String())
	}
	b.WriteByte('}')
	return b.String()
}

// key is a canonical encoding of the substitution, used by the
// iterative-deepening prover to de-duplicate results.
func (s Subst) key() string {
	return s.String()
}
