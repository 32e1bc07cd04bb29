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

// Unify computes the most general unifier of t1 and t2 relative to s:
// on success the returned substitution extends s and makes the two terms
// structurally identical under Apply. Failure is a value (ok=false), not
// an error. The argument substitution is never modified.
//
// Robinson's algorithm with the occurs check applied at every variable
// binding. Wildcards behave as fresh variables that are never recorded:
// they unify with anything, bind nothing, and two wildcards never alias.
func Unify(t1, t2 Term, s Subst) (Subst, bool) {
	a := Apply(t1, s)
	b := Apply(t2, s)
	if Equal(a, b) {
		return s, true
	}
	if IsWildcard(a) || IsWildcard(b) {
		return s, true
	}
	if v, ok := a.(Var); ok {
		return s.Extend(v, b)
	}
	if v, ok := b.(Var); ok {
		return s.Extend(v, a)
	}
	ca, aok := a.(Compound)
	cb, bok := b.(Compound)
	if aok && bok && len(ca) == len(cb) {
		out := s
		for i := range ca {
			var ok bool
			out, ok = Unify(ca[i], cb[i], out)
			if !ok {
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

// UnifyAll unifies terms pairwise in left-fold order: the first with the
// second, the result with the third, and so on. Equivalent to repeated
// binary unification threading the substitution.
func UnifyAll(s Subst, terms ...Term) (Subst, bool) {
	if len(terms) < 2 {
		return s, true
	}
	out := s
	for i := 1; i < len(terms); i++ {
		var ok bool
		out, ok = Unify(terms[0], terms[i], out)
		if !ok {
			return nil, false
		}
	}
	return out, true
}
