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

// Package fathom is a symbolic inference engine over a fact base: a term
// and substitution algebra, unification and pattern matching, a forward
// chainer that saturates a rule set to fixed point, and a backward prover
// that enumerates proof trees for a goal.
package fathom

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"strconv"
)

// Term is the value model shared by facts, patterns, rules, and goals. A
// term is an atom (Symbol, Int, Float, Str, Bool, Null), a Var, the
// Wildcard, or a Compound of terms. Equality of terms is structural;
// TermHash agrees with Equal.
type Term interface {
	isTerm()

	// String renders the term in the textual notation used by the syntax
	// package and in logs: [:likes :alice ?who]. The rendering is
	// injective on terms, so it doubles as a canonical key.
	String() string
}

// Symbol is an interned identifier atom, written :name. Symbols compare by
// handle after interning; see Intern.
type Symbol struct {
	id uint32
}

// Int is an integer atom.
type Int int64

// Float is a floating-point atom.
type Float float64

// Str is a string atom.
type Str string

// Bool is a boolean atom.
type Bool bool

// Null is the null atom.
type Null struct{}

// Var is a named hole, written ?name. Names are case-sensitive; ?x and ?X
// are distinct. Var is comparable and is the key type of Subst.
type Var struct {
	Name string
}

// Wildcard matches any term and never binds. Written ?.
type Wildcard struct{}

// Compound is an ordered sequence of terms. By convention the first
// element of a non-empty compound is the relation head, but nothing in the
// structure requires that.
type Compound []Term

func (Symbol) isTerm()   {}
func (Int) isTerm()      {}
func (Float) isTerm()    {}
func (Str) isTerm()      {}
func (Bool) isTerm()     {}
func (Null) isTerm()     {}
func (Var) isTerm()      {}
func (Wildcard) isTerm() {}
func (Compound) isTerm() {}

func (s Symbol) String() string { return ":" + s.Name() }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// String keeps float rendering distinguishable from Int: a float that
// formats without a '.' or exponent gets a trailing ".0" so that parsing
// the output recovers the same kind.
func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if !bytes.ContainsAny([]byte(s), ".eE") {
		s += ".0"
	}
	return s
}

func (s Str) String() string { return strconv.Quote(string(s)) }

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (Null) String() string { return "null" }

func (v Var) String() string { return "?" + v.Name }

func (Wildcard) String() string { return "?" }

func (c Compound) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, t := range c {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%v", t)
	}
	buf.WriteByte(']')
	return buf.String()
}

// Head returns the first element of a non-empty compound, or nil.
func (c Compound) Head() Term {
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

// Tail returns the elements after the head. The result shares backing
// storage with c.
func (c Compound) Tail() Compound {
	if len(c) == 0 {
		return nil
	}
	return c[1:]
}

// IsAtom reports whether t is one of the scalar atom kinds.
func IsAtom(t Term) bool {
	switch t.(type) {
	case Symbol, Int, Float, Str, Bool, Null:
		return true
	}
	return false
}

// IsVar reports whether t is a variable (not the wildcard).
func IsVar(t Term) bool {
	_, ok := t.(Var)
	return ok
}

// IsWildcard reports whether t is the wildcard.
func IsWildcard(t Term) bool {
	_, ok := t.(Wildcard)
	return ok
}

// IsCompound reports whether t is a compound.
func IsCompound(t Term) bool {
	_, ok := t.(Compound)
	return ok
}

// Equal reports structural equality of two terms. Atoms of different
// kinds are never equal, so Int(2) and Float(2) are distinct.
func Equal(a, b Term) bool {
	switch x := a.(type) {
	case Symbol:
		y, ok := b.(Symbol)
		return ok && x.id == y.id
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && x == y
	case Str:
		y, ok := b.(Str)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Null:
		_, ok := b.(Null)
		return ok
	case Var:
		y, ok := b.(Var)
		return ok && x == y
	case Wildcard:
		_, ok := b.(Wildcard)
		return ok
	case Compound:
		y, ok := b.(Compound)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Key returns the canonical encoding of t: two terms have equal keys iff
// they are Equal. Used by the fact base indexes and the prover's
// loop-check frames.
func Key(t Term) string {
	return t.String()
}

// TermHash returns a hash of t that agrees with Equal.
func TermHash(t Term) uint64 {
	h := fnv.New64a()
	h.Write([]byte(Key(t)))
	return h.Sum64()
}

// IsGround reports whether t contains no variables and no wildcards.
func IsGround(t Term) bool {
	switch x := t.(type) {
	case Var, Wildcard:
		return false
	case Compound:
		for _, e := range x {
			if !IsGround(e) {
				return false
			}
		}
	}
	return true
}

// Vars returns the variables (not wildcards) occurring anywhere in t, in
// first-occurrence order.
func Vars(t Term) []Var {
	var out []Var
	seen := make(map[Var]bool)
	collectVars(t, seen, &out)
	return out
}

func collectVars(t Term, seen map[Var]bool, out *[]Var) {
	switch x := t.(type) {
	case Var:
		if !seen[x] {
			seen[x] = true
			*out = append(*out, x)
		}
	case Compound:
		for _, e := range x {
			collectVars(e, seen, out)
		}
	}
}
