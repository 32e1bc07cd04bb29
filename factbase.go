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

// A fact is a non-empty ground compound. ValidateFact is the single
// gatekeeper: everything entering a FactBase passes it first.
func ValidateFact(t Term) (Compound, error) {
	c, ok := t.(Compound)
	if !ok {
		return nil, validationf("fact must be a compound, got %v", t)
	}
	if len(c) == 0 {
		return nil, validationf("fact must be a non-empty compound")
	}
	if !IsGround(c) {
		return nil, validationf("fact must be ground, got %v", c)
	}
	return c, nil
}

// FactBase is the mutable fact collection, doubly indexed: a key set for
// O(1) membership and deduplication, and a by-head index so matching a
// pattern with a known relation head scans only that relation. Facts in
// the by-head buckets and in scan order appear in assertion order, which
// is what makes MatchAll and Query deterministic run-to-run.
type FactBase struct {
	all    map[string]Compound
	order  []Compound
	byHead map[Symbol][]Compound
	seq    map[string]int64
	serial int64
}

func NewFactBase() *FactBase {
	return &FactBase{
		all:    make(map[string]Compound),
		byHead: make(map[Symbol][]Compound),
		seq:    make(map[string]int64),
	}
}

// Assert adds fact to both indexes. Asserting a fact already present is
// a no-op, so assertion is idempotent. Returns a ValidationError for
// anything that is not a non-empty ground compound.
func (fb *FactBase) Assert(fact Term) error {
	c, err := ValidateFact(fact)
	if err != nil {
		return err
	}
	k := Key(c)
	if _, ok := fb.all[k]; ok {
		return nil
	}
	fb.all[k] = c
	fb.order = append(fb.order, c)
	fb.serial++
	fb.seq[k] = fb.serial
	if h, ok := c.Head().(Symbol); ok {
		fb.byHead[h] = append(fb.byHead[h], c)
	}
	return nil
}

// Retract removes fact from both indexes; retracting an absent fact is a
// no-op.
func (fb *FactBase) Retract(fact Term) error {
	c, err := ValidateFact(fact)
	if err != nil {
		return err
	}
	k := Key(c)
	if _, ok := fb.all[k]; !ok {
		return nil
	}
	delete(fb.all, k)
	delete(fb.seq, k)
	fb.order = removeFact(fb.order, k)
	if h, ok := c.Head().(Symbol); ok {
		fb.byHead[h] = removeFact(fb.byHead[h], k)
	}
	return nil
}

func removeFact(facts []Compound, key string) []Compound {
	for i, f := range facts {
		if Key(f) == key {
			return append(facts[:i], facts[i+1:]...)
		}
	}
	return facts
}

// Contains reports membership in O(1).
func (fb *FactBase) Contains(fact Term) bool {
	_, ok := fb.all[Key(fact)]
	return ok
}

// Clear empties both indexes. Assertion serials keep counting up so
// recency comparisons stay valid across a clear.
func (fb *FactBase) Clear() {
	fb.all = make(map[string]Compound)
	fb.order = nil
	fb.byHead = make(map[Symbol][]Compound)
	fb.seq = make(map[string]int64)
}

// Len returns the number of facts.
func (fb *FactBase) Len() int {
	return len(fb.all)
}

// All returns every fact in assertion order. The slice is a copy; the
// facts are shared.
func (fb *FactBase) All() []Compound {
	out := make([]Compound, len(fb.order))
	copy(out, fb.order)
	return out
}

// ByRelation returns the facts whose head is the given symbol, in
// assertion order, possibly empty.
func (fb *FactBase) ByRelation(head Symbol) []Compound {
	bucket := fb.byHead[head]
	out := make([]Compound, len(bucket))
	copy(out, bucket)
	return out
}

// Seq returns the assertion serial of fact, or 0 if absent. Later
// assertions have larger serials; the forward chainer's recency
// tie-break compares these.
func (fb *FactBase) Seq(fact Compound) int64 {
	return fb.seq[Key(fact)]
}

// candidates narrows the scan set for a pattern: a compound pattern whose
// head resolves to a symbol under s only needs its relation's bucket;
// anything else scans every fact.
func (fb *FactBase) candidates(pattern Term, s Subst) []Compound {
	if c, ok := pattern.(Compound); ok && len(c) > 0 {
		if h, ok := Apply(c.Head(), s).(Symbol); ok {
			return fb.byHead[h]
		}
	}
	return fb.order
}

// Query matches pattern against the base under s, one substitution per
// matching fact. Equivalent to MatchAll over the narrowed candidate set.
func (fb *FactBase) Query(pattern Term, s Subst) []Subst {
	return MatchAll(pattern, fb.candidates(pattern, s), s)
}
