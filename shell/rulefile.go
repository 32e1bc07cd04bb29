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

package shell

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xupit3r/fathom"
	"github.com/xupit3r/fathom/syntax"
)

// Document is the persisted form of an engine's facts and rules: terms
// as strings in the textual notation, rules as mappings with keys when,
// then, name, priority.
//
//	facts:
//	  - "[:parent :alice :bob]"
//	rules:
//	  - name: ancestor-base
//	    when: ["[:parent ?x ?y]"]
//	    then: ["[:ancestor ?x ?y]"]
type Document struct {
	Facts []string  `yaml:"facts,omitempty"`
	Rules []RuleDoc `yaml:"rules,omitempty"`
}

// RuleDoc is one rule in a Document.
type RuleDoc struct {
	Name     string   `yaml:"name,omitempty"`
	Priority int      `yaml:"priority,omitempty"`
	When     []string `yaml:"when,omitempty"`
	Then     []string `yaml:"then"`
}

// Rule parses and validates the documented rule.
func (rd RuleDoc) Rule() (fathom.Rule, error) {
	r := fathom.Rule{Name: rd.Name, Priority: rd.Priority}
	for _, s := range rd.When {
		c, err := syntax.ParseCompound(s)
		if err != nil {
			return fathom.Rule{}, fmt.Errorf("rule %s: when: %w", rd.label(), err)
		}
		r.When = append(r.When, c)
	}
	for _, s := range rd.Then {
		c, err := syntax.ParseCompound(s)
		if err != nil {
			return fathom.Rule{}, fmt.Errorf("rule %s: then: %w", rd.label(), err)
		}
		r.Then = append(r.Then, c)
	}
	if err := r.Validate(); err != nil {
		return fathom.Rule{}, err
	}
	return r, nil
}

func (rd RuleDoc) label() string {
	if rd.Name != "" {
		return rd.Name
	}
	return "(unnamed)"
}

// Decode parses and validates every fact and rule in the document. It
// either returns the complete decoded content or an error and nothing.
func (d *Document) Decode() ([]fathom.Compound, []fathom.Rule, error) {
	var facts []fathom.Compound
	for _, s := range d.Facts {
		c, err := syntax.ParseCompound(s)
		if err != nil {
			return nil, nil, fmt.Errorf("fact: %w", err)
		}
		if _, err := fathom.ValidateFact(c); err != nil {
			return nil, nil, err
		}
		facts = append(facts, c)
	}
	var rules []fathom.Rule
	for _, rd := range d.Rules {
		r, err := rd.Rule()
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, r)
	}
	return facts, rules, nil
}

// ApplyTo asserts the document's facts and adds its rules to eng. The
// whole document is decoded and validated before the first mutation, so
// a bad entry leaves the engine untouched.
func (d *Document) ApplyTo(eng *fathom.Engine) error {
	facts, rules, err := d.Decode()
	if err != nil {
		return err
	}
	for _, f := range facts {
		if err := eng.Assert(f); err != nil {
			return err
		}
	}
	for _, r := range rules {
		if err := eng.AddRule(r); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot captures eng's current facts and rules as a Document.
func Snapshot(eng *fathom.Engine) *Document {
	d := &Document{}
	for _, f := range eng.Facts() {
		d.Facts = append(d.Facts, f.String())
	}
	for _, r := range eng.Rules() {
		rd := RuleDoc{Name: r.Name, Priority: r.Priority}
		for _, p := range r.When {
			rd.When = append(rd.When, p.String())
		}
		for _, c := range r.Then {
			rd.Then = append(rd.Then, c.String())
		}
		d.Rules = append(d.Rules, rd)
	}
	return d
}

// LoadFile reads a YAML document from path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &d, nil
}

// SaveFile writes eng's facts and rules to path as YAML.
func SaveFile(eng *fathom.Engine, path string) error {
	data, err := yaml.Marshal(Snapshot(eng))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
