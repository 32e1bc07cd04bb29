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
	"math/rand"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Strategy selects the backward search order.
type Strategy string

const (
	DepthFirst         Strategy = "depth-first"
	BreadthFirst       Strategy = "breadth-first"
	IterativeDeepening Strategy = "iterative-deepening"
)

// Conflict selects the forward chainer's tie-break chain. Every chain is
// a total order, so a run is reproducible given a fixed seed.
type Conflict string

const (
	ByPriority    Conflict = "priority"
	ByRecency     Conflict = "recency"
	BySpecificity Conflict = "specificity"
	ByRandom      Conflict = "random"
	// MRS orders by recency then specificity; MEVIS by specificity then
	// recency. Both then fall back to priority, like recency and
	// specificity.
	MRS   Conflict = "mrs"
	MEVIS Conflict = "mevis"
)

// Config is the engine's recognized option set. The zero value is not
// useful; start from DefaultConfig.
type Config struct {
	Strategy Strategy
	MaxDepth int
	MaxSteps int
	Conflict Conflict
	Trace    bool
	Seed     int64
}

func DefaultConfig() Config {
	return Config{
		Strategy: DepthFirst,
		MaxDepth: 10,
		MaxSteps: 1000,
		Conflict: ByPriority,
		Seed:     1,
	}
}

func (c Config) validate() error {
	switch c.Strategy {
	case DepthFirst, BreadthFirst, IterativeDeepening:
	default:
		return validationf("unknown strategy %q", c.Strategy)
	}
	switch c.Conflict {
	case ByPriority, ByRecency, BySpecificity, ByRandom, MRS, MEVIS:
	default:
		return validationf("unknown conflict-resolution %q", c.Conflict)
	}
	if c.MaxDepth < 0 {
		return validationf("max-depth must be non-negative, got %d", c.MaxDepth)
	}
	if c.MaxSteps < 0 {
		return validationf("max-steps must be non-negative, got %d", c.MaxSteps)
	}
	return nil
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Facts          int
	Rules          int
	ForwardSteps   int
	ProofsProduced int
	// DepthLimited is advisory: some backward search since creation was
	// pruned at max-depth, so proof enumeration may be incomplete.
	DepthLimited bool
}

// Engine owns a fact base, a rule list, and a configuration. A single
// logical actor drives each engine; operations run to completion or to
// their step/depth bound before returning. Independent engines may run
// in parallel — the only state they share is the symbol table, which is
// safe for concurrent use.
type Engine struct {
	id    string
	fb    *FactBase
	rules []*Rule
	cfg   Config
	log   *zap.Logger
	rng   *rand.Rand

	forwardSteps int
	proofCount   int
	depthLimited bool
}

// Option configures a new engine.
type Option func(*Engine) error

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) error {
		if err := cfg.validate(); err != nil {
			return err
		}
		e.cfg = cfg
		return nil
	}
}

// WithLogger routes trace events to log. Tracing still requires
// Config.Trace.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) error {
		e.log = log
		return nil
	}
}

// WithFacts asserts the given facts at construction.
func WithFacts(facts ...Term) Option {
	return func(e *Engine) error {
		return e.Assert(facts...)
	}
}

// WithRules adds the given rules at construction.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) error {
		for _, r := range rules {
			if err := e.AddRule(r); err != nil {
				return err
			}
		}
		return nil
	}
}

// New creates an engine. Facts and rules supplied via options are
// validated; the first invalid one fails construction.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		id:  uuid.NewString(),
		fb:  NewFactBase(),
		cfg: DefaultConfig(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.rng = rand.New(rand.NewSource(e.cfg.Seed))
	return e, nil
}

// ID returns the engine identity used in trace output.
func (e *Engine) ID() string {
	return e.id
}

// Assert adds facts to the base. Stops at the first invalid fact.
func (e *Engine) Assert(facts ...Term) error {
	for _, f := range facts {
		if err := e.fb.Assert(f); err != nil {
			return err
		}
		e.trace("assert", zap.Stringer("fact", f))
	}
	return nil
}

// Retract removes facts from the base. Stops at the first invalid fact.
func (e *Engine) Retract(facts ...Term) error {
	for _, f := range facts {
		if err := e.fb.Retract(f); err != nil {
			return err
		}
		e.trace("retract", zap.Stringer("fact", f))
	}
	return nil
}

// Facts returns every fact in assertion order.
func (e *Engine) Facts() []Compound {
	return e.fb.All()
}

// Contains reports whether the base holds fact.
func (e *Engine) Contains(fact Term) bool {
	return e.fb.Contains(fact)
}

// Query matches a pattern against the fact base, without inference.
func (e *Engine) Query(pattern Term, s Subst) []Subst {
	return e.fb.Query(pattern, s)
}

// Clear empties the fact base. Rules and counters are kept.
func (e *Engine) Clear() {
	e.fb.Clear()
}

// AddRule validates r and appends it to the rule list.
func (e *Engine) AddRule(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	e.rules = append(e.rules, &r)
	e.trace("add rule", zap.Stringer("rule", &r))
	return nil
}

// Rules returns a copy of the rule list in insertion order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = *r
	}
	return out
}

// Configure sets one recognized option by its textual key. Values may be
// native (int, bool, Strategy) or strings as they appear in the shell.
// A configuration change happens-before any later inference call.
func (e *Engine) Configure(key string, value any) error {
	cfg := e.cfg
	switch key {
	case "strategy":
		s, err := coerceString(key, value)
		if err != nil {
			return err
		}
		cfg.Strategy = Strategy(s)
	case "max-depth":
		n, err := coerceInt(key, value)
		if err != nil {
			return err
		}
		cfg.MaxDepth = n
	case "max-steps":
		n, err := coerceInt(key, value)
		if err != nil {
			return err
		}
		cfg.MaxSteps = n
	case "conflict-resolution":
		s, err := coerceString(key, value)
		if err != nil {
			return err
		}
		cfg.Conflict = Conflict(s)
	case "trace":
		b, err := coerceBool(key, value)
		if err != nil {
			return err
		}
		cfg.Trace = b
	case "seed":
		n, err := coerceInt(key, value)
		if err != nil {
			return err
		}
		cfg.Seed = int64(n)
	default:
		return validationf("unknown configuration key %q", key)
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.rng = rand.New(rand.NewSource(cfg.Seed))
	return nil
}

// Configuration returns the current configuration.
func (e *Engine) Configuration() Config {
	return e.cfg
}

// Stats reports counters accumulated since creation.
func (e *Engine) Stats() Stats {
	return Stats{
		Facts:          e.fb.Len(),
		Rules:          len(e.rules),
		ForwardSteps:   e.forwardSteps,
		ProofsProduced: e.proofCount,
		DepthLimited:   e.depthLimited,
	}
}

func (e *Engine) trace(msg string, fields ...zap.Field) {
	if !e.cfg.Trace {
		return
	}
	e.log.Debug(msg, append([]zap.Field{zap.String("engine", e.id)}, fields...)...)
}

func coerceString(key string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case Strategy:
		return string(v), nil
	case Conflict:
		return string(v), nil
	}
	return "", validationf("option %s wants a string, got %T", key, value)
}

func coerceInt(key string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case Int:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, validationf("option %s wants an integer, got %q", key, v)
		}
		return n, nil
	}
	return 0, validationf("option %s wants an integer, got %T", key, value)
}

func coerceBool(key string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case Bool:
		return bool(v), nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, validationf("option %s wants a boolean, got %q", key, v)
		}
		return b, nil
	}
	return false, validationf("option %s wants a boolean, got %T", key, value)
}
