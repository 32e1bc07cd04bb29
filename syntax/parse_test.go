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

package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xupit3r/fathom"
)

func drainLexer(l *lexer) (int, item) {
	n := 0
	for {
		tok := l.nextToken()
		if tok.typ == itemEOF || tok.typ == itemError {
			return n, tok
		}
		n++
	}
}

func TestLexer(t *testing.T) {
	l := lex("test", `
		[:likes :alice ?who]     ; a comment
		[:score "bob smith" 42 3.14 true null ?]
	`)
	n, last := drainLexer(l)
	require.Equal(t, itemEOF, last.typ)
	assert.Equal(t, 14, n)
}

func TestLexerFail(t *testing.T) {
	l := lex("test", `[:p @oops]`)
	_, last := drainLexer(l)
	assert.Equal(t, itemError, last.typ)

	l = lex("test", `[:p "unterminated]`)
	_, last = drainLexer(l)
	assert.Equal(t, itemError, last.typ)
}

func TestParseTermKinds(t *testing.T) {
	got, err := ParseTerm(`[:likes :alice ?who ? 42 -7 3.14 "hi there" true false null []]`)
	require.NoError(t, err)
	want := fathom.Compound{
		fathom.Intern("likes"),
		fathom.Intern("alice"),
		fathom.Var{Name: "who"},
		fathom.Wildcard{},
		fathom.Int(42),
		fathom.Int(-7),
		fathom.Float(3.14),
		fathom.Str("hi there"),
		fathom.Bool(true),
		fathom.Bool(false),
		fathom.Null{},
		fathom.Compound{},
	}
	assert.True(t, fathom.Equal(want, got), "got %v", got)
}

func TestParseNested(t *testing.T) {
	got, err := ParseTerm(`[:edge [:node 1] [:node 2]]`)
	require.NoError(t, err)
	want := fathom.Compound{
		fathom.Intern("edge"),
		fathom.Compound{fathom.Intern("node"), fathom.Int(1)},
		fathom.Compound{fathom.Intern("node"), fathom.Int(2)},
	}
	assert.True(t, fathom.Equal(want, got))
}

func TestParseCaseSensitiveVars(t *testing.T) {
	lower, err := ParseTerm(`?x`)
	require.NoError(t, err)
	upper, err := ParseTerm(`?X`)
	require.NoError(t, err)
	assert.False(t, fathom.Equal(lower, upper))
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		``,
		`[:p`,
		`]`,
		`[:p] trailing`,
		`bogus`,
		`:`,
		`[:p "bad`,
	} {
		_, err := ParseTerm(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseTerms(t *testing.T) {
	terms, err := ParseTerms("fixture", `
		[:p 1]
		; skip me
		[:p 2]
	`)
	require.NoError(t, err)
	require.Len(t, terms, 2)
}

func TestRoundTrip(t *testing.T) {
	for _, input := range []string{
		`[:likes :alice :bob]`,
		`[:score "bob smith" 42 3.14 true null]`,
		`[:edge [:node 1] [:node -2]]`,
		`[:q ?x ? ?Long-name]`,
		`[:f 42.0]`,
	} {
		term, err := ParseTerm(input)
		require.NoError(t, err)
		again, err := ParseTerm(term.String())
		require.NoError(t, err, "reparse %q", term.String())
		assert.True(t, fathom.Equal(term, again), "round trip %q", input)
	}
}

func TestFormatProof(t *testing.T) {
	eng, err := fathom.New(
		fathom.WithFacts(fathom.Compound{fathom.Intern("q"), fathom.Intern("a")}),
		fathom.WithRules(fathom.Rule{
			Name: "lift",
			When: []fathom.Compound{{fathom.Intern("q"), fathom.Var{Name: "x"}}},
			Then: []fathom.Compound{{fathom.Intern("p"), fathom.Var{Name: "x"}}},
		}),
	)
	require.NoError(t, err)

	proofs := eng.Prove(fathom.Compound{fathom.Intern("p"), fathom.Intern("a")})
	require.Len(t, proofs, 1)
	out := FormatProof(proofs[0])
	assert.Contains(t, out, "rule lift")
	assert.Contains(t, out, "  fact [:q :a]")
}

func TestFormatBindings(t *testing.T) {
	assert.Equal(t, "no", FormatBindings(nil))
	b := []fathom.Subst{{fathom.Var{Name: "x"}: fathom.Int(1)}}
	assert.Equal(t, "{?x -> 1}", FormatBindings(b))
}
