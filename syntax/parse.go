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
	"fmt"
	"strconv"

	"github.com/xupit3r/fathom"
)

// parser is a one-token-lookahead recursive-descent parser over the
// lexer's item stream.
type parser struct {
	lex    *lexer
	tok    item
	peeked bool
}

func newParser(name, input string) *parser {
	return &parser{lex: lex(name, input)}
}

func (p *parser) next() item {
	if p.peeked {
		p.peeked = false
		return p.tok
	}
	return p.lex.nextToken()
}

func (p *parser) peek() item {
	if !p.peeked {
		p.tok = p.lex.nextToken()
		p.peeked = true
	}
	return p.tok
}

func (p *parser) errorf(i item, format string, args ...any) error {
	return fmt.Errorf("%s:%d: %s", p.lex.name, i.line, fmt.Sprintf(format, args...))
}

// ParseTerm parses input as exactly one term.
func ParseTerm(input string) (fathom.Term, error) {
	return parseNamedTerm("term", input)
}

func parseNamedTerm(name, input string) (fathom.Term, error) {
	p := newParser(name, input)
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	if trailing := p.next(); trailing.typ != itemEOF {
		return nil, p.errorf(trailing, "trailing input after term: %s", trailing)
	}
	return t, nil
}

// ParseTerms parses input as a sequence of terms; name labels errors.
func ParseTerms(name, input string) ([]fathom.Term, error) {
	p := newParser(name, input)
	var out []fathom.Term
	for p.peek().typ != itemEOF {
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseCompound parses input as one compound term, the shape facts,
// patterns, and goals take.
func ParseCompound(input string) (fathom.Compound, error) {
	t, err := ParseTerm(input)
	if err != nil {
		return nil, err
	}
	c, ok := t.(fathom.Compound)
	if !ok {
		return nil, fmt.Errorf("term: expected a compound, got %v", t)
	}
	return c, nil
}

func (p *parser) term() (fathom.Term, error) {
	tok := p.next()
	switch tok.typ {
	case itemError:
		return nil, p.errorf(tok, "%s", tok.val)
	case itemEOF:
		return nil, p.errorf(tok, "unexpected end of input")
	case itemLBracket:
		return p.compound()
	case itemRBracket:
		return nil, p.errorf(tok, "unexpected ]")
	case itemSymbol:
		return fathom.Intern(tok.val), nil
	case itemVariable:
		return fathom.Var{Name: tok.val}, nil
	case itemWildcard:
		return fathom.Wildcard{}, nil
	case itemInt:
		n, err := strconv.ParseInt(tok.val, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "bad integer %q", tok.val)
		}
		return fathom.Int(n), nil
	case itemFloat:
		f, err := strconv.ParseFloat(tok.val, 64)
		if err != nil {
			return nil, p.errorf(tok, "bad float %q", tok.val)
		}
		return fathom.Float(f), nil
	case itemString:
		s, err := strconv.Unquote(tok.val)
		if err != nil {
			return nil, p.errorf(tok, "bad string %s", tok.val)
		}
		return fathom.Str(s), nil
	case itemIdent:
		switch tok.val {
		case "true":
			return fathom.Bool(true), nil
		case "false":
			return fathom.Bool(false), nil
		case "null":
			return fathom.Null{}, nil
		}
		return nil, p.errorf(tok, "unknown identifier %q", tok.val)
	}
	return nil, p.errorf(tok, "unexpected token %s", tok)
}

func (p *parser) compound() (fathom.Term, error) {
	out := fathom.Compound{}
	for {
		tok := p.peek()
		switch tok.typ {
		case itemRBracket:
			p.next()
			return out, nil
		case itemEOF:
			return nil, p.errorf(tok, "unclosed [")
		case itemError:
			return nil, p.errorf(tok, "%s", tok.val)
		}
		e, err := p.term()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}
