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
	"strings"

	"github.com/xupit3r/fathom"
)

// FormatProof renders a proof tree, one node per line, children
// indented under their parent in antecedent order.
//
//	rule ancestor-step  [:ancestor :alice :carol]
//	  fact [:ancestor :alice :bob]
//	  fact [:parent :bob :carol]
func FormatProof(p *fathom.Proof) string {
	var b strings.Builder
	writeProof(&b, p, 0)
	return b.String()
}

func writeProof(b *strings.Builder, p *fathom.Proof, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	switch p.Kind {
	case fathom.FactProof:
		b.WriteString("fact ")
		b.WriteString(p.Fact.String())
	case fathom.RuleProof:
		b.WriteString("rule ")
		b.WriteString(p.Rule.Name)
		if p.Rule.Name != "" {
			b.WriteString("  ")
		}
		b.WriteString(fathom.Bind(p.Goal, p.Bindings).String())
	}
	b.WriteByte('\n')
	for _, c := range p.Children {
		writeProof(b, c, depth+1)
	}
}

// FormatBindings renders a sequence of binding sets, one per line, in
// the prover's order.
func FormatBindings(bindings []fathom.Subst) string {
	if len(bindings) == 0 {
		return "no"
	}
	lines := make([]string, len(bindings))
	for i, s := range bindings {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}
