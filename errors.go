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

import "fmt"

// ValidationError reports malformed input: a fact that is not a non-empty
// ground compound, an unsafe rule, or a bad configuration key or value.
// The caller fixes the input and retries.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return "fathom: " + e.msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// StepLimitError reports that the forward chainer reached max-steps
// rounds without finding a fixed point. Facts derived before the limit
// remain asserted; the caller raises the limit or refines the rules.
type StepLimitError struct {
	Steps int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("fathom: forward chaining exceeded %d steps without fixed point", e.Steps)
}

// Depth exhaustion in the backward prover is not an error: the offending
// branch yields no proofs and Stats.DepthLimited is set, so incomplete
// branches cannot poison successful ones. Occurs-check rejections inside
// unification are likewise silent — they surface as "no proof".
