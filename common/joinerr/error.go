// Copyright 2026 The Hashprobe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package joinerr defines the typed errors the probe operator can return,
// modeled on matrixone's pkg/common/moerr: a small Kind enum plus
// constructor functions, rather than ad hoc fmt.Errorf calls scattered
// through the operator.
package joinerr

import "fmt"

// Kind classifies an operator error.
type Kind uint8

const (
	// KindConfiguration: a filter references a column not in either side
	// of the join. NewDriver does not check filter columns, so no code in
	// this module returns an error of this kind.
	KindConfiguration Kind = iota
	// KindContractViolation: addInput called before the table is ready,
	// or an empty build reached an inner/semi path that should have
	// short-circuited. An invariant assertion failure.
	KindContractViolation
	// KindEvaluator: an error surfaced from the expression engine.
	KindEvaluator
	// KindCancelled: the build bridge's wait was cancelled, or the build
	// itself failed.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindContractViolation:
		return "contract_violation"
	case KindEvaluator:
		return "evaluator"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the error type every probe-operator failure is reported as.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, e.g. from the expression evaluator
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, joinerr.Sentinel(joinerr.KindX)) style checks:
// any two *Error values of the same Kind match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func NewConfiguration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...)}
}

func NewContractViolation(format string, args ...any) *Error {
	return &Error{Kind: KindContractViolation, Msg: fmt.Sprintf(format, args...)}
}

func NewEvaluator(cause error) *Error {
	return &Error{Kind: KindEvaluator, Msg: "filter evaluation failed", Err: cause}
}

func NewCancelled(cause error) *Error {
	return &Error{Kind: KindCancelled, Msg: "build wait cancelled", Err: cause}
}

// Sentinel returns a zero-valued *Error of the given kind, suitable only
// as the target of errors.Is — it carries no message.
func Sentinel(k Kind) *Error { return &Error{Kind: k} }
