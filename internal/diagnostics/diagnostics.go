// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package diagnostics collects and reports compiler errors. It replaces the
// teacher compiler's ad hoc "handler returns bool, caller prints and bails"
// pattern (falcon's ast.TypeCheck) with a sink that accumulates positioned
// diagnostics so the pipeline can keep lowering best-effort (spec.md 7) while
// still failing the overall run.
package diagnostics

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic is a single positioned compiler message. Kind names the class of
// problem (spec.md 7: "undefined variable", "arity mismatch", ...) so tooling
// can group or filter without parsing Message.
type Diagnostic struct {
	Severity Severity `yaml:"severity"`
	Kind     string   `yaml:"kind"`
	Message  string   `yaml:"message"`
	Line     int      `yaml:"line"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.Severity, d.Line, d.Kind, d.Message)
}

// Sink accumulates diagnostics for one compilation. It is not safe for
// concurrent use; the pipeline is single-threaded per spec.md 5.
type Sink struct {
	diags []Diagnostic
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Warn(kind string, line int, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{Severity: Warning, Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)})
}

func (s *Sink) Error(kind string, line int, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{Severity: Error, Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Failed reports whether any Error-or-above diagnostic was recorded; the
// pipeline uses this to decide the process exit status (spec.md 7).
func (s *Sink) Failed() bool {
	for _, d := range s.diags {
		if d.Severity >= Error {
			return true
		}
	}
	return false
}

func (s *Sink) All() []Diagnostic {
	return s.diags
}

// YAML serializes the accumulated diagnostics for -diagnostics=yaml output
// (SPEC_FULL.md 2, a supplement over spec.md's plain diagnostic sink).
func (s *Sink) YAML() (string, error) {
	out, err := yaml.Marshal(s.diags)
	if err != nil {
		return "", errors.Wrap(err, "marshal diagnostics")
	}
	return string(out), nil
}

// Wrap annotates err with a compiler-internal stage name, used for invariant
// violations that should surface with a stack trace (internal errors, not
// semantic diagnostics) rather than a bare panic.
func Wrap(err error, stage string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "minic: %s", stage)
}
