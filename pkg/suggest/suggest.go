// Copyright 2025 the codemod-go authors
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

// Package suggest turns matching strategies into suggestors: functions that
// scan one file's lines and lazily propose patches.
package suggest

import (
	"iter"

	"github.com/codemod-go/codemod/pkg/patch"
)

// Suggestor scans the lines of one file and yields candidate patches in
// non-decreasing start-line order. Line ranges in yielded patches are
// 0-based offsets into the passed-in slice; paths are left for the caller
// to stamp. A non-nil error terminates the sequence.
type Suggestor interface {
	Suggest(lines []string) iter.Seq2[*patch.Patch, error]
}

// Transform rewrites a single line. ok=false means "no suggestion, but flag
// this line for human attention". Returning the line unchanged is allowed;
// the query suppresses no-op replacements downstream.
type Transform func(line string) (candidate string, ok bool)

// LineFilter gates lines cheaply before a transform runs. Lines it rejects
// are skipped entirely.
type LineFilter func(line string) bool

type lineTransformation struct {
	transform Transform
	filters   []LineFilter
}

// LineTransformation builds a suggestor that applies transform to each line
// and proposes the result as a one-line replacement, or flags the line when
// the transform has no suggestion. Optional filters skip lines before the
// transform runs; every filter must pass.
func LineTransformation(transform Transform, filters ...LineFilter) Suggestor {
	return &lineTransformation{transform: transform, filters: filters}
}

func (s *lineTransformation) Suggest(lines []string) iter.Seq2[*patch.Patch, error] {
	return func(yield func(*patch.Patch, error) bool) {
	scan:
		for lineNumber, line := range lines {
			for _, filter := range s.filters {
				if !filter(line) {
					continue scan
				}
			}
			candidate, ok := s.transform(line)
			var p *patch.Patch
			if !ok {
				p = patch.New(lineNumber)
			} else {
				p = patch.NewReplacement(lineNumber, lineNumber+1, []string{candidate})
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}
