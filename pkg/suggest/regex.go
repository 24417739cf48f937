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

package suggest

import (
	"iter"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/codemod-go/codemod/pkg/patch"
)

// Regex builds a line-local suggestor. Without a substitution, lines
// matching the pattern are flagged; with one, each line is rewritten by
// replacing all non-overlapping matches. Substitution templates use Go
// regexp expansion syntax ($1, ${name}).
func Regex(pattern string, substitution *string, ignoreCase bool, filters ...LineFilter) (Suggestor, error) {
	re, err := compile(pattern, ignoreCase, false)
	if err != nil {
		return nil, err
	}

	var transform Transform
	if substitution == nil {
		transform = func(line string) (string, bool) {
			if re.MatchString(line) {
				return "", false
			}
			return line, true
		}
	} else {
		transform = func(line string) (string, bool) {
			return re.ReplaceAllString(line, *substitution), true
		}
	}
	return LineTransformation(transform, filters...), nil
}

type multilineRegex struct {
	re           *regexp.Regexp
	substitution *string
}

// MultilineRegex builds a suggestor whose pattern is applied to the whole
// file content at once, with dot matching newlines, so matches may span
// line boundaries. A match spanning several lines yields a patch that
// collapses them into the spliced replacement block. Without a
// substitution, the spanned line range is flagged instead. Matches are
// found left to right and do not overlap.
func MultilineRegex(pattern string, substitution *string, ignoreCase bool) (Suggestor, error) {
	re, err := compile(pattern, ignoreCase, true)
	if err != nil {
		return nil, err
	}
	return &multilineRegex{re: re, substitution: substitution}, nil
}

func (s *multilineRegex) Suggest(lines []string) iter.Seq2[*patch.Patch, error] {
	return func(yield func(*patch.Patch, error) bool) {
		// Match against the whole buffer in one pass so ^, \A and \b anchor
		// at true line and word boundaries. Successive matches never
		// overlap.
		buffer := strings.Join(lines, "")
		for _, match := range s.re.FindAllStringSubmatchIndex(buffer, -1) {
			start, end := match[0], match[1]
			if end == start {
				// Zero-width match: nothing to flag or replace.
				continue
			}

			startRow, startCol, err := OffsetToRowCol(lines, start)
			if err != nil {
				yield(nil, err)
				return
			}
			endRow, endCol, err := OffsetToRowCol(lines, end-1)
			if err != nil {
				yield(nil, err)
				return
			}

			var p *patch.Patch
			if s.substitution == nil {
				p = patch.NewRange(startRow, endRow+1)
			} else {
				expansion := s.re.ExpandString(nil, *s.substitution, buffer, match)
				text := lines[startRow][:startCol] + string(expansion) + lines[endRow][endCol+1:]
				p = patch.NewReplacementText(startRow, endRow+1, text)
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func compile(pattern string, ignoreCase, multiline bool) (*regexp.Regexp, error) {
	flags := ""
	if ignoreCase {
		flags += "i"
	}
	if multiline {
		flags += "s"
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return re, nil
}
