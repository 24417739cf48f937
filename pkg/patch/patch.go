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

// Package patch describes candidate edits: a line range of a file and,
// optionally, the lines with which to replace that range.
package patch

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/codemod-go/codemod/pkg/position"
)

// ErrNoSuggestion is returned when ApplyTo is called on a flagging patch,
// one that carries no suggested replacement. That is a caller bug, not a
// recoverable condition.
var ErrNoSuggestion = errors.New("can't apply patch without suggested new lines")

// ErrRangeOutOfBounds is returned when a patch's line range does not fit in
// the lines it is applied to, typically because the file shrank after the
// patch was generated.
var ErrRangeOutOfBounds = errors.New("patch range exceeds file bounds")

// Patch represents a half-open line range [StartLineNumber, EndLineNumber)
// of a file and, optionally, the lines with which to replace that range.
// A nil NewLines means the patch merely flags the range for human attention.
//
// Path is left empty by suggestors, which operate on bare line lists; the
// query stamps the path on before yielding the patch. Treat a patch as
// immutable once it has been yielded.
type Patch struct {
	Path            string
	StartLineNumber int
	EndLineNumber   int
	NewLines        []string
}

// New builds a one-line flagging patch.
func New(startLineNumber int) *Patch {
	return NewRange(startLineNumber, startLineNumber+1)
}

// NewRange builds a flagging patch over [start, end).
func NewRange(startLineNumber, endLineNumber int) *Patch {
	return &Patch{
		StartLineNumber: startLineNumber,
		EndLineNumber:   endLineNumber,
	}
}

// NewReplacement builds a patch replacing [start, end) with newLines.
func NewReplacement(startLineNumber, endLineNumber int, newLines []string) *Patch {
	return &Patch{
		StartLineNumber: startLineNumber,
		EndLineNumber:   endLineNumber,
		NewLines:        newLines,
	}
}

// NewReplacementText is like NewReplacement but takes the replacement as a
// single string, split into lines that keep their terminators.
func NewReplacementText(startLineNumber, endLineNumber int, text string) *Patch {
	return NewReplacement(startLineNumber, endLineNumber, SplitLines(text))
}

// IsReplacement reports whether the patch suggests new content, as opposed
// to merely flagging the range.
func (p *Patch) IsReplacement() bool {
	return p.NewLines != nil
}

// ApplyTo splices the patch's new lines over its range in lines, shifting
// the remainder of the slice as needed. It fails with ErrNoSuggestion on a
// flagging patch and with ErrRangeOutOfBounds when the range does not fit
// in lines; in both cases lines is left untouched.
func (p *Patch) ApplyTo(lines *[]string) error {
	if p.NewLines == nil {
		return errors.WithStack(ErrNoSuggestion)
	}
	if p.StartLineNumber < 0 || p.EndLineNumber < p.StartLineNumber || p.EndLineNumber > len(*lines) {
		return errors.Errorf("%w: [%d,%d) against %d lines",
			ErrRangeOutOfBounds, p.StartLineNumber, p.EndLineNumber, len(*lines))
	}
	replaced := make([]string, 0, len(*lines)+len(p.NewLines))
	replaced = append(replaced, (*lines)[:p.StartLineNumber]...)
	replaced = append(replaced, p.NewLines...)
	replaced = append(replaced, (*lines)[p.EndLineNumber:]...)
	*lines = replaced
	return nil
}

// RenderRange renders the patch's location as "path:start" for one-line
// patches or "path:start-end" (inclusive end) for larger ranges.
func (p *Patch) RenderRange() string {
	path := p.Path
	if path == "" {
		path = "<unknown>"
	}
	if p.StartLineNumber == p.EndLineNumber-1 {
		return fmt.Sprintf("%s:%d", path, p.StartLineNumber)
	}
	return fmt.Sprintf("%s:%d-%d", path, p.StartLineNumber, p.EndLineNumber-1)
}

// StartPosition returns the address of the first line of the range.
func (p *Patch) StartPosition() position.Position {
	return position.New(p.Path, p.StartLineNumber)
}

// SplitLines splits text into lines, each keeping its trailing newline. A
// final unterminated fragment is kept as-is; an empty string yields no lines.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
