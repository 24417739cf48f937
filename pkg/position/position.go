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

// Package position addresses a single line within a single file.
package position

import (
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrFormat is returned when a position string is not of the form "path:line".
var ErrFormat = errors.New("inappropriately formatted position string")

// Position identifies a specific line within a specific file. Line numbers
// are 0-based. Ordering is only meaningful between positions in the same
// file; cross-file ordering is defined by query traversal order.
type Position struct {
	Path       string
	LineNumber int
}

// New builds a position from a path and a 0-based line number.
func New(path string, lineNumber int) Position {
	return Position{Path: path, LineNumber: lineNumber}
}

// Parse builds a position from its canonical "path:line" form. The string is
// split on the last colon, so paths containing colons still round-trip.
func Parse(s string) (Position, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return Position{}, errors.Errorf("%w: %q", ErrFormat, s)
	}
	lineNumber, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return Position{}, errors.Errorf("%w: %q", ErrFormat, s)
	}
	return Position{Path: s[:idx], LineNumber: lineNumber}, nil
}

// String renders the canonical "path:line" form.
func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Path, p.LineNumber)
}
