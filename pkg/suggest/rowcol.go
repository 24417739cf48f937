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
	"gitlab.com/tozd/go/errors"
)

// ErrOutOfRange is returned when a flat buffer offset does not fall inside
// the concatenated lines. Seeing it means a suggestor produced an
// impossible span; it is fatal to the query run that hits it.
var ErrOutOfRange = errors.New("offset out of range")

// OffsetToRowCol converts a flat character offset in the concatenation of
// lines back into a (row, column) pair. Each line's length includes its own
// terminator, matching how the buffer was joined.
func OffsetToRowCol(lines []string, offset int) (row, col int, err error) {
	if offset < 0 {
		return 0, 0, errors.Errorf("%w: negative offset %d", ErrOutOfRange, offset)
	}
	current := 0
	for lineNumber, line := range lines {
		if current+len(line) > offset {
			return lineNumber, offset - current, nil
		}
		current += len(line)
	}
	return 0, 0, errors.Errorf("%w: offset %d in buffer of length %d", ErrOutOfRange, offset, current)
}
