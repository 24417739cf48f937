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

package review

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/codemod-go/codemod/pkg/patch"
)

const defaultTerminalRows = 25

var (
	removedLine = color.New(color.FgRed)
	addedLine   = color.New(color.FgGreen)
	flaggedLine = color.New(color.FgYellow)
	headerLine  = color.New(color.FgWhite, color.Bold)
)

// render prints the patch header and a colored diff with enough surrounding
// context to fill most of the terminal.
func (s *Session) render(p *patch.Patch, fileLines []string) {
	headerLine.Fprintf(s.out, "%s\n\n", p.RenderRange())
	s.renderDiff(p, fileLines, terminalRows()-20)
}

// renderDiff prints the patch as a unified-style diff: untouched context,
// then the old range as removals (or flagged lines for a flagging patch),
// then any suggested lines as additions.
func (s *Session) renderDiff(p *patch.Patch, fileLines []string, linesToPrint int) {
	sizeOfOld := p.EndLineNumber - p.StartLineNumber
	sizeOfNew := len(p.NewLines)
	sizeOfContext := max(0, linesToPrint-sizeOfOld-sizeOfNew)
	sizeOfUpContext := sizeOfContext / 2
	sizeOfDownContext := (sizeOfContext + 1) / 2

	for i := p.StartLineNumber - sizeOfUpContext; i < p.StartLineNumber; i++ {
		s.renderContextLine(fileLines, i)
	}
	for i := p.StartLineNumber; i < p.EndLineNumber && i < len(fileLines); i++ {
		if p.IsReplacement() {
			removedLine.Fprintf(s.out, "- %s", ensureNewline(fileLines[i]))
		} else {
			flaggedLine.Fprintf(s.out, "* %s", ensureNewline(fileLines[i]))
		}
	}
	for _, line := range p.NewLines {
		addedLine.Fprintf(s.out, "+ %s", ensureNewline(line))
	}
	for i := p.EndLineNumber; i < p.EndLineNumber+sizeOfDownContext; i++ {
		s.renderContextLine(fileLines, i)
	}
	fmt.Fprintln(s.out)
}

func (s *Session) renderContextLine(fileLines []string, i int) {
	if i < 0 || i >= len(fileLines) {
		return
	}
	fmt.Fprintf(s.out, "  %s", ensureNewline(fileLines[i]))
}

// clearScreen wipes the terminal before each patch, when output really is a
// terminal; otherwise it just separates patches with blank lines.
func (s *Session) clearScreen() {
	if f, ok := s.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(s.out, "\x1b[2J\x1b[H")
		return
	}
	fmt.Fprint(s.out, "\n\n")
}

// terminalRows returns the terminal height, or a conservative default when
// stdout is not a terminal or the size can't be determined.
func terminalRows() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return defaultTerminalRows
	}
	_, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || rows <= 0 {
		return defaultTerminalRows
	}
	return rows
}

// ensureNewline keeps diff output aligned when the final file line has no
// terminator.
func ensureNewline(line string) string {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return line
	}
	return line + "\n"
}
