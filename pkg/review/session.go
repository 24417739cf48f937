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

// Package review drives the interactive loop that presents each suggested
// patch to a human, who accepts, edits, or rejects it.
package review

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"

	"github.com/codemod-go/codemod/pkg/bookmark"
	"github.com/codemod-go/codemod/pkg/patch"
	"github.com/codemod-go/codemod/pkg/query"
)

// Session holds the configuration and state of one interactive review run.
// Accept-all is session state, deliberately not package state, so two
// sessions never leak decisions into each other.
type Session struct {
	Editor    string // editor command; empty means $EDITOR, then vim
	DefaultNo bool   // default the accept prompt to "no"
	AcceptAll bool   // apply every remaining replacement without asking
	CountOnly bool   // just count matches instead of reviewing them

	Input     io.Reader // defaults to os.Stdin
	Output    io.Writer // defaults to os.Stdout
	Bookmarks *bookmark.Store

	in  *bufio.Reader
	out io.Writer
}

// Run consumes the query's patch stream interactively. It offers to resume
// from a saved bookmark, saves a bookmark before presenting each patch, and
// clears it on clean completion. Returning without error means the stream
// was exhausted or the user quit.
func (s *Session) Run(ctx context.Context, q *query.Query) error {
	if s.Input == nil {
		s.Input = os.Stdin
	}
	if s.Output == nil {
		s.Output = os.Stdout
	}
	s.in = bufio.NewReader(s.Input)
	s.out = s.Output

	if s.Bookmarks != nil {
		pos, ok, err := s.Bookmarks.Load()
		if err != nil {
			return err
		}
		if ok {
			pterm.Info.Printfln("Resume where you left off, at %s (y/n)?", pos)
			answer, err := s.prompt("yn", 'y')
			if err != nil {
				return err
			}
			if answer == 'y' {
				q.SetStart(pos)
			}
		}
	}

	if s.CountOnly {
		return s.count(ctx, q)
	}

	pterm.Info.Println("Searching for first instance...")
	for p, err := range q.GeneratePatches(ctx) {
		if err != nil {
			return err
		}
		if s.Bookmarks != nil {
			if err := s.Bookmarks.Save(p.StartPosition()); err != nil {
				return err
			}
		}
		quit, err := s.askAboutPatch(p)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		pterm.Info.Println("Searching...")
	}

	if s.Bookmarks != nil {
		if err := s.Bookmarks.Clear(); err != nil {
			return err
		}
	}
	if s.AcceptAll {
		pterm.Warning.Println("You accepted changes without reviewing each one." +
			" Make sure you and other people review the result.")
	}
	pterm.Success.Println("Done.")
	return nil
}

func (s *Session) count(ctx context.Context, q *query.Query) error {
	count := 0
	for _, err := range q.GeneratePatches(ctx) {
		if err != nil {
			return err
		}
		count++
	}
	pterm.Info.Printfln("%d matches", count)
	return nil
}

// askAboutPatch shows one patch and acts on the user's decision. It reports
// whether the user asked to quit the session.
func (s *Session) askAboutPatch(p *patch.Patch) (bool, error) {
	lines, err := query.ReadLines(p.Path)
	if err != nil {
		// The file disappeared between the yield and the prompt; there is
		// nothing to show or apply.
		return false, nil
	}

	s.clearScreen()
	s.render(p, lines)

	var answer byte
	switch {
	case !p.IsReplacement():
		answer, err = s.promptFlagged()
	case s.AcceptAll:
		answer = 'y'
	default:
		answer, err = s.promptReplacement()
	}
	if err != nil {
		return false, err
	}

	if answer == 'A' {
		s.AcceptAll = true
		answer = 'y'
	}
	if answer == 'y' || answer == 'E' {
		if err := p.ApplyTo(&lines); err != nil {
			return false, err
		}
		if err := saveLines(p.Path, lines); err != nil {
			return false, err
		}
	}
	if answer == 'e' || answer == 'E' {
		if err := s.runEditor(p.StartPosition()); err != nil {
			return false, err
		}
	}
	return answer == 'q', nil
}

func (s *Session) promptReplacement() (byte, error) {
	defaultAnswer := byte('y')
	legend := "y = yes [default], n = no"
	if s.DefaultNo {
		defaultAnswer = 'n'
		legend = "y = yes, n = no [default]"
	}
	pterm.FgWhite.Printfln("Accept change (%s, e = edit, A = yes to all, E = yes+edit, q = quit)?", legend)
	return s.prompt("yneEAq", defaultAnswer)
}

func (s *Session) promptFlagged() (byte, error) {
	pterm.FgWhite.Println("(e = edit [default], n = skip line, q = quit)?")
	return s.prompt("enq", 'e')
}

// prompt reads lines until one is a single character from letters, or
// empty, which selects the default.
func (s *Session) prompt(letters string, defaultAnswer byte) (byte, error) {
	for {
		line, err := s.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return defaultAnswer, nil
			}
			return 0, errors.Errorf("reading answer: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultAnswer, nil
		}
		if len(line) == 1 && strings.ContainsRune(letters, rune(line[0])) {
			return line[0], nil
		}
		pterm.FgWhite.Println("Come again?")
		if err == io.EOF {
			return defaultAnswer, nil
		}
	}
}
