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
	"os/exec"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/codemod-go/codemod/pkg/position"
)

// runEditor opens the user's editor at the given position. Editors take the
// 1-based line with a +N argument, hence the offset.
func (s *Session) runEditor(pos position.Position) error {
	editor := s.Editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vim"
	}

	cmd := exec.Command(editor, fmt.Sprintf("+%d", pos.LineNumber+1), pos.Path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Errorf("running editor %q: %w", editor, err)
	}
	return nil
}

// saveLines writes lines back to path, preserving the file's mode.
func saveLines(path string, lines []string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), mode); err != nil {
		return errors.Errorf("saving %s: %w", path, err)
	}
	return nil
}
