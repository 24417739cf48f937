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

// Package bookmark persists the position an interrupted review session
// should resume from. The store is a single-line text file holding one
// serialized position, written before each patch is presented and removed
// on clean completion.
package bookmark

import (
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/codemod-go/codemod/pkg/position"
)

// FileName is the bookmark file created in the store's directory.
const FileName = ".codemod.bookmark"

// Store reads and writes the bookmark file in one directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir (typically the working directory).
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, FileName)
}

// Save records pos as the resume point.
func (s *Store) Save(pos position.Position) error {
	if err := os.WriteFile(s.path(), []byte(pos.String()), 0o644); err != nil {
		return errors.Errorf("saving bookmark: %w", err)
	}
	return nil
}

// Load returns the saved position, and whether one exists. A bookmark file
// with malformed content fails with position.ErrFormat wrapped.
func (s *Store) Load() (position.Position, bool, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return position.Position{}, false, nil
		}
		return position.Position{}, false, errors.Errorf("loading bookmark: %w", err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	pos, err := position.Parse(strings.TrimSpace(line))
	if err != nil {
		return position.Position{}, false, err
	}
	return pos, true, nil
}

// Clear removes the bookmark. A missing file is fine.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("clearing bookmark: %w", err)
	}
	return nil
}
