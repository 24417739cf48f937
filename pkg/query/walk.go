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

package query

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/codemod-go/codemod/pkg/patch"
)

// walkDirectory lists every file under root in lexicographic path order.
// Unreadable subtrees are skipped silently; the returned list is the fixed
// traversal plan for one generation run.
func walkDirectory(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A directory we can't list, or a vanished entry. Skip it.
			return nil
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadLines loads a file as a list of lines, each keeping its trailing
// newline. The final line may be an unterminated fragment. It is the
// default FileReader of a query.
func ReadLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return patch.SplitLines(string(content)), nil
}
