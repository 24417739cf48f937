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

package config

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(&YAMLParser{})
}

// YAMLParser implements the Parser interface for YAML files.
type YAMLParser struct{}

// CanParse checks if this parser can handle the given file.
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// Parse parses the config from YAML.
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	type yamlConfig struct {
		RootDirectory        string   `yaml:"root_directory,omitempty"`
		Extensions           []string `yaml:"extensions,omitempty"`
		ExcludePaths         []string `yaml:"exclude_paths,omitempty"`
		IncludeExtensionless bool     `yaml:"include_extensionless,omitempty"`
		Editor               string   `yaml:"editor,omitempty"`
		DefaultNo            bool     `yaml:"default_no,omitempty"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	return &Config{
		RootDirectory:        yamlCfg.RootDirectory,
		Extensions:           yamlCfg.Extensions,
		ExcludePaths:         yamlCfg.ExcludePaths,
		IncludeExtensionless: yamlCfg.IncludeExtensionless,
		Editor:               yamlCfg.Editor,
		DefaultNo:            yamlCfg.DefaultNo,
	}, nil
}
