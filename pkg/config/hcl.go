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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// HCLParser implements the Parser interface for HCL files.
type HCLParser struct{}

// CanParse checks if this parser can handle the given file.
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// Parse parses the config from HCL.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	type hclConfig struct {
		RootDirectory        string   `hcl:"root_directory,optional"`
		Extensions           []string `hcl:"extensions,optional"`
		ExcludePaths         []string `hcl:"exclude_paths,optional"`
		IncludeExtensionless bool     `hcl:"include_extensionless,optional"`
		Editor               string   `hcl:"editor,optional"`
		DefaultNo            bool     `hcl:"default_no,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &Config{
		RootDirectory:        hclCfg.RootDirectory,
		Extensions:           hclCfg.Extensions,
		ExcludePaths:         hclCfg.ExcludePaths,
		IncludeExtensionless: hclCfg.IncludeExtensionless,
		Editor:               hclCfg.Editor,
		DefaultNo:            hclCfg.DefaultNo,
	}, nil
}
