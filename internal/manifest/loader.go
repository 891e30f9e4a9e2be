package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/vk/trainconf/internal/config"
	"github.com/vk/trainconf/internal/ctxlog"
	"github.com/vk/trainconf/internal/dag"
	"github.com/vk/trainconf/internal/fsutil"
	"github.com/vk/trainconf/internal/registry"
)

// Load parses every manifest found under paths (files or directories searched
// recursively for .hcl files) and builds the schemas they declare, in
// dependency order. Hooks and sub-config schemas not declared in a manifest
// are looked up in reg. The result is keyed by schema name.
func Load(ctx context.Context, reg *registry.Registry, paths ...string) (map[string]*config.Schema, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest loader started.", "path_count", len(paths))
	if reg == nil {
		reg = registry.New()
	}

	files, err := findManifests(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	blocks := make(map[string]*schemaBlock)
	var declared []*schemaBlock
	g := dag.New()
	parser := hclparse.NewParser()
	for _, file := range files {
		parsed, err := parseManifest(parser, file)
		if err != nil {
			return nil, err
		}
		for _, s := range parsed {
			if prev, ok := blocks[s.Name]; ok {
				return nil, s.errorf("already declared in %s", prev.file)
			}
			if _, ok := reg.Schema(s.Name); ok {
				return nil, s.errorf("a built-in schema with this name is already registered")
			}
			blocks[s.Name] = s
			declared = append(declared, s)
			g.AddNode(s.Name)
		}
	}

	for _, node := range declared {
		for _, sub := range node.Subs {
			if _, ok := blocks[sub.Schema]; !ok {
				continue
			}
			if err := g.AddEdge(sub.Schema, node.Name); err != nil {
				return nil, fmt.Errorf("%w: %w", config.ErrDefinition, err)
			}
		}
	}
	order, err := g.Sort()
	if err != nil {
		return nil, fmt.Errorf("%w: sub-config schemas must not refer to each other in a loop: %w", config.ErrDefinition, err)
	}

	built := make(map[string]*config.Schema, len(order))
	for _, name := range order {
		schema, err := translateSchema(ctx, blocks[name], reg, built)
		if err != nil {
			return nil, err
		}
		built[name] = schema
	}

	logger.Info("Manifests loaded.", "files", len(files), "schemas", len(built))
	return built, nil
}

// parseManifest decodes the schema blocks of one file and records the
// source order of each block's children, which gohcl does not preserve
// across block types.
func parseManifest(parser *hclparse.Parser, path string) ([]*schemaBlock, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, &config.ParseError{Path: path, Format: "hcl", Err: diags}
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode manifest %s: %w", config.ErrDefinition, path, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("manifest %s is not native HCL syntax", path)
	}
	var i int
	for _, block := range body.Blocks {
		if block.Type != "schema" {
			continue
		}
		s := root.Schemas[i]
		i++
		s.file = path
		for _, child := range block.Body.Blocks {
			s.order = append(s.order, child.Type)
		}
	}
	return root.Schemas, nil
}

// findManifests returns the .hcl files named by paths, walking directories.
// Paths that do not exist are an error.
func findManifests(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("manifest path %s does not exist: %w", path, err)
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFiles(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to walk manifest directory %s: %w", path, err)
		}
		for _, f := range found {
			add(filepath.Clean(f))
		}
	}
	return all, nil
}
