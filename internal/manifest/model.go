package manifest

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of a manifest file.
type fileRoot struct {
	Schemas []*schemaBlock `hcl:"schema,block"`
}

type schemaBlock struct {
	Name      string        `hcl:"name,label"`
	Resolver  *string       `hcl:"resolver,optional"`
	Validator *string       `hcl:"validator,optional"`
	Open      *bool         `hcl:"open,optional"`
	Fields    []*fieldBlock `hcl:"field,block"`
	Aliases   []*aliasBlock `hcl:"alias,block"`
	Subs      []*subBlock   `hcl:"sub,block"`

	// file is the manifest the block came from, for messages.
	file string
	// order lists the child block types as they appear in the source.
	order []string
}

type fieldBlock struct {
	Name     string         `hcl:"name,label"`
	Type     hcl.Expression `hcl:"type,optional"`
	Default  hcl.Expression `hcl:"default,optional"`
	Required *bool          `hcl:"required,optional"`
	Doc      *string        `hcl:"doc,optional"`
}

type aliasBlock struct {
	Name       string  `hcl:"name,label"`
	Target     string  `hcl:"target"`
	Deprecated *bool   `hcl:"deprecated,optional"`
	Doc        *string `hcl:"doc,optional"`
}

type subBlock struct {
	Name   string  `hcl:"name,label"`
	Schema string  `hcl:"schema"`
	Doc    *string `hcl:"doc,optional"`
}
