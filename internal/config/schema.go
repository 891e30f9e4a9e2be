package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Kind distinguishes the declarations a Schema can hold.
type Kind int

const (
	// KindField is a plain typed value with an optional default.
	KindField Kind = iota + 1
	// KindAlias forwards reads and writes to another declaration.
	KindAlias
	// KindSub embeds an instance of another Schema.
	KindSub
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindAlias:
		return "alias"
	case KindSub:
		return "sub-config"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decl is one declaration of a Schema. Which members are meaningful depends
// on Kind.
type Decl struct {
	Kind Kind
	Name string
	Doc  string

	// Fields.
	Type       cty.Type
	Default    cty.Value
	HasDefault bool
	Required   bool

	// Aliases.
	Target     string
	Deprecated bool

	// Sub-configs.
	Schema *Schema
}

// Schema is an immutable, ordered set of declarations.
type Schema struct {
	name     string
	decls    []Decl
	index    map[string]int // decl name -> position in decls
	slots    map[string]int // decl or alias name -> storage slot
	slotDecl []int          // storage slot -> position in decls
	open     bool
	resolve  ResolveFunc
	validate ValidateFunc
}

// Name returns the schema name given to NewBuilder.
func (s *Schema) Name() string { return s.name }

// IsOpen reports whether instances accept undeclared fields.
func (s *Schema) IsOpen() bool { return s.open }

// Decls returns a copy of the declarations in declaration order.
func (s *Schema) Decls() []Decl {
	out := make([]Decl, len(s.decls))
	copy(out, s.decls)
	return out
}

// Fields returns the names of fields and sub-configs in declaration order.
// Aliases are not included.
func (s *Schema) Fields() []string {
	names := make([]string, 0, len(s.slotDecl))
	for _, di := range s.slotDecl {
		names = append(names, s.decls[di].Name)
	}
	return names
}

// Lookup returns the declaration called name.
func (s *Schema) Lookup(name string) (Decl, bool) {
	i, ok := s.index[name]
	if !ok {
		return Decl{}, false
	}
	return s.decls[i], true
}

// Canonical follows alias chains and returns the name of the field or
// sub-config that name ultimately refers to.
func (s *Schema) Canonical(name string) (string, bool) {
	slot, ok := s.slots[name]
	if !ok {
		return "", false
	}
	return s.decls[s.slotDecl[slot]].Name, true
}

// IsDeprecated reports whether name is an alias marked deprecated.
func (s *Schema) IsDeprecated(name string) bool {
	d, ok := s.Lookup(name)
	return ok && d.Kind == KindAlias && d.Deprecated
}

func (s *Schema) declForSlot(slot int) *Decl {
	return &s.decls[s.slotDecl[slot]]
}

// Option adjusts a declaration added through a Builder.
type Option func(*declOptions)

type declOptions struct {
	def        any
	hasDef     bool
	required   bool
	deprecated bool
	doc        string
}

// Default sets the value a field holds when it is not supplied.
func Default(v any) Option {
	return func(o *declOptions) {
		o.def = v
		o.hasDef = true
	}
}

// Required marks a field that must be set once the config is resolved.
func Required() Option {
	return func(o *declOptions) { o.required = true }
}

// Deprecated marks an alias as a legacy name.
func Deprecated() Option {
	return func(o *declOptions) { o.deprecated = true }
}

// Doc attaches a description to a declaration.
func Doc(text string) Option {
	return func(o *declOptions) { o.doc = text }
}

type pendingDecl struct {
	decl Decl
	opts declOptions
}

// Builder accumulates declarations for a Schema. Errors are reported by Build.
type Builder struct {
	name     string
	pending  []pendingDecl
	open     bool
	resolve  ResolveFunc
	validate ValidateFunc
}

// NewBuilder starts a schema called name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

func (b *Builder) add(d Decl, opts []Option) *Builder {
	var o declOptions
	for _, opt := range opts {
		opt(&o)
	}
	d.Doc = o.doc
	b.pending = append(b.pending, pendingDecl{decl: d, opts: o})
	return b
}

// Field declares a typed field. Use cty.DynamicPseudoType to accept any value.
func (b *Builder) Field(name string, ty cty.Type, opts ...Option) *Builder {
	return b.add(Decl{Kind: KindField, Name: name, Type: ty}, opts)
}

// Alias declares name as a redirect to target.
func (b *Builder) Alias(name, target string, opts ...Option) *Builder {
	return b.add(Decl{Kind: KindAlias, Name: name, Target: target}, opts)
}

// Sub declares a nested sub-config of schema s.
func (b *Builder) Sub(name string, s *Schema, opts ...Option) *Builder {
	return b.add(Decl{Kind: KindSub, Name: name, Schema: s}, opts)
}

// Open lets instances carry fields the schema does not declare.
func (b *Builder) Open() *Builder {
	b.open = true
	return b
}

// Resolver sets the function that infers omitted fields.
func (b *Builder) Resolver(fn ResolveFunc) *Builder {
	b.resolve = fn
	return b
}

// Validator sets the cross-field consistency check.
func (b *Builder) Validator(fn ValidateFunc) *Builder {
	b.validate = fn
	return b
}

// MustBuild is like Build but panics on error. It is meant for package-level
// schema variables.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Build validates the declarations and returns the finished Schema. All
// failures wrap ErrDefinition.
func (b *Builder) Build() (*Schema, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, fmt.Errorf("%w: schema name must not be empty", ErrDefinition)
	}

	s := &Schema{
		name:     b.name,
		decls:    make([]Decl, 0, len(b.pending)),
		index:    make(map[string]int, len(b.pending)),
		slots:    make(map[string]int, len(b.pending)),
		open:     b.open,
		resolve:  b.resolve,
		validate: b.validate,
	}

	var errs []error
	for _, p := range b.pending {
		d, err := b.finishDecl(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := s.index[d.Name]; dup {
			errs = append(errs, definitionErr(b.name, "duplicate declaration %q", d.Name))
			continue
		}
		s.index[d.Name] = len(s.decls)
		if d.Kind != KindAlias {
			s.slots[d.Name] = len(s.slotDecl)
			s.slotDecl = append(s.slotDecl, len(s.decls))
		}
		s.decls = append(s.decls, d)
	}

	for _, d := range s.decls {
		if d.Kind != KindAlias {
			continue
		}
		slot, err := s.followAlias(d.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.slots[d.Name] = slot
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

func (b *Builder) finishDecl(p pendingDecl) (Decl, error) {
	d, o := p.decl, p.opts
	if strings.TrimSpace(d.Name) == "" {
		return d, definitionErr(b.name, "%s name must not be empty", d.Kind)
	}

	switch d.Kind {
	case KindField:
		if d.Type == cty.NilType {
			return d, definitionErr(b.name, "field %q has no type", d.Name)
		}
		if o.deprecated {
			return d, definitionErr(b.name, "field %q: only aliases can be deprecated", d.Name)
		}
		if o.required && o.hasDef {
			return d, definitionErr(b.name, "required field %q cannot have a default", d.Name)
		}
		d.Required = o.required
		d.Default = cty.NullVal(d.Type)
		if o.hasDef {
			raw, err := toValue(o.def)
			if err == nil {
				d.Default, err = convertTo(raw, d.Type)
			}
			if err != nil {
				return d, definitionErr(b.name, "field %q: invalid default: %v", d.Name, err)
			}
			d.HasDefault = true
		}
	case KindAlias:
		if o.required || o.hasDef {
			return d, definitionErr(b.name, "alias %q cannot be required or have a default", d.Name)
		}
		d.Deprecated = o.deprecated
	case KindSub:
		if d.Schema == nil {
			return d, definitionErr(b.name, "sub-config %q has no schema", d.Name)
		}
		if o.required || o.hasDef || o.deprecated {
			return d, definitionErr(b.name, "sub-config %q accepts no field options", d.Name)
		}
	}
	return d, nil
}

// followAlias walks the alias chain starting at name and returns the storage
// slot it ends on.
func (s *Schema) followAlias(name string) (int, error) {
	seen := map[string]bool{}
	cur := name
	for {
		if seen[cur] {
			return 0, definitionErr(s.name, "alias %q is part of a cycle", name)
		}
		seen[cur] = true

		i, ok := s.index[cur]
		if !ok {
			return 0, definitionErr(s.name, "alias %q targets undeclared %q", name, cur)
		}
		d := s.decls[i]
		if d.Kind != KindAlias {
			return s.slots[cur], nil
		}
		cur = d.Target
	}
}
