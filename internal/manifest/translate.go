package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/config"
	"github.com/vk/trainconf/internal/ctxlog"
	"github.com/vk/trainconf/internal/registry"
)

// translateSchema builds a config.Schema from a decoded schema block. Every
// sub-config it references must already be in built or in reg.
func translateSchema(ctx context.Context, s *schemaBlock, reg *registry.Registry, built map[string]*config.Schema) (*config.Schema, error) {
	ctx, logger := ctxlog.With(ctx, "schema", s.Name, "file", s.file)
	logger.Debug("Translating schema block.")

	b := config.NewBuilder(s.Name)
	if deref(s.Open) {
		b.Open()
	}
	if name := deref(s.Resolver); name != "" {
		fn, ok := reg.Resolver(name)
		if !ok {
			return nil, s.errorf("resolver %q is not registered", name)
		}
		b.Resolver(fn)
	}
	if name := deref(s.Validator); name != "" {
		fn, ok := reg.Validator(name)
		if !ok {
			return nil, s.errorf("validator %q is not registered", name)
		}
		b.Validator(fn)
	}

	var fi, ai, si int
	for _, kind := range s.order {
		switch kind {
		case "field":
			f := s.Fields[fi]
			fi++
			opts, ty, err := translateField(ctx, f)
			if err != nil {
				return nil, s.errorf("field %q: %v", f.Name, err)
			}
			b.Field(f.Name, ty, opts...)
		case "alias":
			a := s.Aliases[ai]
			ai++
			var opts []config.Option
			if deref(a.Deprecated) {
				opts = append(opts, config.Deprecated())
			}
			if a.Doc != nil {
				opts = append(opts, config.Doc(*a.Doc))
			}
			b.Alias(a.Name, a.Target, opts...)
		case "sub":
			sb := s.Subs[si]
			si++
			sub, ok := built[sb.Schema]
			if !ok {
				sub, ok = reg.Schema(sb.Schema)
			}
			if !ok {
				return nil, s.errorf("sub-config %q: unknown schema %q", sb.Name, sb.Schema)
			}
			var opts []config.Option
			if sb.Doc != nil {
				opts = append(opts, config.Doc(*sb.Doc))
			}
			b.Sub(sb.Name, sub, opts...)
		}
	}

	schema, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.file, err)
	}
	logger.Debug("Schema built.", "fields", len(schema.Fields()))
	return schema, nil
}

func translateField(ctx context.Context, f *fieldBlock) ([]config.Option, cty.Type, error) {
	ty := cty.DynamicPseudoType
	if isExprDefined(ctx, f.Type, "type") {
		parsed, diags := typeexpr.TypeConstraint(f.Type)
		if diags.HasErrors() {
			return nil, cty.NilType, diags
		}
		ty = parsed
	}

	var opts []config.Option
	if isExprDefined(ctx, f.Default, "default") {
		val, diags := f.Default.Value(nil)
		if diags.HasErrors() {
			return nil, cty.NilType, fmt.Errorf("invalid default value: %w", diags)
		}
		if !val.IsNull() {
			opts = append(opts, config.Default(val))
		}
	}
	if deref(f.Required) {
		opts = append(opts, config.Required())
	}
	if f.Doc != nil {
		opts = append(opts, config.Doc(*f.Doc))
	}
	return opts, ty, nil
}

func (s *schemaBlock) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s: schema %q: %s", config.ErrDefinition, s.file, s.Name, fmt.Sprintf(format, args...))
}
