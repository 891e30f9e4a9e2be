package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/config"
	"github.com/vk/trainconf/internal/ctxlog"
)

// FromMapping builds an instance of s from m. It is config.New plus a
// warning for every deprecated alias the mapping still uses.
func FromMapping(ctx context.Context, s *config.Schema, m map[string]any, opts ...config.NewOption) (*config.Config, error) {
	if s != nil {
		warnDeprecated(ctxlog.FromContext(ctx), s, m, "")
	}
	return config.New(s, m, opts...)
}

// FromFile reads path, parses it as format and builds an instance of s.
func FromFile(ctx context.Context, s *config.Schema, path string, format Format, opts ...config.NewOption) (*config.Config, error) {
	logger := ctxlog.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	m, err := Parse(format, path, data)
	if err != nil {
		return nil, err
	}
	logger.Debug("Parsed config file.", "path", path, "format", string(format), "keys", len(m))

	c, err := FromMapping(ctx, s, m, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return c, nil
}

func warnDeprecated(logger *slog.Logger, s *config.Schema, m map[string]any, prefix string) {
	for key, v := range m {
		canonical, ok := s.Canonical(key)
		if !ok {
			continue
		}
		if s.IsDeprecated(key) {
			logger.Warn("Config key is deprecated.", "key", prefix+key, "use", prefix+canonical, "schema", s.Name())
		}
		d, _ := s.Lookup(canonical)
		if d.Kind != config.KindSub {
			continue
		}
		if nested, ok := asMapping(v); ok {
			warnDeprecated(logger, d.Schema, nested, prefix+key+".")
		}
	}
}

// asMapping views the nested values a parser may produce as a mapping.
func asMapping(v any) (map[string]any, bool) {
	switch v := v.(type) {
	case map[string]any:
		return v, true
	case cty.Value:
		if v.IsNull() || !v.IsKnown() || !(v.Type().IsObjectType() || v.Type().IsMapType()) {
			return nil, false
		}
		m := make(map[string]any, v.LengthInt())
		for k, ev := range v.AsValueMap() {
			m[k] = ev
		}
		return m, true
	}
	return nil, false
}
