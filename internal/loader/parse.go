package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hjson/hjson-go/v4"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"gopkg.in/yaml.v3"

	"github.com/vk/trainconf/internal/config"
)

// Parse decodes data into a mapping. filename is used in messages only.
// The values are whatever config.New accepts: Go natives for YAML, TOML and
// Hjson, cty values for JSON and HCL.
func Parse(format Format, filename string, data []byte) (map[string]any, error) {
	if format == FormatAuto {
		f, err := FormatFromPath(filename)
		if err != nil {
			return nil, err
		}
		format = f
	}

	var (
		m   map[string]any
		err error
	)
	switch format {
	case FormatJSON:
		m, err = parseJSON(filename, data)
	case FormatHJSON:
		m, err = parseHJSON(data)
	case FormatYAML:
		m, err = parseYAML(data)
	case FormatTOML:
		m, err = parseTOML(data)
	case FormatHCL:
		m, err = parseHCL(filename, data)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return nil, &config.ParseError{Path: filename, Format: string(format), Err: err}
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// parseJSON uses the HCL JSON syntax, which is strict JSON and reports
// duplicate properties both at the top level and inside nested objects.
func parseJSON(filename string, data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseJSON(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return attributeValues(file.Body)
}

func parseHCL(filename string, data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	if body, ok := file.Body.(*hclsyntax.Body); ok {
		for _, attr := range body.Attributes {
			if diags := checkObjectKeys(attr.Expr); diags.HasErrors() {
				return nil, diags
			}
		}
	}
	return attributeValues(file.Body)
}

func attributeValues(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	m := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		m[name] = v
	}
	return m, nil
}

// checkObjectKeys rejects object constructors that repeat a key. Native HCL
// keeps the last value otherwise.
func checkObjectKeys(expr hclsyntax.Expression) hcl.Diagnostics {
	return hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		obj, ok := node.(*hclsyntax.ObjectConsExpr)
		if !ok {
			return nil
		}
		var diags hcl.Diagnostics
		seen := make(map[string]hcl.Range, len(obj.Items))
		for _, item := range obj.Items {
			key, keyDiags := item.KeyExpr.Value(nil)
			if keyDiags.HasErrors() || !key.IsWhollyKnown() || key.IsNull() {
				continue
			}
			key, err := convert.Convert(key, cty.String)
			if err != nil {
				continue
			}
			name := key.AsString()
			r := item.KeyExpr.Range()
			if first, dup := seen[name]; dup {
				diags = diags.Append(&hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate object attribute",
					Detail:   fmt.Sprintf("An attribute named %q was already defined at %s.", name, first),
					Subject:  &r,
				})
				continue
			}
			seen[name] = r
		}
		return diags
	})
}

func parseHJSON(data []byte) (map[string]any, error) {
	opts := hjson.DefaultDecoderOptions()
	opts.UseJSONNumber = true
	opts.DisallowDuplicateKeys = true

	var m map[string]any
	if err := hjson.UnmarshalWithOptions(data, &m, opts); err != nil {
		return nil, err
	}
	return m, nil
}

// parseYAML relies on yaml.v3 rejecting repeated mapping keys.
func parseYAML(data []byte) (map[string]any, error) {
	var m map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return m, nil
}

// parseTOML relies on the TOML grammar forbidding redefined keys and tables.
func parseTOML(data []byte) (map[string]any, error) {
	var m map[string]any
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, err
	}
	return m, nil
}
