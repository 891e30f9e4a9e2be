package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format names a configuration source syntax.
type Format string

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto Format = ""
	// FormatJSON is strict JSON.
	FormatJSON Format = "json"
	// FormatHJSON is relaxed JSON with comments, unquoted keys and trailing commas.
	FormatHJSON Format = "hjson"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatHCL   Format = "hcl"
)

var extensions = map[string]Format{
	".json":  FormatJSON,
	".hjson": FormatHJSON,
	".yaml":  FormatYAML,
	".yml":   FormatYAML,
	".toml":  FormatTOML,
	".hcl":   FormatHCL,
}

// ParseFormat validates a user supplied format name. "auto" and the empty
// string both mean FormatAuto.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "auto", FormatAuto:
		return FormatAuto, nil
	case FormatJSON, FormatHJSON, FormatYAML, FormatTOML, FormatHCL:
		return f, nil
	default:
		return FormatAuto, fmt.Errorf("unsupported config format %q", name)
	}
}

// FormatFromPath detects the format of path from its extension.
func FormatFromPath(path string) (Format, error) {
	if f, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f, nil
	}
	return FormatAuto, fmt.Errorf("cannot detect config format of %s: unknown extension %q", path, filepath.Ext(path))
}
