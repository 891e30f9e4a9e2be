package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	renderIndent = 4
	renderColumn = 50
)

// ToDict converts c, including its sub-configs, into nested plain maps.
func (c *Config) ToDict() map[string]any {
	out := make(map[string]any, c.Len())
	for name, e := range c.entries() {
		if e.sub != nil {
			out[name] = e.sub.ToDict()
			continue
		}
		out[name] = native(e.val)
	}
	return out
}

// MarshalJSON encodes ToDict.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToDict())
}

// Fingerprint returns the hex BLAKE2b-256 digest of the canonical JSON form
// of c. Two configs with equal ToDict output share a fingerprint.
func (c *Config) Fingerprint() (string, error) {
	// encoding/json sorts map keys, which makes the encoding canonical.
	data, err := json.Marshal(c.ToDict())
	if err != nil {
		return "", fmt.Errorf("failed to encode %s for fingerprinting: %w", c.schema.name, err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// String renders c at depth zero.
func (c *Config) String() string {
	return c.Render(0)
}

// Render returns an indented, dot-aligned tree of c for logs:
//
//	BatchConfig = {
//	    train_batch_size ................................. 64
//	}
//
// The output is deterministic but not meant to be parsed back.
func (c *Config) Render(depth int) string {
	if depth < 0 {
		depth = 0
	}
	var sb strings.Builder
	c.render(&sb, c.schema.name, depth)
	return strings.TrimSuffix(sb.String(), "\n")
}

func (c *Config) render(sb *strings.Builder, title string, depth int) {
	indent := strings.Repeat(" ", renderIndent*depth)
	inner := strings.Repeat(" ", renderIndent*(depth+1))
	fmt.Fprintf(sb, "%s%s = {\n", indent, title)
	for name, e := range c.entries() {
		if e.sub != nil {
			e.sub.render(sb, e.sub.schema.name, depth+1)
			continue
		}
		dots := max(renderColumn-len(name)-depth*renderIndent, 1)
		fmt.Fprintf(sb, "%s%s %s %s\n", inner, name, strings.Repeat(".", dots), formatValue(e.val))
	}
	fmt.Fprintf(sb, "%s}\n", indent)
}
