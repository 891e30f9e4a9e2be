package config

import (
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Config is a populated instance of a Schema.
type Config struct {
	schema *Schema
	slots  []entry
	extra  []extension
	// extraIndex maps a registered name to its position in extra.
	extraIndex map[string]int
	opts       newOptions
}

// entry holds either a scalar value or an owned sub-config.
type entry struct {
	val cty.Value
	sub *Config
}

func (e *entry) get() any {
	if e.sub != nil {
		return e.sub
	}
	return native(e.val)
}

type extension struct {
	name string
	entry
}

// NewOption adjusts how New treats its input.
type NewOption func(*newOptions)

type newOptions struct {
	allowUnknown bool
}

// AllowUnknown makes New register undeclared keys as extension fields
// instead of failing with ErrUnknownField.
func AllowUnknown() NewOption {
	return func(o *newOptions) { o.allowUnknown = true }
}

// New builds an instance of s from values. Declared fields that are absent
// take their defaults; sub-configs absent from values are built from their
// own defaults.
func New(s *Schema, values map[string]any, opts ...NewOption) (*Config, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrDefinition)
	}
	var o newOptions
	for _, opt := range opts {
		opt(&o)
	}
	c := newDefault(s, o)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	assigned := make(map[int]string, len(keys))
	for _, key := range keys {
		v := values[key]
		slot, ok := s.slots[key]
		if !ok {
			if !s.open && !o.allowUnknown {
				return nil, &FieldError{Schema: s.name, Field: key, Value: v, Msg: "is not declared", Err: ErrUnknownField}
			}
			if err := c.Register(key, v); err != nil {
				return nil, err
			}
			continue
		}

		e, err := c.prepare(slot, key, v)
		if err != nil {
			return nil, err
		}
		if prev, dup := assigned[slot]; dup {
			if !sameEntry(c.slots[slot], e) {
				return nil, Invalidf(s.name, key, v, "conflicts with %q: both name the same field with different values", prev)
			}
			continue
		}
		c.slots[slot] = e
		assigned[slot] = key
	}
	return c, nil
}

func newDefault(s *Schema, o newOptions) *Config {
	c := &Config{
		schema: s,
		slots:  make([]entry, len(s.slotDecl)),
		opts:   o,
	}
	for i := range c.slots {
		d := s.declForSlot(i)
		if d.Kind == KindSub {
			c.slots[i].sub = newDefault(d.Schema, o)
			continue
		}
		c.slots[i].val = d.Default
	}
	return c
}

// prepare converts v into the storage form of slot. key is the name the
// caller used, which may be an alias.
func (c *Config) prepare(slot int, key string, v any) (entry, error) {
	d := c.schema.declForSlot(slot)
	if d.Kind == KindSub {
		sub, err := c.subFrom(d.Schema, key, v)
		if err != nil {
			return entry{}, err
		}
		return entry{sub: sub}, nil
	}

	raw, err := toValue(v)
	if err == nil {
		raw, err = convertTo(raw, d.Type)
	}
	if err != nil {
		return entry{}, &FieldError{Schema: c.schema.name, Field: key, Value: v, Msg: err.Error(), Err: ErrInvalid}
	}
	return entry{val: raw}, nil
}

func (c *Config) subFrom(s *Schema, key string, v any) (*Config, error) {
	var opts []NewOption
	if c.opts.allowUnknown {
		opts = append(opts, AllowUnknown())
	}

	switch x := v.(type) {
	case nil:
		return newDefault(s, c.opts), nil
	case *Config:
		if x.schema != s {
			return nil, Invalidf(c.schema.name, key, x.schema.name, "expects a %s sub-config, got %s", s.name, x.schema.name)
		}
		return x.Clone(), nil
	case map[string]any:
		return nestedNew(s, key, x, opts)
	case cty.Value:
		if x.IsNull() {
			return newDefault(s, c.opts), nil
		}
		if !x.Type().IsObjectType() && !x.Type().IsMapType() {
			return nil, Invalidf(c.schema.name, key, native(x), "expects an object for sub-config %s, got %s", s.name, x.Type().FriendlyName())
		}
		m := make(map[string]any, x.LengthInt())
		for k, ev := range x.AsValueMap() {
			m[k] = ev
		}
		return nestedNew(s, key, m, opts)
	}
	return nil, Invalidf(c.schema.name, key, v, "expects an object for sub-config %s, got %T", s.name, v)
}

func nestedNew(s *Schema, key string, m map[string]any, opts []NewOption) (*Config, error) {
	sub, err := New(s, m, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return sub, nil
}

func sameEntry(a, b entry) bool {
	if a.sub != nil || b.sub != nil {
		if a.sub == nil || b.sub == nil {
			return false
		}
		return reflect.DeepEqual(a.sub.ToDict(), b.sub.ToDict())
	}
	return a.val.RawEquals(b.val)
}

// Schema returns the schema c was built from.
func (c *Config) Schema() *Schema { return c.schema }

func (c *Config) find(name string) (*entry, error) {
	if slot, ok := c.schema.slots[name]; ok {
		return &c.slots[slot], nil
	}
	if i, ok := c.extraIndex[name]; ok {
		return &c.extra[i].entry, nil
	}
	return nil, &FieldError{Schema: c.schema.name, Field: name, Msg: "is not declared", Err: ErrUnknownField}
}

// Has reports whether name is declared or registered on c.
func (c *Config) Has(name string) bool {
	_, err := c.find(name)
	return err == nil
}

// Get returns the value of name as plain Go data, or the *Config of a
// sub-config. Aliases read through to their target.
func (c *Config) Get(name string) (any, error) {
	e, err := c.find(name)
	if err != nil {
		return nil, err
	}
	return e.get(), nil
}

// Value returns the cty.Value stored for name.
func (c *Config) Value(name string) (cty.Value, error) {
	e, err := c.find(name)
	if err != nil {
		return cty.NilVal, err
	}
	if e.sub != nil {
		return cty.NilVal, Invalidf(c.schema.name, name, nil, "is a sub-config, not a value")
	}
	return e.val, nil
}

// Sub returns the sub-config stored for name.
func (c *Config) Sub(name string) (*Config, error) {
	e, err := c.find(name)
	if err != nil {
		return nil, err
	}
	if e.sub == nil {
		return nil, Invalidf(c.schema.name, name, native(e.val), "is not a sub-config")
	}
	return e.sub, nil
}

// IsSet reports whether name holds a non-null value. Sub-configs are always set.
func (c *Config) IsSet(name string) bool {
	e, err := c.find(name)
	if err != nil {
		return false
	}
	return e.sub != nil || !e.val.IsNull()
}

func (c *Config) decode(name string, target any) error {
	v, err := c.Value(name)
	if err != nil {
		return err
	}
	if v.IsNull() {
		return &FieldError{Schema: c.schema.name, Field: name, Msg: "is not set", Err: ErrRequiredField}
	}
	if err := gocty.FromCtyValue(v, target); err != nil {
		return &FieldError{Schema: c.schema.name, Field: name, Value: native(v), Msg: err.Error(), Err: ErrInvalid}
	}
	return nil
}

// Int returns name as a whole number.
func (c *Config) Int(name string) (int, error) {
	var i int
	err := c.decode(name, &i)
	return i, err
}

// Float returns name as a float64.
func (c *Config) Float(name string) (float64, error) {
	var f float64
	err := c.decode(name, &f)
	return f, err
}

// Bool returns name as a bool.
func (c *Config) Bool(name string) (bool, error) {
	var b bool
	err := c.decode(name, &b)
	return b, err
}

// Str returns name as a string. It is not called String because Config
// implements fmt.Stringer.
func (c *Config) Str(name string) (string, error) {
	var s string
	err := c.decode(name, &s)
	return s, err
}

// Set assigns v to name, converting it to the declared type. Writing an
// alias writes its target.
func (c *Config) Set(name string, v any) error {
	if slot, ok := c.schema.slots[name]; ok {
		e, err := c.prepare(slot, name, v)
		if err != nil {
			return err
		}
		c.slots[slot] = e
		return nil
	}
	if i, ok := c.extraIndex[name]; ok {
		e, err := c.extensionEntry(name, v)
		if err != nil {
			return err
		}
		c.extra[i].entry = e
		return nil
	}
	return &FieldError{Schema: c.schema.name, Field: name, Value: v, Msg: "is not declared", Err: ErrUnknownField}
}

// Register adds a field that the schema does not declare. It fails with
// ErrDuplicateField if name already exists, leaving c unchanged.
func (c *Config) Register(name string, v any) error {
	if name == "" {
		return Invalidf(c.schema.name, name, v, "field name must not be empty")
	}
	if _, ok := c.schema.index[name]; ok {
		return &FieldError{Schema: c.schema.name, Field: name, Value: v, Msg: "is already declared by the schema", Err: ErrDuplicateField}
	}
	if _, ok := c.extraIndex[name]; ok {
		return &FieldError{Schema: c.schema.name, Field: name, Value: v, Msg: "is already registered", Err: ErrDuplicateField}
	}
	e, err := c.extensionEntry(name, v)
	if err != nil {
		return err
	}
	if c.extraIndex == nil {
		c.extraIndex = make(map[string]int)
	}
	c.extraIndex[name] = len(c.extra)
	c.extra = append(c.extra, extension{name: name, entry: e})
	return nil
}

func (c *Config) extensionEntry(name string, v any) (entry, error) {
	if sub, ok := v.(*Config); ok {
		return entry{sub: sub.Clone()}, nil
	}
	val, err := toValue(v)
	if err != nil {
		return entry{}, &FieldError{Schema: c.schema.name, Field: name, Value: v, Msg: err.Error(), Err: ErrInvalid}
	}
	return entry{val: val}, nil
}

// entries yields every field in declaration order followed by registered
// fields in registration order.
func (c *Config) entries() iter.Seq2[string, *entry] {
	return func(yield func(string, *entry) bool) {
		for i, di := range c.schema.slotDecl {
			if !yield(c.schema.decls[di].Name, &c.slots[i]) {
				return
			}
		}
		for i := range c.extra {
			if !yield(c.extra[i].name, &c.extra[i].entry) {
				return
			}
		}
	}
}

// Items yields (name, value) pairs like Get, in declaration order followed by
// registered fields. Aliases are not yielded. Each call starts over.
func (c *Config) Items() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for name, e := range c.entries() {
			if !yield(name, e.get()) {
				return
			}
		}
	}
}

// Keys yields field names in the order of Items.
func (c *Config) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for name := range c.entries() {
			if !yield(name) {
				return
			}
		}
	}
}

// Values yields field values in the order of Items.
func (c *Config) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, e := range c.entries() {
			if !yield(e.get()) {
				return
			}
		}
	}
}

// Len returns the number of fields Items yields.
func (c *Config) Len() int {
	return len(c.slots) + len(c.extra)
}

func (c *Config) subConfigs() iter.Seq2[string, *Config] {
	return func(yield func(string, *Config) bool) {
		for name, e := range c.entries() {
			if e.sub != nil && !yield(name, e.sub) {
				return
			}
		}
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := &Config{
		schema: c.schema,
		slots:  make([]entry, len(c.slots)),
		opts:   c.opts,
	}
	for i, e := range c.slots {
		out.slots[i] = cloneEntry(e)
	}
	if len(c.extra) > 0 {
		out.extra = make([]extension, len(c.extra))
		out.extraIndex = make(map[string]int, len(c.extra))
		for i, x := range c.extra {
			out.extra[i] = extension{name: x.name, entry: cloneEntry(x.entry)}
			out.extraIndex[x.name] = i
		}
	}
	return out
}

func cloneEntry(e entry) entry {
	if e.sub != nil {
		return entry{sub: e.sub.Clone()}
	}
	return e
}

// Equal reports whether c and other hold the same data.
func (c *Config) Equal(other *Config) bool {
	if other == nil {
		return false
	}
	return c.schema == other.schema && reflect.DeepEqual(c.ToDict(), other.ToDict())
}
