package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type staticWorld int

func (w staticWorld) WorldSize() int { return int(w) }

func TestWorldSize_Clamps(t *testing.T) {
	assert.Equal(t, 1, WorldSize(nil))
	assert.Equal(t, 1, WorldSize(staticWorld(0)))
	assert.Equal(t, 1, WorldSize(staticWorld(-4)))
	assert.Equal(t, 8, WorldSize(staticWorld(8)))
	assert.Equal(t, 1, WorldSize(SingleProcess))
}

func TestResolve_SelfBeforeChildren(t *testing.T) {
	var order []string
	record := func(name string) ResolveFunc {
		return func(_ context.Context, c *Config, rt Runtime) error {
			order = append(order, name)
			return c.Set("seen", WorldSize(rt))
		}
	}

	left := NewBuilder("Left").Field("seen", cty.Number).Resolver(record("left")).MustBuild()
	right := NewBuilder("Right").Field("seen", cty.Number).Resolver(record("right")).MustBuild()
	root := NewBuilder("Root").
		Field("seen", cty.Number).
		Sub("left", left).
		Sub("right", right).
		Resolver(record("root")).
		MustBuild()

	c, err := New(root, nil)
	require.NoError(t, err)
	require.NoError(t, c.Resolve(context.Background(), staticWorld(4)))

	assert.Equal(t, []string{"root", "left", "right"}, order)
	l, _ := c.Sub("left")
	seen, _ := l.Int("seen")
	assert.Equal(t, 4, seen)
}

func TestResolve_DefaultIsPassThrough(t *testing.T) {
	c, err := New(aliasedSchema(t), map[string]any{"age": 3})
	require.NoError(t, err)
	before := c.ToDict()

	require.NoError(t, c.Resolve(context.Background(), nil))
	assert.Equal(t, before, c.ToDict())
}

func TestResolve_RegisteredSubConfigsResolve(t *testing.T) {
	called := false
	inner := NewBuilder("Inner").Resolver(func(context.Context, *Config, Runtime) error {
		called = true
		return nil
	}).MustBuild()

	sub, err := New(inner, nil)
	require.NoError(t, err)
	c, err := New(aliasedSchema(t), nil)
	require.NoError(t, err)
	require.NoError(t, c.Register("plugin", sub))

	require.NoError(t, c.Resolve(context.Background(), nil))
	assert.True(t, called)
}

func TestResolve_ErrorCarriesPath(t *testing.T) {
	boom := errors.New("boom")
	inner := NewBuilder("Inner").Resolver(func(context.Context, *Config, Runtime) error {
		return boom
	}).MustBuild()
	root := NewBuilder("Root").Sub("inner", inner).MustBuild()

	c, err := New(root, nil)
	require.NoError(t, err)
	err = c.Resolve(context.Background(), nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "inner: boom")
}

func TestValidate_Required(t *testing.T) {
	c, err := New(myConfigSchema(t), nil)
	require.NoError(t, err)

	err = c.Validate(context.Background(), nil)
	require.ErrorIs(t, err, ErrRequiredField)
	assert.Contains(t, err.Error(), "verbose")
	assert.False(t, c.IsValid(context.Background(), nil))

	require.NoError(t, c.Set("verbose", true))
	assert.NoError(t, c.Validate(context.Background(), nil))
}

func TestValidate_VisitsEverySubConfig(t *testing.T) {
	var visited []string
	check := func(name string) ValidateFunc {
		return func(_ context.Context, c *Config) error {
			visited = append(visited, name)
			return Invalidf(c.Schema().Name(), "value", nil, "%s failed", name)
		}
	}
	a := NewBuilder("A").Validator(check("a")).MustBuild()
	b := NewBuilder("B").Validator(check("b")).MustBuild()
	root := NewBuilder("Root").Sub("a", a).Sub("b", b).MustBuild()

	c, err := New(root, nil)
	require.NoError(t, err)
	err = c.Validate(context.Background(), nil)

	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, []string{"a", "b"}, visited)
	assert.Contains(t, err.Error(), "a: A.value: a failed")
	assert.Contains(t, err.Error(), "b: B.value: b failed")
}

func TestValidate_RequiredShortCircuitsOwnValidator(t *testing.T) {
	called := false
	s := NewBuilder("S").
		Field("must", cty.String, Required()).
		Validator(func(context.Context, *Config) error {
			called = true
			return nil
		}).
		MustBuild()

	c, err := New(s, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Validate(context.Background(), nil), ErrRequiredField)
	assert.False(t, called)
}

func TestFieldError_Message(t *testing.T) {
	err := &FieldError{Schema: "S", Field: "f", Err: ErrInvalid}
	assert.Equal(t, "S.f: invalid config", err.Error())

	err = &FieldError{Field: "f", Msg: "bad", Err: ErrInvalid}
	assert.Equal(t, "f: bad", err.Error())

	perr := &ParseError{Path: "x.json", Format: "json", Err: errors.New("eof")}
	assert.ErrorIs(t, perr, ErrParse)
	assert.Contains(t, perr.Error(), "x.json")
}
