package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/config"
)

type hooksModule struct{}

func (hooksModule) Register(r *Registry) {
	r.RegisterResolver("noop", func(context.Context, *config.Config, config.Runtime) error { return nil })
	r.RegisterValidator("noop", func(context.Context, *config.Config) error { return nil })
	r.RegisterSchema(config.NewBuilder("Thing").Field("x", cty.Number).MustBuild())
}

func TestNewWith_RegistersModules(t *testing.T) {
	r := NewWith(hooksModule{})

	_, ok := r.Resolver("noop")
	assert.True(t, ok)
	_, ok = r.Validator("noop")
	assert.True(t, ok)
	s, ok := r.Schema("Thing")
	require.True(t, ok)
	assert.Equal(t, "Thing", s.Name())
	assert.Equal(t, []string{"Thing"}, r.SchemaNames())

	_, ok = r.Resolver("missing")
	assert.False(t, ok)
}

func TestRegister_DuplicatePanics(t *testing.T) {
	r := NewWith(hooksModule{})
	assert.Panics(t, func() { hooksModule{}.Register(r) })

	r = New()
	assert.Panics(t, func() { r.RegisterResolver("nil", nil) })
	assert.Panics(t, func() { r.RegisterValidator("nil", nil) })
	assert.Panics(t, func() { r.RegisterSchema(nil) })
}
