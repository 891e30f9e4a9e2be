package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestBuild_DeclarationOrderAndLookup(t *testing.T) {
	s, err := NewBuilder("AliasedConfig").
		Field("age", cty.Number, Default(1)).
		Alias("age2", "age", Deprecated()).
		Field("name", cty.String, Default("tygra"), Doc("display name")).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "AliasedConfig", s.Name())
	assert.Equal(t, []string{"age", "name"}, s.Fields())
	assert.False(t, s.IsOpen())

	decls := s.Decls()
	require.Len(t, decls, 3)
	assert.Equal(t, KindAlias, decls[1].Kind)

	d, ok := s.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "display name", d.Doc)
	assert.True(t, d.HasDefault)
	assert.True(t, d.Default.RawEquals(cty.StringVal("tygra")))

	canonical, ok := s.Canonical("age2")
	require.True(t, ok)
	assert.Equal(t, "age", canonical)
	assert.True(t, s.IsDeprecated("age2"))
	assert.False(t, s.IsDeprecated("age"))

	_, ok = s.Lookup("missing")
	assert.False(t, ok)
}

func TestBuild_AliasChain(t *testing.T) {
	s, err := NewBuilder("Chain").
		Field("a", cty.Number).
		Alias("b", "a").
		Alias("c", "b").
		Build()
	require.NoError(t, err)

	canonical, ok := s.Canonical("c")
	require.True(t, ok)
	assert.Equal(t, "a", canonical)
}

func TestBuild_AliasDeclaredBeforeTarget(t *testing.T) {
	s, err := NewBuilder("Forward").
		Alias("old", "new").
		Field("new", cty.String).
		Build()
	require.NoError(t, err)

	canonical, _ := s.Canonical("old")
	assert.Equal(t, "new", canonical)
}

func TestBuild_DefinitionErrors(t *testing.T) {
	inner := NewBuilder("Inner").Field("x", cty.Number).MustBuild()

	testCases := []struct {
		name    string
		builder *Builder
	}{
		{"empty schema name", NewBuilder(" ")},
		{"empty field name", NewBuilder("S").Field("", cty.Number)},
		{"duplicate field", NewBuilder("S").Field("a", cty.Number).Field("a", cty.String)},
		{"alias duplicates field", NewBuilder("S").Field("a", cty.Number).Alias("a", "a")},
		{"alias to missing target", NewBuilder("S").Field("a", cty.Number).Alias("b", "nope")},
		{"alias cycle", NewBuilder("S").Alias("a", "b").Alias("b", "a")},
		{"self alias", NewBuilder("S").Alias("a", "a")},
		{"field without type", NewBuilder("S").Field("a", cty.NilType)},
		{"default not convertible", NewBuilder("S").Field("a", cty.Number, Default("abc"))},
		{"numeric string default", NewBuilder("S").Field("a", cty.Number, Default("1"))},
		{"required with default", NewBuilder("S").Field("a", cty.Number, Required(), Default(1))},
		{"deprecated field", NewBuilder("S").Field("a", cty.Number, Deprecated())},
		{"required alias", NewBuilder("S").Field("a", cty.Number).Alias("b", "a", Required())},
		{"nil sub schema", NewBuilder("S").Sub("inner", nil)},
		{"sub with default", NewBuilder("S").Sub("inner", inner, Default(1))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := tc.builder.Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDefinition)
			assert.Nil(t, s)
		})
	}
}

func TestBuild_DefaultIsConverted(t *testing.T) {
	s, err := NewBuilder("S").
		Field("clip", cty.Number, Default(1.5)).
		Field("tags", cty.List(cty.String), Default([]any{"a", "b"})).
		Build()
	require.NoError(t, err)

	d, _ := s.Lookup("clip")
	assert.True(t, d.Default.RawEquals(cty.NumberFloatVal(1.5)))

	d, _ = s.Lookup("tags")
	assert.True(t, d.Default.Type().Equals(cty.List(cty.String)))
}

func TestMustBuild_Panics(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder("S").Field("a", cty.Number).Field("a", cty.Number).MustBuild()
	})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "field", KindField.String())
	assert.Equal(t, "alias", KindAlias.String())
	assert.Equal(t, "sub-config", KindSub.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
