package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/trainconf/internal/app"
	"github.com/vk/trainconf/internal/loader"
)

func TestParse_Defaults(t *testing.T) {
	cfg, exit, err := Parse([]string{"train.json"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, exit)

	assert.Equal(t, "train.json", cfg.ConfigPath)
	assert.Equal(t, loader.FormatAuto, cfg.Format)
	assert.Equal(t, app.DefaultRoot, cfg.Root)
	assert.Equal(t, app.OutputText, cfg.Output)
	assert.Zero(t, cfg.WorldSize)
	assert.False(t, cfg.AllowUnknown)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParse_AllFlags(t *testing.T) {
	cfg, _, err := Parse([]string{
		"-c", "train.cfg",
		"-format", "hjson",
		"-schema", "a.hcl", "-schema", "manifests",
		"-root", "RunConfig",
		"-world-size", "8",
		"-allow-unknown",
		"-output", "YAML",
		"-log-format", "json",
		"-log-level", "DEBUG",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, &app.Config{
		ConfigPath:   "train.cfg",
		Format:       loader.FormatHJSON,
		SchemaPaths:  []string{"a.hcl", "manifests"},
		Root:         "RunConfig",
		WorldSize:    8,
		AllowUnknown: true,
		Output:       app.OutputYAML,
		LogFormat:    "json",
		LogLevel:     "debug",
	}, cfg)
}

func TestParse_ConfigFlagWinsOverPositional(t *testing.T) {
	cfg, _, err := Parse([]string{"-config", "a.json", "b.json"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "a.json", cfg.ConfigPath)
}

func TestParse_HelpAndNoPath(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_InvalidInput(t *testing.T) {
	testCases := [][]string{
		{"--nope"},
		{"-format", "xml", "a.json"},
		{"-output", "csv", "a.json"},
		{"-log-format", "xml", "a.json"},
		{"-log-level", "loud", "a.json"},
		{"-world-size", "-1", "a.json"},
		{"-world-size", "many", "a.json"},
	}
	for _, args := range testCases {
		_, exit, err := Parse(args, &bytes.Buffer{})
		require.Error(t, err, args)
		assert.False(t, exit)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	}
}
