package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pluginapi "github.com/jmylchreest/colortune/pkg/plugin"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReplay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "styles.json", `[{"style_name": "A", "parameters": {}}]`)
	path := writeFile(t, dir, "replay.json", `{
		"responses": [
			{"match": "Analyze this photograph", "response": "{\"scene_type\": \"street\"}"},
			{"match": "TASTEFUL", "response_file": "styles.json"}
		],
		"default": "{}"
	}`)

	r, err := LoadReplay(path)
	require.NoError(t, err)
	assert.Equal(t, "replay", r.GetMetadata().Model)

	tests := []struct {
		prompt string
		want   string
	}{
		{"Analyze this photograph and respond", `{"scene_type": "street"}`},
		{"generate 4 different but TASTEFUL grades", `[{"style_name": "A", "parameters": {}}]`},
		{"something else", "{}"},
	}
	for _, tt := range tests {
		got, err := r.AnalyzeImage(context.Background(), pluginapi.AnalyzeRequest{Prompt: tt.prompt})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestReplayWithoutDefault(t *testing.T) {
	path := writeFile(t, t.TempDir(), "replay.json", `{"model": "m", "responses": []}`)
	r, err := LoadReplay(path)
	require.NoError(t, err)

	_, err = r.AnalyzeImage(context.Background(), pluginapi.AnalyzeRequest{Prompt: "x"})
	assert.ErrorContains(t, err, "no replay response")
}

func TestLoadReplayErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"responses": [`},
		{"missing match", `{"responses": [{"response": "x"}]}`},
		{"missing response file", `{"responses": [{"match": "a", "response_file": "nope.json"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReplay(writeFile(t, dir, "r.json", tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadReplay(filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}
