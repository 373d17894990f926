package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pluginapi "github.com/jmylchreest/colortune/pkg/plugin"
)

// Entry answers prompts containing Match.
type Entry struct {
	Match        string `json:"match"`
	Response     string `json:"response,omitempty"`
	ResponseFile string `json:"response_file,omitempty"`
}

// Replay is a VisionProvider backed by canned responses.
type Replay struct {
	Model     string  `json:"model"`
	Responses []Entry `json:"responses"`
	Default   *string `json:"default,omitempty"`
}

// LoadReplay reads a replay file. Entry files resolve relative to it.
func LoadReplay(path string) (*Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay file: %w", err)
	}

	var r Replay
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse replay file: %w", err)
	}

	dir := filepath.Dir(path)
	for i, e := range r.Responses {
		if e.Match == "" {
			return nil, fmt.Errorf("response %d: match is required", i)
		}
		if e.ResponseFile == "" {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, e.ResponseFile))
		if err != nil {
			return nil, fmt.Errorf("response %d: %w", i, err)
		}
		r.Responses[i].Response = string(body)
	}
	if r.Model == "" {
		r.Model = "replay"
	}
	return &r, nil
}

// AnalyzeImage returns the first response whose match occurs in the prompt.
func (r *Replay) AnalyzeImage(ctx context.Context, req pluginapi.AnalyzeRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, e := range r.Responses {
		if strings.Contains(req.Prompt, e.Match) {
			return e.Response, nil
		}
	}
	if r.Default != nil {
		return *r.Default, nil
	}
	return "", errors.New("no replay response matches the prompt")
}

// GetMetadata returns plugin metadata.
func (r *Replay) GetMetadata() pluginapi.PluginInfo {
	return pluginapi.PluginInfo{
		Name:            "replay",
		Version:         "0.1.0",
		ProtocolVersion: pluginapi.ProtocolVersion,
		Description:     "Replays canned model responses",
		Model:           r.Model,
	}
}
