// Package plugin hosts vision providers that run as separate go-plugin
// processes. The binary is launched on first use and kept until Close.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/colortune/internal/provider"
	"github.com/jmylchreest/colortune/internal/security"
	pluginapi "github.com/jmylchreest/colortune/pkg/plugin"
)

// Config configures a plugin Provider.
type Config struct {
	// Path is the provider binary.
	Path      string
	MaxTokens int
	Logger    hclog.Logger
}

// dialer starts the plugin and returns its protocol client plus a kill func.
type dialer func() (goplugin.ClientProtocol, func(), error)

// Provider forwards calls to a provider plugin.
type Provider struct {
	path      string
	maxTokens int
	logger    hclog.Logger
	dial      dialer

	mu     sync.Mutex
	remote *pluginapi.ProviderRPCClient
	kill   func()
}

// New checks the binary exists and returns a Provider for it.
func New(cfg Config) (*Provider, error) {
	if cfg.Path == "" {
		return nil, errors.New("plugin path is required")
	}
	if err := security.ValidateExecutable(cfg.Path); err != nil {
		return nil, fmt.Errorf("invalid plugin: %w", err)
	}

	p := &Provider{
		path:      cfg.Path,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}
	if p.maxTokens == 0 {
		p.maxTokens = provider.DefaultMaxTokens
	}
	if p.logger == nil {
		p.logger = hclog.NewNullLogger()
	}
	p.dial = p.launch
	return p, nil
}

func (p *Provider) launch() (goplugin.ClientProtocol, func(), error) {
	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  pluginapi.Handshake,
		Plugins:          pluginapi.PluginMap(nil),
		Cmd:              exec.Command(p.path),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           p.logger.Named("host"),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to get RPC client: %w", err)
	}
	return rpcClient, client.Kill, nil
}

func (p *Provider) connect() (*pluginapi.ProviderRPCClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.remote != nil {
		return p.remote, nil
	}

	p.logger.Debug("starting provider plugin", "path", p.path)
	proto, kill, err := p.dial()
	if err != nil {
		return nil, err
	}

	raw, err := proto.Dispense(pluginapi.PluginName)
	if err != nil {
		kill()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}
	remote, ok := raw.(*pluginapi.ProviderRPCClient)
	if !ok {
		kill()
		return nil, fmt.Errorf("plugin dispensed unexpected type %T", raw)
	}

	p.remote = remote
	p.kill = kill
	return remote, nil
}

// Name returns "plugin".
func (p *Provider) Name() string { return provider.NamePlugin }

// Path returns the plugin binary.
func (p *Provider) Path() string { return p.path }

// AnalyzeImage forwards the call to the plugin.
func (p *Provider) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	remote, err := p.connect()
	if err != nil {
		return "", err
	}
	text, err := remote.AnalyzeImage(ctx, pluginapi.AnalyzeRequest{
		Image:     image,
		Prompt:    prompt,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("plugin %s: %w", filepath.Base(p.path), err)
	}
	return text, nil
}

// Metadata asks the plugin to describe itself.
func (p *Provider) Metadata() (pluginapi.PluginInfo, error) {
	remote, err := p.connect()
	if err != nil {
		return pluginapi.PluginInfo{}, err
	}
	return remote.GetMetadata()
}

// Close stops the plugin process if it is running.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.kill != nil {
		p.kill()
	}
	p.kill = nil
	p.remote = nil
}
