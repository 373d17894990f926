// Package plugin is the public contract for out-of-process vision providers.
// A provider binary implements VisionProvider and calls Serve; colortune
// launches it and talks to it over go-plugin net/rpc.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion is the provider plugin API version.
	// Increment MAJOR for breaking changes and MINOR for additions.
	ProtocolVersion = "0.1.0"

	// PluginName is the key providers are dispensed under.
	PluginName = "provider"
)

// Handshake keeps colortune from launching unrelated binaries as providers.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "COLORTUNE_PLUGIN",
	MagicCookieValue: "colortune_vision_provider",
}

// PluginMap returns the plugin set served by a provider binary.
func PluginMap(impl VisionProvider) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginName: &ProviderPluginRPC{Impl: impl},
	}
}

// Serve runs impl as a plugin. It blocks until the host disconnects.
func Serve(impl VisionProvider) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap(impl),
	})
}
