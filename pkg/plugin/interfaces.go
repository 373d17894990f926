package plugin

import (
	"context"
)

// VisionProvider is implemented by provider plugins.
type VisionProvider interface {
	// AnalyzeImage sends a prompt, with an optional JPEG image, to a model
	// and returns its text reply.
	AnalyzeImage(ctx context.Context, req AnalyzeRequest) (string, error)

	// GetMetadata describes the plugin.
	GetMetadata() PluginInfo
}
