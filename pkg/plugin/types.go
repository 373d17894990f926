package plugin

// AnalyzeRequest is one model call. Image is empty for text-only prompts.
type AnalyzeRequest struct {
	Image     []byte `json:"image,omitempty"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// AnalyzeResponse carries the reply, or the provider's error message.
type AnalyzeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// PluginInfo contains metadata about a provider plugin.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	Model           string `json:"model,omitempty"`
}
