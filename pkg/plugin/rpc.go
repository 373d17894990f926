package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// ProviderPluginRPC implements the go-plugin Plugin interface for providers.
type ProviderPluginRPC struct {
	plugin.Plugin
	Impl VisionProvider
}

// Server returns an RPC server for this plugin.
func (p *ProviderPluginRPC) Server(*plugin.MuxBroker) (any, error) {
	return &ProviderRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *ProviderPluginRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &ProviderRPCClient{client: c}, nil
}

// ProviderRPCServer is the plugin side of the RPC contract.
type ProviderRPCServer struct {
	Impl VisionProvider
}

// AnalyzeImage implements the RPC method for model calls. Provider errors
// travel in the response so the host sees the original message.
func (s *ProviderRPCServer) AnalyzeImage(req AnalyzeRequest, resp *AnalyzeResponse) error {
	text, err := s.Impl.AnalyzeImage(context.Background(), req)
	if err != nil {
		resp.Error = err.Error()
		return nil
	}
	resp.Text = text
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *ProviderRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// ProviderRPCClient is the host side of the RPC contract.
type ProviderRPCClient struct {
	client *rpc.Client
}

// AnalyzeImage calls the remote AnalyzeImage method. The call is abandoned
// when ctx is done; the plugin may still finish it.
func (c *ProviderRPCClient) AnalyzeImage(ctx context.Context, req AnalyzeRequest) (string, error) {
	var resp AnalyzeResponse
	call := c.client.Go("Plugin.AnalyzeImage", req, &resp, make(chan *rpc.Call, 1))

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-call.Done:
	}
	if call.Error != nil {
		return "", call.Error
	}
	if resp.Error != "" {
		return "", &RPCError{Message: resp.Error}
	}
	return resp.Text, nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *ProviderRPCClient) GetMetadata() (PluginInfo, error) {
	var info PluginInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
