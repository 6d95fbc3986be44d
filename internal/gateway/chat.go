package gateway

import (
	"context"
	"encoding/json"
)

// Chat sends a message to the backend assistant.
func (c *Client) Chat(ctx context.Context, message string) (ChatResponse, error) {
	var resp ChatResponse
	err := c.post(ctx, "/ai/chat", ChatRequest{Message: message}, &resp)
	return resp, err
}

// ConfirmAction approves or rejects a pending action from an earlier
// reply.
func (c *Client) ConfirmAction(ctx context.Context, action json.RawMessage, approved bool) (ChatResponse, error) {
	var resp ChatResponse
	err := c.post(ctx, "/ai/chat", ChatRequest{ConfirmAction: action, Approved: &approved}, &resp)
	return resp, err
}
