// Package completion defines the contract to the external
// language-model service and its Gemini-backed implementation.
package completion

import "context"

// Role values understood by the completion API.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one {role, text} entry of the conversation history sent to
// the model.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Provider returns the next assistant turn for an ordered history.
type Provider interface {
	Generate(ctx context.Context, history []Turn) (string, error)
}
