package completion

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Unconfigured for every request.
var ErrNotConfigured = errors.New("completion provider not configured")

// Unconfigured is the provider used when no API key is set. Every
// request fails, which downgrades replies to the caller's fallback
// path instead of refusing to start the server.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, []Turn) (string, error) {
	return "", ErrNotConfigured
}
