package workflow

import (
	"context"
	"fmt"
)

// responseGenerator is the inference facade used to handle optional client
// wiring.
type responseGenerator struct {
	// client stores the configured inference implementation.
	client InferenceService
}

func (g *responseGenerator) set(client InferenceService) {
	if g != nil {
		g.client = client
	}
}

func (g *responseGenerator) isConfigured() bool {
	return g != nil && g.client != nil
}

func (g *responseGenerator) process(ctx context.Context, text string) (string, error) {
	if !g.isConfigured() {
		return "", fmt.Errorf("no inference service configured")
	}

	response, err := g.client.Process(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to process transcript: %w", err)
	}

	return response, nil
}
