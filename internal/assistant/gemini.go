// Package assistant answers questions about reports with a hosted model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"google.golang.org/genai"
)

// Gemini is a thin wrapper around the official genai client.
type Gemini struct {
	cli   *genai.Client
	model string
}

var _ contract.Assistant = &Gemini{} // Compile-time check

// NewGemini creates an assistant for model. baseURL overrides the API
// endpoint and is only set by tests.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: no API key configured", contract.ErrAssistantUnavailable)
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrAssistantUnavailable, err)
	}
	return &Gemini{cli: cli, model: model}, nil
}

// Ask sends prompt with the analyst system instruction and returns the
// model's text. Empty answers count as failures.
func (g *Gemini) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(core.AssistantInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", contract.ErrAssistantUnavailable, err)
	}
	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", fmt.Errorf("%w: %w", contract.ErrAssistantUnavailable, errors.New("empty answer"))
	}
	return answer, nil
}
