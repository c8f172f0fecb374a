// Package gemini provides a generation backend on Google's Gemini models
// via langchaingo.
package gemini

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const defaultModel = "gemini-2.5-flash"

// Generator generates completions with a Gemini model.
type Generator struct {
	llm llms.Model
}

// New creates a Gemini generator. The model defaults to gemini-2.5-flash.
func New(ctx context.Context, apiKey, model string) (*Generator, error) {
	if model == "" {
		model = defaultModel
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Generator{llm: llm}, nil
}

// Generate returns the completion for a single prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
}
