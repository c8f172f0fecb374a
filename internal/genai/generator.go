// Package genai defines the outbound text-generation contract and its
// backends. The orchestrator only sees the Generator interface; which
// backend serves it is a configuration concern.
package genai

import (
	"context"
	"fmt"
)

// Generator produces a completion for a composed prompt. Implementations
// must honor context cancellation; a call may take a full network round
// trip.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Echo is the deterministic fallback reply used when no generation backend
// is configured. It reflects the candidate's utterance back so the session
// remains usable offline and tests stay reproducible.
func Echo(utterance string) string {
	return fmt.Sprintf("Thanks for sharing that. You said: %q. Let's keep going - can you tell me more about that?", utterance)
}
