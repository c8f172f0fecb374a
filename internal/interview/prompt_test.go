package interview

import (
	"strings"
	"testing"
)

func TestComposePromptDeterministic(t *testing.T) {
	m := NewMemory("s1", "")
	m.SetProfile(Profile{Role: "Backend Engineer", Company: "Acme"})
	m.AppendTurn(SpeakerInterviewer, "Tell me about yourself.")
	m.AppendTurn(SpeakerCandidate, "I build Go services.")
	m.AddTopics([]string{"golang", "backend"})

	a := ComposePrompt(m, "I like distributed systems")
	b := ComposePrompt(m, "I like distributed systems")
	if a != b {
		t.Error("ComposePrompt is not deterministic for unchanged memory")
	}
}

func TestComposePromptOpeningBranch(t *testing.T) {
	m := NewMemory("s1", "")
	m.SetProfile(Profile{Role: "Backend Engineer", Company: "Acme"})

	prompt := ComposePrompt(m, "")
	if !strings.Contains(prompt, "warm introduction") {
		t.Error("opening prompt missing introduction instruction")
	}
	if !strings.Contains(prompt, "Backend Engineer") || !strings.Contains(prompt, "Acme") {
		t.Error("opening prompt missing role or company")
	}
}

func TestComposePromptContinuationBranch(t *testing.T) {
	m := NewMemory("s1", "")
	m.AppendTurn(SpeakerInterviewer, "First question?")

	prompt := ComposePrompt(m, "my answer")
	if strings.Contains(prompt, "warm introduction") {
		t.Error("continuation prompt should not include the opening instruction")
	}
	if !strings.Contains(prompt, "Continue the interview naturally") {
		t.Error("continuation prompt missing continue instruction")
	}
}

func TestComposePromptOmitsEmptyProfileFields(t *testing.T) {
	m := NewMemory("s1", "")
	m.SetProfile(Profile{Role: "SRE"})

	prompt := ComposePrompt(m, "hi")
	if !strings.Contains(prompt, "Target role: SRE") {
		t.Error("prompt missing present profile field")
	}
	for _, label := range []string{"Target company:", "Focus area:", "Industry:", "Skills:", "Experience level:"} {
		if strings.Contains(prompt, label) {
			t.Errorf("prompt renders empty label %q", label)
		}
	}
}

func TestComposePromptSkipsProfileBlockWhenEmpty(t *testing.T) {
	m := NewMemory("s1", "")
	if prompt := ComposePrompt(m, "hi"); strings.Contains(prompt, "Candidate profile:") {
		t.Error("prompt renders profile block for empty profile")
	}
}

func TestComposePromptTopicsRendering(t *testing.T) {
	m := NewMemory("s1", "")
	if prompt := ComposePrompt(m, "hi"); !strings.Contains(prompt, "Topics covered: none yet") {
		t.Error("prompt missing 'none yet' marker for empty topics")
	}

	m.AddTopics([]string{"sql", "react"})
	if prompt := ComposePrompt(m, "hi"); !strings.Contains(prompt, "Topics covered: react, sql") {
		t.Error("prompt missing comma-joined topics")
	}
}

func TestComposePromptWindowsTranscript(t *testing.T) {
	m := NewMemory("s1", "")
	for i := 0; i < 15; i++ {
		m.AppendTurn(SpeakerCandidate, "answer")
	}
	m.AppendTurn(SpeakerCandidate, "the latest answer")

	prompt := ComposePrompt(m, "hi")
	if got := strings.Count(prompt, "Candidate: "); got != 10 {
		t.Errorf("prompt renders %d transcript lines, want 10", got)
	}
	if !strings.Contains(prompt, "the latest answer") {
		t.Error("prompt window dropped the most recent turn")
	}
}

func TestComposePromptUnknownDifficultyFallsBack(t *testing.T) {
	m := NewMemory("s1", "")
	m.Difficulty = Difficulty("impossible")

	prompt := ComposePrompt(m, "hi")
	if !strings.Contains(prompt, difficultyInstructions[DifficultyEasy]) {
		t.Error("unknown difficulty did not fall back to the easy instruction")
	}
}

func TestComposePromptIncludesUtterance(t *testing.T) {
	m := NewMemory("s1", "")
	m.AppendTurn(SpeakerInterviewer, "q")

	prompt := ComposePrompt(m, "a very specific answer")
	if !strings.Contains(prompt, "Candidate's latest response: a very specific answer") {
		t.Error("prompt missing the candidate utterance")
	}
	if !strings.Contains(prompt, "2-3 sentences and end with a question") {
		t.Error("prompt missing the response-shape instruction")
	}
}
