// Package interview implements the mock-interview session state machine:
// the per-session memory record, the phase/difficulty controller, topic
// extraction, prompt composition, and the orchestrator that ties them to
// the generation service and the client channel.
package interview

import (
	"sort"
	"time"
)

// Speaker identifies who authored a turn. The wire values match the
// persisted message roles ("ai" / "user").
type Speaker string

const (
	SpeakerInterviewer Speaker = "ai"
	SpeakerCandidate   Speaker = "user"
)

// Phase is an interview stage. Phases only ever move forward through the
// order below; PhaseClosing is terminal.
type Phase string

const (
	PhaseSetup                 Phase = "setup"
	PhaseIntroduction          Phase = "introduction"
	PhaseTechnicalBasic        Phase = "technical-basic"
	PhaseTechnicalIntermediate Phase = "technical-intermediate"
	PhaseTechnicalAdvanced     Phase = "technical-advanced"
	PhaseBehavioral            Phase = "behavioral"
	PhaseClosing               Phase = "closing"
)

// Difficulty is a question difficulty tier. It never decreases within a
// session.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Profile holds the candidate-supplied setup fields. All fields are
// optional; the profile is set at most once, before any turns exist.
type Profile struct {
	Role       string `json:"role,omitempty"`
	Experience string `json:"experience,omitempty"`
	Company    string `json:"company,omitempty"`
	Focus      string `json:"focus,omitempty"`
	Industry   string `json:"industry,omitempty"`
	Skills     string `json:"skills,omitempty"`
}

// Empty reports whether no profile field was supplied.
func (p Profile) Empty() bool {
	return p == Profile{}
}

// Turn is one utterance in the transcript. Turns are append-only and never
// edited after creation.
type Turn struct {
	Speaker   Speaker   `json:"role"`
	Text      string    `json:"message"`
	Phase     Phase     `json:"phase"`
	Timestamp time.Time `json:"timestamp"`
}

// Memory is the mutable state of one interview session. It performs no I/O;
// persistence and event delivery belong to the Orchestrator.
type Memory struct {
	SessionID     string
	UserRef       string
	Profile       Profile
	Phase         Phase
	Difficulty    Difficulty
	QuestionCount int

	transcript []Turn
	topics     map[string]struct{}

	now func() time.Time
}

// NewMemory creates the state for a fresh session in the setup phase.
func NewMemory(sessionID, userRef string) *Memory {
	return &Memory{
		SessionID:  sessionID,
		UserRef:    userRef,
		Phase:      PhaseSetup,
		Difficulty: DifficultyEasy,
		topics:     make(map[string]struct{}),
		now:        time.Now,
	}
}

// SetProfile records the candidate profile and moves the session out of
// setup into the introduction phase. Meaningful only once, before any turns.
func (m *Memory) SetProfile(p Profile) {
	m.Profile = p
	if m.Phase == PhaseSetup {
		m.Phase = PhaseIntroduction
	}
}

// AppendTurn appends an utterance, capturing the phase in effect at append
// time. Interviewer turns increment the question count.
func (m *Memory) AppendTurn(speaker Speaker, text string) {
	m.transcript = append(m.transcript, Turn{
		Speaker:   speaker,
		Text:      text,
		Phase:     m.Phase,
		Timestamp: m.now(),
	})
	if speaker == SpeakerInterviewer {
		m.QuestionCount++
	}
}

// Transcript returns the full transcript in chronological order.
func (m *Memory) Transcript() []Turn {
	out := make([]Turn, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// RecentWindow returns the last n turns in chronological order, or the whole
// transcript if it is shorter.
func (m *Memory) RecentWindow(n int) []Turn {
	if n >= len(m.transcript) {
		return m.Transcript()
	}
	out := make([]Turn, n)
	copy(out, m.transcript[len(m.transcript)-n:])
	return out
}

// AddTopics unions the given topics into the session's topic set.
// Idempotent; the set only ever grows.
func (m *Memory) AddTopics(topics []string) {
	for _, t := range topics {
		m.topics[t] = struct{}{}
	}
}

// Topics returns the topic set in sorted order so downstream rendering is
// deterministic.
func (m *Memory) Topics() []string {
	out := make([]string, 0, len(m.topics))
	for t := range m.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
