package interview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tiktoken-go/tokenizer"

	"github.com/talentbridge/talentbridge/internal/genai"
	"github.com/talentbridge/talentbridge/internal/storage"
)

// ErrSessionNotFound is returned when an operation references a session that
// is not resident in memory.
var ErrSessionNotFound = errors.New("interview session not found")

// Event names on the client channel.
const (
	EventAIResponse = "ai-response"
	EventHistory    = "interview-history"
	EventError      = "error"
)

// Emitter delivers a named event to one client. The websocket layer
// implements it; tests implement it with a slice.
type Emitter interface {
	Emit(event string, payload any) error
}

// AIResponse is the payload of an ai-response event.
type AIResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Phase     Phase  `json:"phase"`
}

// History is the payload of an interview-history event and of the session
// REST endpoint.
type History struct {
	Context []Turn   `json:"context"`
	Phase   Phase    `json:"phase"`
	Topics  []string `json:"topics"`
}

// ErrorPayload is the payload of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}

const apologyMessage = "I'm sorry, I ran into a problem generating my next question. Let's keep going - could you expand on your last answer?"

const (
	defaultMaxSessions     = 1024
	defaultGenerateTimeout = 30 * time.Second

	// promptTokenBudget is the size above which a composed prompt is
	// flagged. The transcript window bounds prompt growth, so crossing
	// this means a runaway profile or utterance.
	promptTokenBudget = 6000
)

// session pairs a memory record with the mutex that serializes its turn
// handling. The lock is held across the generation call so concurrent
// messages on one session cannot interleave appends; other sessions proceed
// independently.
type session struct {
	mu  sync.Mutex
	mem *Memory
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxSessions bounds the in-memory session table. Least recently used
// sessions are evicted once the bound is reached; an evicted session behaves
// like an unknown one.
func WithMaxSessions(n int) Option {
	return func(o *Orchestrator) {
		o.maxSessions = n
	}
}

// WithGenerateTimeout bounds one generation call. On expiry the apology
// path is taken, same as a generation failure.
func WithGenerateTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.genTimeout = d
	}
}

// Orchestrator coordinates interview sessions: it owns the session table,
// drives the generation service, persists snapshots, and emits events back
// to clients.
type Orchestrator struct {
	logger      *slog.Logger
	gen         genai.Generator
	snapshots   storage.SnapshotStore
	sessions    *lru.Cache[string, *session]
	maxSessions int
	genTimeout  time.Duration
	codec       tokenizer.Codec
}

// NewOrchestrator creates an orchestrator. gen may be nil, in which case
// every turn gets the deterministic echo reply. snapshots may be nil to
// disable persistence (tests).
func NewOrchestrator(gen genai.Generator, snapshots storage.SnapshotStore, logger *slog.Logger, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		logger:      logger,
		gen:         gen,
		snapshots:   snapshots,
		maxSessions: defaultMaxSessions,
		genTimeout:  defaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	cache, err := lru.New[string, *session](o.maxSessions)
	if err != nil {
		return nil, err
	}
	o.sessions = cache

	// Token accounting is best effort; without a codec we just skip the
	// prompt-size log field.
	if codec, err := tokenizer.Get(tokenizer.Cl100kBase); err == nil {
		o.codec = codec
	}

	return o, nil
}

// StartInterview creates a session, seeds it with the opening interviewer
// message, persists the first snapshot, and emits the greeting.
func (o *Orchestrator) StartInterview(ctx context.Context, userRef string, profile Profile, em Emitter) string {
	sessionID := uuid.New().String()

	mem := NewMemory(sessionID, userRef)
	if !profile.Empty() {
		mem.SetProfile(profile)
	}

	greeting := openingMessage(profile)
	mem.AppendTurn(SpeakerInterviewer, greeting)

	o.sessions.Add(sessionID, &session{mem: mem})
	o.persist(ctx, mem)

	o.logger.Info("interview started",
		slog.String("session_id", sessionID),
		slog.String("phase", string(mem.Phase)),
	)

	o.emit(em, EventAIResponse, AIResponse{Message: greeting, SessionID: sessionID, Phase: mem.Phase})
	return sessionID
}

// HandleMessage processes one candidate utterance: append the turn, advance
// difficulty and phase, fold in extracted topics, generate the interviewer's
// reply, persist, and emit. A missing session or empty message yields an
// error event and no state change.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID, text string, em Emitter) {
	if text == "" {
		o.emit(em, EventError, ErrorPayload{Message: "message must not be empty"})
		return
	}

	sess, ok := o.sessions.Get(sessionID)
	if !ok {
		o.emit(em, EventError, ErrorPayload{Message: "session not found"})
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	mem := sess.mem

	mem.AppendTurn(SpeakerCandidate, text)
	Advance(mem)
	mem.AddTopics(ExtractTopics(text))

	prompt := ComposePrompt(mem, text)
	promptTokens := o.promptTokens(prompt)
	if promptTokens > promptTokenBudget {
		o.logger.Warn("prompt exceeds token budget",
			slog.String("session_id", sessionID),
			slog.Int("prompt_tokens", promptTokens),
			slog.Int("budget", promptTokenBudget),
		)
	}

	reply := o.generate(ctx, prompt, text)

	mem.AppendTurn(SpeakerInterviewer, reply)
	o.persist(ctx, mem)

	o.logger.Info("interview turn completed",
		slog.String("session_id", sessionID),
		slog.String("phase", string(mem.Phase)),
		slog.Int("question_count", mem.QuestionCount),
		slog.Int("prompt_tokens", promptTokens),
	)

	o.emit(em, EventAIResponse, AIResponse{Message: reply, SessionID: sessionID, Phase: mem.Phase})
}

// History returns the transcript, phase, and topics for a resident session.
func (o *Orchestrator) History(sessionID string) (*History, error) {
	sess, ok := o.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return &History{
		Context: sess.mem.Transcript(),
		Phase:   sess.mem.Phase,
		Topics:  sess.mem.Topics(),
	}, nil
}

// promptTokens counts the tokens in a composed prompt, or 0 when no codec
// is available.
func (o *Orchestrator) promptTokens(prompt string) int {
	if o.codec == nil {
		return 0
	}
	ids, _, err := o.codec.Encode(prompt)
	if err != nil {
		return 0
	}
	return len(ids)
}

// generate calls the configured backend with a timeout, falling back to the
// apology message on failure and to the deterministic echo when no backend
// is configured.
func (o *Orchestrator) generate(ctx context.Context, prompt, utterance string) string {
	if o.gen == nil {
		return genai.Echo(utterance)
	}

	ctx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()

	reply, err := o.gen.Generate(ctx, prompt)
	if err != nil {
		o.logger.Error("generation failed", slog.String("error", err.Error()))
		return apologyMessage
	}
	return reply
}

// persist snapshots the session. Persistence failures are logged and never
// block the response already on its way to the client.
func (o *Orchestrator) persist(ctx context.Context, mem *Memory) {
	if o.snapshots == nil {
		return
	}

	transcript := mem.Transcript()
	messages := make([]storage.SnapshotMessage, len(transcript))
	for i, turn := range transcript {
		messages[i] = storage.SnapshotMessage{
			Role:      string(turn.Speaker),
			Message:   turn.Text,
			Phase:     string(turn.Phase),
			Timestamp: turn.Timestamp,
		}
	}

	snap := &storage.Snapshot{
		SessionID: mem.SessionID,
		UserRef:   mem.UserRef,
		Profile: storage.SnapshotProfile{
			Role:       mem.Profile.Role,
			Experience: mem.Profile.Experience,
			Company:    mem.Profile.Company,
			Focus:      mem.Profile.Focus,
			Industry:   mem.Profile.Industry,
			Skills:     mem.Profile.Skills,
		},
		Phase:         string(mem.Phase),
		Topics:        mem.Topics(),
		QuestionCount: mem.QuestionCount,
		Difficulty:    string(mem.Difficulty),
		Messages:      messages,
	}

	if err := o.snapshots.SaveSnapshot(ctx, snap); err != nil {
		o.logger.Error("failed to persist snapshot",
			slog.String("session_id", mem.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (o *Orchestrator) emit(em Emitter, event string, payload any) {
	if err := em.Emit(event, payload); err != nil {
		o.logger.Error("failed to emit event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

func openingMessage(p Profile) string {
	if p.Empty() {
		return "Hello! Welcome to your mock interview. I'll be your interviewer today. Could you start by introducing yourself?"
	}

	msg := "Hello! Welcome to your mock interview"
	if p.Role != "" {
		msg += " for the " + p.Role + " position"
	}
	if p.Company != "" {
		msg += " at " + p.Company
	}
	msg += ". I'll be your interviewer today. Could you start by introducing yourself?"
	return msg
}
