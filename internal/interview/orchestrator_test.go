package interview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/talentbridge/talentbridge/internal/genai"
	"github.com/talentbridge/talentbridge/internal/storage"
	memorystore "github.com/talentbridge/talentbridge/internal/storage/memory"
)

type emitted struct {
	event   string
	payload any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (f *fakeEmitter) Emit(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{event: event, payload: payload})
	return nil
}

func (f *fakeEmitter) last(t *testing.T) emitted {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		t.Fatal("no events emitted")
	}
	return f.events[len(f.events)-1]
}

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("upstream unavailable")
}

type failingSnapshotStore struct{}

func (failingSnapshotStore) SaveSnapshot(ctx context.Context, s *storage.Snapshot) error {
	return errors.New("disk full")
}

func (failingSnapshotStore) GetSnapshot(ctx context.Context, sessionID string) (*storage.Snapshot, error) {
	return nil, storage.ErrNotFound
}

func (failingSnapshotStore) CountSnapshotsByUser(ctx context.Context, userRef string) (int, error) {
	return 0, errors.New("disk full")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(t *testing.T, gen genai.Generator, snapshots storage.SnapshotStore, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(gen, snapshots, testLogger(), opts...)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

func TestStartInterviewColdStart(t *testing.T) {
	o := newTestOrchestrator(t, nil, memorystore.New())
	em := &fakeEmitter{}

	sessionID := o.StartInterview(context.Background(), "", Profile{Role: "Backend Engineer", Company: "Acme"}, em)

	if sessionID == "" {
		t.Fatal("StartInterview returned empty session id")
	}

	last := em.last(t)
	if last.event != EventAIResponse {
		t.Fatalf("emitted event = %s, want ai-response", last.event)
	}
	resp := last.payload.(AIResponse)
	if resp.SessionID != sessionID {
		t.Errorf("payload session id = %q, want %q", resp.SessionID, sessionID)
	}
	if resp.Phase != PhaseIntroduction {
		t.Errorf("phase = %s, want introduction", resp.Phase)
	}
	if !strings.Contains(resp.Message, "Backend Engineer") || !strings.Contains(resp.Message, "Acme") {
		t.Errorf("greeting %q missing role or company", resp.Message)
	}
}

func TestStartInterviewWithoutProfile(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	em := &fakeEmitter{}

	o.StartInterview(context.Background(), "", Profile{}, em)

	resp := em.last(t).payload.(AIResponse)
	if resp.Phase != PhaseSetup {
		t.Errorf("phase = %s, want setup", resp.Phase)
	}
	if resp.Message == "" {
		t.Error("greeting is empty")
	}
}

func TestHandleMessageUnknownSession(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	em := &fakeEmitter{}

	o.HandleMessage(context.Background(), "does-not-exist", "hi", em)

	if len(em.events) != 1 {
		t.Fatalf("emitted %d events, want 1", len(em.events))
	}
	if em.events[0].event != EventError {
		t.Errorf("event = %s, want error", em.events[0].event)
	}
}

func TestHandleMessageEmptyText(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	em := &fakeEmitter{}

	sessionID := o.StartInterview(context.Background(), "", Profile{}, em)
	o.HandleMessage(context.Background(), sessionID, "", em)

	if em.last(t).event != EventError {
		t.Errorf("event = %s, want error", em.last(t).event)
	}

	hist, err := o.History(sessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist.Context) != 1 {
		t.Errorf("transcript length = %d, want 1 (empty message must not append)", len(hist.Context))
	}
}

func TestHandleMessageStubEcho(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	em := &fakeEmitter{}

	sessionID := o.StartInterview(context.Background(), "", Profile{}, em)
	o.HandleMessage(context.Background(), sessionID, "I know Python", em)

	resp := em.last(t).payload.(AIResponse)
	if resp.Message != genai.Echo("I know Python") {
		t.Errorf("stub reply = %q, want deterministic echo", resp.Message)
	}
}

func TestHandleMessageGenerationFailure(t *testing.T) {
	o := newTestOrchestrator(t, failingGenerator{}, nil)
	em := &fakeEmitter{}

	sessionID := o.StartInterview(context.Background(), "", Profile{}, em)
	o.HandleMessage(context.Background(), sessionID, "hello", em)

	resp := em.last(t).payload.(AIResponse)
	if resp.Message != apologyMessage {
		t.Errorf("reply = %q, want apology", resp.Message)
	}

	// The candidate turn and the apology are both recorded.
	hist, err := o.History(sessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist.Context) != 3 {
		t.Errorf("transcript length = %d, want 3", len(hist.Context))
	}
}

func TestHandleMessagePersistFailureStillResponds(t *testing.T) {
	o := newTestOrchestrator(t, nil, failingSnapshotStore{})
	em := &fakeEmitter{}

	sessionID := o.StartInterview(context.Background(), "", Profile{}, em)
	o.HandleMessage(context.Background(), sessionID, "hello", em)

	if em.last(t).event != EventAIResponse {
		t.Errorf("event = %s, want ai-response despite persistence failure", em.last(t).event)
	}
}

func TestPhaseProgressionThroughExchanges(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	em := &fakeEmitter{}

	sessionID := o.StartInterview(context.Background(), "", Profile{Role: "SWE"}, em)

	phaseAfter := func(exchanges int) Phase {
		var phase Phase
		for i := 0; i < exchanges; i++ {
			o.HandleMessage(context.Background(), sessionID, fmt.Sprintf("answer %d", i), em)
			phase = em.last(t).payload.(AIResponse).Phase
		}
		return phase
	}

	if got := phaseAfter(13); got != PhaseBehavioral {
		t.Errorf("phase after 13 exchanges = %s, want behavioral", got)
	}
	if got := phaseAfter(3); got != PhaseClosing {
		t.Errorf("phase after 16 exchanges = %s, want closing", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := memorystore.New()
	o := newTestOrchestrator(t, nil, store)
	em := &fakeEmitter{}

	sessionID := o.StartInterview(context.Background(), "user-1", Profile{Role: "SWE"}, em)
	o.HandleMessage(context.Background(), sessionID, "I used React and MongoDB", em)

	hist, err := o.History(sessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	snap, err := store.GetSnapshot(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}

	if len(snap.Messages) != len(hist.Context) {
		t.Fatalf("snapshot has %d messages, history has %d", len(snap.Messages), len(hist.Context))
	}
	for i, turn := range hist.Context {
		if snap.Messages[i].Message != turn.Text || snap.Messages[i].Role != string(turn.Speaker) {
			t.Errorf("snapshot message %d out of order or mismatched", i)
		}
	}
	if snap.UserRef != "user-1" {
		t.Errorf("snapshot user ref = %q, want user-1", snap.UserRef)
	}
	if snap.QuestionCount != 2 {
		t.Errorf("snapshot question count = %d, want 2", snap.QuestionCount)
	}
}

func TestTopicsAccumulate(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	em := &fakeEmitter{}

	sessionID := o.StartInterview(context.Background(), "", Profile{}, em)
	o.HandleMessage(context.Background(), sessionID, "I know React", em)
	o.HandleMessage(context.Background(), sessionID, "and MongoDB", em)

	hist, err := o.History(sessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	var hasReact, hasMongo bool
	for _, topic := range hist.Topics {
		if topic == "react" {
			hasReact = true
		}
		if topic == "mongodb" {
			hasMongo = true
		}
	}
	if !hasReact || !hasMongo {
		t.Errorf("topics = %v, want react and mongodb accumulated", hist.Topics)
	}
}

func TestSessionTableIsBounded(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil, WithMaxSessions(2))
	em := &fakeEmitter{}

	first := o.StartInterview(context.Background(), "", Profile{}, em)
	o.StartInterview(context.Background(), "", Profile{}, em)
	o.StartInterview(context.Background(), "", Profile{}, em)

	if _, err := o.History(first); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("evicted session error = %v, want ErrSessionNotFound", err)
	}
}

func TestHistoryUnknownSession(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	if _, err := o.History("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

// slowGenerator holds every call for a fixed delay so concurrent turns on
// one session overlap inside the generation window.
type slowGenerator struct {
	delay time.Duration
}

func (g slowGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-time.After(g.delay):
		return "Interesting. What else?", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestConcurrentMessagesSerializeWithinSession(t *testing.T) {
	o := newTestOrchestrator(t, slowGenerator{delay: 2 * time.Millisecond}, memorystore.New())
	em := &fakeEmitter{}

	sessionID := o.StartInterview(context.Background(), "", Profile{Role: "SWE"}, em)

	const messages = 8
	var wg sync.WaitGroup
	for i := 0; i < messages; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o.HandleMessage(context.Background(), sessionID, fmt.Sprintf("answer %d", i), em)
		}(i)
	}
	wg.Wait()

	hist, err := o.History(sessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	// Greeting plus one candidate/interviewer pair per message, strictly
	// alternating: overlapping turns must never interleave their appends.
	if len(hist.Context) != 1+2*messages {
		t.Fatalf("transcript length = %d, want %d", len(hist.Context), 1+2*messages)
	}
	for i, turn := range hist.Context {
		want := SpeakerInterviewer
		if i%2 == 1 {
			want = SpeakerCandidate
		}
		if turn.Speaker != want {
			t.Fatalf("turn %d speaker = %s, want %s", i, turn.Speaker, want)
		}
	}
}

// gateGenerator blocks calls whose prompt carries the marker utterance until
// the gate is released; everything else returns immediately.
type gateGenerator struct {
	marker string
	gate   chan struct{}
}

func (g gateGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, g.marker) {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "Tell me more.", nil
}

func TestSlowSessionDoesNotBlockOthers(t *testing.T) {
	gate := make(chan struct{})
	o := newTestOrchestrator(t, gateGenerator{marker: "hold my turn", gate: gate}, nil)

	emA := &fakeEmitter{}
	emB := &fakeEmitter{}
	sessionA := o.StartInterview(context.Background(), "", Profile{}, emA)
	sessionB := o.StartInterview(context.Background(), "", Profile{}, emB)

	aDone := make(chan struct{})
	go func() {
		defer close(aDone)
		o.HandleMessage(context.Background(), sessionA, "hold my turn", emA)
	}()

	// Session B completes while session A is still parked in generation.
	o.HandleMessage(context.Background(), sessionB, "a quick answer", emB)

	histB, err := o.History(sessionB)
	if err != nil {
		t.Fatalf("History(B): %v", err)
	}
	if len(histB.Context) != 3 {
		t.Errorf("session B transcript length = %d, want 3", len(histB.Context))
	}

	select {
	case <-aDone:
		t.Fatal("session A finished before its generation was released")
	default:
	}

	close(gate)
	select {
	case <-aDone:
	case <-time.After(5 * time.Second):
		t.Fatal("session A did not finish after release")
	}

	histA, err := o.History(sessionA)
	if err != nil {
		t.Fatalf("History(A): %v", err)
	}
	if len(histA.Context) != 3 {
		t.Errorf("session A transcript length = %d, want 3", len(histA.Context))
	}
}

func TestPromptTokenCounting(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)
	if o.codec == nil {
		t.Fatal("tokenizer codec unavailable")
	}

	short := o.promptTokens("hello")
	long := o.promptTokens(strings.Repeat("tell me about your last project ", 50))
	if short <= 0 {
		t.Errorf("short prompt tokens = %d, want > 0", short)
	}
	if long <= short {
		t.Errorf("token counts short=%d long=%d, want longer prompt to count more", short, long)
	}
}
