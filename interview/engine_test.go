package interview

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/novexa-ai/interviewd/config"
	apperrors "github.com/novexa-ai/interviewd/errors"
	"github.com/novexa-ai/interviewd/provider"
	"github.com/novexa-ai/interviewd/seedbank"
)

const (
	weakAnswer   = "I used caching."
	strongAnswer = "In my previous project I designed the caching layer, measured latency carefully, deployed it across regions, and reduced page load time by forty percent overall for customers."
)

// stubBank serves a fixed profile or error.
type stubBank struct {
	profile *seedbank.RoleProfile
	err     error
}

func (b *stubBank) LoadRole(ctx context.Context, role string) (*seedbank.RoleProfile, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.profile, nil
}

// scriptedBackend answers arbiter and generation calls separately and counts
// arbiter consultations.
type scriptedBackend struct {
	decision      string
	decisionCalls int
	generated     string
}

func (b *scriptedBackend) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if userPrompt == decisionInstruction {
		b.decisionCalls++
		return b.decision, nil
	}
	return b.generated, nil
}

func testProfile(maxFollowups int) *seedbank.RoleProfile {
	return &seedbank.RoleProfile{
		Name: "engineer",
		FollowUpRules: config.FollowUpRules{
			WeakAnswerThresholdWords: 20,
			MaxFollowups:             maxFollowups,
		},
	}
}

func testEngineConfig() config.Engine {
	return config.Engine{
		SeedPlanSize:          3,
		MinNextQuestionsToEnd: 5,
		MinInterviewDuration:  10 * time.Minute,
		GenerateTimeout:       time.Minute,
	}
}

// seededEngine builds an engine plus a live session with the given seed plan
// already registered, with the first question served.
func seededEngine(t *testing.T, cfg config.Engine, backend provider.Backend, bank seedbank.Bank, seeds []string) (*Engine, *Session) {
	t.Helper()
	st := NewSessionStore()
	e := NewEngine(cfg, backend, bank, st)

	sess := NewSession("Ada", "engineer", "software", "", "medium", seeds)
	sess.Questions = []string{seeds[0]}
	if err := st.Add(context.Background(), sess); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return e, sess
}

func TestSubmitAnswerFollowUpThenForcedAdvance(t *testing.T) {
	backend := &scriptedBackend{
		decision:  `{"action":"follow_up","strength":"weak","follow_up_question":"Can you give a concrete example?"}`,
		generated: "Rephrased seed question",
	}
	bank := &stubBank{profile: testProfile(2)}
	e, sess := seededEngine(t, testEngineConfig(), backend, bank, []string{"q1", "q2", "q3"})
	ctx := context.Background()

	// Two follow-ups within budget.
	for i := 1; i <= 2; i++ {
		res, err := e.SubmitAnswer(ctx, sess.ID, weakAnswer)
		if err != nil {
			t.Fatalf("SubmitAnswer %d failed: %v", i, err)
		}
		if res.Action != ActionFollowUp {
			t.Fatalf("Answer %d: expected follow_up, got %s", i, res.Action)
		}
		if res.Text != "Can you give a concrete example?" {
			t.Errorf("Answer %d: unexpected follow-up text %q", i, res.Text)
		}
		if sess.CurrentFollowupCount != i {
			t.Errorf("Answer %d: expected follow-up count %d, got %d", i, i, sess.CurrentFollowupCount)
		}
	}

	// Third follow-up verdict exceeds the budget: forced advance.
	res, err := e.SubmitAnswer(ctx, sess.ID, weakAnswer)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if res.Action != ActionNextQuestion {
		t.Errorf("Expected forced advance, got %s", res.Action)
	}
	if res.Text != "Rephrased seed question" {
		t.Errorf("Expected rephrased seed, got %q", res.Text)
	}
	if sess.CurrentSeedIndex != 1 {
		t.Errorf("Expected seed index 1, got %d", sess.CurrentSeedIndex)
	}
	if sess.CurrentFollowupCount != 0 {
		t.Errorf("Follow-up count must reset on advance, got %d", sess.CurrentFollowupCount)
	}
	if sess.NextQuestionCount != 1 {
		t.Errorf("Expected exactly one advance counted, got %d", sess.NextQuestionCount)
	}
	if sess.Completed {
		t.Errorf("Session must not be completed with seeds remaining")
	}
}

func TestSubmitAnswerStrongSkipsArbiter(t *testing.T) {
	backend := &scriptedBackend{generated: "Rephrased seed question"}
	bank := &stubBank{profile: testProfile(3)}
	e, sess := seededEngine(t, testEngineConfig(), backend, bank, []string{"q1", "q2"})

	res, err := e.SubmitAnswer(context.Background(), sess.ID, strongAnswer)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if res.Action != ActionNextQuestion {
		t.Errorf("Expected next_question, got %s", res.Action)
	}
	if backend.decisionCalls != 0 {
		t.Errorf("Strong answer must not consult the arbiter, got %d calls", backend.decisionCalls)
	}
}

func TestSubmitAnswerAlwaysConsultArbiter(t *testing.T) {
	backend := &scriptedBackend{
		decision:  `{"action":"next_question","strength":"strong","follow_up_question":""}`,
		generated: "Rephrased seed question",
	}
	bank := &stubBank{profile: testProfile(3)}
	st := NewSessionStore()
	e := NewEngine(testEngineConfig(), backend, bank, st, WithAlwaysConsultArbiter())

	sess := NewSession("Ada", "engineer", "software", "", "medium", []string{"q1", "q2"})
	sess.Questions = []string{"q1"}
	if err := st.Add(context.Background(), sess); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := e.SubmitAnswer(context.Background(), sess.ID, strongAnswer); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if backend.decisionCalls != 1 {
		t.Errorf("Expected one arbiter consultation, got %d", backend.decisionCalls)
	}
}

func TestSubmitAnswerConfirmationFastPath(t *testing.T) {
	backend := &scriptedBackend{decision: `{"action":"follow_up","strength":"weak","follow_up_question":"More?"}`}
	bank := &stubBank{profile: testProfile(3)}
	e, sess := seededEngine(t, testEngineConfig(), backend, bank, []string{"q1"})

	sess.Questions = []string{"Are you sure you want to end the interview?"}

	res, err := e.SubmitAnswer(context.Background(), sess.ID, "Yes, I'm sure.")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if res.Action != ActionEnd {
		t.Errorf("Expected end, got %s", res.Action)
	}
	if !sess.Completed {
		t.Errorf("Confirmed end must complete the session")
	}
	if backend.decisionCalls != 0 {
		t.Errorf("Confirmation fast path must bypass arbitration, got %d calls", backend.decisionCalls)
	}
}

func TestSubmitAnswerExtendsWhenFloorsUnmet(t *testing.T) {
	backend := &scriptedBackend{generated: "Synthesized question"}
	bank := &stubBank{profile: testProfile(3)}
	e, sess := seededEngine(t, testEngineConfig(), backend, bank, []string{"q1"})
	ctx := context.Background()

	res, err := e.SubmitAnswer(ctx, sess.ID, strongAnswer)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if res.Action != ActionNextQuestion {
		t.Errorf("Expected extension question, got %s", res.Action)
	}
	if res.Text != "Synthesized question" {
		t.Errorf("Expected synthesized question, got %q", res.Text)
	}
	if !sess.Completed {
		t.Errorf("Exhausting the plan must mark the session completed")
	}

	// Completed sessions short-circuit further answers.
	res, err = e.SubmitAnswer(ctx, sess.ID, strongAnswer)
	if err != nil {
		t.Fatalf("SubmitAnswer on completed session failed: %v", err)
	}
	if res.Action != ActionEnd {
		t.Errorf("Expected end on completed session, got %s", res.Action)
	}
	if res.Text != alreadyCompletedText {
		t.Errorf("Unexpected completed text: %q", res.Text)
	}
}

func TestSubmitAnswerNaturalEndWhenFloorsMet(t *testing.T) {
	cfg := testEngineConfig()
	cfg.MinNextQuestionsToEnd = 1
	cfg.MinInterviewDuration = 0

	backend := &scriptedBackend{generated: "Synthesized question"}
	bank := &stubBank{profile: testProfile(3)}
	e, sess := seededEngine(t, cfg, backend, bank, []string{"q1"})

	res, err := e.SubmitAnswer(context.Background(), sess.ID, strongAnswer)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if res.Action != ActionEnd {
		t.Errorf("Expected natural end, got %s", res.Action)
	}
	if res.Text != completedText {
		t.Errorf("Unexpected end text: %q", res.Text)
	}
	if !sess.Completed {
		t.Errorf("Natural end must complete the session")
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	backend := &scriptedBackend{}
	bank := &stubBank{profile: testProfile(3)}
	e, sess := seededEngine(t, testEngineConfig(), backend, bank, []string{"q1"})
	ctx := context.Background()

	if _, err := e.SubmitAnswer(ctx, sess.ID, "   "); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for blank answer, got %v", err)
	}
	if _, err := e.SubmitAnswer(ctx, "missing", weakAnswer); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestStartWithProfile(t *testing.T) {
	profile := testProfile(3)
	profile.Technical = map[string][]string{"medium": {"Only question"}}

	backend := &scriptedBackend{generated: "Generated opening"}
	e := NewEngine(testEngineConfig(), backend, &stubBank{profile: profile}, NewSessionStore())

	res, err := e.Start(context.Background(), StartRequest{Name: "Ada", Role: "engineer"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if res.SessionID == "" {
		t.Errorf("Expected a session id")
	}
	if !strings.Contains(res.NextQuestion, "Only question") {
		t.Errorf("Welcome must carry the first seed, got %q", res.NextQuestion)
	}
	if !strings.Contains(res.NextQuestion, "Hi Ada!") {
		t.Errorf("Welcome must greet by name, got %q", res.NextQuestion)
	}
	if e.Store().Len() != 1 {
		t.Errorf("Expected one live session")
	}
}

func TestStartWithoutProfileFallsBackToGeneration(t *testing.T) {
	backend := &scriptedBackend{generated: "Generated opening"}
	e := NewEngine(testEngineConfig(), backend, &stubBank{err: errors.New("no such role")}, NewSessionStore())

	res, err := e.Start(context.Background(), StartRequest{Role: "astronaut"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !strings.Contains(res.NextQuestion, "Generated opening") {
		t.Errorf("Expected generated opening, got %q", res.NextQuestion)
	}
	if !strings.Contains(res.NextQuestion, "Hi there!") {
		t.Errorf("Expected default greeting, got %q", res.NextQuestion)
	}
}

func TestStartRequiresRole(t *testing.T) {
	backend := &scriptedBackend{}
	e := NewEngine(testEngineConfig(), backend, &stubBank{}, NewSessionStore())

	if _, err := e.Start(context.Background(), StartRequest{Name: "Ada"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestEndAndDiscard(t *testing.T) {
	backend := &scriptedBackend{}
	bank := &stubBank{profile: testProfile(3)}
	e, sess := seededEngine(t, testEngineConfig(), backend, bank, []string{"q1"})
	ctx := context.Background()

	// No answers yet.
	if _, err := e.End(ctx, sess.ID); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput before any answers, got %v", err)
	}

	sess.Answers = []string{weakAnswer}
	got, err := e.End(ctx, sess.ID)
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if !got.Completed {
		t.Errorf("End must mark the session completed")
	}

	if err := e.Discard(ctx, sess.ID); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if _, err := e.store.Get(sess.ID); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("Expected session to be gone after discard, got %v", err)
	}
}
