package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/novexa-ai/interviewd/config"
	apperrors "github.com/novexa-ai/interviewd/errors"
	"github.com/novexa-ai/interviewd/pkg/logging"
	"github.com/novexa-ai/interviewd/pkg/telemetry"
	"github.com/novexa-ai/interviewd/prompt"
	"github.com/novexa-ai/interviewd/provider"
	"github.com/novexa-ai/interviewd/seedbank"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	endConfirmedText     = "Thank you for your time. Ending the interview now."
	completedText        = "Interview completed. Request /end for the session summary."
	alreadyCompletedText = "Interview already completed. Request /end for the session summary."

	// seedPlanAttempts bounds duplicate re-draws while assembling the plan.
	seedPlanAttempts = 10
)

// StartRequest carries the profile for a new interview session.
type StartRequest struct {
	Name           string
	Role           string
	Branch         string
	Specialization string
	Difficulty     string
}

// StartResult is the outcome of starting a session.
type StartResult struct {
	SessionID    string
	NextQuestion string
}

// AnswerResult is the outcome of processing one candidate answer.
type AnswerResult struct {
	SessionID string
	Action    Action
	Text      string
}

// Engine drives the interview: it selects seed questions, judges each answer
// through the classifier and arbiter, advances the per-session state machine
// and applies the termination policy.
type Engine struct {
	cfg     config.Engine
	backend provider.Backend
	bank    seedbank.Bank
	store   *SessionStore
	arbiter *Arbiter
	prompts *prompt.Manager
	policy  TerminationPolicy

	// skipOnStrong advances the seed without consulting the arbiter when the
	// deterministic classifier already judged the answer strong, saving one
	// backend call per strong answer.
	skipOnStrong bool

	logger *slog.Logger
	now    func() time.Time
	tracer trace.Tracer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger overrides the engine's logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithArbiter injects a custom arbiter.
func WithArbiter(a *Arbiter) EngineOption {
	return func(e *Engine) {
		if a != nil {
			e.arbiter = a
		}
	}
}

// WithAlwaysConsultArbiter disables the skip-on-strong optimization so every
// answer goes through arbitration.
func WithAlwaysConsultArbiter() EngineOption {
	return func(e *Engine) {
		e.skipOnStrong = false
	}
}

// WithClock overrides the engine's time source; mainly useful for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an interview engine.
func NewEngine(cfg config.Engine, backend provider.Backend, bank seedbank.Bank, store *SessionStore, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:     cfg,
		backend: backend,
		bank:    bank,
		store:   store,
		prompts: DefaultPrompts(),
		policy: TerminationPolicy{
			MinNextQuestions: cfg.MinNextQuestionsToEnd,
			MinDuration:      cfg.MinInterviewDuration,
		},
		skipOnStrong: true,
		now:          time.Now,
		tracer:       otel.Tracer("github.com/novexa-ai/interviewd/interview"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.WithComponent("engine")
	}
	if e.arbiter == nil {
		e.arbiter = NewArbiter(backend)
	}
	return e
}

// Store exposes the engine's session store.
func (e *Engine) Store() *SessionStore {
	return e.store
}

// Start creates a session with a resolved seed plan and serves the first
// question. A missing or unloadable role profile falls back to a
// backend-generated opening question and is never surfaced.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	if strings.TrimSpace(req.Role) == "" {
		return nil, fmt.Errorf("%w: role cannot be empty", apperrors.ErrInvalidInput)
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	sess := NewSession(req.Name, req.Role, req.Branch, req.Specialization, req.Difficulty, nil)

	profile, err := e.bank.LoadRole(ctx, req.Role)
	if err != nil {
		e.logger.Info("role profile unavailable, generating opening question",
			"role", req.Role, "error", err)
		profile = nil
	}

	var seedPlan []string
	if profile != nil {
		seedPlan = append(seedPlan, seedbank.PickSeedQuestion(profile, req.Branch, req.Difficulty))
		for attempts := 0; len(seedPlan) < e.cfg.SeedPlanSize && attempts < seedPlanAttempts; attempts++ {
			q := seedbank.PickSeedQuestion(profile, req.Branch, req.Difficulty)
			if !containsString(seedPlan, q) {
				seedPlan = append(seedPlan, q)
			}
		}
	} else {
		q := e.generate(ctx, sess, openingQuestionPrompt, seedbank.GenericFallbackQuestion)
		seedPlan = []string{q}
	}
	sess.SeedQuestions = seedPlan

	if err := e.store.Add(ctx, sess); err != nil {
		return nil, err
	}

	first, _ := sess.CurrentSeed()
	sess.Lock()
	sess.Questions = append(sess.Questions, first)
	e.store.Persist(ctx, sess)
	sess.Unlock()

	name := req.Name
	if name == "" {
		name = "there"
	}
	welcome := fmt.Sprintf("Hi %s! I'm Novexa, your AI interviewer today. I'm looking forward to getting to know you. Let's start with... %s", name, first)

	return &StartResult{SessionID: sess.ID, NextQuestion: welcome}, nil
}

// SubmitAnswer runs the full answer pipeline: classify, arbitrate, advance
// the state machine and apply termination rules. The session lock is held
// throughout so concurrent retries for the same id serialize.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID, answer string) (res *AnswerResult, err error) {
	ctx, span := e.tracer.Start(ctx, "interview.submit_answer",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer func() { telemetry.End(span, err) }()

	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: answer cannot be empty", apperrors.ErrInvalidInput)
	}

	sess, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Completed {
		return &AnswerResult{SessionID: sess.ID, Action: ActionEnd, Text: alreadyCompletedText}, nil
	}

	sess.Answers = append(sess.Answers, answer)

	rules := e.roleRules(ctx, sess.Role)
	det := NewClassifier(rules).Classify(answer)
	span.SetAttributes(attribute.String("answer.det_strength", string(det)))

	// Explicit confirmation to end bypasses arbitration entirely.
	if lastQ, ok := sess.LastQuestion(); ok && e.policy.ConfirmsEnd(lastQ, answer) {
		sess.Completed = true
		e.store.Persist(ctx, sess)
		return &AnswerResult{SessionID: sess.ID, Action: ActionEnd, Text: endConfirmedText}, nil
	}

	var dec Decision
	if e.skipOnStrong && det == StrengthStrong {
		e.logger.Debug("strong answer, advancing without arbitration",
			"session_id", sess.ID, "star_signal", HasSTARSignal(answer))
		dec = Decision{Action: ActionNextQuestion, Strength: det}
	} else {
		dec = Normalize(e.arbiter.Decide(ctx, sess, answer), det)
	}
	span.SetAttributes(attribute.String("decision.action", string(dec.Action)))

	switch dec.Action {
	case ActionEnd:
		sess.Completed = true
		e.store.Persist(ctx, sess)
		return &AnswerResult{SessionID: sess.ID, Action: ActionEnd, Text: endConfirmedText}, nil

	case ActionFollowUp:
		if sess.CurrentFollowupCount < rules.MaxFollowups {
			sess.CurrentFollowupCount++
			sess.Questions = append(sess.Questions, dec.FollowUpQuestion)
			e.store.Persist(ctx, sess)
			return &AnswerResult{SessionID: sess.ID, Action: ActionFollowUp, Text: dec.FollowUpQuestion}, nil
		}
		// Follow-up budget exhausted: the budget, not the candidate, decided
		// to move on.
		return e.advance(ctx, sess), nil

	default:
		return e.advance(ctx, sess), nil
	}
}

// advance moves the session to its next seed, rephrasing it through the
// backend, or ends/extends the interview when the plan is exhausted.
// Called with the session lock held.
func (e *Engine) advance(ctx context.Context, sess *Session) *AnswerResult {
	sess.AdvanceSeed()

	if sess.Completed {
		if e.policy.FloorsMet(sess, e.now()) {
			e.store.Persist(ctx, sess)
			return &AnswerResult{SessionID: sess.ID, Action: ActionEnd, Text: completedText}
		}
		// Seed plan exhausted but floors unmet: synthesize a fresh question
		// and keep going.
		q := e.generate(ctx, sess, synthesizeQuestionPrompt, genericExtensionQuestion)
		sess.Questions = append(sess.Questions, q)
		e.store.Persist(ctx, sess)
		e.logger.Info("seed plan exhausted, extending interview", "session_id", sess.ID)
		return &AnswerResult{SessionID: sess.ID, Action: ActionNextQuestion, Text: q}
	}

	seed, _ := sess.CurrentSeed()
	q := e.generate(ctx, sess, fmt.Sprintf(rephrasePromptFmt, seed), seed)
	sess.Questions = append(sess.Questions, q)
	e.store.Persist(ctx, sess)
	return &AnswerResult{SessionID: sess.ID, Action: ActionNextQuestion, Text: q}
}

// End marks the session completed on an explicit end event and returns it for
// the summary collaborator.
func (e *Engine) End(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if len(sess.Answers) == 0 {
		return nil, fmt.Errorf("%w: no answers recorded yet", apperrors.ErrInvalidInput)
	}

	sess.Completed = true
	e.store.Persist(ctx, sess)
	return sess, nil
}

// Discard removes a session whose summary has been delivered.
func (e *Engine) Discard(ctx context.Context, sessionID string) error {
	return e.store.Remove(ctx, sessionID)
}

// generate calls the backend with the interviewer persona and returns the
// trimmed first line of its output, or fallback when the backend fails or
// produces nothing. Question generation never propagates backend errors.
func (e *Engine) generate(ctx context.Context, sess *Session, userPrompt, fallback string) string {
	out, err := e.backend.Generate(ctx, renderPersona(e.prompts, sess), userPrompt)
	if err != nil {
		e.logger.Warn("question generation failed, using fallback",
			"session_id", sess.ID, "error", err)
		return fallback
	}
	if line := firstNonEmptyLine(out); line != "" {
		return line
	}
	return fallback
}

// roleRules loads the per-role follow-up rules, falling back to defaults when
// the profile is unavailable.
func (e *Engine) roleRules(ctx context.Context, role string) config.FollowUpRules {
	profile, err := e.bank.LoadRole(ctx, role)
	if err != nil || profile == nil {
		return config.DefaultFollowUpRules()
	}
	return profile.FollowUpRules.Normalize()
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
