package interview

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory stores long-term information about the candidate. It is populated by
// the summary collaborator at end of session and never read by the engine.
type Memory struct {
	WeakAreas       []string           `json:"weak_areas"`
	PastAvgScores   map[string]float64 `json:"past_avg_scores"`
	PracticePrompts []string           `json:"practice_prompts"`
	ResourceLinks   []string           `json:"resource_links"`
}

// Session is the unit of interview state. All fields except Memory are
// mutated exclusively by the engine while holding the session lock; Memory is
// written once through SetMemory when the summary is produced.
type Session struct {
	mu sync.Mutex

	ID             string
	Name           string
	Role           string
	Branch         string
	Specialization string
	Difficulty     string

	// Q/A history. Questions always leads Answers by zero or one entry:
	// a question is appended before its answer is awaited.
	Questions []string
	Answers   []string

	// Seed plan, fixed at creation.
	SeedQuestions        []string
	CurrentSeedIndex     int
	CurrentFollowupCount int
	NextQuestionCount    int
	Completed            bool

	StartTime time.Time
	Memory    Memory
}

// NewSession creates a session with a fresh id and the given seed plan.
func NewSession(name, role, branch, specialization, difficulty string, seedQuestions []string) *Session {
	return &Session{
		ID:             uuid.NewString(),
		Name:           name,
		Role:           role,
		Branch:         branch,
		Specialization: specialization,
		Difficulty:     difficulty,
		SeedQuestions:  seedQuestions,
		StartTime:      time.Now(),
	}
}

// Lock serializes mutating operations on the session. The engine holds the
// lock across the whole answer pipeline, including backend calls, so client
// retries for the same session cannot race on history appends.
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session lock.
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// CurrentSeed returns the seed question at the current index, if any.
func (s *Session) CurrentSeed() (string, bool) {
	if s.CurrentSeedIndex >= 0 && s.CurrentSeedIndex < len(s.SeedQuestions) {
		return s.SeedQuestions[s.CurrentSeedIndex], true
	}
	return "", false
}

// AdvanceSeed moves to the next seed question. The follow-up count resets
// here and nowhere else; NextQuestionCount increments once per advance.
// Completed flips to true when the plan is exhausted and never flips back.
func (s *Session) AdvanceSeed() {
	s.CurrentSeedIndex++
	s.CurrentFollowupCount = 0
	s.NextQuestionCount++

	if s.CurrentSeedIndex >= len(s.SeedQuestions) {
		s.Completed = true
	}
}

// LastQuestion returns the most recently asked question, if any.
func (s *Session) LastQuestion() (string, bool) {
	if len(s.Questions) == 0 {
		return "", false
	}
	return s.Questions[len(s.Questions)-1], true
}

// Transcript returns paired question/answer copies for external collaborators.
// It takes the session lock; do not call while the lock is already held.
func (s *Session) Transcript() (questions, answers []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	questions = append([]string(nil), s.Questions...)
	answers = append([]string(nil), s.Answers...)
	return questions, answers
}

// SetMemory stores the summary collaborator's long-term output. It takes the
// session lock; do not call while the lock is already held.
func (s *Session) SetMemory(mem Memory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Memory = mem
}

// Record is the serializable form of a Session used by store backends.
type Record struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Role                 string    `json:"role"`
	Branch               string    `json:"branch"`
	Specialization       string    `json:"specialization"`
	Difficulty           string    `json:"difficulty"`
	Questions            []string  `json:"questions"`
	Answers              []string  `json:"answers"`
	SeedQuestions        []string  `json:"seed_questions"`
	CurrentSeedIndex     int       `json:"current_seed_index"`
	CurrentFollowupCount int       `json:"current_followup_count"`
	NextQuestionCount    int       `json:"next_question_count"`
	Completed            bool      `json:"completed"`
	StartTime            time.Time `json:"start_time"`
	Memory               Memory    `json:"memory"`
}

// Snapshot copies the session into a Record. The caller must hold the
// session lock.
func (s *Session) Snapshot() *Record {
	return &Record{
		ID:                   s.ID,
		Name:                 s.Name,
		Role:                 s.Role,
		Branch:               s.Branch,
		Specialization:       s.Specialization,
		Difficulty:           s.Difficulty,
		Questions:            append([]string(nil), s.Questions...),
		Answers:              append([]string(nil), s.Answers...),
		SeedQuestions:        append([]string(nil), s.SeedQuestions...),
		CurrentSeedIndex:     s.CurrentSeedIndex,
		CurrentFollowupCount: s.CurrentFollowupCount,
		NextQuestionCount:    s.NextQuestionCount,
		Completed:            s.Completed,
		StartTime:            s.StartTime,
		Memory:               s.Memory,
	}
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cloned := *r
	cloned.Questions = append([]string(nil), r.Questions...)
	cloned.Answers = append([]string(nil), r.Answers...)
	cloned.SeedQuestions = append([]string(nil), r.SeedQuestions...)
	cloned.Memory.WeakAreas = append([]string(nil), r.Memory.WeakAreas...)
	cloned.Memory.PracticePrompts = append([]string(nil), r.Memory.PracticePrompts...)
	cloned.Memory.ResourceLinks = append([]string(nil), r.Memory.ResourceLinks...)
	if r.Memory.PastAvgScores != nil {
		cloned.Memory.PastAvgScores = make(map[string]float64, len(r.Memory.PastAvgScores))
		for k, v := range r.Memory.PastAvgScores {
			cloned.Memory.PastAvgScores[k] = v
		}
	}
	return &cloned
}
