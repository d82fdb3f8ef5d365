package interview

import (
	"testing"
)

func TestNewSession(t *testing.T) {
	s := NewSession("Ada", "engineer", "software", "backend", "medium", []string{"q1"})

	if s.ID == "" {
		t.Errorf("Expected a generated session id")
	}
	if s.Role != "engineer" {
		t.Errorf("Expected role engineer, got %s", s.Role)
	}
	if s.StartTime.IsZero() {
		t.Errorf("Expected start time to be set")
	}
	if s.Completed {
		t.Errorf("New session must not be completed")
	}

	other := NewSession("Ada", "engineer", "software", "backend", "medium", nil)
	if s.ID == other.ID {
		t.Errorf("Session ids must be unique")
	}
}

func TestCurrentSeed(t *testing.T) {
	s := NewSession("", "engineer", "", "", "medium", []string{"q1", "q2"})

	seed, ok := s.CurrentSeed()
	if !ok || seed != "q1" {
		t.Errorf("Expected q1, got %q ok=%v", seed, ok)
	}

	s.CurrentSeedIndex = 2
	if _, ok := s.CurrentSeed(); ok {
		t.Errorf("Expected no seed past the plan")
	}
}

func TestAdvanceSeed(t *testing.T) {
	s := NewSession("", "engineer", "", "", "medium", []string{"q1", "q2"})
	s.CurrentFollowupCount = 2

	s.AdvanceSeed()
	if s.CurrentSeedIndex != 1 {
		t.Errorf("Expected seed index 1, got %d", s.CurrentSeedIndex)
	}
	if s.CurrentFollowupCount != 0 {
		t.Errorf("Follow-up count must reset on advance, got %d", s.CurrentFollowupCount)
	}
	if s.NextQuestionCount != 1 {
		t.Errorf("Expected next question count 1, got %d", s.NextQuestionCount)
	}
	if s.Completed {
		t.Errorf("Session must not complete with seeds remaining")
	}

	s.AdvanceSeed()
	if !s.Completed {
		t.Errorf("Session must complete when the plan is exhausted")
	}
	if s.NextQuestionCount != 2 {
		t.Errorf("Expected next question count 2, got %d", s.NextQuestionCount)
	}

	// Completed never flips back.
	s.AdvanceSeed()
	if !s.Completed {
		t.Errorf("Completed must be monotonic")
	}
}

func TestLastQuestion(t *testing.T) {
	s := NewSession("", "engineer", "", "", "medium", nil)
	if _, ok := s.LastQuestion(); ok {
		t.Errorf("Expected no last question on empty history")
	}

	s.Questions = []string{"q1", "q2"}
	q, ok := s.LastQuestion()
	if !ok || q != "q2" {
		t.Errorf("Expected q2, got %q ok=%v", q, ok)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := NewSession("Ada", "engineer", "", "", "medium", []string{"q1"})
	s.Questions = []string{"q1"}
	s.Answers = []string{"a1"}

	s.Lock()
	rec := s.Snapshot()
	s.Unlock()

	rec.Questions[0] = "mutated"
	rec.Answers = append(rec.Answers, "extra")

	if s.Questions[0] != "q1" {
		t.Errorf("Snapshot mutation leaked into the session")
	}
	if len(s.Answers) != 1 {
		t.Errorf("Snapshot mutation leaked into the session answers")
	}
}

func TestRecordClone(t *testing.T) {
	rec := &Record{
		ID:        "id-1",
		Questions: []string{"q1"},
		Memory: Memory{
			WeakAreas:     []string{"clarity"},
			PastAvgScores: map[string]float64{"clarity": 2.5},
		},
	}

	cloned := rec.Clone()
	cloned.Questions[0] = "mutated"
	cloned.Memory.WeakAreas[0] = "mutated"
	cloned.Memory.PastAvgScores["clarity"] = 9

	if rec.Questions[0] != "q1" {
		t.Errorf("Clone shares the questions slice")
	}
	if rec.Memory.WeakAreas[0] != "clarity" {
		t.Errorf("Clone shares the weak areas slice")
	}
	if rec.Memory.PastAvgScores["clarity"] != 2.5 {
		t.Errorf("Clone shares the scores map")
	}

	var nilRec *Record
	if nilRec.Clone() != nil {
		t.Errorf("Cloning nil must return nil")
	}
}

func TestTranscript(t *testing.T) {
	s := NewSession("", "engineer", "", "", "medium", nil)
	s.Questions = []string{"q1", "q2"}
	s.Answers = []string{"a1"}

	questions, answers := s.Transcript()
	if len(questions) != 2 || len(answers) != 1 {
		t.Fatalf("Unexpected transcript sizes: %d questions, %d answers", len(questions), len(answers))
	}

	questions[0] = "mutated"
	if s.Questions[0] != "q1" {
		t.Errorf("Transcript mutation leaked into the session")
	}
}
