package interview

// Action is the normalized outcome of answer arbitration.
type Action string

const (
	ActionFollowUp     Action = "follow_up"
	ActionNextQuestion Action = "next_question"
	ActionEnd          Action = "end"
)

// Valid reports whether the action is one of the three enumerated values.
func (a Action) Valid() bool {
	switch a {
	case ActionFollowUp, ActionNextQuestion, ActionEnd:
		return true
	}
	return false
}

// Decision is the arbiter's normalized verdict on an answer. FollowUpQuestion
// is non-empty whenever Action is ActionFollowUp.
type Decision struct {
	Action           Action
	Strength         Strength
	FollowUpQuestion string
}

// Normalize reconciles a decision with the deterministic classifier's second
// opinion. An invalid or missing action becomes a follow-up when the
// heuristic judged the answer weak or moderate, otherwise an advance.
func Normalize(dec Decision, det Strength) Decision {
	if dec.Action.Valid() {
		return dec
	}
	if det == StrengthWeak || det == StrengthModerate {
		dec.Action = ActionFollowUp
		if dec.FollowUpQuestion == "" {
			dec.FollowUpQuestion = genericElaborationPrompt
		}
	} else {
		dec.Action = ActionNextQuestion
	}
	return dec
}
