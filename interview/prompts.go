package interview

import (
	"strings"

	"github.com/novexa-ai/interviewd/prompt"
)

// genericElaborationPrompt is the deterministic last-resort follow-up served
// when the backend produced nothing usable.
const genericElaborationPrompt = "Could you elaborate on that?"

const (
	openingQuestionPrompt    = "Ask the opening interview question for this candidate."
	rephrasePromptFmt        = "Rephrase the following interview question concisely:\n%s"
	synthesizeQuestionPrompt = "Generate a new, unique interview question for this role. Do not repeat previous questions."

	// genericExtensionQuestion keeps the interview going when synthesis fails.
	genericExtensionQuestion = "What professional achievement are you most proud of, and why?"
)

const (
	personaTemplateName = "interviewer_persona"
	contextTemplateName = "decision_context"
)

const personaTemplate = `You are Novexa, an experienced interviewer conducting a mock interview.
Role: {{.Role}}
Branch: {{.Branch}}
Specialization: {{.Specialization}}
Difficulty: {{.Difficulty}}
Candidate name: {{.Name}}
Stay in character, be encouraging but rigorous, and keep every question to a single concise sentence.
Output only the question text with no commentary.`

const contextTemplate = `You are an experienced interviewer evaluating a candidate's latest answer.
Role: {{.Role}}
Branch: {{.Branch}}
Specialization: {{.Specialization}}
Difficulty: {{.Difficulty}}

Questions asked so far:
{{.Questions}}

Answers given so far:
{{.Answers}}

Latest answer:
{{.LatestAnswer}}`

const decisionInstruction = `Decide whether the candidate's latest answer needs a follow-up or we should proceed to the next seed question.
Output EXACTLY a JSON object on a single line with fields: action, strength, follow_up_question.
 - action: one of "follow_up", "next_question", "end".
 - strength: one of "weak", "moderate", "strong" (your estimation of the latest answer).
 - follow_up_question: a single concise question (only if action is follow_up). If action is not follow_up, provide empty string.
Do not include any extra text or explanation, only the JSON.`

// DefaultPrompts returns a manager preloaded with the engine's templates.
func DefaultPrompts() *prompt.Manager {
	m := prompt.NewManager()
	// Registration of compile-time templates cannot fail.
	_ = m.RegisterString(personaTemplateName, personaTemplate)
	_ = m.RegisterString(contextTemplateName, contextTemplate)
	return m
}

func personaVars(s *Session) map[string]interface{} {
	return map[string]interface{}{
		"Name":           s.Name,
		"Role":           s.Role,
		"Branch":         s.Branch,
		"Specialization": s.Specialization,
		"Difficulty":     s.Difficulty,
	}
}

// renderPersona produces the interviewer system prompt for question
// generation, rephrasing and synthesis.
func renderPersona(m *prompt.Manager, s *Session) string {
	out, err := m.Render(personaTemplateName, personaVars(s))
	if err != nil {
		return "You are an experienced interviewer. Ask one concise interview question."
	}
	return out
}

// renderDecisionContext produces the arbiter's system prompt embedding the
// session profile and Q/A history. When a tokenizer is configured the oldest
// history entries are dropped to fit the token budget.
func renderDecisionContext(m *prompt.Manager, tok *prompt.Tokenizer, budget int, s *Session, latestAnswer string) string {
	questions := s.Questions
	answers := s.Answers
	if tok != nil && budget > 0 {
		questions = tok.TrimHistory(questions, budget/2)
		answers = tok.TrimHistory(answers, budget/2)
	}

	vars := personaVars(s)
	vars["Questions"] = strings.Join(questions, "\n")
	vars["Answers"] = strings.Join(answers, "\n")
	vars["LatestAnswer"] = latestAnswer

	out, err := m.Render(contextTemplateName, vars)
	if err != nil {
		b := prompt.NewBuilder()
		b.AddLine("You are an experienced interviewer evaluating a candidate's latest answer.")
		b.AddSection("Latest answer", latestAnswer)
		return b.Build()
	}
	return out
}
