package prompt

import (
	"strings"
	"testing"
)

func TestTemplateRender(t *testing.T) {
	tmpl, err := NewTemplate("greeting", "Hello {{.Name}}!")
	if err != nil {
		t.Fatalf("NewTemplate failed: %v", err)
	}

	out, err := tmpl.Render(map[string]interface{}{"Name": "Ada"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out != "Hello Ada!" {
		t.Errorf("Expected 'Hello Ada!', got %q", out)
	}
}

func TestNewTemplateInvalid(t *testing.T) {
	if _, err := NewTemplate("bad", "{{.Unclosed"); err == nil {
		t.Errorf("Expected parse error")
	}
}

func TestManagerRegisterAndRender(t *testing.T) {
	m := NewManager()
	if err := m.RegisterString("q", "Role: {{.Role}}"); err != nil {
		t.Fatalf("RegisterString failed: %v", err)
	}

	out, err := m.Render("q", map[string]interface{}{"Role": "engineer"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out != "Role: engineer" {
		t.Errorf("Unexpected output: %q", out)
	}

	if err := m.RegisterString("q", "duplicate"); err == nil {
		t.Errorf("Expected error on duplicate registration")
	}
	if _, err := m.Render("missing", nil); err == nil {
		t.Errorf("Expected error for unknown template")
	}
}

func TestBuilder(t *testing.T) {
	out := NewBuilder().
		AddLine("intro").
		AddSection("History", "q1\na1").
		AddFormat("latest: %s", "answer").
		Build()

	if !strings.Contains(out, "intro\n") {
		t.Errorf("Missing intro line: %q", out)
	}
	if !strings.Contains(out, "## History") {
		t.Errorf("Missing section header: %q", out)
	}
	if !strings.Contains(out, "latest: answer") {
		t.Errorf("Missing formatted part: %q", out)
	}
}
