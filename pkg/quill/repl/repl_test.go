package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sambeau/quill/pkg/quill/settings"
)

func newSession(s settings.LangSettings) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	return NewSession(&out, Options{Settings: s, Locale: "en"}), &out
}

func TestHandleTokens(t *testing.T) {
	s, out := newSession(settings.New())
	complete, quit := s.Handle(`x = 1200 + "hi"`)
	if quit || complete != `x = 1200 + "hi"` {
		t.Fatalf("Handle = %q, %v", complete, quit)
	}
	got := out.String()
	for _, want := range []string{"1:1", "Ident", "Plus", "LiteralString", "1,200", "5 tokens, 1 statements"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestHandleMultiLine(t *testing.T) {
	s, out := newSession(settings.New())
	if complete, _ := s.Handle("f(1,"); complete != "" || !s.Pending() {
		t.Fatal("unclosed call should wait for more input")
	}
	if s.Prompt() != CONTINUATION_PROMPT {
		t.Errorf("prompt = %q", s.Prompt())
	}
	complete, _ := s.Handle("  2)")
	if complete != "f(1,\n  2)" || s.Pending() {
		t.Errorf("complete = %q", complete)
	}
	if !strings.Contains(out.String(), "1 statements") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestHandleErrors(t *testing.T) {
	s, out := newSession(settings.New())
	s.Handle("f(1]")
	if !strings.Contains(out.String(), "Syntax Error") || s.Pending() {
		t.Errorf("output:\n%s", out.String())
	}

	limited := settings.New()
	limited.MaxScriptLength = 3
	s, out = newSession(limited)
	s.Handle("x = 12")
	if !strings.Contains(out.String(), "Limit Error") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestQuit(t *testing.T) {
	s, _ := newSession(settings.New())
	for _, in := range []string{"exit", "  quit "} {
		if _, quit := s.Handle(in); !quit {
			t.Errorf("%q should quit", in)
		}
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		cmd  string
		want string
	}{
		{":help", ":prec <op>"},
		{":prec *", "* has precedence 6"},
		{":prec", "(    9"},
		{":prec =", "not a registered operator"},
		{":limits", "unbounded"},
		{":keywords", "function"},
		{":let n 1234567", "n = 1,234,567"},
		{":let d @2024-01-31", "d = January 31, 2024"},
		{":let x y", "is not a single literal"},
		{":vars", "(no variables)"},
		{":nope", "Unknown command"},
		{":raw", "Raw output mode ON"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			s, out := newSession(settings.New())
			s.Handle(tt.cmd)
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("%s output missing %q:\n%s", tt.cmd, tt.want, out.String())
			}
		})
	}
}

func TestLetAndVars(t *testing.T) {
	s, out := newSession(settings.New())
	s.Handle(`:let name "quill"`)
	s.Handle(":let n 42")
	out.Reset()
	s.Handle(":vars")
	got := out.String()
	if !strings.Contains(got, "name: string = quill") || !strings.Contains(got, "n: number = 42") {
		t.Errorf(":vars output:\n%s", got)
	}

	s.Handle(":clear")
	out.Reset()
	s.Handle(":vars")
	if !strings.Contains(out.String(), "(no variables)") {
		t.Errorf("after :clear:\n%s", out.String())
	}
}

func TestVarsTruncatesOnRunes(t *testing.T) {
	s, out := newSession(settings.New())
	long := strings.Repeat("é", 70)
	s.Handle(`:let accents "` + long + `"`)
	out.Reset()
	s.Handle(":vars")

	want := "  accents: string = " + strings.Repeat("é", 57) + "...\n"
	if out.String() != want {
		t.Errorf(":vars output = %q, want %q", out.String(), want)
	}
	if got := truncate("short", 60); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
}

func TestLetRespectsScopeLimit(t *testing.T) {
	limited := settings.New()
	limited.MaxScopeVariables = 1
	s, out := newSession(limited)
	s.Handle(":let a 1")
	s.Handle(":let b 2")
	if !strings.Contains(out.String(), "Limit Error") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRawMode(t *testing.T) {
	s, out := newSession(settings.New())
	s.Handle(":raw")
	if s.Prompt() != PROMPT_RAW {
		t.Errorf("prompt = %q", s.Prompt())
	}
	out.Reset()
	s.Handle("a + b")
	if out.String() != "Ident\nPlus\nIdent\n" {
		t.Errorf("raw output = %q", out.String())
	}
}

func TestFilterCompletions(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"x = fun", "x = function"},
		{"ret", "return"},
		{":li", ":limits"},
	}
	for _, tt := range tests {
		got := filterCompletions(tt.line)
		if len(got) == 0 || got[0] != tt.want {
			t.Errorf("filterCompletions(%q) = %q, want %q first", tt.line, got, tt.want)
		}
	}
	if got := filterCompletions("x "); got != nil {
		t.Errorf("trailing space should not complete: %q", got)
	}
}
