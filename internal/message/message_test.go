package message

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		title string
		body  string
	}{
		{
			"title only",
			"feat(x): add y",
			"feat(x): add y",
			"",
		},
		{
			"title and body",
			"fix(git): handle renamed files\n\nRenames are reported with an R score prefix.",
			"fix(git): handle renamed files",
			"Renames are reported with an R score prefix.",
		},
		{
			"single newline split",
			"feat(x): add y\nsupporting detail",
			"feat(x): add y",
			"supporting detail",
		},
		{
			"surrounding whitespace",
			"\n  feat(x): add y  \n",
			"feat(x): add y",
			"",
		},
		{
			"markdown fence",
			"```\nfeat(x): add y\n```",
			"feat(x): add y",
			"",
		},
		{
			"fence with language tag",
			"```text\nfeat(x): add y\n\nbody line\n```",
			"feat(x): add y",
			"body line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Parse(tt.raw)
			if msg.Title != tt.title {
				t.Errorf("Title = %q, want %q", msg.Title, tt.title)
			}
			if msg.Body != tt.body {
				t.Errorf("Body = %q, want %q", msg.Body, tt.body)
			}
		})
	}
}

func TestString(t *testing.T) {
	msg := CommitMessage{Title: "feat(x): add y"}
	if msg.String() != "feat(x): add y" {
		t.Errorf("String() = %q", msg.String())
	}

	msg.Body = "some detail"
	if msg.String() != "feat(x): add y\n\nsome detail" {
		t.Errorf("String() = %q", msg.String())
	}
}

func TestParseRoundTrip(t *testing.T) {
	raw := "feat(x): add y"
	if got := Parse(raw).String(); got != raw {
		t.Errorf("Parse(%q).String() = %q", raw, got)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		title string
		ok    bool
	}{
		{"scoped", "feat(parser): add nil check", true},
		{"unscoped", "fix: handle timeout", true},
		{"breaking", "refactor(api)!: rename fields", true},
		{"unknown type", "wibble(x): do things", false},
		{"no description", "feat(x):", false},
		{"plain prose", "Add nil check to parser", false},
		{"empty", "", false},
		{"overlong", "feat(x): " + strings.Repeat("x", 80), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CommitMessage{Title: tt.title}.Check()
			if tt.ok && err != nil {
				t.Errorf("Check(%q) = %v, want nil", tt.title, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("Check(%q) = nil, want error", tt.title)
			}
		})
	}
}
