// Package message parses and checks model output as a commit message.
package message

import (
	"fmt"
	"regexp"
	"strings"
)

var conventionalRe = regexp.MustCompile(`^(feat|fix|docs|style|refactor|perf|test|build|ci|chore)(\(.+\))?!?:\s+.+`)

const maxTitleLen = 72

// CommitMessage is a parsed commit message: a one-line title and an
// optional body separated from it by a blank line.
type CommitMessage struct {
	Title string
	Body  string
}

// Parse normalizes raw model output into a CommitMessage. Markdown fences
// are stripped and the title/body split happens at the first blank line.
func Parse(raw string) CommitMessage {
	text := strings.TrimSpace(stripFences(raw))

	title, body, found := strings.Cut(text, "\n\n")
	if !found {
		// Some models emit the title and body with a single newline
		title, body, _ = strings.Cut(text, "\n")
	}

	return CommitMessage{
		Title: strings.TrimSpace(title),
		Body:  strings.TrimSpace(body),
	}
}

// String re-joins title and body into the final commit message text.
func (m CommitMessage) String() string {
	if m.Body == "" {
		return m.Title
	}
	return m.Title + "\n\n" + m.Body
}

// Check verifies the title against the Conventional Commits shape.
// A failing check is advisory: well-formed prose is still usable, so the
// caller decides whether to warn or reject.
func (m CommitMessage) Check() error {
	if m.Title == "" {
		return fmt.Errorf("empty title")
	}
	if !conventionalRe.MatchString(m.Title) {
		return fmt.Errorf("title %q does not match type(scope): description", m.Title)
	}
	if len(m.Title) > maxTitleLen {
		return fmt.Errorf("title is %d characters, limit is %d", len(m.Title), maxTitleLen)
	}
	return nil
}

// stripFences removes a wrapping markdown code fence, with or without a
// language tag.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag on the opening fence line
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		firstLine := trimmed[:i]
		if !strings.ContainsAny(firstLine, " \t") && len(firstLine) < 20 {
			trimmed = trimmed[i+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
