// Package prompt builds the generation prompt for commit messages.
package prompt

import (
	"fmt"
	"strings"
)

// CommitTypes are the allowed Conventional Commits types, in the order
// they are offered to the model.
var CommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"perf", "test", "build", "ci", "chore",
}

const template = `Analyze these staged changes and generate a git commit message following the Conventional Commits format.

Changed files: %s
Suggested scope: %s

%s

Requirements for the commit message:
1. The first line MUST be "type(scope): description"
   - type: one of [%s]
   - scope: a short noun for the affected area (use the suggested scope unless the changes clearly indicate another)
   - description: concise summary of WHAT changed, imperative mood, lower case start, no trailing period, whole line at most 72 characters
2. If the change needs explanation, leave one blank line after the first line and add 1-3 short paragraphs covering WHY the change was needed and any important details
3. Use present tense and imperative mood throughout
4. Output only the commit message itself. No markdown fences, no commentary.

Example:
feat(parser): add nil check before schema access

Prevents a crash when schema metadata is missing from older
index files. The check mirrors the one already done on write.

Generate the commit message now.`

// Build renders the prompt for the given diff summary, changed file list and
// suggested scope. Deterministic for identical inputs.
func Build(summary string, files []string, scope string) string {
	return fmt.Sprintf(template,
		strings.Join(files, ", "),
		scope,
		summary,
		strings.Join(CommitTypes, ", "),
	)
}
