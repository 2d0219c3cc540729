// Package diff assembles and summarizes the staged changes sent to the model.
package diff

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/freema/diffwhisperer/internal/git"
)

// contextLines is how many changed lines per file are quoted in the summary.
const contextLines = 3

// truncationMarker is appended when hunk text is cut at the byte ceiling.
const truncationMarker = "\n... (diff truncated)"

// FileChange is one changed file: path, change kind, and its unified-diff hunks.
type FileChange struct {
	Path  string
	Kind  git.ChangeKind
	Hunks string
}

// Payload is the per-invocation snapshot of the staged changes.
// Built once, summarized, and discarded after the generation call.
type Payload struct {
	Files []FileChange
	Stat  git.ShortStat
}

// Source is the slice of repository behavior Collect needs.
type Source interface {
	StagedFiles(ctx context.Context) ([]git.StagedFile, error)
	StagedDiff(ctx context.Context, paths ...string) (string, error)
	StagedShortStat(ctx context.Context) (git.ShortStat, error)
}

// Paths returns the changed file paths in staging order.
func (p *Payload) Paths() []string {
	paths := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Collect builds a Payload from the repository's staged changes.
// Hunk text is capped at maxBytes across all files to keep prompts bounded;
// maxBytes <= 0 means unlimited.
func Collect(ctx context.Context, repo Source, maxBytes int) (*Payload, error) {
	staged, err := repo.StagedFiles(ctx)
	if err != nil {
		return nil, err
	}

	p := &Payload{Files: make([]FileChange, 0, len(staged))}
	for _, f := range staged {
		hunks, err := repo.StagedDiff(ctx, f.Path)
		if err != nil {
			return nil, fmt.Errorf("diffing %s: %w", f.Path, err)
		}
		p.Files = append(p.Files, FileChange{Path: f.Path, Kind: f.Kind, Hunks: hunks})
	}

	stat, err := repo.StagedShortStat(ctx)
	if err != nil {
		return nil, err
	}
	p.Stat = stat

	p.truncate(maxBytes)
	return p, nil
}

// truncate caps total hunk bytes, cutting the largest overage from the tail.
func (p *Payload) truncate(maxBytes int) {
	if maxBytes <= 0 {
		return
	}
	budget := maxBytes
	for i := range p.Files {
		hunks := p.Files[i].Hunks
		if len(hunks) <= budget {
			budget -= len(hunks)
			continue
		}
		if budget > 0 {
			p.Files[i].Hunks = hunks[:budget] + truncationMarker
		} else {
			p.Files[i].Hunks = truncationMarker
		}
		budget = 0
	}
}

// Summarize renders a concise per-file summary of the payload: file name,
// added/removed line counts, and the first few changed lines as context.
// Deterministic for a given payload.
func Summarize(p *Payload) string {
	parts := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		added, removed, changes := countChanges(f.Hunks)

		var b strings.Builder
		fmt.Fprintf(&b, "File: %s (%s)", path.Base(f.Path), f.Kind)
		if added > 0 || removed > 0 {
			fmt.Fprintf(&b, " (%d added, %d removed)", added, removed)
		}
		if len(changes) > 0 {
			b.WriteString("\nChanges:\n")
			b.WriteString(strings.Join(changes, "\n"))
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

// countChanges counts added/removed lines in unified-diff text and collects
// the first contextLines changed lines. File header lines (+++/---) are
// not counted as changes.
func countChanges(hunks string) (added, removed int, changes []string) {
	for _, line := range strings.Split(hunks, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			continue
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		default:
			continue
		}
		if len(changes) < contextLines {
			changes = append(changes, line)
		}
	}
	return added, removed, changes
}

// Scope derives a commit scope from the changed paths: the most common
// top-level directory, or "misc" when changes live at the repository root.
// Ties resolve to the directory seen first.
func Scope(p *Payload) string {
	if len(p.Files) == 0 {
		return "misc"
	}

	counts := make(map[string]int)
	var order []string
	for _, f := range p.Files {
		dir := "misc"
		if i := strings.IndexByte(f.Path, '/'); i > 0 {
			dir = f.Path[:i]
		}
		if counts[dir] == 0 {
			order = append(order, dir)
		}
		counts[dir]++
	}

	best := order[0]
	for _, dir := range order[1:] {
		if counts[dir] > counts[best] {
			best = dir
		}
	}
	return best
}
