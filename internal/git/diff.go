package git

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/freema/diffwhisperer/internal/apperror"
)

// ChangeKind classifies a staged file change.
type ChangeKind string

const (
	KindAdded    ChangeKind = "added"
	KindModified ChangeKind = "modified"
	KindDeleted  ChangeKind = "deleted"
	KindRenamed  ChangeKind = "renamed"
	KindCopied   ChangeKind = "copied"
	KindUnknown  ChangeKind = "unknown"
)

// StagedFile is one changed path in the index.
type StagedFile struct {
	Path string
	Kind ChangeKind
}

// ShortStat holds aggregate staged diff statistics.
type ShortStat struct {
	Insertions int
	Deletions  int
}

// StagedFiles lists the files staged for the next commit.
// Returns apperror.ErrNoChanges when the index matches HEAD.
func (r *Repository) StagedFiles(ctx context.Context) ([]StagedFile, error) {
	out, err := r.output(ctx, "diff", "--cached", "--name-status", "-M")
	if err != nil {
		return nil, err
	}

	files := parseNameStatus(out)
	if len(files) == 0 {
		return nil, apperror.NoChanges("nothing staged in %s (did you forget git add?)", r.workDir)
	}
	return files, nil
}

// StagedDiff returns the unified diff of the index against HEAD,
// restricted to the given paths when any are supplied.
func (r *Repository) StagedDiff(ctx context.Context, paths ...string) (string, error) {
	args := []string{"diff", "--cached"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	return r.output(ctx, args...)
}

// StagedShortStat runs git diff --cached --shortstat and parses the totals.
func (r *Repository) StagedShortStat(ctx context.Context) (ShortStat, error) {
	out, err := r.output(ctx, "diff", "--cached", "--shortstat")
	if err != nil {
		return ShortStat{}, err
	}
	ins, del := parseShortStat(out)
	return ShortStat{Insertions: ins, Deletions: del}, nil
}

// parseNameStatus parses git diff --name-status output like:
//
//	M\tinternal/config/config.go
//	R100\told.go\tnew.go
//
// For renames and copies the destination path is reported.
func parseNameStatus(out string) []StagedFile {
	var files []StagedFile
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}

		status := fields[0]
		path := fields[len(fields)-1]

		files = append(files, StagedFile{Path: path, Kind: kindFromStatus(status)})
	}
	return files
}

func kindFromStatus(status string) ChangeKind {
	if status == "" {
		return KindUnknown
	}
	switch status[0] {
	case 'A':
		return KindAdded
	case 'M':
		return KindModified
	case 'D':
		return KindDeleted
	case 'R':
		return KindRenamed
	case 'C':
		return KindCopied
	default:
		return KindUnknown
	}
}

var shortStatRegex = regexp.MustCompile(`(\d+) insertions?\(\+\).*?(\d+) deletions?\(-\)|(\d+) insertions?\(\+\)|(\d+) deletions?\(-\)`)

// parseShortStat parses git diff --shortstat output like:
// "3 files changed, 142 insertions(+), 38 deletions(-)"
func parseShortStat(s string) (insertions, deletions int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0
	}

	matches := shortStatRegex.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, 0
	}

	if matches[1] != "" && matches[2] != "" {
		insertions, _ = strconv.Atoi(matches[1])
		deletions, _ = strconv.Atoi(matches[2])
		return
	}
	if matches[3] != "" {
		insertions, _ = strconv.Atoi(matches[3])
		return
	}
	if matches[4] != "" {
		deletions, _ = strconv.Atoi(matches[4])
		return
	}

	return 0, 0
}
