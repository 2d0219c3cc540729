package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/freema/diffwhisperer/internal/apperror"
)

// Repository runs git commands against a single working directory.
// All repository access goes through the system git binary; nothing
// here reimplements diffing.
type Repository struct {
	workDir string
}

// Open binds a Repository to the given path and verifies it is inside
// a git work tree.
func Open(ctx context.Context, path string) (*Repository, error) {
	if path == "" {
		path = "."
	}
	r := &Repository{workDir: path}

	if _, err := os.Stat(path); err != nil {
		return nil, apperror.RepoNotFound("path does not exist: %s", path)
	}
	if _, err := r.output(ctx, "rev-parse", "--is-inside-work-tree"); err != nil {
		return nil, apperror.RepoNotFound("not a git repository: %s", path)
	}
	return r, nil
}

// Path returns the bound working directory.
func (r *Repository) Path() string {
	return r.workDir
}

// Head returns the current branch name, or the short commit SHA when
// HEAD is detached. Empty on an unborn branch.
func (r *Repository) Head(ctx context.Context) string {
	out, err := r.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	branch := strings.TrimSpace(out)
	if branch != "" && branch != "HEAD" {
		return branch
	}
	out, err = r.output(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// run executes a git command, discarding stdout.
func (r *Repository) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.workDir

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(stderr.String()))
	}
	return nil
}

// output executes a git command and returns stdout.
func (r *Repository) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.workDir

	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}
