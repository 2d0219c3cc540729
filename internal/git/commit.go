package git

import (
	"context"
	"log/slog"
	"strings"

	"github.com/freema/diffwhisperer/internal/apperror"
)

// Commit creates a commit from the current index with the given message.
func (r *Repository) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return apperror.Commit("refusing to commit with an empty message")
	}

	if err := r.run(ctx, "commit", "-m", message); err != nil {
		return apperror.Commit("%v", err)
	}

	slog.Info("commit created", "repo", r.workDir)
	return nil
}
