package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), CodeGeneric},
		{"no changes", NoChanges("nothing staged"), CodeNoChanges},
		{"repo not found", RepoNotFound("not a repository: %s", "/tmp/x"), CodeRepoNotFound},
		{"api", API("status 401"), CodeAPI},
		{"empty response", EmptyResponse("no candidates"), CodeEmptyResponse},
		{"commit", Commit("git rejected commit"), CodeCommit},
		{"validation", Validation("bad flag"), CodeValidation},
		{"wrapped app error", fmt.Errorf("running generate: %w", NoChanges("nothing staged")), CodeNoChanges},
		{"wrapped sentinel", fmt.Errorf("calling gemini: %w", ErrAPI), CodeAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.code {
				t.Errorf("ExitCode() = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NoChanges("nothing staged in %s", ".")
	if !errors.Is(err, ErrNoChanges) {
		t.Error("expected errors.Is(err, ErrNoChanges) to hold")
	}
	if err.Error() != "nothing staged in ." {
		t.Errorf("Error() = %q", err.Error())
	}
}
