package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds the pipeline can surface.
var (
	ErrValidation    = errors.New("validation error")
	ErrRepoNotFound  = errors.New("repository not found")
	ErrNoChanges     = errors.New("no staged changes")
	ErrAPI           = errors.New("api error")
	ErrEmptyResponse = errors.New("empty response")
	ErrCommit        = errors.New("commit failed")
)

// Process exit codes, one per failure kind.
const (
	CodeGeneric       = 1
	CodeValidation    = 2
	CodeRepoNotFound  = 3
	CodeNoChanges     = 4
	CodeAPI           = 5
	CodeEmptyResponse = 6
	CodeCommit        = 7
)

// AppError is a structured error with a process exit code.
type AppError struct {
	Err     error
	Message string
	Code    int
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation creates a usage/configuration error.
func Validation(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf(format, args...),
		Code:    CodeValidation,
	}
}

// RepoNotFound creates an error for a path that is not a git repository.
func RepoNotFound(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrRepoNotFound,
		Message: fmt.Sprintf(format, args...),
		Code:    CodeRepoNotFound,
	}
}

// NoChanges creates an error for an empty staging area.
func NoChanges(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrNoChanges,
		Message: fmt.Sprintf(format, args...),
		Code:    CodeNoChanges,
	}
}

// API creates an error for a failed remote generation call.
func API(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrAPI,
		Message: fmt.Sprintf(format, args...),
		Code:    CodeAPI,
	}
}

// EmptyResponse creates an error for a generation call that returned no text.
func EmptyResponse(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrEmptyResponse,
		Message: fmt.Sprintf(format, args...),
		Code:    CodeEmptyResponse,
	}
}

// Commit creates an error for a rejected git commit.
func Commit(format string, args ...interface{}) *AppError {
	return &AppError{
		Err:     ErrCommit,
		Message: fmt.Sprintf(format, args...),
		Code:    CodeCommit,
	}
}

// ExitCode extracts the process exit code from an error, defaulting to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrRepoNotFound):
		return CodeRepoNotFound
	case errors.Is(err, ErrNoChanges):
		return CodeNoChanges
	case errors.Is(err, ErrAPI):
		return CodeAPI
	case errors.Is(err, ErrEmptyResponse):
		return CodeEmptyResponse
	case errors.Is(err, ErrCommit):
		return CodeCommit
	}
	return CodeGeneric
}
