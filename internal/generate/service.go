// Package generate runs the staged-diff to commit-message pipeline.
package generate

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"

	"github.com/freema/diffwhisperer/internal/diff"
	"github.com/freema/diffwhisperer/internal/gemini"
	"github.com/freema/diffwhisperer/internal/history"
	"github.com/freema/diffwhisperer/internal/message"
	"github.com/freema/diffwhisperer/internal/prompt"
	"github.com/freema/diffwhisperer/internal/tracing"
)

// Repo is the repository behavior the pipeline needs.
type Repo interface {
	diff.Source
	Path() string
	Head(ctx context.Context) string
	Commit(ctx context.Context, message string) error
}

// Options configures a single pipeline run.
type Options struct {
	Model        string
	MaxTokens    int
	MaxDiffBytes int
}

// Service wires inspector, summarizer, prompt builder and AI client into
// one linear pipeline. A nil history store disables recording.
type Service struct {
	repo Repo
	gen  gemini.Generator
	hist *history.Store
}

// NewService creates the pipeline service.
func NewService(repo Repo, gen gemini.Generator, hist *history.Store) *Service {
	return &Service{repo: repo, gen: gen, hist: hist}
}

// Run generates a commit message from the staged changes without committing.
func (s *Service) Run(ctx context.Context, opts Options) (message.CommitMessage, error) {
	return s.run(ctx, opts, false)
}

// RunAndCommit generates a commit message and immediately commits with it.
func (s *Service) RunAndCommit(ctx context.Context, opts Options) (message.CommitMessage, error) {
	return s.run(ctx, opts, true)
}

func (s *Service) run(ctx context.Context, opts Options, commit bool) (message.CommitMessage, error) {
	ctx, span := tracing.Tracer().Start(ctx, "generate.run",
		tracing.WithGenerationAttributes(s.repo.Path(), opts.Model, opts.MaxTokens),
	)
	defer span.End()

	payload, err := diff.Collect(ctx, s.repo, opts.MaxDiffBytes)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return message.CommitMessage{}, err
	}

	summary := diff.Summarize(payload)
	scope := diff.Scope(payload)
	slog.Debug("staged changes collected",
		"files", len(payload.Files),
		"insertions", payload.Stat.Insertions,
		"deletions", payload.Stat.Deletions,
		"scope", scope,
	)

	raw, err := s.gen.Generate(ctx, gemini.Request{
		Model:     opts.Model,
		MaxTokens: opts.MaxTokens,
		Prompt:    prompt.Build(summary, payload.Paths(), scope),
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return message.CommitMessage{}, err
	}

	msg := message.Parse(raw)
	if err := msg.Check(); err != nil {
		// Advisory: the user still sees the message and decides
		slog.Warn("generated message is not conventional", "reason", err)
	}

	if commit {
		if err := s.repo.Commit(ctx, msg.String()); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return message.CommitMessage{}, err
		}
	}

	s.record(ctx, opts, payload, msg, commit)
	return msg, nil
}

// record writes the generation to history. Failures are logged, never fatal:
// the message was already produced and must reach the user.
func (s *Service) record(ctx context.Context, opts Options, payload *diff.Payload, msg message.CommitMessage, committed bool) {
	if s.hist == nil {
		return
	}

	entry := &history.Entry{
		RepoPath:     s.repo.Path(),
		Branch:       s.repo.Head(ctx),
		Model:        opts.Model,
		FilesChanged: len(payload.Files),
		Insertions:   payload.Stat.Insertions,
		Deletions:    payload.Stat.Deletions,
		Message:      msg.String(),
		Committed:    committed,
	}
	if err := s.hist.Record(ctx, entry); err != nil {
		slog.Warn("recording history failed", "error", err)
	}
}
