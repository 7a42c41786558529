package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/riskibarqy/go-autocommit/internal/commit"
	"github.com/riskibarqy/go-autocommit/internal/git"
)

// Service orchestrates reading staged changes and producing the commit message.
type Service struct {
	Repo git.Repository
}

// Result captures the outputs of the use case.
type Result struct {
	Changes     []commit.StagedChange
	Message     commit.Message
	Committed   bool
	HookWritten bool
}

// Options selects what happens with the generated message.
type Options struct {
	// Commit records the staged changes with the generated message.
	Commit bool
	// HookPath, when set, receives the message instead of committing.
	HookPath string
}

// NewService constructs a Service with the provided dependencies.
func NewService(repo git.Repository) *Service {
	return &Service{Repo: repo}
}

// Execute reads the staged changes, synthesizes the message and applies opts.
func (s *Service) Execute(ctx context.Context, opts Options) (Result, error) {
	if s == nil || s.Repo == nil {
		return Result{}, errors.New("service not properly initialized")
	}
	logger := otelzap.Ctx(ctx)

	changes, err := s.Repo.StagedChanges(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Changes: changes,
		Message: commit.Generate(changes),
	}
	logger.Debug("Commit message generated",
		zap.Int("changes", len(changes)),
		zap.String("type", string(result.Message.Type)),
		zap.String("scope", result.Message.Scope))

	if opts.HookPath != "" {
		written, err := git.WriteMessageFile(opts.HookPath, result.Message.String())
		if err != nil {
			return Result{}, err
		}
		result.HookWritten = written
		if !written {
			logger.Info("Commit message file already has a message, leaving it", zap.String("path", opts.HookPath))
		}
		return result, nil
	}

	if opts.Commit {
		if len(changes) == 0 {
			logger.Warn("Nothing staged, skipping commit")
			return result, nil
		}
		if err := s.Repo.Commit(ctx, result.Message); err != nil {
			return Result{}, err
		}
		result.Committed = true
	}

	return result, nil
}
