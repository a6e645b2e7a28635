package action

import (
	"context"
	"log/slog"

	"github.com/cexll/swe-action/internal/comment"
	"github.com/cexll/swe-action/internal/config"
	"github.com/cexll/swe-action/internal/event"
	"github.com/cexll/swe-action/internal/platform"
)

// OutputUpdateError is written by update-comment when it fails.
const OutputUpdateError = "update_comment_error"

// fallbackBase is the comparison base when neither BASE_BRANCH nor the repository says otherwise.
const fallbackBase = "main"

// Finalizer runs the update-comment pipeline after the assistant finished.
type Finalizer struct {
	Config *config.Config
	Client platform.Client
	// Cleaner defaults to branch.Cleaner.
	Cleaner comment.BranchCleaner
	// Outputs receives update_comment_error on failure. Optional.
	Outputs Outputs
	Logger  *slog.Logger
}

// Run rewrites the tracking comment into its final state.
func (f *Finalizer) Run(ctx context.Context) error {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := f.run(ctx, logger); err != nil {
		if f.Outputs != nil {
			if oerr := f.Outputs.Set(OutputUpdateError, err.Error()); oerr != nil {
				logger.Warn("failed to write update error output", "error", oerr)
			}
		}
		logger.Error("update-comment failed", "error", err)
		return err
	}
	return nil
}

func (f *Finalizer) run(ctx context.Context, logger *slog.Logger) error {
	fin := f.Config.Finalize

	commentID, err := fin.ParseCommentID()
	if err != nil {
		return err
	}
	ec, err := LoadContext(f.Config.Run())
	if err != nil {
		return err
	}

	m := comment.NewManager(f.Client, f.Cleaner, nil, logger)
	return m.Finalize(ctx, ec, comment.FinalizeInput{
		CommentID:       commentID,
		Branch:          fin.Branch,
		BaseBranch:      f.baseBranch(ctx, ec, logger),
		TriggerUsername: fin.TriggerUsername,
		Outcome: comment.OutcomeInput{
			PrepareFailed: fin.PrepareFailed(),
			PrepareError:  fin.PrepareError,
			ClaudeFailed:  fin.ClaudeFailed(),
			OutputFile:    fin.OutputFile,
		},
	})
}

// baseBranch resolves the comparison base the same way prepare picks it:
// BASE_BRANCH, then the repository default branch.
func (f *Finalizer) baseBranch(ctx context.Context, ec event.Context, logger *slog.Logger) string {
	if base := f.Config.FinalizeBase(); base != "" {
		return base
	}
	if f.Config.Finalize.Branch == "" {
		return fallbackBase
	}
	base, err := f.Client.GetDefaultBranch(ctx, ec.Repository.Owner, ec.Repository.Name)
	if err != nil || base == "" {
		logger.Warn("could not resolve default branch, comparing against fallback", "fallback", fallbackBase, "error", err)
		return fallbackBase
	}
	return base
}
