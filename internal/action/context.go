// Package action wires the prepare and finalize pipelines.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cexll/swe-action/internal/config"
	"github.com/cexll/swe-action/internal/event"
	"github.com/cexll/swe-action/internal/git"
	"github.com/cexll/swe-action/internal/gitea"
	"github.com/cexll/swe-action/internal/github"
	"github.com/cexll/swe-action/internal/platform"
)

var readEventFile = os.ReadFile

// LoadContext reads the event payload named by the run identity and resolves it.
func LoadContext(run config.RunIdentity) (event.Context, error) {
	if err := run.Validate(); err != nil {
		return event.Context{}, err
	}
	payload, err := readEventFile(run.EventPath)
	if err != nil {
		return event.Context{}, fmt.Errorf("failed to read event payload: %w", err)
	}
	return event.Resolve(run.EventName, payload, event.RunEnv{
		RunID:      run.RunID,
		Repository: run.Repository,
		Actor:      run.Actor,
	})
}

// NewPlatformClient builds the forge adapter for the configured platform.
// The returned token is the one the adapter authenticates with.
func NewPlatformClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (platform.Client, string, error) {
	run := cfg.Run()
	switch run.Platform {
	case platform.Gitea:
		if run.Token == "" {
			return nil, "", fmt.Errorf("GITEA_TOKEN is required for gitea platform")
		}
		client, err := gitea.NewClient(gitea.Options{
			Token:     run.Token,
			ServerURL: run.ServerURL,
			APIURL:    run.APIURL,
			Logger:    logger,
		})
		if err != nil {
			return nil, "", err
		}
		return client, run.Token, nil
	default:
		app := &github.AppAuth{
			AppID:      cfg.GitHub.AppID,
			PrivateKey: cfg.GitHub.PrivateKey,
			APIURL:     run.APIURL,
		}
		token, err := github.ResolveToken(ctx, run.Token, app, run.Repository)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve GitHub token: %w", err)
		}
		client, err := github.NewClient(ctx, github.Options{
			Token:     token,
			APIURL:    run.APIURL,
			ServerURL: run.ServerURL,
			Logger:    logger,
		})
		if err != nil {
			return nil, "", err
		}
		return client, token, nil
	}
}

// NewCheckouter returns the configured local git backend.
func NewCheckouter(cfg *config.Config, token string, logger *slog.Logger) git.Checkouter {
	if cfg.Branch.GitBackend == "go-git" {
		return git.NewGoGit(cfg.Branch.WorkDir, token, logger)
	}
	return git.NewCLI(cfg.Branch.WorkDir, logger)
}
