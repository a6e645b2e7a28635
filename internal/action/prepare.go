package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cexll/swe-action/internal/branch"
	"github.com/cexll/swe-action/internal/comment"
	"github.com/cexll/swe-action/internal/config"
	"github.com/cexll/swe-action/internal/event"
	"github.com/cexll/swe-action/internal/git"
	"github.com/cexll/swe-action/internal/platform"
	"github.com/cexll/swe-action/internal/toolconfig"
	"github.com/cexll/swe-action/internal/validation"
)

// Output keys written by prepare.
const (
	OutputClaudeBranch    = "claude_branch"
	OutputBaseBranch      = "base_branch"
	OutputCurrentBranch   = "current_branch"
	OutputMCPConfig       = "mcp_config"
	OutputAllowedTools    = "allowed_tools"
	OutputDisallowedTools = "disallowed_tools"
	OutputPrepareError    = "prepare_error"
)

// Outputs is the step-output channel.
type Outputs interface {
	Set(key, value string) error
}

// Preparer runs the prepare pipeline.
type Preparer struct {
	Config   *config.Config
	Client   platform.Client
	Checkout git.Checkouter
	Runner   git.CommandRunner
	Outputs  Outputs
	// Token is handed to the tool servers.
	Token  string
	Logger *slog.Logger
}

// PrepareResult summarises a prepare run.
type PrepareResult struct {
	Triggered bool
	CommentID int64
	Branch    *branch.Info
	MCPConfig []byte
}

// Run executes prepare. Any failure is written to the prepare_error output.
func (p *Preparer) Run(ctx context.Context) (*PrepareResult, error) {
	logger := p.logger()
	res, err := p.run(ctx, logger)
	if err != nil {
		if oerr := p.Outputs.Set(OutputPrepareError, err.Error()); oerr != nil {
			logger.Warn("failed to write prepare error output", "error", oerr)
		}
		if errors.Is(err, validation.ErrInsufficientPermission) {
			logger.Warn("prepare stopped", "error", err)
		} else {
			logger.Error("prepare step failed", "error", err)
		}
		return nil, err
	}
	return res, nil
}

func (p *Preparer) run(ctx context.Context, logger *slog.Logger) (*PrepareResult, error) {
	cfg := p.Config
	ec, err := LoadContext(cfg.Run())
	if err != nil {
		return nil, err
	}
	logger = logger.With("event", ec.Kind, "repository", ec.Repository.FullName, "entity", ec.EntityNumber)

	if err := validation.EnsureWritePermission(ctx, p.Client, ec.Repository, ec.Actor, logger); err != nil {
		return nil, err
	}

	if !validation.CheckTrigger(ec, validation.TriggerOptions{
		Phrase:          cfg.Trigger.Phrase,
		AssigneeTrigger: cfg.Trigger.AssigneeTrigger,
		LabelTrigger:    cfg.Trigger.LabelTrigger,
		DirectPrompt:    cfg.Trigger.DirectPrompt,
	}) {
		logger.Info("no trigger found, skipping remaining steps")
		return &PrepareResult{}, nil
	}

	if err := validation.CheckHumanActor(ctx, p.Client, ec.Actor); err != nil {
		return nil, err
	}

	comments := comment.NewManager(p.Client, nil, p.Outputs, logger)
	commentID, err := comments.CreateInitial(ctx, ec)
	if err != nil {
		return nil, err
	}

	controller := branch.NewController(p.Client, p.Checkout, branch.Options{
		BaseBranch:          cfg.Branch.BaseBranch,
		Prefix:              cfg.Branch.Prefix,
		PRFetchDepth:        cfg.Branch.PRFetchDepth,
		NewBranchFetchDepth: cfg.Branch.NewBranchFetchDepth,
	}, logger)
	info, err := controller.Setup(ctx, ec)
	if err != nil {
		return nil, err
	}

	if info.ClaudeBranch != "" {
		if err := comments.UpdateWithBranch(ctx, ec, commentID, info.ClaudeBranch); err != nil {
			return nil, err
		}
	}

	if p.Runner != nil {
		if err := git.ConfigureIdentity(ctx, p.Runner, cfg.Branch.WorkDir, cfg.Branch.GitUserName, cfg.Branch.GitUserEmail); err != nil {
			return nil, err
		}
	}

	opts := p.toolOptions(ec, commentID, info.CurrentBranch)
	mcpConfig, err := toolconfig.BuildMCPConfig(opts)
	if err != nil {
		return nil, err
	}

	outputs := map[string]string{
		OutputClaudeBranch:    info.ClaudeBranch,
		OutputBaseBranch:      info.BaseBranch,
		OutputCurrentBranch:   info.CurrentBranch,
		OutputMCPConfig:       string(mcpConfig),
		OutputAllowedTools:    strings.Join(toolconfig.BuildAllowedTools(opts), ","),
		OutputDisallowedTools: strings.Join(toolconfig.BuildDisallowedTools(opts), ","),
	}
	for _, key := range []string{OutputClaudeBranch, OutputBaseBranch, OutputCurrentBranch, OutputMCPConfig, OutputAllowedTools, OutputDisallowedTools} {
		if err := p.Outputs.Set(key, outputs[key]); err != nil {
			return nil, fmt.Errorf("write %s output: %w", key, err)
		}
	}

	logger.Info("prepare completed", "comment_id", commentID, "branch", info.CurrentBranch)
	return &PrepareResult{Triggered: true, CommentID: commentID, Branch: info, MCPConfig: mcpConfig}, nil
}

func (p *Preparer) toolOptions(ec event.Context, commentID int64, currentBranch string) toolconfig.Options {
	cfg := p.Config
	run := cfg.Run()
	return toolconfig.Options{
		Platform:              string(run.Platform),
		Owner:                 ec.Repository.Owner,
		Repo:                  ec.Repository.Name,
		Branch:                currentBranch,
		CommentID:             commentID,
		EventName:             string(ec.Kind),
		Token:                 p.Token,
		APIURL:                run.APIURL,
		ServerURL:             run.ServerURL,
		GitHubMCPImage:        cfg.Tools.GitHubMCPImage,
		CommentServerBin:      cfg.Tools.CommentServerBin,
		UseGitea:              cfg.Tools.UseGitea,
		GiteaHost:             cfg.GiteaMCPHost(),
		GiteaAPIURL:           cfg.Gitea.APIURL,
		GiteaToken:            cfg.GiteaMCPToken(),
		GiteaMCPImage:         cfg.Tools.GiteaMCPImage,
		CustomAllowedTools:    toolconfig.SplitList(cfg.Tools.AllowedTools),
		CustomDisallowedTools: toolconfig.SplitList(cfg.Tools.DisallowedTools),
	}
}

func (p *Preparer) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
