package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cexll/swe-action/internal/gitea"
	"github.com/cexll/swe-action/internal/github"
	"github.com/cexll/swe-action/internal/logging"
	"github.com/cexll/swe-action/internal/platform"
)

// serverConfig is read from the env block written by toolconfig.
type serverConfig struct {
	Platform  string `env:"PLATFORM" envDefault:"github"`
	Token     string `env:"PLATFORM_TOKEN,required"`
	APIURL    string `env:"PLATFORM_API_URL"`
	ServerURL string `env:"PLATFORM_SERVER_URL"`
	Owner     string `env:"REPO_OWNER,required"`
	Repo      string `env:"REPO_NAME,required"`
	Branch    string `env:"BRANCH_NAME"`
	CommentID int64  `env:"CLAUDE_COMMENT_ID,required"`
	EventName string `env:"EVENT_NAME"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

func loadServerConfig(environ map[string]string) (serverConfig, error) {
	var cfg serverConfig
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("invalid comment server environment: %w", err)
	}
	if cfg.CommentID <= 0 {
		return cfg, fmt.Errorf("invalid CLAUDE_COMMENT_ID %d", cfg.CommentID)
	}
	return cfg, nil
}

func newClient(ctx context.Context, cfg serverConfig, logger *slog.Logger) (platform.Client, error) {
	name, err := platform.ParseName(cfg.Platform)
	if err != nil {
		return nil, err
	}
	if name == platform.Gitea {
		return gitea.NewClient(gitea.Options{Token: cfg.Token, ServerURL: cfg.ServerURL, APIURL: cfg.APIURL, Logger: logger})
	}
	return github.NewClient(ctx, github.Options{Token: cfg.Token, APIURL: cfg.APIURL, ServerURL: cfg.ServerURL, Logger: logger})
}

func main() {
	// stdout carries the MCP transport
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)

	cfg, err := loadServerConfig(nil)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.NewLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create platform client", "error", err)
		os.Exit(1)
	}

	logger.Info("starting comment server",
		"platform", cfg.Platform,
		"repository", cfg.Owner+"/"+cfg.Repo,
		"comment_id", cfg.CommentID)

	server := newServer(&updater{client: client, cfg: cfg, logger: logger})
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newServer(u *updater) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "swe-comment-server",
		Version: "v1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_claude_comment",
		Description: "Update the Claude comment with progress and results (automatically handles both issue and PR comments)",
	}, u.HandleUpdateComment)
	return server
}
