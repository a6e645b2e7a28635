package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/cexll/swe-action/internal/platform"
)

var loadDotEnv = godotenv.Load

// Config holds every setting recognized by the action commands.
type Config struct {
	Platform string `env:"PLATFORM" envDefault:"github"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Trigger  TriggerConfig
	Branch   BranchConfig
	GitHub   GitHubConfig
	Gitea    GiteaConfig
	Finalize FinalizeConfig
	Tools    ToolsConfig
}

// TriggerConfig controls which events start a run.
type TriggerConfig struct {
	Phrase          string `env:"TRIGGER_PHRASE" envDefault:"@claude"`
	AssigneeTrigger string `env:"ASSIGNEE_TRIGGER"`
	LabelTrigger    string `env:"LABEL_TRIGGER"`
	DirectPrompt    string `env:"DIRECT_PROMPT"`
}

// BranchConfig controls branch provisioning and the local checkout.
type BranchConfig struct {
	// BaseBranch overrides the repository default branch in prepare and is the
	// comparison base in finalize.
	BaseBranch          string `env:"BASE_BRANCH"`
	Prefix              string `env:"BRANCH_PREFIX" envDefault:"claude/"`
	GitBackend          string `env:"GIT_BACKEND" envDefault:"cli"`
	WorkDir             string `env:"GIT_WORKDIR" envDefault:"."`
	PRFetchDepth        int    `env:"PR_FETCH_DEPTH" envDefault:"20"`
	NewBranchFetchDepth int    `env:"NEW_BRANCH_FETCH_DEPTH" envDefault:"1"`
	GitUserName         string `env:"GIT_USER_NAME"`
	GitUserEmail        string `env:"GIT_USER_EMAIL"`
}

// GitHubConfig is the GitHub Actions run environment.
type GitHubConfig struct {
	Token      string `env:"GITHUB_TOKEN"`
	AppID      string `env:"GITHUB_APP_ID"`
	PrivateKey string `env:"GITHUB_PRIVATE_KEY"`
	ServerURL  string `env:"GITHUB_SERVER_URL" envDefault:"https://github.com"`
	APIURL     string `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	EventName  string `env:"GITHUB_EVENT_NAME"`
	EventPath  string `env:"GITHUB_EVENT_PATH"`
	RunID      string `env:"GITHUB_RUN_ID"`
	Repository string `env:"GITHUB_REPOSITORY"`
	Actor      string `env:"GITHUB_ACTOR"`
	Output     string `env:"GITHUB_OUTPUT"`
	Workspace  string `env:"GITHUB_WORKSPACE"`
}

// GiteaConfig is the Gitea Actions run environment. Empty event fields fall
// back to their GITHUB_* counterparts, which Gitea runners also export.
type GiteaConfig struct {
	Token      string `env:"GITEA_TOKEN"`
	ServerURL  string `env:"GITEA_SERVER_URL"`
	APIURL     string `env:"GITEA_API_URL"`
	EventName  string `env:"GITEA_EVENT_NAME"`
	EventPath  string `env:"GITEA_EVENT_PATH"`
	RunID      string `env:"GITEA_RUN_ID"`
	Repository string `env:"GITEA_REPOSITORY"`
	Actor      string `env:"GITEA_ACTOR"`
}

// FinalizeConfig carries the results of earlier workflow steps into update-comment.
type FinalizeConfig struct {
	CommentID       string `env:"CLAUDE_COMMENT_ID"`
	Branch          string `env:"CLAUDE_BRANCH"`
	TriggerUsername string `env:"TRIGGER_USERNAME"`
	PrepareSuccess  string `env:"PREPARE_SUCCESS"`
	PrepareError    string `env:"PREPARE_ERROR"`
	ClaudeSuccess   string `env:"CLAUDE_SUCCESS"`
	OutputFile      string `env:"OUTPUT_FILE"`
}

// ToolsConfig feeds the tool-server configuration.
type ToolsConfig struct {
	UseGitea         bool   `env:"USE_GITEA"`
	GiteaHost        string `env:"GITEA_HOST"`
	GiteaAccessToken string `env:"GITEA_ACCESS_TOKEN"`
	GitHubMCPImage   string `env:"GITHUB_MCP_IMAGE" envDefault:"ghcr.io/anthropics/github-mcp-server:sha-7382253"`
	GiteaMCPImage    string `env:"GITEA_MCP_IMAGE" envDefault:"docker.gitea.com/gitea-mcp-server"`
	CommentServerBin string `env:"COMMENT_SERVER_BIN" envDefault:"swe-comment-server"`
	AllowedTools     string `env:"ALLOWED_TOOLS"`
	DisallowedTools  string `env:"DISALLOWED_TOOLS"`
}

// RunIdentity is the platform-neutral view of the current run.
type RunIdentity struct {
	Platform   platform.Name
	EventName  string
	EventPath  string
	RunID      string
	Repository string
	Actor      string
	ServerURL  string
	APIURL     string
	Token      string
}

// Load reads configuration from the process environment, after an optional .env file.
func Load() (*Config, error) {
	// Ignore error if .env doesn't exist
	_ = loadDotEnv()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg.finish()
}

// LoadFrom reads configuration from the given variables only.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg.finish()
}

func (c *Config) finish() (*Config, error) {
	c.GitHub.PrivateKey = normalizePrivateKey(c.GitHub.PrivateKey)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that every command depends on.
func (c *Config) Validate() error {
	if _, err := platform.ParseName(c.Platform); err != nil {
		return err
	}
	switch c.Branch.GitBackend {
	case "cli", "go-git":
	default:
		return fmt.Errorf("invalid GIT_BACKEND: %s (must be 'cli' or 'go-git')", c.Branch.GitBackend)
	}
	if c.Branch.PRFetchDepth <= 0 {
		return fmt.Errorf("PR_FETCH_DEPTH must be greater than 0")
	}
	if c.Branch.NewBranchFetchDepth <= 0 {
		return fmt.Errorf("NEW_BRANCH_FETCH_DEPTH must be greater than 0")
	}
	if c.PlatformName() == platform.Gitea && c.Gitea.ServerURL == "" {
		return fmt.Errorf("GITEA_SERVER_URL is required for gitea platform")
	}
	return nil
}

// PlatformName returns the validated platform.
func (c *Config) PlatformName() platform.Name {
	name, err := platform.ParseName(c.Platform)
	if err != nil {
		return platform.GitHub
	}
	return name
}

// Run projects the platform-specific environment into a RunIdentity.
func (c *Config) Run() RunIdentity {
	if c.PlatformName() == platform.Gitea {
		server := strings.TrimRight(c.Gitea.ServerURL, "/")
		api := c.Gitea.APIURL
		if api == "" {
			api = server + "/api/v1"
		}
		return RunIdentity{
			Platform:   platform.Gitea,
			EventName:  first(c.Gitea.EventName, c.GitHub.EventName),
			EventPath:  first(c.Gitea.EventPath, c.GitHub.EventPath),
			RunID:      first(c.Gitea.RunID, c.GitHub.RunID),
			Repository: first(c.Gitea.Repository, c.GitHub.Repository),
			Actor:      first(c.Gitea.Actor, c.GitHub.Actor),
			ServerURL:  server,
			APIURL:     strings.TrimRight(api, "/"),
			Token:      first(c.Gitea.Token, c.GitHub.Token),
		}
	}
	return RunIdentity{
		Platform:   platform.GitHub,
		EventName:  c.GitHub.EventName,
		EventPath:  c.GitHub.EventPath,
		RunID:      c.GitHub.RunID,
		Repository: c.GitHub.Repository,
		Actor:      c.GitHub.Actor,
		ServerURL:  strings.TrimRight(c.GitHub.ServerURL, "/"),
		APIURL:     strings.TrimRight(c.GitHub.APIURL, "/"),
		Token:      c.GitHub.Token,
	}
}

// Validate checks the fields needed to resolve the event context.
func (r RunIdentity) Validate() error {
	var missing []string
	if r.EventName == "" {
		missing = append(missing, "event name")
	}
	if r.EventPath == "" {
		missing = append(missing, "event path")
	}
	if r.RunID == "" {
		missing = append(missing, "run id")
	}
	if r.Repository == "" {
		missing = append(missing, "repository")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete %s run environment: missing %s", r.Platform, strings.Join(missing, ", "))
	}
	return nil
}

// ErrMissingCommentID is returned when finalize runs without CLAUDE_COMMENT_ID.
var ErrMissingCommentID = errors.New("CLAUDE_COMMENT_ID is required")

// ParseCommentID returns the tracking comment identifier.
func (f FinalizeConfig) ParseCommentID() (int64, error) {
	raw := strings.TrimSpace(f.CommentID)
	if raw == "" {
		return 0, ErrMissingCommentID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid CLAUDE_COMMENT_ID %q", f.CommentID)
	}
	return id, nil
}

// PrepareFailed reports an explicit prepare failure. Any value other than "false" is success.
func (f FinalizeConfig) PrepareFailed() bool {
	return f.PrepareSuccess == "false"
}

// ClaudeFailed reports an explicit job failure. Any value other than "false" is success.
func (f FinalizeConfig) ClaudeFailed() bool {
	return f.ClaudeSuccess == "false"
}

// FinalizeBase is the comparison base override for finalize.
// Empty means the repository default branch.
func (c *Config) FinalizeBase() string {
	return c.Branch.BaseBranch
}

// GiteaMCPToken is the token handed to the Gitea tool server.
func (c *Config) GiteaMCPToken() string {
	return first(c.Tools.GiteaAccessToken, c.Gitea.Token)
}

// GiteaMCPHost is the Gitea host handed to the Gitea tool server.
func (c *Config) GiteaMCPHost() string {
	return first(c.Tools.GiteaHost, c.Gitea.ServerURL)
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func normalizePrivateKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") {
		trimmed = strings.TrimPrefix(trimmed, "\"")
		trimmed = strings.TrimSuffix(trimmed, "\"")
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") {
		trimmed = strings.TrimPrefix(trimmed, "'")
		trimmed = strings.TrimSuffix(trimmed, "'")
	}

	trimmed = strings.ReplaceAll(trimmed, "\r\n", "\n")
	trimmed = strings.ReplaceAll(trimmed, "\r", "\n")
	if strings.Contains(trimmed, "\\n") {
		trimmed = strings.ReplaceAll(trimmed, "\\r", "")
		trimmed = strings.ReplaceAll(trimmed, "\\n", "\n")
	}
	return trimmed
}
