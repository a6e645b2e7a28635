package toolconfig

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	defaultGitHubMCPImage   = "ghcr.io/anthropics/github-mcp-server:sha-7382253"
	defaultGiteaMCPImage    = "docker.gitea.com/gitea-mcp-server"
	defaultCommentServerBin = "swe-comment-server"
)

// Servers assembles the tool servers for one run.
func Servers(opts Options) map[string]Server {
	servers := map[string]Server{
		ServerCommentUpdater: commentServer(opts),
	}

	isGitea := strings.EqualFold(opts.Platform, "gitea")
	if !isGitea {
		servers[ServerGitHub] = Server{
			Command: "docker",
			Args:    []string{"run", "-i", "--rm", "-e", "GITHUB_PERSONAL_ACCESS_TOKEN", or(opts.GitHubMCPImage, defaultGitHubMCPImage)},
			Env:     map[string]string{"GITHUB_PERSONAL_ACCESS_TOKEN": opts.Token},
		}
	}
	if isGitea || opts.UseGitea {
		servers[ServerGitea] = giteaServer(opts)
	}
	return servers
}

// BuildMCPConfig returns the pretty-printed {"mcpServers": {...}} document.
func BuildMCPConfig(opts Options) ([]byte, error) {
	data, err := json.MarshalIndent(Config{MCPServers: Servers(opts)}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal mcp config: %w", err)
	}
	return data, nil
}

func commentServer(opts Options) Server {
	platform := strings.ToLower(opts.Platform)
	if platform == "" {
		platform = "github"
	}
	return Server{
		Command: or(opts.CommentServerBin, defaultCommentServerBin),
		Args:    []string{},
		Env: map[string]string{
			"PLATFORM":            platform,
			"PLATFORM_TOKEN":      opts.Token,
			"PLATFORM_API_URL":    opts.APIURL,
			"PLATFORM_SERVER_URL": opts.ServerURL,
			"REPO_OWNER":          opts.Owner,
			"REPO_NAME":           opts.Repo,
			"BRANCH_NAME":         opts.Branch,
			"CLAUDE_COMMENT_ID":   strconv.FormatInt(opts.CommentID, 10),
			"EVENT_NAME":          opts.EventName,
		},
	}
}

func giteaServer(opts Options) Server {
	env := map[string]string{"GITEA_ACCESS_TOKEN": opts.GiteaToken}
	host := strings.TrimRight(opts.GiteaHost, "/")
	if host != "" {
		env["GITEA_HOST"] = host
		env["GITEA_SERVER_URL"] = host
	}
	api := opts.GiteaAPIURL
	if api == "" && host != "" {
		api = host + "/api/v1"
	}
	if api != "" {
		env["GITEA_API_URL"] = api
	}
	return Server{
		Command: "docker",
		Args:    []string{"run", "-i", "--rm", "-e", "GITEA_ACCESS_TOKEN", or(opts.GiteaMCPImage, defaultGiteaMCPImage)},
		Env:     env,
	}
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
