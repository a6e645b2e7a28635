package toolconfig

// Options controls the tool surface handed to the assistant run.
type Options struct {
	// Platform is "github" or "gitea".
	Platform string

	Owner     string
	Repo      string
	Branch    string
	CommentID int64
	EventName string

	// Token, APIURL and ServerURL address the forge for the comment server.
	Token     string
	APIURL    string
	ServerURL string

	GitHubMCPImage   string
	CommentServerBin string

	// UseGitea adds the Gitea tool server on the github platform. Always on for gitea.
	UseGitea      bool
	GiteaHost     string
	GiteaAPIURL   string
	GiteaToken    string
	GiteaMCPImage string

	// Additional tools to allow (verbatim names)
	CustomAllowedTools []string

	// Additional tools to disallow (verbatim names)
	CustomDisallowedTools []string
}

// Server is one entry of the mcpServers map.
type Server struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// Config is the document written to the mcp_config output.
type Config struct {
	MCPServers map[string]Server `json:"mcpServers"`
}

// Tool server names; they prefix the tool names as mcp__<server>__<tool>.
const (
	ServerGitHub         = "github"
	ServerGitea          = "gitea"
	ServerCommentUpdater = "comment_updater"
)
