package toolconfig

import (
	"sort"
	"strings"
)

// BuildAllowedTools returns the tools the assistant may use in this run.
func BuildAllowedTools(opts Options) []string {
	// Base essential tools
	base := []string{"Edit", "MultiEdit", "Glob", "Grep", "LS", "Read", "Write"}

	// Tracking comment updates
	base = append(base, mcpTool(ServerCommentUpdater, "update_claude_comment"))

	// Local git through Bash
	base = append(base,
		"Bash(git add:*)",
		"Bash(git commit:*)",
		"Bash(git push:*)",
		"Bash(git status:*)",
		"Bash(git diff:*)",
		"Bash(git log:*)",
		"Bash(git rm:*)",
	)

	for server := range Servers(opts) {
		switch server {
		case ServerGitHub:
			base = append(base,
				mcpTool(server, "add_issue_comment"),
				mcpTool(server, "create_pull_request"),
				mcpTool(server, "get_issue"),
				mcpTool(server, "get_pull_request"),
			)
		case ServerGitea:
			base = append(base,
				mcpTool(server, "create_issue_comment"),
				mcpTool(server, "get_issue_by_index"),
				mcpTool(server, "create_pull_request"),
			)
		}
	}

	// Append any custom tools last
	base = append(base, opts.CustomAllowedTools...)

	sort.Strings(base)
	return unique(base)
}

// BuildDisallowedTools returns a default-restrictive set merged with custom
// entries. Defaults that are explicitly allowed are dropped.
func BuildDisallowedTools(opts Options) []string {
	disallowed := []string{"WebSearch", "WebFetch"}

	allowedSet := toSet(BuildAllowedTools(opts))
	tmp := disallowed[:0]
	for _, t := range disallowed {
		if !allowedSet[t] {
			tmp = append(tmp, t)
		}
	}
	disallowed = append(tmp, opts.CustomDisallowedTools...)

	sort.Strings(disallowed)
	return unique(disallowed)
}

// SplitList parses a comma separated tool list, dropping blanks.
func SplitList(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}

func mcpTool(server, name string) string {
	return "mcp__" + server + "__" + name
}

func toSet(list []string) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, v := range list {
		m[v] = true
	}
	return m
}

func unique(list []string) []string {
	if len(list) < 2 {
		return list
	}
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
