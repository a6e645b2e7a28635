// Package git performs the local repository side effects of a run:
// shallow fetch plus checkout of the working branch and committer identity.
package git

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Checkouter fetches a remote branch at a bounded depth and checks it out.
type Checkouter interface {
	FetchAndCheckout(ctx context.Context, branch string, depth int) error
}

// CLI drives the git executable through a CommandRunner.
type CLI struct {
	Dir    string
	Remote string
	Runner CommandRunner
	Logger *slog.Logger
}

// NewCLI returns a CLI checkout backend rooted at dir.
func NewCLI(dir string, logger *slog.Logger) *CLI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLI{Dir: dir, Remote: "origin", Runner: &RealCommandRunner{}, Logger: logger}
}

// FetchAndCheckout runs `git fetch <remote> --depth=N <branch>` then `git checkout <branch>`.
func (c *CLI) FetchAndCheckout(ctx context.Context, branch string, depth int) error {
	remote := c.Remote
	if remote == "" {
		remote = "origin"
	}
	args := []string{"fetch", remote}
	if depth > 0 {
		args = append(args, "--depth="+strconv.Itoa(depth))
	}
	args = append(args, branch)

	c.Logger.Info("fetching branch", "branch", branch, "depth", depth)
	if out, err := c.Runner.RunInDir(ctx, c.Dir, "git", args...); err != nil {
		return fmt.Errorf("git fetch %s failed: %w (output: %s)", branch, err, strings.TrimSpace(string(out)))
	}
	if out, err := c.Runner.RunInDir(ctx, c.Dir, "git", "checkout", branch); err != nil {
		return fmt.Errorf("git checkout %s failed: %w (output: %s)", branch, err, strings.TrimSpace(string(out)))
	}
	c.Logger.Info("checked out branch", "branch", branch)
	return nil
}
