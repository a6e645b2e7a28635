package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GoGit is the in-process checkout backend built on go-git.
type GoGit struct {
	Dir    string
	Remote string
	// Token authenticates HTTPS fetches as x-access-token. Empty uses the remote's own credentials.
	Token  string
	Logger *slog.Logger
}

// NewGoGit returns a go-git checkout backend rooted at dir.
func NewGoGit(dir, token string, logger *slog.Logger) *GoGit {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoGit{Dir: dir, Remote: "origin", Token: token, Logger: logger}
}

func (g *GoGit) remote() string {
	if g.Remote == "" {
		return "origin"
	}
	return g.Remote
}

// FetchAndCheckout fetches refs/heads/<branch> into the remote-tracking ref and checks it out.
func (g *GoGit) FetchAndCheckout(ctx context.Context, branch string, depth int) error {
	repo, err := gogit.PlainOpenWithOptions(g.Dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	remote := g.remote()
	refspec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remote, branch))
	opts := &gogit.FetchOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refspec},
		Depth:      depth,
	}
	if g.Token != "" {
		opts.Auth = &http.BasicAuth{Username: "x-access-token", Password: g.Token}
	}

	g.Logger.Info("fetching branch", "branch", branch, "depth", depth, "backend", "go-git")
	if err := repo.FetchContext(ctx, opts); err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("git fetch %s failed: %w", branch, err)
	}
	if err := g.checkout(repo, branch); err != nil {
		return err
	}
	g.Logger.Info("checked out branch", "branch", branch, "backend", "go-git")
	return nil
}

// checkout switches to the local branch, creating it from the remote-tracking ref when absent.
func (g *GoGit) checkout(repo *gogit.Repository, branch string) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	local := plumbing.NewBranchReferenceName(branch)
	if _, err := repo.Reference(local, false); err == nil {
		if err := wt.Checkout(&gogit.CheckoutOptions{Branch: local}); err != nil {
			return fmt.Errorf("git checkout %s failed: %w", branch, err)
		}
		return nil
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("failed to resolve %s: %w", local, err)
	}

	tracking, err := repo.Reference(plumbing.NewRemoteReferenceName(g.remote(), branch), true)
	if err != nil {
		return fmt.Errorf("remote branch %s/%s not found: %w", g.remote(), branch, err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Branch: local, Hash: tracking.Hash(), Create: true}); err != nil {
		return fmt.Errorf("git checkout %s failed: %w", branch, err)
	}
	return nil
}
