package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initRepo creates a repository with one commit and returns it with the commit hash.
func initRepo(t *testing.T) (string, *gogit.Repository, plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatal(err)
	}
	hash, err := wt.Commit("init", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(0, 0)},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return dir, repo, hash
}

func TestGoGit_CheckoutCreatesLocalFromTrackingRef(t *testing.T) {
	dir, repo, hash := initRepo(t)
	tracking := plumbing.NewRemoteReferenceName("origin", "claude/issue-1-20240101_000000")
	if err := repo.Storer.SetReference(plumbing.NewHashReference(tracking, hash)); err != nil {
		t.Fatal(err)
	}

	g := NewGoGit(dir, "", nil)
	if err := g.checkout(repo, "claude/issue-1-20240101_000000"); err != nil {
		t.Fatalf("checkout() error = %v", err)
	}

	head, err := repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head.Name() != plumbing.NewBranchReferenceName("claude/issue-1-20240101_000000") {
		t.Errorf("HEAD = %s", head.Name())
	}
	if head.Hash() != hash {
		t.Errorf("HEAD hash = %s, want %s", head.Hash(), hash)
	}
}

func TestGoGit_CheckoutMissingTrackingRef(t *testing.T) {
	dir, repo, _ := initRepo(t)
	g := NewGoGit(dir, "", nil)
	if err := g.checkout(repo, "nope"); err == nil {
		t.Fatal("expected error for missing remote branch")
	}
}

func TestGoGit_FetchWithoutRemoteFails(t *testing.T) {
	dir, _, _ := initRepo(t)
	g := NewGoGit(dir, "tok", nil)
	if err := g.FetchAndCheckout(context.Background(), "main", 1); err == nil {
		t.Fatal("expected fetch error without origin remote")
	}
}

func TestGoGit_NotARepository(t *testing.T) {
	g := NewGoGit(t.TempDir(), "", nil)
	if err := g.FetchAndCheckout(context.Background(), "main", 1); err == nil {
		t.Fatal("expected error outside a repository")
	}
}
