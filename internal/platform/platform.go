// Package platform defines the forge capabilities the action core depends on.
//
// The core never switches on which forge it talks to. It only calls the
// methods below and reacts to ErrUnsupported when a forge lacks a capability.
package platform

import (
	"context"
	"fmt"
	"strings"
)

// Name identifies a forge implementation.
type Name string

const (
	GitHub Name = "github"
	Gitea  Name = "gitea"
)

// ParseName validates a PLATFORM value.
func ParseName(value string) (Name, error) {
	switch n := Name(strings.ToLower(strings.TrimSpace(value))); n {
	case "":
		return GitHub, nil
	case GitHub, Gitea:
		return n, nil
	default:
		return "", fmt.Errorf("invalid platform %q (expected 'github' or 'gitea')", value)
	}
}

// Namespace selects one of the two disjoint comment identifier spaces.
type Namespace string

const (
	// NamespaceIssue covers ordinary comments on issues and pull requests.
	NamespaceIssue Namespace = "issue"
	// NamespaceReview covers inline pull request review comments.
	NamespaceReview Namespace = "review"
)

// PermissionLevel is a collaborator permission as reported by the forge.
type PermissionLevel string

const (
	PermissionAdmin    PermissionLevel = "admin"
	PermissionMaintain PermissionLevel = "maintain"
	PermissionWrite    PermissionLevel = "write"
	PermissionTriage   PermissionLevel = "triage"
	PermissionRead     PermissionLevel = "read"
	PermissionNone     PermissionLevel = "none"
)

// CanWrite reports whether the level grants push access.
func (p PermissionLevel) CanWrite() bool {
	switch PermissionLevel(strings.ToLower(string(p))) {
	case PermissionAdmin, PermissionWrite, "owner":
		return true
	}
	return false
}

// PullRequest carries the pull request fields the branch logic reads.
type PullRequest struct {
	Number  int
	State   string
	HeadRef string
	BaseRef string
}

// IsOpen reports whether the forge considers the pull request open.
func (pr *PullRequest) IsOpen() bool {
	return pr != nil && strings.EqualFold(pr.State, "open")
}

// Comparison summarises base...head.
type Comparison struct {
	Commits      int
	ChangedFiles int
}

// HasChanges reports whether head carries any commit or file change.
func (c *Comparison) HasChanges() bool {
	return c != nil && (c.Commits > 0 || c.ChangedFiles > 0)
}

// Comment is a fetched comment in either namespace.
type Comment struct {
	ID        int64
	Namespace Namespace
	Body      string
}

// Client is the capability surface shared by the GitHub and Gitea adapters.
type Client interface {
	GetCollaboratorPermission(ctx context.Context, owner, repo, user string) (PermissionLevel, error)
	// GetUserType returns the account type ("User", "Bot", ...). May return ErrUnsupported.
	GetUserType(ctx context.Context, login string) (string, error)

	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	GetDefaultBranch(ctx context.Context, owner, repo string) (string, error)
	CreateBranch(ctx context.Context, owner, repo, name, from string) error
	DeleteBranch(ctx context.Context, owner, repo, name string) error
	// CompareBranches may return ErrUnsupported.
	CompareBranches(ctx context.Context, owner, repo, base, head string) (*Comparison, error)

	// CreateComment always posts into NamespaceIssue.
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error)
	GetComment(ctx context.Context, owner, repo string, ns Namespace, id int64) (*Comment, error)
	UpdateComment(ctx context.Context, owner, repo string, ns Namespace, id int64, body string) error

	// ServerURL is the web root, e.g. https://github.com, without trailing slash.
	ServerURL() string
	// BranchURL is the web page of a branch.
	BranchURL(owner, repo, branch string) string
}
