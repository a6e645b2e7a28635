// Package github adapts the GitHub REST API to platform.Client.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/cexll/swe-action/internal/platform"
)

const defaultAPIURL = "https://api.github.com"

// Options configures NewClient.
type Options struct {
	Token     string
	APIURL    string
	ServerURL string
	// HTTPClient replaces the oauth2 transport when set.
	HTTPClient *http.Client
	Retry      *platform.RetryPolicy
	Logger     *slog.Logger
}

// Client implements platform.Client on top of go-github.
type Client struct {
	api    *gh.Client
	server string
	retry  platform.RetryPolicy
	logger *slog.Logger
}

var _ platform.Client = (*Client)(nil)

// NewClient builds an authenticated client. A non-default APIURL selects GitHub Enterprise.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	api := gh.NewClient(httpClient)
	if apiURL := strings.TrimRight(opts.APIURL, "/"); apiURL != "" && apiURL != defaultAPIURL {
		var err error
		api, err = api.WithEnterpriseURLs(apiURL+"/", apiURL+"/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.APIURL, err)
		}
	}

	c := NewFromAPI(api, opts.ServerURL, opts.Logger)
	if opts.Retry != nil {
		c.retry = *opts.Retry
	}
	return c, nil
}

// NewFromAPI wraps an existing go-github client.
func NewFromAPI(api *gh.Client, serverURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if serverURL == "" {
		serverURL = "https://github.com"
	}
	return &Client{
		api:    api,
		server: strings.TrimRight(serverURL, "/"),
		retry:  platform.DefaultRetryPolicy(logger),
		logger: logger,
	}
}

// API exposes the underlying go-github client.
func (c *Client) API() *gh.Client {
	return c.api
}

func (c *Client) ServerURL() string {
	return c.server
}

func (c *Client) BranchURL(owner, repo, branch string) string {
	return fmt.Sprintf("%s/%s/%s/tree/%s", c.server, owner, repo, branch)
}

// call runs fn with transport retry and maps go-github errors onto platform errors.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	return c.once(op, platform.Retry(ctx, c.retry, op, func() error {
		return c.once(op, fn())
	}))
}

// once maps a single go-github error without retrying.
func (c *Client) once(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *platform.StatusError
	if errors.As(err, &se) {
		return err
	}
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return &platform.StatusError{Op: op, StatusCode: er.Response.StatusCode, Message: er.Message}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Client) GetCollaboratorPermission(ctx context.Context, owner, repo, user string) (platform.PermissionLevel, error) {
	var level string
	err := c.call(ctx, "get collaborator permission", func() error {
		perm, _, err := c.api.Repositories.GetPermissionLevel(ctx, owner, repo, user)
		if err != nil {
			return err
		}
		level = perm.GetPermission()
		return nil
	})
	if err != nil {
		return "", err
	}
	return platform.PermissionLevel(level), nil
}

func (c *Client) GetUserType(ctx context.Context, login string) (string, error) {
	var typ string
	err := c.call(ctx, "get user", func() error {
		u, _, err := c.api.Users.Get(ctx, login)
		if err != nil {
			return err
		}
		typ = u.GetType()
		return nil
	})
	return typ, err
}

func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*platform.PullRequest, error) {
	var out *platform.PullRequest
	err := c.call(ctx, "get pull request", func() error {
		pr, _, err := c.api.PullRequests.Get(ctx, owner, repo, number)
		if err != nil {
			return err
		}
		out = &platform.PullRequest{
			Number:  pr.GetNumber(),
			State:   pr.GetState(),
			HeadRef: pr.GetHead().GetRef(),
			BaseRef: pr.GetBase().GetRef(),
		}
		return nil
	})
	return out, err
}

func (c *Client) GetDefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	var branch string
	err := c.call(ctx, "get repository", func() error {
		r, _, err := c.api.Repositories.Get(ctx, owner, repo)
		if err != nil {
			return err
		}
		branch = r.GetDefaultBranch()
		return nil
	})
	if err == nil && branch == "" {
		return "", fmt.Errorf("repository %s/%s reports no default branch", owner, repo)
	}
	return branch, err
}

// CreateBranch resolves the source head and creates refs/heads/name from it.
func (c *Client) CreateBranch(ctx context.Context, owner, repo, name, from string) error {
	var sha string
	err := c.call(ctx, "get source branch", func() error {
		ref, _, err := c.api.Git.GetRef(ctx, owner, repo, "refs/heads/"+from)
		if err != nil {
			return err
		}
		sha = ref.GetObject().GetSHA()
		return nil
	})
	if err != nil {
		return err
	}

	ref := &gh.Reference{
		Ref:    gh.String("refs/heads/" + name),
		Object: &gh.GitObject{SHA: gh.String(sha)},
	}
	// Sent once, never retried.
	_, _, err = c.api.Git.CreateRef(ctx, owner, repo, ref)
	return c.once("create branch", err)
}

func (c *Client) DeleteBranch(ctx context.Context, owner, repo, name string) error {
	return c.call(ctx, "delete branch", func() error {
		_, err := c.api.Git.DeleteRef(ctx, owner, repo, "refs/heads/"+name)
		return err
	})
}

func (c *Client) CompareBranches(ctx context.Context, owner, repo, base, head string) (*platform.Comparison, error) {
	var out *platform.Comparison
	err := c.call(ctx, "compare branches", func() error {
		cmp, _, err := c.api.Repositories.CompareCommits(ctx, owner, repo, base, head, nil)
		if err != nil {
			return err
		}
		out = &platform.Comparison{Commits: cmp.GetTotalCommits(), ChangedFiles: len(cmp.Files)}
		return nil
	})
	return out, err
}

func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	comment, _, err := c.api.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{Body: gh.String(body)})
	if err != nil {
		return 0, c.once("create comment", err)
	}
	return comment.GetID(), nil
}

func (c *Client) GetComment(ctx context.Context, owner, repo string, ns platform.Namespace, id int64) (*platform.Comment, error) {
	var body string
	var err error
	switch ns {
	case platform.NamespaceIssue:
		err = c.call(ctx, "get issue comment", func() error {
			comment, _, err := c.api.Issues.GetComment(ctx, owner, repo, id)
			if err != nil {
				return err
			}
			body = comment.GetBody()
			return nil
		})
	case platform.NamespaceReview:
		err = c.call(ctx, "get review comment", func() error {
			comment, _, err := c.api.PullRequests.GetComment(ctx, owner, repo, id)
			if err != nil {
				return err
			}
			body = comment.GetBody()
			return nil
		})
	default:
		return nil, fmt.Errorf("unknown comment namespace %q", ns)
	}
	if err != nil {
		return nil, err
	}
	return &platform.Comment{ID: id, Namespace: ns, Body: body}, nil
}

func (c *Client) UpdateComment(ctx context.Context, owner, repo string, ns platform.Namespace, id int64, body string) error {
	switch ns {
	case platform.NamespaceIssue:
		return c.call(ctx, "update issue comment", func() error {
			_, _, err := c.api.Issues.EditComment(ctx, owner, repo, id, &gh.IssueComment{Body: gh.String(body)})
			return err
		})
	case platform.NamespaceReview:
		return c.call(ctx, "update review comment", func() error {
			_, _, err := c.api.PullRequests.EditComment(ctx, owner, repo, id, &gh.PullRequestComment{Body: gh.String(body)})
			return err
		})
	default:
		return fmt.Errorf("unknown comment namespace %q", ns)
	}
}
