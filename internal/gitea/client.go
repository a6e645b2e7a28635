// Package gitea adapts the Gitea SDK to platform.Client.
package gitea

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	sdk "code.gitea.io/sdk/gitea"

	"github.com/cexll/swe-action/internal/platform"
)

// Options configures NewClient.
type Options struct {
	Token     string
	ServerURL string
	// APIURL defaults to ServerURL + "/api/v1".
	APIURL     string
	HTTPClient *http.Client
	Retry      *platform.RetryPolicy
	Logger     *slog.Logger
}

// Client implements platform.Client against a Gitea server.
type Client struct {
	// mu serializes calls; the SDK keeps the request context on the client.
	mu     sync.Mutex
	api    *sdk.Client
	server string
	retry  platform.RetryPolicy
	logger *slog.Logger
}

var _ platform.Client = (*Client)(nil)

// NewClient builds a token-authenticated Gitea client.
// Server version negotiation is disabled so construction makes no request.
func NewClient(opts Options) (*Client, error) {
	server := strings.TrimRight(opts.ServerURL, "/")
	if server == "" {
		return nil, fmt.Errorf("gitea server URL is required")
	}
	base := server
	if api := strings.TrimRight(opts.APIURL, "/"); strings.HasSuffix(api, "/api/v1") {
		base = strings.TrimSuffix(api, "/api/v1")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	api, err := sdk.NewClient(base,
		sdk.SetToken(opts.Token),
		sdk.SetHTTPClient(httpClient),
		sdk.SetGiteaVersion(""),
	)
	if err != nil {
		return nil, fmt.Errorf("create gitea client: %w", err)
	}

	c := &Client{
		api:    api,
		server: server,
		retry:  platform.DefaultRetryPolicy(logger),
		logger: logger,
	}
	if opts.Retry != nil {
		c.retry = *opts.Retry
	}
	return c, nil
}

func (c *Client) ServerURL() string {
	return c.server
}

func (c *Client) BranchURL(owner, repo, branch string) string {
	return fmt.Sprintf("%s/%s/%s/src/branch/%s", c.server, owner, repo, branch)
}

// do runs one SDK call bound to ctx. Non-2xx responses become *platform.StatusError.
func (c *Client) do(ctx context.Context, op string, fn func(api *sdk.Client) (*sdk.Response, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.api.SetContext(ctx)
	resp, err := fn(c.api)
	return responseError(op, resp, err)
}

// call is do with transport retry, for idempotent requests.
func (c *Client) call(ctx context.Context, op string, fn func(api *sdk.Client) (*sdk.Response, error)) error {
	return platform.Retry(ctx, c.retry, op, func() error {
		return c.do(ctx, op, fn)
	})
}

func responseError(op string, resp *sdk.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	if status >= http.StatusMultipleChoices {
		se := &platform.StatusError{Op: op, StatusCode: status}
		if err != nil {
			se.Message = err.Error()
		}
		return se
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) GetCollaboratorPermission(ctx context.Context, owner, repo, user string) (platform.PermissionLevel, error) {
	var out *sdk.CollaboratorPermissionResult
	err := c.call(ctx, "get collaborator permission", func(api *sdk.Client) (*sdk.Response, error) {
		var (
			resp *sdk.Response
			err  error
		)
		out, resp, err = api.CollaboratorPermission(owner, repo, user)
		return resp, err
	})
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", fmt.Errorf("get collaborator permission: %w", platform.ErrNotFound)
	}
	return platform.PermissionLevel(out.Permission), nil
}

// GetUserType is unsupported: Gitea user objects carry no account type.
func (c *Client) GetUserType(context.Context, string) (string, error) {
	return "", platform.ErrUnsupported
}

func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*platform.PullRequest, error) {
	var pr *sdk.PullRequest
	err := c.call(ctx, "get pull request", func(api *sdk.Client) (*sdk.Response, error) {
		var (
			resp *sdk.Response
			err  error
		)
		pr, resp, err = api.GetPullRequest(owner, repo, int64(number))
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	out := &platform.PullRequest{Number: int(pr.Index), State: string(pr.State)}
	if pr.Head != nil {
		out.HeadRef = pr.Head.Ref
	}
	if pr.Base != nil {
		out.BaseRef = pr.Base.Ref
	}
	return out, nil
}

func (c *Client) GetDefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	var r *sdk.Repository
	err := c.call(ctx, "get repository", func(api *sdk.Client) (*sdk.Response, error) {
		var (
			resp *sdk.Response
			err  error
		)
		r, resp, err = api.GetRepo(owner, repo)
		return resp, err
	})
	if err != nil {
		return "", err
	}
	if r.DefaultBranch == "" {
		return "", fmt.Errorf("repository %s/%s reports no default branch", owner, repo)
	}
	return r.DefaultBranch, nil
}

// CreateBranch is sent once, never retried.
func (c *Client) CreateBranch(ctx context.Context, owner, repo, name, from string) error {
	return c.do(ctx, "create branch", func(api *sdk.Client) (*sdk.Response, error) {
		_, resp, err := api.CreateBranch(owner, repo, sdk.CreateBranchOption{
			BranchName:    name,
			OldBranchName: from,
		})
		return resp, err
	})
}

func (c *Client) DeleteBranch(ctx context.Context, owner, repo, name string) error {
	return c.call(ctx, "delete branch", func(api *sdk.Client) (*sdk.Response, error) {
		deleted, resp, err := api.DeleteRepoBranch(owner, repo, name)
		if err == nil && !deleted && (resp == nil || resp.Response == nil) {
			return resp, errors.New("branch was not deleted")
		}
		return resp, err
	})
}

// CompareBranches returns ErrUnsupported on servers without the compare endpoint.
func (c *Client) CompareBranches(ctx context.Context, owner, repo, base, head string) (*platform.Comparison, error) {
	var cmp *sdk.Compare
	err := c.call(ctx, "compare branches", func(api *sdk.Client) (*sdk.Response, error) {
		var (
			resp *sdk.Response
			err  error
		)
		cmp, resp, err = api.CompareCommits(owner, repo, base, head)
		return resp, err
	})
	if errors.Is(err, platform.ErrNotFound) {
		return nil, fmt.Errorf("compare %s...%s: %w", base, head, platform.ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}

	commits := cmp.TotalCommits
	if commits == 0 {
		commits = len(cmp.Commits)
	}
	files := map[string]struct{}{}
	for _, commit := range cmp.Commits {
		if commit == nil {
			continue
		}
		for _, f := range commit.Files {
			if f != nil {
				files[f.Filename] = struct{}{}
			}
		}
	}
	return &platform.Comparison{Commits: commits, ChangedFiles: len(files)}, nil
}

func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	var out *sdk.Comment
	err := c.do(ctx, "create comment", func(api *sdk.Client) (*sdk.Response, error) {
		var (
			resp *sdk.Response
			err  error
		)
		out, resp, err = api.CreateIssueComment(owner, repo, int64(number), sdk.CreateIssueCommentOption{Body: body})
		return resp, err
	})
	if err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) GetComment(ctx context.Context, owner, repo string, ns platform.Namespace, id int64) (*platform.Comment, error) {
	if ns != platform.NamespaceIssue {
		return nil, fmt.Errorf("get %s comment: %w", ns, platform.ErrUnsupported)
	}
	var out *sdk.Comment
	err := c.call(ctx, "get issue comment", func(api *sdk.Client) (*sdk.Response, error) {
		var (
			resp *sdk.Response
			err  error
		)
		out, resp, err = api.GetIssueComment(owner, repo, id)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return &platform.Comment{ID: id, Namespace: ns, Body: out.Body}, nil
}

func (c *Client) UpdateComment(ctx context.Context, owner, repo string, ns platform.Namespace, id int64, body string) error {
	if ns != platform.NamespaceIssue {
		return fmt.Errorf("update %s comment: %w", ns, platform.ErrUnsupported)
	}
	return c.call(ctx, "update issue comment", func(api *sdk.Client) (*sdk.Response, error) {
		_, resp, err := api.EditIssueComment(owner, repo, id, sdk.EditIssueCommentOption{Body: body})
		return resp, err
	})
}
