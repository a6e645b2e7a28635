// Package branch provisions the working branch of a run: it reuses the head of
// an open pull request or creates a new uniquely named branch.
package branch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cexll/swe-action/internal/event"
	"github.com/cexll/swe-action/internal/git"
	"github.com/cexll/swe-action/internal/platform"
)

// ErrBranchCreateFailed 服务端创建分支失败（例如重名）
var ErrBranchCreateFailed = errors.New("branch creation failed")

// Info 分支信息
// ClaudeBranch 仅在本次运行新建分支时设置；CurrentBranch 始终为本地已检出的分支
type Info struct {
	BaseBranch    string
	ClaudeBranch  string
	CurrentBranch string
}

// Options 分支控制选项
type Options struct {
	// BaseBranch 覆盖仓库默认分支
	BaseBranch          string
	Prefix              string
	PRFetchDepth        int
	NewBranchFetchDepth int
}

// Controller 分支控制器
type Controller struct {
	client   platform.Client
	checkout git.Checkouter
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewController 创建分支控制器
func NewController(client platform.Client, checkout git.Checkouter, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PRFetchDepth <= 0 {
		opts.PRFetchDepth = 20
	}
	if opts.NewBranchFetchDepth <= 0 {
		opts.NewBranchFetchDepth = 1
	}
	return &Controller{
		client:   client,
		checkout: checkout,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Setup 准备工作分支
// 打开的 PR：检出其 head 分支；Issue 或已关闭/合并的 PR：新建分支并检出
// 任何 API 或 git 错误都是致命的
func (c *Controller) Setup(ctx context.Context, ec event.Context) (*Info, error) {
	owner, repo := ec.Repository.Owner, ec.Repository.Name

	if ec.IsPR {
		pr, err := c.client.GetPullRequest(ctx, owner, repo, ec.EntityNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to get pull request #%d: %w", ec.EntityNumber, err)
		}
		if pr.IsOpen() {
			c.logger.Info("reusing pull request branch",
				"pr", ec.EntityNumber, "branch", pr.HeadRef, "base", pr.BaseRef)
			if err := c.checkout.FetchAndCheckout(ctx, pr.HeadRef, c.opts.PRFetchDepth); err != nil {
				return nil, err
			}
			return &Info{BaseBranch: pr.BaseRef, CurrentBranch: pr.HeadRef}, nil
		}
		c.logger.Info("pull request is not open, creating a new branch", "pr", ec.EntityNumber, "state", pr.State)
	}

	source := c.opts.BaseBranch
	if source == "" {
		def, err := c.client.GetDefaultBranch(ctx, owner, repo)
		if err != nil {
			return nil, fmt.Errorf("failed to get default branch: %w", err)
		}
		source = def
	}

	name := GenerateBranchName(c.opts.Prefix, ec.EntityType(), ec.EntityNumber, c.now())
	if !ValidateBranchName(name) {
		return nil, fmt.Errorf("%w: invalid branch name %q", ErrBranchCreateFailed, name)
	}

	c.logger.Info("creating branch", "branch", name, "from", source)
	if err := c.client.CreateBranch(ctx, owner, repo, name, source); err != nil {
		return nil, fmt.Errorf("%w: %s from %s: %w", ErrBranchCreateFailed, name, source, err)
	}

	if err := c.checkout.FetchAndCheckout(ctx, name, c.opts.NewBranchFetchDepth); err != nil {
		return nil, err
	}
	return &Info{BaseBranch: source, ClaudeBranch: name, CurrentBranch: name}, nil
}
