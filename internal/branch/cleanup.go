package branch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cexll/swe-action/internal/platform"
)

// CleanupResult 分支清理结果
type CleanupResult struct {
	// Deleted 分支无任何变更且已删除
	Deleted bool
	// BranchLink 要展示的分支链接，形如 "\n[View branch](url)"；无则为空
	BranchLink string
}

// Cleaner 检查新建分支是否为空，为空则删除
type Cleaner struct {
	client platform.Client
	logger *slog.Logger
}

// NewCleaner 创建分支清理器
func NewCleaner(client platform.Client, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{client: client, logger: logger}
}

// CheckAndDeleteEmpty 比较分支与 base：无提交且无文件变更时删除分支并不展示链接
// 比较不可用或失败时保留分支和链接；删除失败时同样保留
func (c *Cleaner) CheckAndDeleteEmpty(ctx context.Context, owner, repo, branch, base string) CleanupResult {
	if branch == "" {
		return CleanupResult{}
	}
	keep := CleanupResult{BranchLink: BranchLink(c.client.BranchURL(owner, repo, branch))}

	cmp, err := c.client.CompareBranches(ctx, owner, repo, base, branch)
	if err != nil {
		c.logger.Warn("could not compare branch, keeping it", "branch", branch, "base", base, "error", err)
		return keep
	}
	if cmp.HasChanges() {
		return keep
	}

	c.logger.Info("branch has no changes, deleting", "branch", branch, "base", base)
	if err := c.client.DeleteBranch(ctx, owner, repo, branch); err != nil {
		c.logger.Warn("failed to delete empty branch", "branch", branch, "error", err)
		return keep
	}
	return CleanupResult{Deleted: true}
}

// BranchLink 生成分支链接（Markdown 格式）
func BranchLink(url string) string {
	return fmt.Sprintf("\n[View branch](%s)", url)
}
