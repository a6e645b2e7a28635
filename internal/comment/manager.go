package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cexll/swe-action/internal/branch"
	"github.com/cexll/swe-action/internal/event"
	"github.com/cexll/swe-action/internal/platform"
)

// OutputCommentID 初始评论 ID 的输出键
const OutputCommentID = "claude_comment_id"

var (
	// ErrCommentNotFound 两个命名空间都找不到追踪评论
	ErrCommentNotFound = errors.New("tracking comment not found")
	// ErrCommentWriteFailed 写入追踪评论失败
	ErrCommentWriteFailed = errors.New("failed to write tracking comment")
)

// Outputs 运行输出通道
type Outputs interface {
	Set(key, value string) error
}

// BranchCleaner 检查并删除无变更的分支
type BranchCleaner interface {
	CheckAndDeleteEmpty(ctx context.Context, owner, repo, branch, base string) branch.CleanupResult
}

// Manager 管理追踪评论的生命周期：创建、补充分支链接、最终状态
type Manager struct {
	client  platform.Client
	cleaner BranchCleaner
	outputs Outputs
	logger  *slog.Logger
}

// NewManager 创建评论管理器；cleaner 为 nil 时使用 branch.Cleaner
func NewManager(client platform.Client, cleaner BranchCleaner, outputs Outputs, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cleaner == nil {
		cleaner = branch.NewCleaner(client, logger)
	}
	return &Manager{client: client, cleaner: cleaner, outputs: outputs, logger: logger}
}

// JobURL 当前运行的 Job 地址
func (m *Manager) JobURL(ec event.Context) string {
	return JobRunURL(m.client.ServerURL(), ec.Repository.Owner, ec.Repository.Name, ec.RunID)
}

// CreateInitial 在触发实体上发布初始评论并输出评论 ID
func (m *Manager) CreateInitial(ctx context.Context, ec event.Context) (int64, error) {
	body := InitialBody(m.JobURL(ec), "")
	id, err := m.client.CreateComment(ctx, ec.Repository.Owner, ec.Repository.Name, ec.EntityNumber, body)
	if err != nil {
		return 0, fmt.Errorf("create initial comment: %w", err)
	}
	m.logger.Info("created initial comment", "comment_id", id, "entity", ec.EntityNumber)

	if m.outputs != nil {
		if err := m.outputs.Set(OutputCommentID, strconv.FormatInt(id, 10)); err != nil {
			return id, fmt.Errorf("write %s output: %w", OutputCommentID, err)
		}
	}
	return id, nil
}

// UpdateWithBranch 为 issue 场景新建的分支补充链接；PR 场景或无分支时不做任何写入
func (m *Manager) UpdateWithBranch(ctx context.Context, ec event.Context, commentID int64, branchName string) error {
	if branchName == "" || ec.IsPR {
		return nil
	}
	owner, repo := ec.Repository.Owner, ec.Repository.Name
	body := InitialBody(m.JobURL(ec), branch.BranchLink(m.client.BranchURL(owner, repo, branchName)))

	if err := m.client.UpdateComment(ctx, owner, repo, platform.NamespaceIssue, commentID, body); err != nil {
		return fmt.Errorf("%w: %d: %w", ErrCommentWriteFailed, commentID, err)
	}
	m.logger.Info("added branch link to comment", "comment_id", commentID, "branch", branchName)
	return nil
}

// FinalizeInput 最终更新所需的运行信息
type FinalizeInput struct {
	CommentID       int64
	Branch          string
	BaseBranch      string
	TriggerUsername string
	Outcome         OutcomeInput
}

// LookupOrder 返回查找评论时依次尝试的命名空间
// 只有 review comment 事件优先查 review 命名空间
func LookupOrder(ec event.Context) []platform.Namespace {
	if ec.IsReviewCommentEvent() {
		return []platform.Namespace{platform.NamespaceReview, platform.NamespaceIssue}
	}
	return []platform.Namespace{platform.NamespaceIssue, platform.NamespaceReview}
}

// Locate 在两个命名空间中查找评论
func (m *Manager) Locate(ctx context.Context, ec event.Context, id int64) (*platform.Comment, error) {
	owner, repo := ec.Repository.Owner, ec.Repository.Name
	var errs []error
	for _, ns := range LookupOrder(ec) {
		c, err := m.client.GetComment(ctx, owner, repo, ns, id)
		if err == nil {
			c.Namespace = ns
			return c, nil
		}
		m.logger.Debug("comment not found in namespace", "comment_id", id, "namespace", ns, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", ns, err))
	}
	return nil, fmt.Errorf("%w: %d: %w", ErrCommentNotFound, id, errors.Join(errs...))
}

// Finalize 将追踪评论改写为最终状态
func (m *Manager) Finalize(ctx context.Context, ec event.Context, in FinalizeInput) error {
	owner, repo := ec.Repository.Owner, ec.Repository.Name

	current, err := m.Locate(ctx, ec, in.CommentID)
	if err != nil {
		m.logDiagnostics(ctx, ec, in.CommentID)
		return err
	}

	cleanup := m.cleaner.CheckAndDeleteEmpty(ctx, owner, repo, in.Branch, in.BaseBranch)

	prLink := ""
	if in.Branch != "" && !cleanup.Deleted && !ContainsPRURL(current.Body, m.client.ServerURL(), in.BaseBranch) {
		prLink = m.prLink(ctx, ec, in.Branch, in.BaseBranch)
	}

	outcome := ResolveOutcome(in.Outcome)
	if outcome.ArtifactErr != nil {
		m.logger.Warn("could not read execution details", "path", in.Outcome.OutputFile, "error", outcome.ArtifactErr)
	}

	branchName := in.Branch
	if cleanup.Deleted {
		branchName = ""
	}
	body := UpdateBody(UpdateInput{
		CurrentBody:     current.Body,
		JobURL:          m.JobURL(ec),
		ActionFailed:    outcome.ActionFailed,
		ErrorDetails:    outcome.ErrorDetails,
		Execution:       outcome.Execution,
		BranchName:      branchName,
		BranchLink:      cleanup.BranchLink,
		PRLink:          prLink,
		TriggerUsername: in.TriggerUsername,
	})

	if err := m.client.UpdateComment(ctx, owner, repo, current.Namespace, in.CommentID, body); err != nil {
		return fmt.Errorf("%w: %d: %w", ErrCommentWriteFailed, in.CommentID, err)
	}
	m.logger.Info("updated tracking comment", "comment_id", in.CommentID, "namespace", current.Namespace, "failed", outcome.ActionFailed)
	return nil
}

// prLink 分支有变更时生成 PR 创建链接；比较失败时照常提供
func (m *Manager) prLink(ctx context.Context, ec event.Context, branchName, base string) string {
	owner, repo := ec.Repository.Owner, ec.Repository.Name
	cmp, err := m.client.CompareBranches(ctx, owner, repo, base, branchName)
	if err != nil {
		m.logger.Warn("could not compare branch for PR link", "branch", branchName, "error", err)
	} else if !cmp.HasChanges() {
		return ""
	}
	url := PRCreateURL(m.client.ServerURL(), owner, repo, base, branchName, ec.EntityLabel(), ec.EntityNumber)
	return PRLink(url)
}

func (m *Manager) logDiagnostics(ctx context.Context, ec event.Context, id int64) {
	attrs := []any{
		"comment_id", id,
		"event", ec.Kind,
		"entity", ec.EntityNumber,
		"repository", ec.Repository.FullName,
	}
	if ec.IsPR {
		if pr, err := m.client.GetPullRequest(ctx, ec.Repository.Owner, ec.Repository.Name, ec.EntityNumber); err == nil {
			attrs = append(attrs, "pr_state", pr.State, "pr_head", pr.HeadRef)
		} else {
			attrs = append(attrs, "pr_error", err)
		}
	}
	m.logger.Error("tracking comment not found in any namespace", attrs...)
}
