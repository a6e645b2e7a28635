package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cexll/swe-action/internal/event"
	"github.com/cexll/swe-action/internal/platform"
)

var (
	// ErrPermissionCheckFailed 权限查询失败；永远不会被当作"允许"
	ErrPermissionCheckFailed = errors.New("permission check failed")
	// ErrInsufficientPermission 用户缺少写权限
	ErrInsufficientPermission = errors.New("actor does not have write permissions to the repository")
)

// CheckWritePermission 检查用户是否有写权限
// 返回 true 表示有 write 或 admin 权限；查询失败返回 ErrPermissionCheckFailed
func CheckWritePermission(ctx context.Context, client platform.Client, repo event.Repository, actor string, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("checking permissions", "actor", actor, "repository", repo.FullName)

	level, err := client.GetCollaboratorPermission(ctx, repo.Owner, repo.Name, actor)
	if err != nil {
		logger.Error("failed to check permissions", "actor", actor, "error", err)
		return false, fmt.Errorf("%w for %s: %v", ErrPermissionCheckFailed, actor, err)
	}

	logger.Info("permission level retrieved", "actor", actor, "permission", level)
	if level.CanWrite() {
		return true, nil
	}
	logger.Warn("actor has insufficient permissions", "actor", actor, "permission", level)
	return false, nil
}

// EnsureWritePermission 确保用户有写权限，否则返回 ErrInsufficientPermission
func EnsureWritePermission(ctx context.Context, client platform.Client, repo event.Repository, actor string, logger *slog.Logger) error {
	ok, err := CheckWritePermission(ctx, client, repo, actor, logger)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInsufficientPermission, actor, repo.FullName)
	}
	return nil
}
