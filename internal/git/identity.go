package git

import (
	"context"
	"fmt"
	"strings"
)

// ConfigureIdentity 配置仓库的提交者信息
// name 与 email 均为空时不做任何修改
func ConfigureIdentity(ctx context.Context, runner CommandRunner, dir, name, email string) error {
	if name == "" && email == "" {
		return nil
	}
	if name != "" {
		if out, err := runner.RunInDir(ctx, dir, "git", "config", "user.name", name); err != nil {
			return fmt.Errorf("failed to set git user.name: %w (output: %s)", err, strings.TrimSpace(string(out)))
		}
	}
	if email != "" {
		if out, err := runner.RunInDir(ctx, dir, "git", "config", "user.email", email); err != nil {
			return fmt.Errorf("failed to set git user.email: %w (output: %s)", err, strings.TrimSpace(string(out)))
		}
	}
	return nil
}
