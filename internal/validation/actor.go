package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cexll/swe-action/internal/platform"
)

// ErrNonHumanActor is returned when a workflow was initiated by a bot account.
var ErrNonHumanActor = errors.New("workflow initiated by non-human actor")

// IsBotLogin 仅根据 login 字符串判断是否为 Bot
func IsBotLogin(login string) bool {
	return strings.HasSuffix(login, "[bot]")
}

// CheckHumanActor 拒绝 Bot 触发的运行，防止 Bot 之间的死循环
// 平台不支持查询用户类型时退回到 login 后缀判断
func CheckHumanActor(ctx context.Context, client platform.Client, actor string) error {
	if IsBotLogin(actor) {
		return fmt.Errorf("%w: %s", ErrNonHumanActor, actor)
	}
	typ, err := client.GetUserType(ctx, actor)
	if err != nil {
		if errors.Is(err, platform.ErrUnsupported) {
			return nil
		}
		return fmt.Errorf("failed to look up actor %s: %w", actor, err)
	}
	if !strings.EqualFold(typ, "User") {
		return fmt.Errorf("%w: %s (account type %s)", ErrNonHumanActor, actor, typ)
	}
	return nil
}
