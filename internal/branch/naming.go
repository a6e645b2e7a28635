package branch

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout 分支名中的 UTC 时间戳，秒级精度，可排序且不含冒号
const TimestampLayout = "20060102_150405"

// DefaultPrefix 新建分支的默认前缀
const DefaultPrefix = "claude/"

// GenerateBranchName 生成分支名：claude/issue-42-20240101_000000
// entityType: "issue" 或 "pr"
// 返回格式：{prefix}{entityType}-{number}-{timestamp}
func GenerateBranchName(prefix, entityType string, number int, now time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s%s-%d-%s", prefix, entityType, number, now.UTC().Format(TimestampLayout))
}

// ValidateBranchName 验证分支名是否为合法的 ref 名
// 规则取自 git check-ref-format 的常用子集
func ValidateBranchName(name string) bool {
	if name == "" || len(name) > 255 {
		return false
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") ||
		strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock") {
		return false
	}
	if strings.Contains(name, "..") || strings.Contains(name, "//") || strings.Contains(name, "@{") {
		return false
	}
	for _, r := range name {
		if r <= ' ' || r == 0x7f {
			return false
		}
		switch r {
		case ':', '~', '^', '?', '*', '[', '\\':
			return false
		}
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}
