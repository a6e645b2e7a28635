package comment

import (
	"fmt"
	"strings"
)

// SpinnerHTML 运行中的 spinner 图标
const SpinnerHTML = `<img src="https://github.com/user-attachments/assets/5ac382c7-e004-429b-8e35-7feb3e8f9c6f" width="14px" height="14px" style="vertical-align: middle; margin-left: 4px;" />`

// WorkingMessage 初始评论的状态行
const WorkingMessage = "Claude Code is working…"

// JobRunURL 生成 Job Run 地址
func JobRunURL(serverURL, owner, repo, runID string) string {
	return fmt.Sprintf("%s/%s/%s/actions/runs/%s", strings.TrimRight(serverURL, "/"), owner, repo, runID)
}

// JobRunLink 生成 Job Run 链接（Markdown 格式）
func JobRunLink(jobURL string) string {
	return fmt.Sprintf("[View job run](%s)", jobURL)
}

// InitialBody 格式化初始评论内容
// branchLink 为空或形如 "\n[View branch](url)"
func InitialBody(jobURL, branchLink string) string {
	return fmt.Sprintf("%s %s\n\nI'll analyze this and get back to you.\n\n%s%s",
		WorkingMessage, SpinnerHTML, JobRunLink(jobURL), branchLink)
}
