package comment

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// PRCreateURL 生成 PR 创建地址（quick_pull），标题和描述已预填并做 URL 编码
func PRCreateURL(serverURL, owner, repo, base, branch, entityLabel string, number int) string {
	title := fmt.Sprintf("%s #%d: Changes from Claude", entityLabel, number)
	body := fmt.Sprintf("This PR addresses %s #%d\n\nGenerated with [Claude Code](https://claude.ai/code)",
		strings.ToLower(entityLabel), number)

	return fmt.Sprintf("%s/%s/%s/compare/%s...%s?quick_pull=1&title=%s&body=%s",
		strings.TrimRight(serverURL, "/"), owner, repo, base, branch,
		encodeComponent(title), encodeComponent(body))
}

// PRLink 生成 PR 创建链接（Markdown 格式）
func PRLink(prURL string) string {
	return fmt.Sprintf("\n[Create a PR](%s)", prURL)
}

// ContainsPRURL 判断评论中是否已有指向同一 base 的 PR 创建地址
func ContainsPRURL(body, serverURL, base string) bool {
	pattern := regexp.QuoteMeta(strings.TrimRight(serverURL, "/")) + `/.+/compare/` + regexp.QuoteMeta(base) + `\.\.\.`
	return regexp.MustCompile(pattern).MatchString(body)
}

// encodeComponent 按 URI component 规则编码（空格编码为 %20）
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
