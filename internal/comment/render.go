package comment

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// UpdateInput 渲染最终状态评论所需的全部信息
type UpdateInput struct {
	CurrentBody     string
	JobURL          string
	ActionFailed    bool
	ErrorDetails    string
	Execution       *ExecutionDetails
	BranchName      string
	BranchLink      string
	PRLink          string
	TriggerUsername string
}

var (
	workingPattern    = regexp.MustCompile(`(?i)Claude Code is working[….]{1,3}(?:\s*<img[^>]*>)?`)
	statusPRPattern   = regexp.MustCompile(`\[Create PR ➔\]\(([^)\s]+)\)`)
	legacyPRPattern   = regexp.MustCompile(`(?m)\[Create .* PR\]\((.*)\)$`)
	usernamePattern   = regexp.MustCompile(`@([a-zA-Z0-9-]+)`)
	linkURLPattern    = regexp.MustCompile(`\((https?://[^)\s]+)\)`)
	markdownURL       = regexp.MustCompile(`\(([^)]+)\)`)
	jobRunLinePattern = regexp.MustCompile(`\n?\[View job run\]\([^)]+\)`)
	branchLinePattern = regexp.MustCompile(`\n?\[View branch\]\([^)]+\)`)
	durationPattern   = regexp.MustCompile(`\n*---\n*Duration: [0-9]+m? [0-9]+s`)
)

// UpdateBody 把运行中的评论改写为最终状态评论
// 对自身输出重复调用结果不变
func UpdateBody(in UpdateInput) string {
	content := strings.TrimSpace(workingPattern.ReplaceAllString(in.CurrentBody, ""))

	// 已渲染过的状态块整体替换，保留其中的 PR 链接
	prFromContent := ""
	if block := statusBlock(content); block != "" {
		if m := statusPRPattern.FindStringSubmatch(block); m != nil {
			prFromContent = m[1]
		}
		content = strings.TrimSpace(content[len(block):])
	}
	if m := legacyPRPattern.FindStringSubmatch(content); m != nil {
		if prFromContent == "" {
			prFromContent = m[1]
		}
		content = strings.TrimSpace(strings.Replace(content, m[0], "", 1))
	}

	var b strings.Builder
	b.WriteString(header(in, content))
	b.WriteString(" —— [View job](" + in.JobURL + ")")

	if name, link := branchParts(in); name != "" && link != "" {
		fmt.Fprintf(&b, " • [`%s`](%s)", name, link)
	}

	prURL := prFromContent
	if prURL == "" && in.PRLink != "" {
		if m := markdownURL.FindStringSubmatch(in.PRLink); m != nil {
			prURL = m[1]
		}
	}
	if prURL != "" {
		fmt.Fprintf(&b, " • [Create PR ➔](%s)", prURL)
	}

	if in.Execution != nil && in.Execution.CostUSD > 0 {
		fmt.Fprintf(&b, "\n\nCost: $%.4f", in.Execution.CostUSD)
		if in.Execution.DurationAPIMS != nil {
			fmt.Fprintf(&b, " | API time: %s", formatDuration(*in.Execution.DurationAPIMS))
		}
	}

	if in.ActionFailed && in.ErrorDetails != "" {
		fence := codeFence(in.ErrorDetails)
		fmt.Fprintf(&b, "\n\n%s\n%s\n%s", fence, in.ErrorDetails, fence)
	}

	b.WriteString("\n\n---\n")

	content = jobRunLinePattern.ReplaceAllString(content, "")
	content = branchLinePattern.ReplaceAllString(content, "")
	content = durationPattern.ReplaceAllString(content, "")
	b.WriteString(strings.TrimSpace(content))

	return strings.TrimSpace(b.String())
}

// statusBlock 返回 content 开头已渲染的状态块（含结尾的 --- 行）
// 围栏代码块内的 --- 不算分隔线
func statusBlock(content string) string {
	if !strings.HasPrefix(content, "**Claude finished") && !strings.HasPrefix(content, "**Claude encountered") {
		return ""
	}
	fence := 0
	offset := 0
	for offset < len(content) {
		end := strings.IndexByte(content[offset:], '\n')
		next := len(content)
		if end >= 0 {
			next = offset + end + 1
		}
		line := strings.TrimRight(content[offset:next], "\n")
		run := backtickRun(line)
		switch {
		case fence == 0 && run >= 3:
			fence = run
		case fence > 0 && run >= fence && strings.TrimRight(line, "`") == "":
			fence = 0
		case fence == 0 && line == "---" && offset > 0:
			return content[:next]
		}
		offset = next
	}
	return ""
}

// codeFence 返回比 s 中最长反引号串更长的围栏
func codeFence(s string) string {
	longest := 0
	current := 0
	for _, r := range s {
		if r == '`' {
			current++
			if current > longest {
				longest = current
			}
			continue
		}
		current = 0
	}
	if longest < 3 {
		longest = 2
	}
	return strings.Repeat("`", longest+1)
}

func backtickRun(line string) int {
	n := 0
	for n < len(line) && line[n] == '`' {
		n++
	}
	return n
}

func header(in UpdateInput, content string) string {
	duration := ""
	if in.Execution != nil {
		duration = formatDuration(in.Execution.DurationMS)
	}

	if in.ActionFailed {
		if duration != "" {
			return "**Claude encountered an error after " + duration + "**"
		}
		return "**Claude encountered an error**"
	}

	username := in.TriggerUsername
	if username == "" {
		if m := usernamePattern.FindStringSubmatch(content); m != nil {
			username = m[1]
		} else {
			username = "user"
		}
	}
	if duration != "" {
		return fmt.Sprintf("**Claude finished @%s's task in %s**", username, duration)
	}
	return fmt.Sprintf("**Claude finished @%s's task**", username)
}

// branchParts 从 BranchName/BranchLink 中得到展示名称和地址
func branchParts(in UpdateInput) (string, string) {
	name := in.BranchName
	link := ""
	if m := linkURLPattern.FindStringSubmatch(in.BranchLink); m != nil {
		link = m[1]
	}
	if name == "" && link != "" {
		for _, marker := range []string{"/tree/", "/src/branch/"} {
			if i := strings.Index(link, marker); i >= 0 {
				name = strings.TrimSuffix(link[i+len(marker):], "/")
				break
			}
		}
	}
	return name, link
}

func formatDuration(ms float64) string {
	total := int(math.Round(ms / 1000))
	minutes, seconds := total/60, total%60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
