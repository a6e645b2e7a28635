package comment

import (
	"regexp"
	"strconv"
	"strings"
)

const redactedToken = "[REDACTED_GITHUB_TOKEN]"

var (
	invisiblePattern = regexp.MustCompile("[\u200B\u200C\u200D\uFEFF\u00AD\u202A-\u202E\u2066-\u2069]")
	controlPattern   = regexp.MustCompile("[\u0000-\u0008\u000B\u000C\u000E-\u001F\u007F-\u009F]")
	htmlComment      = regexp.MustCompile(`<!--[\s\S]*?-->`)
	imageAltPattern  = regexp.MustCompile(`!\[[^\]]*\]\(`)
	linkTitlePattern = regexp.MustCompile(`(\[[^\]]*\]\([^)\s]+)\s+(?:"[^"]*"|'[^']*')`)
	hiddenAttr       = regexp.MustCompile(`\s(?:alt|title|aria-label|placeholder|data-[a-zA-Z0-9-]+)\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
	numericEntity    = regexp.MustCompile(`&#(x[0-9a-fA-F]+|\d+);`)

	tokenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bgh[posr]_[A-Za-z0-9]{36}\b`),
		regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{11,221}\b`),
	}
)

// Sanitize cleans assistant-supplied comment content before it is posted:
// hidden markup and characters are removed and token-like strings redacted.
// Every non-empty secret is redacted verbatim as well.
func Sanitize(s string, secrets ...string) string {
	if s == "" {
		return s
	}
	s = htmlComment.ReplaceAllString(s, "")
	s = invisiblePattern.ReplaceAllString(s, "")
	s = controlPattern.ReplaceAllString(s, "")
	s = imageAltPattern.ReplaceAllString(s, "![](")
	s = linkTitlePattern.ReplaceAllString(s, "$1")
	s = hiddenAttr.ReplaceAllString(s, "")
	s = numericEntity.ReplaceAllStringFunc(s, decodeEntity)

	for _, p := range tokenPatterns {
		s = p.ReplaceAllString(s, redactedToken)
	}
	for _, secret := range secrets {
		if len(secret) >= 8 {
			s = strings.ReplaceAll(s, secret, redactedToken)
		}
	}
	return strings.TrimSpace(s)
}

// decodeEntity keeps printable ASCII entities and drops the rest.
func decodeEntity(entity string) string {
	digits := strings.TrimSuffix(strings.TrimPrefix(entity, "&#"), ";")
	base := 10
	if strings.HasPrefix(digits, "x") {
		digits, base = digits[1:], 16
	}
	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil || n < 32 || n > 126 {
		return ""
	}
	return string(rune(n))
}
