package validation

import (
	"regexp"
	"strings"

	"github.com/cexll/swe-action/internal/event"
)

// TriggerOptions are the configured ways a run can be triggered.
type TriggerOptions struct {
	Phrase          string
	AssigneeTrigger string
	LabelTrigger    string
	DirectPrompt    string
}

// CheckTrigger reports whether the event asks for the assistant.
func CheckTrigger(ec event.Context, opts TriggerOptions) bool {
	if strings.TrimSpace(opts.DirectPrompt) != "" {
		return true
	}

	if ec.Kind == event.KindIssues {
		switch ec.Action {
		case "assigned":
			want := strings.TrimPrefix(opts.AssigneeTrigger, "@")
			return want != "" && ec.Trigger.Assignee == want
		case "labeled":
			return opts.LabelTrigger != "" && ec.Trigger.Label == opts.LabelTrigger
		}
	}

	if opts.Phrase == "" {
		return false
	}
	pattern := phrasePattern(opts.Phrase)

	switch ec.Kind {
	case event.KindIssues, event.KindPullRequest:
		if ec.Action != "opened" && ec.Action != "edited" && ec.Action != "" {
			return false
		}
		return pattern.MatchString(ec.Trigger.Body) || pattern.MatchString(ec.Trigger.Title)
	default:
		return pattern.MatchString(ec.Trigger.CommentBody)
	}
}

// phrasePattern matches the phrase as a standalone word followed by space, punctuation or end.
func phrasePattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(^|\s)` + regexp.QuoteMeta(phrase) + `([\s.,!?;:]|$)`)
}
