package validation

import (
	"testing"

	"github.com/cexll/swe-action/internal/event"
)

func TestCheckTrigger(t *testing.T) {
	opts := TriggerOptions{Phrase: "@claude", AssigneeTrigger: "@claude-bot", LabelTrigger: "claude"}

	tests := []struct {
		name string
		ec   event.Context
		opts TriggerOptions
		want bool
	}{
		{
			name: "comment with phrase",
			ec:   event.Context{Kind: event.KindIssueComment, Trigger: event.Trigger{CommentBody: "hey @claude, fix this"}},
			want: true,
		},
		{
			name: "comment phrase at end",
			ec:   event.Context{Kind: event.KindPullRequestReviewComment, Trigger: event.Trigger{CommentBody: "ping @claude"}},
			want: true,
		},
		{
			name: "phrase embedded in another word",
			ec:   event.Context{Kind: event.KindIssueComment, Trigger: event.Trigger{CommentBody: "email me@claude.ai"}},
			want: false,
		},
		{
			name: "longer handle does not match",
			ec:   event.Context{Kind: event.KindIssueComment, Trigger: event.Trigger{CommentBody: "@claudette help"}},
			want: false,
		},
		{
			name: "issue opened with phrase in body",
			ec:   event.Context{Kind: event.KindIssues, Action: "opened", Trigger: event.Trigger{Body: "@claude implement"}},
			want: true,
		},
		{
			name: "issue closed is ignored",
			ec:   event.Context{Kind: event.KindIssues, Action: "closed", Trigger: event.Trigger{Body: "@claude implement"}},
			want: false,
		},
		{
			name: "pull request title",
			ec:   event.Context{Kind: event.KindPullRequest, Action: "opened", Trigger: event.Trigger{Title: "@claude review"}},
			want: true,
		},
		{
			name: "assignee trigger",
			ec:   event.Context{Kind: event.KindIssues, Action: "assigned", Trigger: event.Trigger{Assignee: "claude-bot"}},
			want: true,
		},
		{
			name: "other assignee",
			ec:   event.Context{Kind: event.KindIssues, Action: "assigned", Trigger: event.Trigger{Assignee: "alice", Body: "@claude"}},
			want: false,
		},
		{
			name: "label trigger",
			ec:   event.Context{Kind: event.KindIssues, Action: "labeled", Trigger: event.Trigger{Label: "claude"}},
			want: true,
		},
		{
			name: "direct prompt always triggers",
			ec:   event.Context{Kind: event.KindIssues, Action: "closed"},
			opts: TriggerOptions{DirectPrompt: "do the thing"},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opts
			if tt.opts != (TriggerOptions{}) {
				o = tt.opts
			}
			if got := CheckTrigger(tt.ec, o); got != tt.want {
				t.Errorf("CheckTrigger() = %v, want %v", got, tt.want)
			}
		})
	}
}
