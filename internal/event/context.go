// Package event normalizes forge webhook payloads into a per-run EventContext.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind is a webhook event name.
type Kind string

const (
	KindIssues                   Kind = "issues"
	KindIssueComment             Kind = "issue_comment"
	KindPullRequest              Kind = "pull_request"
	KindPullRequestReview        Kind = "pull_request_review"
	KindPullRequestReviewComment Kind = "pull_request_review_comment"
)

// ErrUnsupportedEventKind is returned for event names outside the recognized set.
var ErrUnsupportedEventKind = errors.New("unsupported event kind")

// Repository identifies the repository the run is attached to.
type Repository struct {
	Owner    string
	Name     string
	FullName string
}

// Trigger holds the payload text fields trigger evaluation reads.
type Trigger struct {
	Title       string
	Body        string
	CommentBody string
	Assignee    string
	Label       string
}

// Context is the immutable per-run record built once from the platform event.
type Context struct {
	Kind         Kind
	Action       string
	Repository   Repository
	Actor        string
	EntityNumber int
	IsPR         bool
	RunID        string
	Trigger      Trigger
}

// RunEnv carries the run identity supplied by the CI environment.
type RunEnv struct {
	RunID string
	// Repository is "owner/name"; the payload repository is used when empty.
	Repository string
	// Actor falls back to the payload sender when empty.
	Actor string
}

// ParseKind maps an event name onto a Kind. "issue" is accepted as an alias of "issues".
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(name)); k {
	case "issue":
		return KindIssues, nil
	case KindIssues, KindIssueComment, KindPullRequest, KindPullRequestReview, KindPullRequestReviewComment:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEventKind, name)
	}
}

// Resolve builds a Context from the event name, raw payload and run environment.
func Resolve(eventName string, payload []byte, env RunEnv) (Context, error) {
	kind, err := ParseKind(eventName)
	if err != nil {
		return Context{}, err
	}

	var data map[string]interface{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return Context{}, fmt.Errorf("failed to parse event payload: %w", err)
	}

	ctx := Context{
		Kind:   kind,
		Action: getStringField(data, "action"),
		RunID:  env.RunID,
		Actor:  env.Actor,
	}
	if ctx.Actor == "" {
		ctx.Actor = getStringField(data, "sender", "login")
	}

	repo, err := resolveRepository(env.Repository, data)
	if err != nil {
		return Context{}, err
	}
	ctx.Repository = repo

	switch kind {
	case KindIssues:
		issue := getObject(data, "issue")
		ctx.EntityNumber = int(getNumberField(issue, "number"))
		ctx.Trigger.Title = getStringField(issue, "title")
		ctx.Trigger.Body = getStringField(issue, "body")
		ctx.Trigger.Assignee = getStringField(data, "assignee", "login")
		ctx.Trigger.Label = getStringField(data, "label", "name")
	case KindIssueComment:
		issue := getObject(data, "issue")
		ctx.EntityNumber = int(getNumberField(issue, "number"))
		if pr, ok := issue["pull_request"]; ok && pr != nil {
			ctx.IsPR = true
		}
		ctx.Trigger.CommentBody = getStringField(data, "comment", "body")
	case KindPullRequest, KindPullRequestReview, KindPullRequestReviewComment:
		pr := getObject(data, "pull_request")
		ctx.EntityNumber = int(getNumberField(pr, "number"))
		ctx.IsPR = true
		ctx.Trigger.Title = getStringField(pr, "title")
		ctx.Trigger.Body = getStringField(pr, "body")
		switch kind {
		case KindPullRequestReview:
			ctx.Trigger.CommentBody = getStringField(data, "review", "body")
		case KindPullRequestReviewComment:
			ctx.Trigger.CommentBody = getStringField(data, "comment", "body")
		}
	}

	if ctx.EntityNumber <= 0 {
		return Context{}, fmt.Errorf("event %s payload carries no entity number", kind)
	}
	return ctx, nil
}

func resolveRepository(slug string, data map[string]interface{}) (Repository, error) {
	if slug != "" {
		owner, name, ok := strings.Cut(slug, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return Repository{}, fmt.Errorf("invalid repository %q (expected owner/name)", slug)
		}
		return Repository{Owner: owner, Name: name, FullName: slug}, nil
	}
	repo := getObject(data, "repository")
	r := Repository{
		Owner:    getStringField(repo, "owner", "login"),
		Name:     getStringField(repo, "name"),
		FullName: getStringField(repo, "full_name"),
	}
	if r.Owner == "" || r.Name == "" {
		return Repository{}, fmt.Errorf("event payload carries no repository")
	}
	if r.FullName == "" {
		r.FullName = r.Owner + "/" + r.Name
	}
	return r, nil
}

// IsReviewCommentEvent reports whether the run was triggered by an inline review comment.
func (c Context) IsReviewCommentEvent() bool {
	return c.Kind == KindPullRequestReviewComment
}

// EntityType is the lowercase entity word used in branch names.
func (c Context) EntityType() string {
	if c.IsPR {
		return "pr"
	}
	return "issue"
}

// EntityLabel is the capitalized entity word used in user-facing text.
func (c Context) EntityLabel() string {
	if c.IsPR {
		return "PR"
	}
	return "Issue"
}

// Helper functions for safe map access
func getObject(data map[string]interface{}, key string) map[string]interface{} {
	if next, ok := data[key].(map[string]interface{}); ok {
		return next
	}
	return map[string]interface{}{}
}

func getStringField(data map[string]interface{}, keys ...string) string {
	current := data
	for i, key := range keys {
		if i == len(keys)-1 {
			if val, ok := current[key].(string); ok {
				return val
			}
			return ""
		}
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return ""
		}
	}
	return ""
}

func getNumberField(data map[string]interface{}, keys ...string) float64 {
	current := data
	for i, key := range keys {
		if i == len(keys)-1 {
			if val, ok := current[key].(float64); ok {
				return val
			}
			return 0
		}
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return 0
		}
	}
	return 0
}
