package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cexll/swe-action/internal/comment"
	"github.com/cexll/swe-action/internal/event"
	"github.com/cexll/swe-action/internal/platform"
)

// UpdateCommentParams defines the input parameters for the tool
type UpdateCommentParams struct {
	Body string `json:"body" jsonschema:"The updated comment content"`
}

type updateResult struct {
	Success    bool               `json:"success"`
	Owner      string             `json:"owner"`
	Repo       string             `json:"repo"`
	CommentID  int64              `json:"comment_id"`
	Namespace  platform.Namespace `json:"namespace"`
	EventName  string             `json:"event_name"`
	BodyLength int                `json:"body_length"`
}

type updater struct {
	client platform.Client
	cfg    serverConfig
	logger *slog.Logger
}

// HandleUpdateComment handles the update_claude_comment tool call.
// Review comment events try the review namespace first.
func (u *updater) HandleUpdateComment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	params UpdateCommentParams,
) (*mcp.CallToolResult, any, error) {
	if params.Body == "" {
		return nil, nil, fmt.Errorf("body parameter is required")
	}
	body := comment.Sanitize(params.Body, u.cfg.Token)
	u.logger.Info("received update_claude_comment request", "comment_id", u.cfg.CommentID, "length", len(body))

	ns, err := u.update(ctx, body)
	if err != nil {
		u.logger.Error("failed to update comment", "comment_id", u.cfg.CommentID, "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	text, err := json.MarshalIndent(updateResult{
		Success:    true,
		Owner:      u.cfg.Owner,
		Repo:       u.cfg.Repo,
		CommentID:  u.cfg.CommentID,
		Namespace:  ns,
		EventName:  u.cfg.EventName,
		BodyLength: len(body),
	}, "", "  ")
	if err != nil {
		return nil, nil, err
	}

	u.logger.Info("updated comment", "comment_id", u.cfg.CommentID, "namespace", ns)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
	}, nil, nil
}

// update writes through the first namespace that holds the comment.
func (u *updater) update(ctx context.Context, body string) (platform.Namespace, error) {
	ec := event.Context{Kind: event.Kind(u.cfg.EventName)}
	var errs []error
	for _, ns := range comment.LookupOrder(ec) {
		err := u.client.UpdateComment(ctx, u.cfg.Owner, u.cfg.Repo, ns, u.cfg.CommentID, body)
		if err == nil {
			return ns, nil
		}
		if !errors.Is(err, platform.ErrNotFound) && !errors.Is(err, platform.ErrUnsupported) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("%s: %w", ns, err))
	}
	return "", fmt.Errorf("%w: %d: %w", comment.ErrCommentNotFound, u.cfg.CommentID, errors.Join(errs...))
}
