package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cexll/swe-action/internal/toolconfig"
)

func newMCPConfigCommand() *cobra.Command {
	var (
		branchName string
		commentID  int64
	)

	cmd := &cobra.Command{
		Use:   "mcp-config",
		Short: "Print the tool server configuration for the current run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFromContext(cmd.Context())
			run := cfg.Run()

			owner, repo, ok := strings.Cut(run.Repository, "/")
			if !ok {
				return fmt.Errorf("repository %q is not in owner/name form", run.Repository)
			}
			if branchName == "" {
				branchName = cfg.Finalize.Branch
			}
			if commentID == 0 && cfg.Finalize.CommentID != "" {
				id, err := cfg.Finalize.ParseCommentID()
				if err != nil {
					return err
				}
				commentID = id
			}

			data, err := toolconfig.BuildMCPConfig(toolconfig.Options{
				Platform:         string(run.Platform),
				Owner:            owner,
				Repo:             repo,
				Branch:           branchName,
				CommentID:        commentID,
				EventName:        run.EventName,
				Token:            run.Token,
				APIURL:           run.APIURL,
				ServerURL:        run.ServerURL,
				GitHubMCPImage:   cfg.Tools.GitHubMCPImage,
				CommentServerBin: cfg.Tools.CommentServerBin,
				UseGitea:         cfg.Tools.UseGitea,
				GiteaHost:        cfg.GiteaMCPHost(),
				GiteaAPIURL:      cfg.Gitea.APIURL,
				GiteaToken:       cfg.GiteaMCPToken(),
				GiteaMCPImage:    cfg.Tools.GiteaMCPImage,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&branchName, "branch", "", "Branch the assistant works on (default CLAUDE_BRANCH)")
	cmd.Flags().Int64Var(&commentID, "comment-id", 0, "Tracking comment id (default CLAUDE_COMMENT_ID)")
	return cmd
}
