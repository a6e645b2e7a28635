package cli

import (
	"github.com/spf13/cobra"

	"github.com/cexll/swe-action/internal/action"
	"github.com/cexll/swe-action/internal/ghoutput"
)

func newUpdateCommentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update-comment",
		Short: "Rewrite the tracking comment with the final run status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)
			cfg := configFromContext(ctx)
			outputs := ghoutput.New(cfg.GitHub.Output, logger)

			client, _, err := newPlatformClient(ctx, cfg, logger)
			if err != nil {
				_ = outputs.Set(action.OutputUpdateError, err.Error())
				return err
			}
			f := &action.Finalizer{Config: cfg, Client: client, Outputs: outputs, Logger: logger}
			return f.Run(ctx)
		},
	}
}
