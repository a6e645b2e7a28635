package cli

import (
	"github.com/spf13/cobra"

	"github.com/cexll/swe-action/internal/action"
	"github.com/cexll/swe-action/internal/ghoutput"
	"github.com/cexll/swe-action/internal/git"
)

func newPrepareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Check the trigger, post the tracking comment and set up the working branch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)
			cfg := configFromContext(ctx)
			outputs := ghoutput.New(cfg.GitHub.Output, logger)

			client, token, err := newPlatformClient(ctx, cfg, logger)
			if err != nil {
				_ = outputs.Set(action.OutputPrepareError, err.Error())
				return err
			}

			p := &action.Preparer{
				Config:   cfg,
				Client:   client,
				Checkout: newCheckouter(cfg, token, logger),
				Runner:   &git.RealCommandRunner{},
				Outputs:  outputs,
				Token:    token,
				Logger:   logger,
			}
			_, err = p.Run(ctx)
			return err
		},
	}
}
