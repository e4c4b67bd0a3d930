package main

import (
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

func newThawCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "thaw",
		Short: "Restore archived objects and report whether they are readable",
		Long: `Reads a thaw request ({"Items": [...], "BatchInput": {policy}}) and starts a
restore for every archived object that is not already being restored.

When every object is readable the items are printed unchanged. Otherwise
the command exits with status 75 and should be repeated later.

The policy in the request overrides thaw_policy from the config file
field by field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req s3types.ThawRequest
			if err := a.readRequest(&req); err != nil {
				return err
			}
			req.BatchInput = mergePolicy(a.cfg.ThawPolicy, req.BatchInput)

			client, err := a.newClient(a.cfg, a.logger)
			if err != nil {
				return err
			}

			ctx, cancel := a.callContext(cmd)
			defer cancel()

			result, err := client.Thaw(ctx, req)
			if err != nil {
				return err
			}
			if !result.Ready() {
				return result.Err()
			}
			return a.writeJSON(result.Items)
		},
	}
}
