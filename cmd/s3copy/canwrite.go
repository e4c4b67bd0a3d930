package main

import (
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

func newCanWriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "can-write",
		Short: "Prove the destination accepts writes",
		Long: `Reads a destination probe request and writes a small marker object below
the destination folder. Prints the marker key on success.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req s3types.CanWriteRequest
			if err := a.readRequest(&req); err != nil {
				return err
			}

			client, err := a.newClient(a.cfg, a.logger)
			if err != nil {
				return err
			}

			ctx, cancel := a.callContext(cmd)
			defer cancel()

			key, err := client.CanWrite(ctx, req)
			if err != nil {
				return err
			}
			return a.writeJSON(map[string]string{
				"bucket": req.DestinationBucket,
				"key":    key,
			})
		},
	}
}
