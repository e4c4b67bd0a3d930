package main

import (
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve copy instructions into concrete objects",
		Long: `Reads a resolve request ({"BatchInput": {...}, "Items": [...]}) and prints
the sorted list of objects to copy, each with its destination key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req s3types.ResolveRequest
			if err := a.readRequest(&req); err != nil {
				return err
			}

			client, err := a.newClient(a.cfg, a.logger)
			if err != nil {
				return err
			}

			ctx, cancel := a.callContext(cmd)
			defer cancel()

			objects, err := client.Resolve(ctx, req)
			if err != nil {
				return err
			}
			return a.writeJSON(objects)
		},
	}
}
