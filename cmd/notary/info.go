package main

import (
	"github.com/spf13/cobra"

	"notary/internal/api"
	"notary/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server and storage info",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(resp)
				}

				_ = writePlain("version: %s\n", resp.Version)
				_ = writePlain("storage_backend: %s\n", resp.StorageBackend)
				_ = writePlain("network: %s\n", resp.Network)
				_ = writePlain("record_count: %d\n", resp.RecordCount)
				return nil
			})
		},
	}
}
