package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"notary/internal/api"
	"notary/internal/config"
)

func newNotarizeCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "notarize <file>",
		Short: "Upload a file and record its SHA-256 hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Notarize(cmd.Context(), filepath.Base(path), f)
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(resp)
				}

				_ = writePlain("file_hash: %s\n", resp.FileHash)
				_ = writePlain("filename: %s\n", resp.Filename)
				_ = writePlain("blobId: %s\n", resp.BlobID)
				if resp.WalrusURL != "" {
					_ = writePlain("walrus_url: %s\n", resp.WalrusURL)
				}
				return nil
			})
		},
	}
}
