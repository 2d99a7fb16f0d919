package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"notary/internal/api"
	"notary/internal/config"
	"notary/internal/models"
)

func newVerifyCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var fromFile bool

	cmd := &cobra.Command{
		Use:   "verify <hash|file>",
		Short: "Check whether a hash was previously notarized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := models.NormalizeHash(args[0])
			if fromFile {
				var err error
				hash, err = hashFile(args[0])
				if err != nil {
					return err
				}
			}
			if !models.IsValidHash(hash) {
				return fmt.Errorf("%q is not a 64-character hex SHA-256 digest (use --file to hash a file)", args[0])
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Verify(cmd.Context(), hash)
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(resp)
				}

				_ = writePlain("hash: %s\n", resp.Hash)
				_ = writePlain("blobId: %s\n", resp.BlobID)
				if resp.Filename != "" {
					_ = writePlain("filename: %s\n", resp.Filename)
				}
				if resp.WalrusURL != "" {
					_ = writePlain("walrus_url: %s\n", resp.WalrusURL)
				}
				_ = writePlain("storedAt: %s\n", resp.StoredAt)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fromFile, "file", false, "treat the argument as a file path and hash it locally")
	return cmd
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
