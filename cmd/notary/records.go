package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"notary/internal/api"
	"notary/internal/config"
)

func newRecordsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var limit, offset int
	var format string

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List notarization records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Records(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}

				switch {
				case format == "yaml":
					return yaml.NewEncoder(os.Stdout).Encode(resp.Records)
				case format == "json" || *jsonOutput:
					return writeJSON(resp)
				case format != "":
					return fmt.Errorf("unknown format %q (json or yaml)", format)
				}

				for _, record := range resp.Records {
					_ = writePlain("%s\n", formatRecordLine(record))
				}
				if resp.Total > len(resp.Records) {
					_ = writePlain("(%d of %d records)\n", len(resp.Records), resp.Total)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "records to skip")
	cmd.Flags().StringVar(&format, "format", "", "export format (json or yaml)")
	return cmd
}
