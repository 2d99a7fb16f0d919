package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"notary/internal/config"
	"notary/internal/enoki"
	"notary/internal/server"
	"notary/internal/signer"
	"notary/internal/storage"
	"notary/internal/store"
	"notary/internal/walrus"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the notary API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			blobs, err := buildStorageBackend(cfg)
			if err != nil {
				return err
			}

			opts := server.Options{
				Version:            version,
				Network:            cfg.Enoki.Network,
				ExplorerBaseURL:    cfg.Walrus.ExplorerBaseURL,
				MaxUploadBytes:     cfg.Uploads.MaxUploadBytes,
				MultipartMaxMemory: cfg.Uploads.MultipartMaxMemory,
			}

			if cfg.EnokiAPIKey != "" {
				enokiClient, err := enoki.New(cfg.Enoki.BaseURL, cfg.EnokiAPIKey, cfg.Enoki.Network)
				if err != nil {
					return err
				}
				opts.Enoki = enokiClient
			} else {
				logger.Info("sponsorship disabled: NOTARY_ENOKI_API_KEY not set")
			}

			if cfg.SignerKey != "" {
				sg, err := signer.New(cfg.SignerKey)
				if err != nil {
					return err
				}
				opts.Signer = sg
				logger.Info("backend signer enabled", "address", sg.Address())
			}

			srv := server.New(addr, st, blobs, logger, opts)
			return srv.ListenAndServe()
		},
	}
}

func buildStorageBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case "", "walrus":
		return walrus.New(walrus.Options{
			PublisherURL:    cfg.Walrus.PublisherURL,
			AggregatorURL:   cfg.Walrus.AggregatorURL,
			HashLookupURL:   cfg.Walrus.HashLookupURL,
			ExplorerBaseURL: cfg.Walrus.ExplorerBaseURL,
			Epochs:          cfg.Walrus.Epochs,
			Deletable:       cfg.Walrus.Deletable,
		})
	case "local":
		root := cfg.Storage.LocalRoot
		if root == "" {
			root = filepath.Join(filepath.Dir(cfg.DBPath), ".notary", "blobs")
		}
		return storage.NewLocal(root, cfg.APIURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (walrus or local)", cfg.Storage.Backend)
	}
}
