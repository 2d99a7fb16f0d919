package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("unexpected api url: %s", cfg.APIURL)
	}
	if cfg.Storage.Backend != "walrus" {
		t.Fatalf("unexpected default backend: %s", cfg.Storage.Backend)
	}
	if cfg.Walrus.Epochs != DefaultWalrusEpochs {
		t.Fatalf("unexpected epochs: %d", cfg.Walrus.Epochs)
	}
	if !cfg.Walrus.Deletable {
		t.Fatal("expected deletable default true")
	}
}

func TestLoadFromOverrideDir(t *testing.T) {
	dir := t.TempDir()
	content := `
api_url = "http://127.0.0.1:9999"

[storage]
backend = "local"
local_root = "/tmp/blobs"

[walrus]
epochs = 5
`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configDirEnvKey, dir)
	t.Setenv(apiURLEnvKey, "")
	t.Setenv(dbPathEnvKey, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9999" {
		t.Fatalf("unexpected api url: %s", cfg.APIURL)
	}
	if cfg.Storage.Backend != "local" || cfg.Storage.LocalRoot != "/tmp/blobs" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Walrus.Epochs != 5 {
		t.Fatalf("unexpected epochs: %d", cfg.Walrus.Epochs)
	}
	// Unset sections keep defaults.
	if cfg.Enoki.BaseURL != DefaultEnokiBaseURL {
		t.Fatalf("unexpected enoki base url: %s", cfg.Enoki.BaseURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(configDirEnvKey, t.TempDir())
	t.Setenv(apiURLEnvKey, "http://127.0.0.1:8123")
	t.Setenv(dbPathEnvKey, "/tmp/override.db")
	t.Setenv(hashLookupURLEnvKey, "http://lookup.invalid/{hash}")
	t.Setenv(enokiAPIKeyEnvKey, "enoki-secret")
	t.Setenv(signerKeyEnvKey, "signer-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:8123" {
		t.Fatalf("api url env override not applied: %s", cfg.APIURL)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("db path env override not applied: %s", cfg.DBPath)
	}
	if cfg.Walrus.HashLookupURL != "http://lookup.invalid/{hash}" {
		t.Fatalf("hash lookup env override not applied: %s", cfg.Walrus.HashLookupURL)
	}
	if cfg.EnokiAPIKey != "enoki-secret" || cfg.SignerKey != "signer-secret" {
		t.Fatal("secrets not read from env")
	}
}

func TestSetKeyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)

	if err := SetKey(path, "walrus.epochs", "7"); err != nil {
		t.Fatalf("set walrus.epochs: %v", err)
	}
	if err := SetKey(path, "storage.backend", "local"); err != nil {
		t.Fatalf("set storage.backend: %v", err)
	}

	t.Setenv(configDirEnvKey, filepath.Dir(path))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Walrus.Epochs != 7 {
		t.Fatalf("expected epochs 7, got %d", cfg.Walrus.Epochs)
	}
	if cfg.Storage.Backend != "local" {
		t.Fatalf("expected backend local, got %s", cfg.Storage.Backend)
	}
}

func TestSetKeyValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)

	if err := SetKey(path, "nonsense", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if err := SetKey(path, "walrus.epochs", "zero"); err == nil {
		t.Fatal("expected error for non-integer epochs")
	}
	if err := SetKey(path, "storage.backend", "s3"); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
	if err := SetKey(path, "uploads.max_upload_bytes", "-1"); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range AllowedKeys() {
		if !IsAllowedKey(key) {
			t.Fatalf("allowed key %q not accepted", key)
		}
	}
	if IsAllowedKey("enoki.api_key") {
		t.Fatal("secrets must not be settable via config files")
	}
}
