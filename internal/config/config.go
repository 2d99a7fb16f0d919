package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL     = "http://127.0.0.1:7411"
	DefaultDBFileName = ".notary.db"
	DefaultLogLevel   = "info"

	DefaultWalrusPublisherURL  = "https://publisher.testnet.walrus.space"
	DefaultWalrusAggregatorURL = "https://aggregator.testnet.walrus.space"
	DefaultHashLookupURL       = "https://aggregator.testnet.walrus.space/v1/aggregator/hash"
	DefaultExplorerBaseURL     = "https://walruscan.com/testnet/blob"
	DefaultWalrusEpochs        = 3

	DefaultEnokiBaseURL = "https://api.enoki.mystenlabs.com"
	DefaultNetwork      = "testnet"

	DefaultMaxUploadBytes     int64 = 100 * 1024 * 1024
	DefaultMultipartMaxMemory int64 = 8 * 1024 * 1024

	configFileName = ".notary.toml"

	configDirEnvKey          = "NOTARY_CONFIG_DIR"
	trustProjectConfigEnvKey = "NOTARY_TRUST_PROJECT_CONFIG"
	apiURLEnvKey             = "NOTARY_API_URL"
	dbPathEnvKey             = "NOTARY_DB"
	hashLookupURLEnvKey      = "NOTARY_HASH_LOOKUP_URL"
	enokiAPIKeyEnvKey        = "NOTARY_ENOKI_API_KEY"
	signerKeyEnvKey          = "NOTARY_SIGNER_KEY"
)

// StorageConfig selects and parameterizes the blob backend.
type StorageConfig struct {
	Backend   string `toml:"backend"`
	LocalRoot string `toml:"local_root"`
}

// WalrusConfig parameterizes the Walrus publisher/aggregator client.
type WalrusConfig struct {
	PublisherURL    string `toml:"publisher_url"`
	AggregatorURL   string `toml:"aggregator_url"`
	HashLookupURL   string `toml:"hash_lookup_url"`
	ExplorerBaseURL string `toml:"explorer_base_url"`
	Epochs          int    `toml:"epochs"`
	Deletable       bool   `toml:"deletable"`
}

// EnokiConfig parameterizes the sponsorship relay.
type EnokiConfig struct {
	BaseURL string `toml:"base_url"`
	Network string `toml:"network"`
}

// UploadConfig bounds inbound file uploads.
type UploadConfig struct {
	MaxUploadBytes     int64 `toml:"max_upload_bytes"`
	MultipartMaxMemory int64 `toml:"multipart_max_memory"`
}

// Config defines runtime configuration for notary.
type Config struct {
	APIURL   string        `toml:"api_url"`
	DBPath   string        `toml:"db_path"`
	LogLevel string        `toml:"log_level"`
	Storage  StorageConfig `toml:"storage"`
	Walrus   WalrusConfig  `toml:"walrus"`
	Enoki    EnokiConfig   `toml:"enoki"`
	Uploads  UploadConfig  `toml:"uploads"`

	// Secrets come from the environment only, never from config files.
	EnokiAPIKey string `toml:"-"`
	SignerKey   string `toml:"-"`

	TrustedProjectConfigPath string `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		DBPath:   "",
		LogLevel: DefaultLogLevel,
		Storage: StorageConfig{
			Backend:   "walrus",
			LocalRoot: "",
		},
		Walrus: WalrusConfig{
			PublisherURL:    DefaultWalrusPublisherURL,
			AggregatorURL:   DefaultWalrusAggregatorURL,
			HashLookupURL:   DefaultHashLookupURL,
			ExplorerBaseURL: DefaultExplorerBaseURL,
			Epochs:          DefaultWalrusEpochs,
			Deletable:       true,
		},
		Enoki: EnokiConfig{
			BaseURL: DefaultEnokiBaseURL,
			Network: DefaultNetwork,
		},
		Uploads: UploadConfig{
			MaxUploadBytes:     DefaultMaxUploadBytes,
			MultipartMaxMemory: DefaultMultipartMaxMemory,
		},
	}
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"log_level",
	"storage.backend",
	"storage.local_root",
	"walrus.publisher_url",
	"walrus.aggregator_url",
	"walrus.hash_lookup_url",
	"walrus.explorer_base_url",
	"walrus.epochs",
	"walrus.deletable",
	"enoki.base_url",
	"enoki.network",
	"uploads.max_upload_bytes",
	"uploads.multipart_max_memory",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "storage.backend":
		return c.Storage.Backend, nil
	case "storage.local_root":
		return c.Storage.LocalRoot, nil
	case "walrus.publisher_url":
		return c.Walrus.PublisherURL, nil
	case "walrus.aggregator_url":
		return c.Walrus.AggregatorURL, nil
	case "walrus.hash_lookup_url":
		return c.Walrus.HashLookupURL, nil
	case "walrus.explorer_base_url":
		return c.Walrus.ExplorerBaseURL, nil
	case "walrus.epochs":
		return strconv.Itoa(c.Walrus.Epochs), nil
	case "walrus.deletable":
		return strconv.FormatBool(c.Walrus.Deletable), nil
	case "enoki.base_url":
		return c.Enoki.BaseURL, nil
	case "enoki.network":
		return c.Enoki.Network, nil
	case "uploads.max_upload_bytes":
		return strconv.FormatInt(c.Uploads.MaxUploadBytes, 10), nil
	case "uploads.multipart_max_memory":
		return strconv.FormatInt(c.Uploads.MultipartMaxMemory, 10), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if lookupURL := strings.TrimSpace(os.Getenv(hashLookupURLEnvKey)); lookupURL != "" {
		cfg.Walrus.HashLookupURL = lookupURL
	}
	cfg.EnokiAPIKey = strings.TrimSpace(os.Getenv(enokiAPIKeyEnvKey))
	cfg.SignerKey = strings.TrimSpace(os.Getenv(signerKeyEnvKey))

	cfg.normalizeDefaults()

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "uploads.max_upload_bytes", "uploads.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "walrus.epochs":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "walrus.deletable":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "storage.backend":
		switch value {
		case "walrus", "local":
			return value, nil
		default:
			return nil, fmt.Errorf("storage.backend must be walrus or local")
		}
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func (c *Config) normalizeDefaults() {
	if c.Uploads.MaxUploadBytes <= 0 {
		c.Uploads.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Uploads.MultipartMaxMemory <= 0 {
		c.Uploads.MultipartMaxMemory = DefaultMultipartMaxMemory
	}
	if c.Walrus.Epochs <= 0 {
		c.Walrus.Epochs = DefaultWalrusEpochs
	}
	if strings.TrimSpace(c.Storage.Backend) == "" {
		c.Storage.Backend = "walrus"
	}
	if strings.TrimSpace(c.Enoki.Network) == "" {
		c.Enoki.Network = DefaultNetwork
	}
}
