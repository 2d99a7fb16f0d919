package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"notary/internal/enoki"
	"notary/internal/signer"
	"notary/internal/storage"
	"notary/internal/store"
)

const (
	allowRemoteEnvKey = "NOTARY_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 5 * time.Minute
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 60 * time.Second

	defaultMaxUploadBytes     int64 = 100 << 20 // 100 MiB
	defaultMultipartMaxMemory int64 = 8 << 20   // 8 MiB
)

// Server wraps HTTP handlers for the notary API.
type Server struct {
	addr    string
	records store.RecordStore
	blobs   storage.Backend
	service *NotaryService
	enoki   *enoki.Client
	signer  *signer.Signer
	logger  *slog.Logger

	version            string
	network            string
	maxUploadBytes     int64
	multipartMaxMemory int64
}

// Options carries the optional collaborators and limits for a server.
type Options struct {
	// Enoki is nil when no sponsorship API key is configured; the
	// sponsorship routes then answer 501.
	Enoki *enoki.Client
	// Signer is nil when no backend signing key is configured.
	Signer *signer.Signer

	Version            string
	Network            string
	ExplorerBaseURL    string
	MaxUploadBytes     int64
	MultipartMaxMemory int64
}

// New creates a new server instance.
func New(addr string, records store.RecordStore, blobs storage.Backend, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.MultipartMaxMemory <= 0 {
		opts.MultipartMaxMemory = defaultMultipartMaxMemory
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	return &Server{
		addr:               addr,
		records:            records,
		blobs:              blobs,
		service:            NewNotaryService(records, blobs, opts.ExplorerBaseURL, logger),
		enoki:              opts.Enoki,
		signer:             opts.Signer,
		logger:             logger,
		version:            opts.Version,
		network:            opts.Network,
		maxUploadBytes:     opts.MaxUploadBytes,
		multipartMaxMemory: opts.MultipartMaxMemory,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr, "backend", s.blobs.Name())
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.withRequestLogging(s.withCORS(s.routes())),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
