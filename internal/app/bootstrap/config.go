package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the payload engine.
// It merges file defaults and environment overrides to support both local and
// deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string
	MaxDBConns  int32

	PlatformBaseURL     string
	PlatformHTTPTimeout time.Duration

	EscrowBaseURL string
	EscrowAPIKey  string

	MainnetNodeURLs []string
	TestnetNodeURLs []string
	MainnetRESTURL  string
	TestnetRESTURL  string
	LedgerTimeout   time.Duration

	AdminSecret string

	PendingTTL       time.Duration
	ResolveScanLimit int
	CleanupInterval  time.Duration
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
		PlatformURL string `yaml:"platform_url"`
		EscrowURL   string `yaml:"escrow_url"`
	} `yaml:"dependencies"`
	XRPL struct {
		MainnetNodes   []string `yaml:"mainnet_nodes"`
		TestnetNodes   []string `yaml:"testnet_nodes"`
		MainnetRESTURL string   `yaml:"mainnet_rest_url"`
		TestnetRESTURL string   `yaml:"testnet_rest_url"`
	} `yaml:"xrpl"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific
// overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:           "xrpl-services-backend",
		HTTPPort:            8080,
		GRPCPort:            9090,
		MaxDBConns:          20,
		PlatformHTTPTimeout: 15 * time.Second,
		MainnetNodeURLs:     []string{"wss://xrplcluster.com", "wss://s1.ripple.com"},
		TestnetNodeURLs:     []string{"wss://s.altnet.rippletest.net:51233", "wss://testnet.xrpl-labs.com"},
		LedgerTimeout:       8 * time.Second,
		PendingTTL:          15 * time.Minute,
		ResolveScanLimit:    50,
		CleanupInterval:     5 * time.Minute,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Dependencies.PlatformURL != "" {
			cfg.PlatformBaseURL = f.Dependencies.PlatformURL
		}
		if f.Dependencies.EscrowURL != "" {
			cfg.EscrowBaseURL = f.Dependencies.EscrowURL
		}
		if len(f.XRPL.MainnetNodes) > 0 {
			cfg.MainnetNodeURLs = f.XRPL.MainnetNodes
		}
		if len(f.XRPL.TestnetNodes) > 0 {
			cfg.TestnetNodeURLs = f.XRPL.TestnetNodes
		}
		if f.XRPL.MainnetRESTURL != "" {
			cfg.MainnetRESTURL = f.XRPL.MainnetRESTURL
		}
		if f.XRPL.TestnetRESTURL != "" {
			cfg.TestnetRESTURL = f.XRPL.TestnetRESTURL
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.PlatformBaseURL = envOrDefault("PLATFORM_URL", cfg.PlatformBaseURL)
	cfg.EscrowBaseURL = envOrDefault("ESCROW_URL", cfg.EscrowBaseURL)
	cfg.EscrowAPIKey = envOrDefault("ESCROW_API_KEY", cfg.EscrowAPIKey)
	cfg.MainnetNodeURLs = envCSV("XRPL_MAINNET_NODES", cfg.MainnetNodeURLs)
	cfg.TestnetNodeURLs = envCSV("XRPL_TESTNET_NODES", cfg.TestnetNodeURLs)
	cfg.MainnetRESTURL = envOrDefault("XRPL_MAINNET_REST_URL", cfg.MainnetRESTURL)
	cfg.TestnetRESTURL = envOrDefault("XRPL_TESTNET_REST_URL", cfg.TestnetRESTURL)
	cfg.AdminSecret = envOrDefault("ADMIN_SECRET", cfg.AdminSecret)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.ResolveScanLimit = envInt("RESOLVE_SCAN_LIMIT", cfg.ResolveScanLimit)

	cfg.PlatformHTTPTimeout = time.Duration(envInt("PLATFORM_HTTP_TIMEOUT_SECONDS", int(cfg.PlatformHTTPTimeout.Seconds()))) * time.Second
	cfg.LedgerTimeout = time.Duration(envInt("LEDGER_TIMEOUT_SECONDS", int(cfg.LedgerTimeout.Seconds()))) * time.Second
	cfg.PendingTTL = time.Duration(envInt("PENDING_TTL_MINUTES", int(cfg.PendingTTL.Minutes()))) * time.Minute
	cfg.CleanupInterval = time.Duration(envInt("CLEANUP_INTERVAL_SECONDS", int(cfg.CleanupInterval.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.PlatformBaseURL == "" {
		return Config{}, fmt.Errorf("missing PLATFORM_URL")
	}
	if cfg.AdminSecret == "" {
		return Config{}, fmt.Errorf("missing ADMIN_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
