// Package config loads Anna's runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting for annad and annactl.
// There are no package-level globals: main constructs one Config and
// threads it through every component constructor.
type Config struct {
	LogLevel string // ANNA_LOG_LEVEL: debug|info|warn|error

	SocketPath string // ANNA_SOCKET_PATH, default /run/anna/annad.sock

	FactsPath     string // ~/.anna/facts.json
	SnapshotPath  string // ~/.anna/last_snapshot.json
	ProfilePath   string // ~/.anna/profile.json
	EventLogPath  string // /var/lib/anna/events.jsonl
	ModelRegistry string // ~/.anna/model_registry.json
	CasesDir      string // /var/lib/anna/cases

	MaxEventLogEntries int // rotation threshold

	RPCMaxInFlight int // N_rpc, default 8
	RPCQueueDepth  int // Q_rpc, default 64

	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMMaxConcurrent  int // N_llm, default 2
	LLMRequestTimeout time.Duration

	ProbeTimeout time.Duration

	DiskWarnThreshold     int
	DiskCriticalThreshold int
	MemoryHighThreshold   int
}

// Load builds a Config from the environment, optionally loading a .env
// file first (local development convenience, mirrors melisai/agentic-shell).
// It never fails on a missing .env — only malformed integer/duration
// values are reported as errors.
func Load() (*Config, error) {
	for _, p := range []string{".env", "/etc/anna/annad.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}

	home, _ := os.UserHomeDir()

	cfg := &Config{
		LogLevel:              getEnv("ANNA_LOG_LEVEL", "info"),
		SocketPath:            getEnv("ANNA_SOCKET_PATH", "/run/anna/annad.sock"),
		FactsPath:             getEnv("ANNA_FACTS_PATH", filepath.Join(home, ".anna", "facts.json")),
		SnapshotPath:          getEnv("ANNA_SNAPSHOT_PATH", filepath.Join(home, ".anna", "last_snapshot.json")),
		ProfilePath:           getEnv("ANNA_PROFILE_PATH", filepath.Join(home, ".anna", "profile.json")),
		EventLogPath:          getEnv("ANNA_EVENT_LOG_PATH", "/var/lib/anna/events.jsonl"),
		ModelRegistry:         getEnv("ANNA_MODEL_REGISTRY_PATH", filepath.Join(home, ".anna", "model_registry.json")),
		CasesDir:              getEnv("ANNA_CASES_DIR", "/var/lib/anna/cases"),
		LLMBaseURL:            getEnv("ANNA_LLM_BASE_URL", getEnv("OPENAI_BASE_URL", "http://localhost:11434/v1")),
		LLMAPIKey:             getEnv("ANNA_LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
		LLMModel:              getEnv("ANNA_LLM_MODEL", getEnv("OPENAI_MODEL", "default")),
	}

	var err error
	if cfg.MaxEventLogEntries, err = getEnvInt("ANNA_MAX_EVENT_LOG_ENTRIES", 10000); err != nil {
		return nil, err
	}
	if cfg.RPCMaxInFlight, err = getEnvInt("ANNA_RPC_MAX_INFLIGHT", 8); err != nil {
		return nil, err
	}
	if cfg.RPCQueueDepth, err = getEnvInt("ANNA_RPC_QUEUE_DEPTH", 64); err != nil {
		return nil, err
	}
	if cfg.LLMMaxConcurrent, err = getEnvInt("ANNA_LLM_MAX_CONCURRENT", 2); err != nil {
		return nil, err
	}
	if cfg.DiskWarnThreshold, err = getEnvInt("ANNA_DISK_WARN_THRESHOLD", 80); err != nil {
		return nil, err
	}
	if cfg.DiskCriticalThreshold, err = getEnvInt("ANNA_DISK_CRITICAL_THRESHOLD", 90); err != nil {
		return nil, err
	}
	if cfg.MemoryHighThreshold, err = getEnvInt("ANNA_MEMORY_HIGH_THRESHOLD", 85); err != nil {
		return nil, err
	}

	if cfg.LLMRequestTimeout, err = getEnvDuration("ANNA_LLM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProbeTimeout, err = getEnvDuration("ANNA_PROBE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
