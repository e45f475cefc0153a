// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-sourced option the service recognizes.
type Config struct {
	// Turn-completion oracle.
	EOTEnabled     bool          // EOT_ENABLED
	EOTThreshold   float64       // EOT_THRESHOLD
	EOTForceAfter  time.Duration // EOT_FORCE_AFTER (seconds)
	EOTAPIEndpoint string        // EOT_API_ENDPOINT
	EOTTimeout     time.Duration // EOT_TIMEOUT_MS

	// Session loop.
	PollInterval time.Duration // POLL_INTERVAL_MS

	// Servers.
	ListenAddr  string // LISTEN_ADDR
	MetricsAddr string // METRICS_ADDR

	// OpenAI providers.
	OpenAIAPIKey string // OPENAI_API_KEY
	LLMModel     string // LLM_MODEL
	TTSVoice     string // TTS_VOICE
	SystemPrompt string // SYSTEM_PROMPT

	// Optional finalized-turn event sink.
	KafkaBrokers   []string // KAFKA_BROKERS (comma separated)
	KafkaTurnTopic string   // KAFKA_TOPIC_TURNS
}

// Load reads configuration from the environment, applying defaults.
// Returns an error for values that are present but unparseable or out
// of range.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     envOrDefault("LISTEN_ADDR", ":8080"),
		MetricsAddr:    envOrDefault("METRICS_ADDR", ":9090"),
		EOTAPIEndpoint: envOrDefault("EOT_API_ENDPOINT", "http://localhost:8500/predict"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		LLMModel:       envOrDefault("LLM_MODEL", "gpt-4o-mini"),
		TTSVoice:       envOrDefault("TTS_VOICE", "alloy"),
		SystemPrompt:   os.Getenv("SYSTEM_PROMPT"),
		KafkaTurnTopic: envOrDefault("KAFKA_TOPIC_TURNS", "parley.turns.finalized"),
	}

	var err error
	if cfg.EOTEnabled, err = envBool("EOT_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.EOTThreshold, err = envFloat("EOT_THRESHOLD", 0.5); err != nil {
		return nil, err
	}
	if cfg.EOTThreshold < 0 || cfg.EOTThreshold > 1 {
		return nil, fmt.Errorf("EOT_THRESHOLD must be in [0,1], got %v", cfg.EOTThreshold)
	}

	forceAfter, err := envFloat("EOT_FORCE_AFTER", 2.0)
	if err != nil {
		return nil, err
	}
	cfg.EOTForceAfter = time.Duration(forceAfter * float64(time.Second))

	timeoutMs, err := envInt("EOT_TIMEOUT_MS", 300)
	if err != nil {
		return nil, err
	}
	cfg.EOTTimeout = time.Duration(timeoutMs) * time.Millisecond

	pollMs, err := envInt("POLL_INTERVAL_MS", 1000)
	if err != nil {
		return nil, err
	}
	cfg.PollInterval = time.Duration(pollMs) * time.Millisecond

	if cfg.EOTForceAfter <= cfg.PollInterval {
		return nil, fmt.Errorf("EOT_FORCE_AFTER (%v) must exceed the poll interval (%v)",
			cfg.EOTForceAfter, cfg.PollInterval)
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid bool %q", key, v)
	}
	return b, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid float %q", key, v)
	}
	return f, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}
