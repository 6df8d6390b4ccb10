package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the recognized options.
const (
	DefaultSimulatorTimeout  = 30 * time.Second
	DefaultLogoutTimeout     = 5 * time.Second
	DefaultHandshakeTimeout  = 100 * time.Second
	DefaultResendTimeoutMS   = 4000
	DefaultMaxResendAttempts = 3
	DefaultAckFlushMS        = 500
	DefaultAckBatchThreshold = 10
	DefaultPollIntervalMS    = 100
	DefaultPingIntervalMS    = 5000
	DefaultAgentUpdateMS     = 500
	DefaultThrottleTotal     = 1_536_000
)

// ApplyDefaults fills any unset field with its default. Zero values are
// replaced; explicit values are preserved.
func ApplyDefaults(cfg *Settings) {
	applyLoggingDefaults(&cfg.Logging)

	if cfg.SimulatorTimeout == 0 {
		cfg.SimulatorTimeout = DefaultSimulatorTimeout
	}
	if cfg.LogoutTimeout == 0 {
		cfg.LogoutTimeout = DefaultLogoutTimeout
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.ResendTimeoutMS == 0 {
		cfg.ResendTimeoutMS = DefaultResendTimeoutMS
	}
	if cfg.MaxResendAttempts == 0 {
		cfg.MaxResendAttempts = DefaultMaxResendAttempts
	}
	if cfg.AckFlushMS == 0 {
		cfg.AckFlushMS = DefaultAckFlushMS
	}
	if cfg.AckBatchThreshold == 0 {
		cfg.AckBatchThreshold = DefaultAckBatchThreshold
	}
	if cfg.PollIntervalMS == 0 {
		cfg.PollIntervalMS = DefaultPollIntervalMS
	}
	if cfg.PingIntervalMS == 0 {
		cfg.PingIntervalMS = DefaultPingIntervalMS
	}
	if cfg.AgentUpdateIntervalMS == 0 {
		cfg.AgentUpdateIntervalMS = DefaultAgentUpdateMS
	}
	if cfg.ThrottleTotal == 0 {
		cfg.ThrottleTotal = DefaultThrottleTotal
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// Defaults returns a fully defaulted Settings, the baseline for connections
// configured in code rather than from a file.
func Defaults() *Settings {
	cfg := &Settings{
		SendAgentUpdates:  true,
		SendAgentThrottle: true,
		MultipleSims:      true,
	}
	ApplyDefaults(cfg)
	return cfg
}

// InitConfigToPath writes a defaulted YAML config file to the given path.
// An existing file is only overwritten when force is set.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	out, err := yaml.Marshal(yamlView(Defaults()))
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// yamlView renders durations as strings ("30s") so the generated file
// stays hand-editable.
func yamlView(cfg *Settings) map[string]any {
	return map[string]any{
		"logging": map[string]string{
			"level":  cfg.Logging.Level,
			"format": cfg.Logging.Format,
			"output": cfg.Logging.Output,
		},
		"simulator_timeout":        cfg.SimulatorTimeout.String(),
		"logout_timeout":           cfg.LogoutTimeout.String(),
		"handshake_timeout":        cfg.HandshakeTimeout.String(),
		"send_agent_updates":       cfg.SendAgentUpdates,
		"send_agent_throttle":      cfg.SendAgentThrottle,
		"multiple_sims":            cfg.MultipleSims,
		"resend_timeout_ms":        cfg.ResendTimeoutMS,
		"max_resend_attempts":      cfg.MaxResendAttempts,
		"ack_flush_ms":             cfg.AckFlushMS,
		"ack_batch_threshold":      cfg.AckBatchThreshold,
		"poll_interval_ms":         cfg.PollIntervalMS,
		"ping_interval_ms":         cfg.PingIntervalMS,
		"agent_update_interval_ms": cfg.AgentUpdateIntervalMS,
		"throttle_total":           cfg.ThrottleTotal,
	}
}

// InitConfig writes the defaulted config file to the default location and
// returns its path.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}
