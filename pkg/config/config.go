// Package config loads and validates the client settings.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (GRIDLINK_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Settings captures the tunable behavior of the UDP client core.
type Settings struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// SimulatorTimeout is how long a circuit may go without traffic before
	// its ping misses mark it a disconnect candidate.
	SimulatorTimeout time.Duration `mapstructure:"simulator_timeout" validate:"gt=0" yaml:"simulator_timeout"`

	// LogoutTimeout bounds the wait for LogoutReply during shutdown.
	LogoutTimeout time.Duration `mapstructure:"logout_timeout" validate:"gt=0" yaml:"logout_timeout"`

	// HandshakeTimeout bounds the wait for RegionHandshake after connect.
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" validate:"gt=0" yaml:"handshake_timeout"`

	// SendAgentUpdates enables the periodic AgentUpdate stream once the
	// handshake completes.
	SendAgentUpdates bool `mapstructure:"send_agent_updates" yaml:"send_agent_updates"`

	// SendAgentThrottle sends the bandwidth throttle vector on connect.
	SendAgentThrottle bool `mapstructure:"send_agent_throttle" yaml:"send_agent_throttle"`

	// MultipleSims spawns a circuit for every EnableSimulator announcement.
	MultipleSims bool `mapstructure:"multiple_sims" yaml:"multiple_sims"`

	// ResendTimeoutMS is the initial retransmission timeout in
	// milliseconds, before ping lag refines it.
	ResendTimeoutMS int `mapstructure:"resend_timeout_ms" validate:"gt=0" yaml:"resend_timeout_ms"`

	// MaxResendAttempts is how many times a reliable packet is sent before
	// the circuit is declared dead.
	MaxResendAttempts int `mapstructure:"max_resend_attempts" validate:"gt=0" yaml:"max_resend_attempts"`

	// AckFlushMS bounds how long received-packet acks may wait before an
	// explicit ack packet carries them, in milliseconds.
	AckFlushMS int `mapstructure:"ack_flush_ms" validate:"gt=0,lte=500" yaml:"ack_flush_ms"`

	// AckBatchThreshold is the pending-ack count that triggers an
	// immediate explicit ack packet.
	AckBatchThreshold int `mapstructure:"ack_batch_threshold" validate:"gt=0" yaml:"ack_batch_threshold"`

	// PollIntervalMS is the socket read deadline in milliseconds, which
	// also paces the shutdown checks of the receive loop.
	PollIntervalMS int `mapstructure:"poll_interval_ms" validate:"gt=0" yaml:"poll_interval_ms"`

	// PingIntervalMS paces the StartPingCheck probes.
	PingIntervalMS int `mapstructure:"ping_interval_ms" validate:"gt=0" yaml:"ping_interval_ms"`

	// AgentUpdateIntervalMS paces the AgentUpdate stream when enabled.
	AgentUpdateIntervalMS int `mapstructure:"agent_update_interval_ms" validate:"gt=0" yaml:"agent_update_interval_ms"`

	// ThrottleTotal is the advertised total bandwidth budget in bytes per
	// second, split across the seven channels.
	ThrottleTotal float64 `mapstructure:"throttle_total" validate:"gt=0" yaml:"throttle_total"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, or ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is the output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// ResendTimeout returns the initial retransmission timeout as a duration.
func (s *Settings) ResendTimeout() time.Duration {
	return time.Duration(s.ResendTimeoutMS) * time.Millisecond
}

// AckFlushInterval returns the periodic ack flush bound as a duration.
func (s *Settings) AckFlushInterval() time.Duration {
	return time.Duration(s.AckFlushMS) * time.Millisecond
}

// PollInterval returns the socket read deadline as a duration.
func (s *Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// PingInterval returns the ping probe pacing as a duration.
func (s *Settings) PingInterval() time.Duration {
	return time.Duration(s.PingIntervalMS) * time.Millisecond
}

// AgentUpdateInterval returns the AgentUpdate pacing as a duration.
func (s *Settings) AgentUpdateInterval() time.Duration {
	return time.Duration(s.AgentUpdateIntervalMS) * time.Millisecond
}

// Load reads settings from the given file path, or from the default
// location when path is empty, overlays GRIDLINK_* environment variables,
// applies defaults, and validates the result.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("GRIDLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Registering defaults makes every key known to viper, so bare
	// environment overrides resolve even without a config file.
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("simulator_timeout", DefaultSimulatorTimeout)
	v.SetDefault("logout_timeout", DefaultLogoutTimeout)
	v.SetDefault("handshake_timeout", DefaultHandshakeTimeout)
	v.SetDefault("send_agent_updates", true)
	v.SetDefault("send_agent_throttle", true)
	v.SetDefault("multiple_sims", true)
	v.SetDefault("resend_timeout_ms", DefaultResendTimeoutMS)
	v.SetDefault("max_resend_attempts", DefaultMaxResendAttempts)
	v.SetDefault("ack_flush_ms", DefaultAckFlushMS)
	v.SetDefault("ack_batch_threshold", DefaultAckBatchThreshold)
	v.SetDefault("poll_interval_ms", DefaultPollIntervalMS)
	v.SetDefault("ping_interval_ms", DefaultPingIntervalMS)
	v.SetDefault("agent_update_interval_ms", DefaultAgentUpdateMS)
	v.SetDefault("throttle_total", float64(DefaultThrottleTotal))

	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	case DefaultConfigExists():
		v.SetConfigFile(GetDefaultConfigPath())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", GetDefaultConfigPath(), err)
		}
	}

	cfg := &Settings{}
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct-level validation tags.
func Validate(cfg *Settings) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("config: field %s failed %q validation", f.Namespace(), f.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// GetDefaultConfigPath returns $XDG_CONFIG_HOME/gridlink/config.yaml,
// falling back to ~/.config.
func GetDefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "gridlink", "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
