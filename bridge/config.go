// Package bridge wires the DSM client, the polling coordinator, the entity
// catalogue and the MQTT publisher into a running service.
package bridge

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables honoured as fallbacks for unset config fields.
const (
	SYNOLOGY_HOST_ENV_VAR            = "SYNOLOGY_HOST"
	SYNOLOGY_PORT_ENV_VAR            = "SYNOLOGY_PORT"
	SYNOLOGY_USER_ENV_VAR            = "SYNOLOGY_USER"
	SYNOLOGY_PASSWORD_ENV_VAR        = "SYNOLOGY_PASSWORD"
	SYNOLOGY_HTTPS_ENV_VAR           = "SYNOLOGY_HTTPS"
	SYNOLOGY_SKIP_CERT_CHECK_ENV_VAR = "SYNOLOGY_SKIP_CERT_CHECK"
	SYNOLOGY_SESSION_CACHE_MODE      = "SYNOLOGY_SESSION_CACHE"      // auto | keyring | file | memory | off
	SYNOLOGY_SESSION_CACHE_PATH      = "SYNOLOGY_SESSION_CACHE_PATH" // when mode=file
	MQTT_BROKER_ENV_VAR              = "MQTT_BROKER"
	MQTT_USER_ENV_VAR                = "MQTT_USER"
	MQTT_PASSWORD_ENV_VAR            = "MQTT_PASSWORD"
)

const (
	defaultPollInterval = 15 * time.Minute
	defaultPort         = 5001
)

// SessionCacheConfig controls how DSM sessions persist between runs.
type SessionCacheConfig struct {
	Mode string `yaml:"mode"`
	Path string `yaml:"path"`
}

// SynologyConfig identifies the NAS and its credentials.
type SynologyConfig struct {
	Host          string             `yaml:"host"`
	Port          int                `yaml:"port"`
	Username      string             `yaml:"user"`
	Password      string             `yaml:"password"`
	HTTPS         bool               `yaml:"https"`
	SkipCertCheck bool               `yaml:"skip_cert_check"`
	SessionCache  SessionCacheConfig `yaml:"session_cache"`
}

// MQTTConfig identifies the broker the entities are published to.
type MQTTConfig struct {
	Broker          string `yaml:"broker"`
	Username        string `yaml:"user"`
	Password        string `yaml:"password"`
	ClientID        string `yaml:"client_id"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	TopicPrefix     string `yaml:"topic_prefix"`
}

// Config is the full bridge configuration.
type Config struct {
	Synology     SynologyConfig `yaml:"synology"`
	MQTT         MQTTConfig     `yaml:"mqtt"`
	PollInterval time.Duration  `yaml:"poll_interval"`
	LogLevel     string         `yaml:"log_level"`
}

// Load reads the YAML config file when present and applies environment
// fallbacks and defaults. A missing file is fine as long as the required
// values arrive via environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.Synology.Host = stringWithEnvFallback(cfg.Synology.Host, SYNOLOGY_HOST_ENV_VAR)
	cfg.Synology.Port = intWithEnvFallback(cfg.Synology.Port, SYNOLOGY_PORT_ENV_VAR, defaultPort)
	cfg.Synology.Username = stringWithEnvFallback(cfg.Synology.Username, SYNOLOGY_USER_ENV_VAR)
	cfg.Synology.Password = stringWithEnvFallback(cfg.Synology.Password, SYNOLOGY_PASSWORD_ENV_VAR)
	cfg.Synology.HTTPS = boolWithEnvFallback(cfg.Synology.HTTPS, SYNOLOGY_HTTPS_ENV_VAR)
	cfg.Synology.SkipCertCheck = boolWithEnvFallback(cfg.Synology.SkipCertCheck, SYNOLOGY_SKIP_CERT_CHECK_ENV_VAR)
	cfg.Synology.SessionCache.Mode = stringWithEnvFallback(cfg.Synology.SessionCache.Mode, SYNOLOGY_SESSION_CACHE_MODE)
	cfg.Synology.SessionCache.Path = stringWithEnvFallback(cfg.Synology.SessionCache.Path, SYNOLOGY_SESSION_CACHE_PATH)
	cfg.MQTT.Broker = stringWithEnvFallback(cfg.MQTT.Broker, MQTT_BROKER_ENV_VAR)
	cfg.MQTT.Username = stringWithEnvFallback(cfg.MQTT.Username, MQTT_USER_ENV_VAR)
	cfg.MQTT.Password = stringWithEnvFallback(cfg.MQTT.Password, MQTT_PASSWORD_ENV_VAR)

	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Synology.SessionCache.Mode == "" {
		cfg.Synology.SessionCache.Mode = "off"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Synology.Host == "" {
		return fmt.Errorf("synology.host is not provided")
	}
	if c.Synology.Username == "" {
		return fmt.Errorf("synology.user is not provided")
	}
	if c.Synology.Password == "" {
		return fmt.Errorf("synology.password is not provided")
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is not provided")
	}
	if !isValidSessionCacheMode(c.Synology.SessionCache.Mode) {
		return fmt.Errorf(
			"unsupported session cache mode %q; valid values are: auto, keyring, file, memory, off",
			c.Synology.SessionCache.Mode,
		)
	}
	return nil
}

func isValidSessionCacheMode(s string) bool {
	return s == "auto" || s == "keyring" || s == "file" || s == "memory" || s == "off"
}

// stringWithEnvFallback returns the configured value, falling back to an
// environment variable when unset.
func stringWithEnvFallback(val, envVar string) string {
	if val != "" {
		return val
	}
	return os.Getenv(envVar)
}

func intWithEnvFallback(val int, envVar string, defaultValue int) int {
	if val != 0 {
		return val
	}
	if s := os.Getenv(envVar); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return defaultValue
}

func boolWithEnvFallback(val bool, envVar string) bool {
	if val {
		return true
	}
	if s := os.Getenv(envVar); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			return v
		}
	}
	return false
}
