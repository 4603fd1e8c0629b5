package bridge

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
synology:
  host: nas.local
  port: 5000
  user: api-client
  password: secret
  https: true
  session_cache:
    mode: file
    path: /tmp/sessions
mqtt:
  broker: tcp://broker:1883
  user: mqtt-user
poll_interval: 5m
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nas.local", cfg.Synology.Host)
	assert.Equal(t, 5000, cfg.Synology.Port)
	assert.Equal(t, "api-client", cfg.Synology.Username)
	assert.True(t, cfg.Synology.HTTPS)
	assert.Equal(t, "file", cfg.Synology.SessionCache.Mode)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "mqtt-user", cfg.MQTT.Username)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
synology:
  host: nas.local
  user: api-client
  password: secret
mqtt:
  broker: tcp://broker:1883
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Synology.Port)
	assert.Equal(t, defaultPollInterval, cfg.PollInterval)
	assert.Equal(t, "off", cfg.Synology.SessionCache.Mode)
}

func TestLoadEnvFallbacks(t *testing.T) {
	t.Setenv(SYNOLOGY_HOST_ENV_VAR, "nas-from-env")
	t.Setenv(SYNOLOGY_PORT_ENV_VAR, "5001")
	t.Setenv(SYNOLOGY_USER_ENV_VAR, "env-user")
	t.Setenv(SYNOLOGY_PASSWORD_ENV_VAR, "env-pass")
	t.Setenv(SYNOLOGY_HTTPS_ENV_VAR, "true")
	t.Setenv(MQTT_BROKER_ENV_VAR, "tcp://env-broker:1883")

	// missing file is fine when the environment provides everything
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "nas-from-env", cfg.Synology.Host)
	assert.Equal(t, 5001, cfg.Synology.Port)
	assert.Equal(t, "env-user", cfg.Synology.Username)
	assert.Equal(t, "env-pass", cfg.Synology.Password)
	assert.True(t, cfg.Synology.HTTPS)
	assert.Equal(t, "tcp://env-broker:1883", cfg.MQTT.Broker)
}

func TestLoadFileWinsOverEnv(t *testing.T) {
	t.Setenv(SYNOLOGY_HOST_ENV_VAR, "nas-from-env")
	path := writeConfig(t, `
synology:
  host: nas-from-file
  user: api-client
  password: secret
mqtt:
  broker: tcp://broker:1883
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nas-from-file", cfg.Synology.Host)
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing host",
			content: `
synology:
  user: api-client
  password: secret
mqtt:
  broker: tcp://broker:1883
`,
			wantErr: "synology.host",
		},
		{
			name: "missing password",
			content: `
synology:
  host: nas.local
  user: api-client
mqtt:
  broker: tcp://broker:1883
`,
			wantErr: "synology.password",
		},
		{
			name: "missing broker",
			content: `
synology:
  host: nas.local
  user: api-client
  password: secret
`,
			wantErr: "mqtt.broker",
		},
		{
			name: "bad session cache mode",
			content: `
synology:
  host: nas.local
  user: api-client
  password: secret
  session_cache:
    mode: flash
mqtt:
  broker: tcp://broker:1883
`,
			wantErr: "session cache mode",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
