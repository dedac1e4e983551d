package config

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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
app:
  name: ridesync-test
mongo:
  uri: mongodb://localhost:27017
google:
  project_id: test-project
  location: us-central1
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ride_app", cfg.Mongo.Database)
	assert.Equal(t, "users", cfg.Collections.Users)
	assert.Equal(t, "bookingRequest", cfg.Collections.Bookings)
	assert.Equal(t, "cancelledBooking", cfg.Collections.Cancelled)
	assert.Equal(t, "notifications", cfg.Collections.Notifications)
	assert.Equal(t, "1h", cfg.Sweep.Interval)
	assert.Equal(t, "Indian/Antananarivo", cfg.Sweep.Timezone)
	assert.Equal(t, time.Hour, cfg.SweepInterval())
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_MONGO_URI", "mongodb://db.internal:27017")

	cfg, err := Load(writeConfig(t, `
mongo:
  uri: ${TEST_MONGO_URI}
google:
  project_id: test-project
  location: us-central1
`))
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db.internal:27017", cfg.Mongo.URI)
}

func TestValidateRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing mongo uri", func(c *Config) { c.Mongo.URI = "" }, "mongo uri"},
		{"missing project", func(c *Config) { c.Google.ProjectID = "" }, "project id"},
		{"missing location", func(c *Config) { c.Google.Location = "" }, "location"},
		{"bad sweep interval", func(c *Config) {
			c.Sweep.Enabled = true
			c.Sweep.Interval = "soon"
		}, "sweep interval"},
		{"bad sweep timezone", func(c *Config) {
			c.Sweep.Enabled = true
			c.Sweep.Interval = "1h"
			c.Sweep.Timezone = "Mars/Olympus"
		}, "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Mongo.URI = "mongodb://localhost:27017"
			cfg.Google.ProjectID = "p"
			cfg.Google.Location = "l"
			cfg.applyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
