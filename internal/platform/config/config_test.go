package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ModeDev, cfg.Mode)
	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.NotNil(t, cfg.Auth.RequireGeofence)
	assert.True(t, *cfg.Auth.RequireGeofence)
	assert.Equal(t, "Asia/Kolkata", cfg.Attendance.Timezone)
	assert.Equal(t, 22, cfg.Attendance.LateHour)
	assert.Equal(t, 0.6, cfg.Attendance.FaceThreshold)
	assert.Equal(t, 128, cfg.Attendance.DescriptorLength)
	assert.False(t, cfg.Attendance.EnforceGeofence)
	assert.False(t, cfg.Server.TLSEnabled())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
mode: dev
server:
  addr: ":9000"
  cert: server.crt
  key: server.key
database:
  host: db.internal
  port: 3307
  user: attendance
  dbname: nights
auth:
  jwt_secret: s3cret
  token_ttl: 2h
  require_geofence: false
attendance:
  timezone: UTC
  late_hour: 21
  face_threshold: 0.5
  enforce_geofence: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.TLSEnabled())
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 3307, cfg.DB.Port)
	assert.Equal(t, "nights", cfg.DB.DBName)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, *cfg.Auth.RequireGeofence)
	assert.Equal(t, 21, cfg.Attendance.LateHour)
	assert.Equal(t, 0.5, cfg.Attendance.FaceThreshold)
	assert.True(t, cfg.Attendance.EnforceGeofence)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  host: from-file\n")
	t.Setenv("DB_HOST", "from-env")
	t.Setenv("DB_PORT", "3310")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("PORT", "8088")
	t.Setenv("DB_PASS", "pw")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DB.Host)
	assert.Equal(t, 3310, cfg.DB.Port)
	assert.Equal(t, "pw", cfg.DB.Password)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, ":8088", cfg.Server.Addr)
}

func TestLoad_InvalidPortEnvFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3306, cfg.DB.Port)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown mode", "mode: staging\n"},
		{"release without secret", "mode: release\n"},
		{"late hour out of range", "attendance:\n  late_hour: 24\n"},
		{"negative threshold", "attendance:\n  face_threshold: -1\n"},
		{"unknown timezone", "attendance:\n  timezone: Mars/Olympus\n"},
		{"broken yaml", "mode: [dev\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
