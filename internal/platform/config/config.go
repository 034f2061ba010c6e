package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	ModeDev     = "dev"
	ModeRelease = "release"

	DefaultConfigPath = "config/config.yaml"
	defaultJWTSecret  = "change-me"
)

type ServerConfig struct {
	Addr          string   `yaml:"addr"`
	Cert          string   `yaml:"cert"`
	Key           string   `yaml:"key"`
	MaxBodyBytes  int64    `yaml:"max_body_bytes"`
	MaxImageBytes int      `yaml:"max_image_bytes"`
	AllowOrigins  []string `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	RequireGeofence *bool         `yaml:"require_geofence"`
}

// AttendanceConfig は出席判定のポリシー
type AttendanceConfig struct {
	Timezone         string  `yaml:"timezone"`
	LateHour         int     `yaml:"late_hour"`
	FaceThreshold    float64 `yaml:"face_threshold"`
	DescriptorLength int     `yaml:"descriptor_length"`
	// 出席登録時のジオフェンス判定は既定で無効（ログイン時に判定済み）
	EnforceGeofence bool `yaml:"enforce_geofence"`
}

type Config struct {
	Version    string           `yaml:"version"`
	Mode       string           `yaml:"mode"`
	Server     ServerConfig     `yaml:"server"`
	DB         DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Attendance AttendanceConfig `yaml:"attendance"`
}

// Load reads the YAML file (missing file is allowed), then applies env overrides and defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	buf, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Mode = envString("APP_MODE", c.Mode)
	if port := envInt("PORT", 0); port > 0 {
		c.Server.Addr = fmt.Sprintf(":%d", port)
	}
	c.DB.Host = envString("DB_HOST", c.DB.Host)
	c.DB.Port = envInt("DB_PORT", c.DB.Port)
	c.DB.Username = envString("DB_USER", c.DB.Username)
	c.DB.Password = envString("DB_PASS", c.DB.Password)
	c.DB.DBName = envString("DB_NAME", c.DB.DBName)
	c.Auth.JWTSecret = envString("JWT_SECRET", c.Auth.JWTSecret)
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDev
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":4000"
	}
	// 画像付きJSONを受けるため 50MB まで許可
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 50 << 20
	}
	if c.Server.MaxImageBytes <= 0 {
		c.Server.MaxImageBytes = 10 << 20
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if c.DB.Host == "" {
		c.DB.Host = "localhost"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.Username == "" {
		c.DB.Username = "root"
	}
	if c.DB.DBName == "" {
		c.DB.DBName = "night_attendance"
	}
	if c.DB.MaxOpenConns <= 0 {
		c.DB.MaxOpenConns = 80
	}
	if c.DB.MaxIdleConns <= 0 {
		c.DB.MaxIdleConns = 20
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = defaultJWTSecret
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.RequireGeofence == nil {
		t := true
		c.Auth.RequireGeofence = &t
	}
	if c.Attendance.Timezone == "" {
		c.Attendance.Timezone = "Asia/Kolkata"
	}
	if c.Attendance.LateHour == 0 {
		c.Attendance.LateHour = 22
	}
	if c.Attendance.FaceThreshold == 0 {
		c.Attendance.FaceThreshold = 0.6
	}
	if c.Attendance.DescriptorLength == 0 {
		c.Attendance.DescriptorLength = 128
	}
}

func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeRelease, c.Mode)
	}
	if c.Mode == ModeRelease && c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("auth.jwt_secret (or JWT_SECRET) must be set in release mode")
	}
	if c.Attendance.LateHour < 0 || c.Attendance.LateHour > 23 {
		return fmt.Errorf("attendance.late_hour must be within 0-23, got %d", c.Attendance.LateHour)
	}
	if c.Attendance.FaceThreshold <= 0 {
		return fmt.Errorf("attendance.face_threshold must be > 0, got %v", c.Attendance.FaceThreshold)
	}
	if c.Attendance.DescriptorLength <= 0 {
		return fmt.Errorf("attendance.descriptor_length must be > 0, got %d", c.Attendance.DescriptorLength)
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("attendance.timezone %q: %w", c.Attendance.Timezone, err)
	}
	return nil
}

// Location returns the zone used for calendar-day and late-hour decisions.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TLSEnabled reports whether both certificate files are configured.
func (s ServerConfig) TLSEnabled() bool {
	return s.Cert != "" && s.Key != ""
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt returns def when the variable is unset or not a positive integer.
func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
