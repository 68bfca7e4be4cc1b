package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Email    EmailConfig    `yaml:"email"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.Charset)
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type SecurityConfig struct {
	MaxLoginAttempts int `yaml:"max_login_attempts"`
	LoginLockMinutes int `yaml:"login_lock_minutes"`
	IPMaxAttempts    int `yaml:"ip_max_attempts"`
	IPLockMinutes    int `yaml:"ip_lock_minutes"`

	PasswordMinLength int `yaml:"password_min_length"`

	EnableSecurityHeaders bool `yaml:"enable_security_headers"`

	AllowedOrigins []string `yaml:"allowed_origins"`
}

var globalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	setDefaults(&cfg)

	if err := validateSecurity(&cfg); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

func Get() *Config {
	return globalConfig
}

// setDefaults fills unset fields with safe defaults
func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Charset == "" {
		cfg.Database.Charset = "utf8mb4"
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 100
	}
	if cfg.JWT.ExpireHours == 0 {
		cfg.JWT.ExpireHours = 24
	}
	if cfg.Security.MaxLoginAttempts == 0 {
		cfg.Security.MaxLoginAttempts = 5
	}
	if cfg.Security.LoginLockMinutes == 0 {
		cfg.Security.LoginLockMinutes = 15
	}
	if cfg.Security.IPMaxAttempts == 0 {
		cfg.Security.IPMaxAttempts = 20
	}
	if cfg.Security.IPLockMinutes == 0 {
		cfg.Security.IPLockMinutes = 30
	}
	if cfg.Security.PasswordMinLength == 0 {
		cfg.Security.PasswordMinLength = 6
	}
}

// validateSecurity rejects unsafe production settings
func validateSecurity(cfg *Config) error {
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "change-me-in-production" {
		if cfg.Server.Mode == "release" {
			return fmt.Errorf("a secure JWT secret is required in release mode")
		}
		cfg.JWT.Secret = generateRandomSecret(32)
		fmt.Println("[WARNING] using an auto-generated JWT secret; configure one for production")
	}

	if len(cfg.JWT.Secret) < 32 {
		if cfg.Server.Mode == "release" {
			return fmt.Errorf("JWT secret must be at least 32 characters")
		}
		fmt.Println("[WARNING] JWT secret shorter than 32 characters")
	}

	return nil
}

func generateRandomSecret(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
