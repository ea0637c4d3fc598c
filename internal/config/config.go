package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	LineAddr          string        `mapstructure:"line_addr" yaml:"line_addr"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFile           string        `mapstructure:"log_file" yaml:"log_file"`
	LogMaxSizeMB      int           `mapstructure:"log_max_size_mb" yaml:"log_max_size_mb" validate:"gte=0"`
	LogMaxBackups     int           `mapstructure:"log_max_backups" yaml:"log_max_backups" validate:"gte=0"`
	LogMaxAgeDays     int           `mapstructure:"log_max_age_days" yaml:"log_max_age_days" validate:"gte=0"`
	AuditPath         string        `mapstructure:"audit_path" yaml:"audit_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	ClientBuffer      int           `mapstructure:"client_buffer" yaml:"client_buffer" validate:"gte=1,lte=65536"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes" validate:"gte=512"`
}

// Default returns configuration with reasonable starter defaults.
// The line transport and the audit trail are off unless configured.
func Default() Config {
	return Config{
		Addr:              ":8080",
		LogLevel:          "info",
		LogMaxSizeMB:      100,
		LogMaxBackups:     3,
		LogMaxAgeDays:     28,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		ClientBuffer:      32,
		MaxMessageBytes:   32 * 1024,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.LineAddr != "" {
		c.LineAddr = other.LineAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
	if other.LogMaxSizeMB != 0 {
		c.LogMaxSizeMB = other.LogMaxSizeMB
	}
	if other.LogMaxBackups != 0 {
		c.LogMaxBackups = other.LogMaxBackups
	}
	if other.LogMaxAgeDays != 0 {
		c.LogMaxAgeDays = other.LogMaxAgeDays
	}
	if other.AuditPath != "" {
		c.AuditPath = other.AuditPath
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
}

var validate = validator.New()

// Validate checks value ranges after loading.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
