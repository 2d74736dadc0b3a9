package config

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// File is the optional YAML configuration file. Its mysql section is the
// base of the process override; command-line flags are applied over it.
//
//	mysql:
//	  host: db.internal
//	  database: app
//	  connect_retry_count: 5
//	server:
//	  listen: 127.0.0.1:8080
//	logging:
//	  level: debug
//	  format: console
type File struct {
	MySQL   Override      `yaml:"mysql"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP transport settings.
type ServerConfig struct {
	Listen          string `yaml:"listen"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // seconds
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultFile returns the file settings used when no file is given.
func DefaultFile() *File {
	return &File{
		Server: ServerConfig{
			Listen:          "127.0.0.1:8080",
			ShutdownTimeout: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFile reads path over DefaultFile and validates the result.
func LoadFile(path string) (*File, error) {
	f := DefaultFile()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return f, nil
}

// Validate rejects values that can never produce a working connection.
func (f *File) Validate() error {
	var problems []string

	if err := f.MySQL.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if f.Server.Listen == "" {
		problems = append(problems, "server.listen is required")
	}
	if f.Server.ShutdownTimeout < 0 {
		problems = append(problems, "server.shutdown_timeout must not be negative")
	}
	switch f.Logging.Format {
	case "", "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not json or console", f.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// Validate rejects negative numeric fields.
func (o Override) Validate() error {
	var problems []string
	if o.Port < 0 || o.Port > 65535 {
		problems = append(problems, fmt.Sprintf("port %d out of range", o.Port))
	}
	if o.ConnectTimeout < 0 {
		problems = append(problems, "connection_timeout must not be negative")
	}
	if o.ConnectRetries < 0 {
		problems = append(problems, "connect_retry_count must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
