// Package config resolves the MySQL connection settings used for one call.
//
// Three layers are merged field by field, lowest precedence first:
//
//	defaults (environment, hardcoded fallbacks)
//	process override (flags / config file, shared by all calls)
//	call override (supplied with a single request)
//
// A field counts as present in an override only when it is non-empty or
// non-zero, so an unset flag never masks a real default.
package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment keys read by FromEnv.
const (
	EnvHost           = "MYSQL_HOST"
	EnvPort           = "MYSQL_PORT"
	EnvUser           = "MYSQL_USER"
	EnvPassword       = "MYSQL_PASSWORD"
	EnvDatabase       = "MYSQL_DATABASE"
	EnvConnectTimeout = "MYSQL_CONNECTION_TIMEOUT"
	EnvConnectRetries = "MYSQL_CONNECT_RETRY_COUNT"
)

const (
	defaultHost           = "localhost"
	defaultPort           = 3306
	defaultUser           = "root"
	defaultPassword       = "root"
	defaultConnectTimeout = 10
	defaultConnectRetries = 3
)

// Config is the fully resolved connection configuration.
// Every field is set; ConnectRetries is at least 1.
type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string // may be empty
	ConnectTimeout int    // seconds
	ConnectRetries int
}

// Timeout returns ConnectTimeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

// Override is a partial Config. Zero fields are absent.
type Override struct {
	Host           string `json:"host,omitempty" yaml:"host"`
	Port           int    `json:"port,omitempty" yaml:"port"`
	User           string `json:"user,omitempty" yaml:"user"`
	Password       string `json:"password,omitempty" yaml:"password"`
	Database       string `json:"database,omitempty" yaml:"database"`
	ConnectTimeout int    `json:"connection_timeout,omitempty" yaml:"connection_timeout"`
	ConnectRetries int    `json:"connect_retry_count,omitempty" yaml:"connect_retry_count"`
}

// Default returns the hardcoded fallback configuration.
func Default() Config {
	return Config{
		Host:           defaultHost,
		Port:           defaultPort,
		User:           defaultUser,
		Password:       defaultPassword,
		ConnectTimeout: defaultConnectTimeout,
		ConnectRetries: defaultConnectRetries,
	}
}

// FromEnv builds the process defaults from the environment, falling back to
// Default for unset keys. lookup is usually os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvHost); ok {
		cfg.Host = v
	}
	if v, ok := lookup(EnvUser); ok {
		cfg.User = v
	}
	if v, ok := lookup(EnvPassword); ok {
		cfg.Password = v
	}
	if v, ok := lookup(EnvDatabase); ok {
		cfg.Database = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvPort, &cfg.Port},
		{EnvConnectTimeout, &cfg.ConnectTimeout},
		{EnvConnectRetries, &cfg.ConnectRetries},
	}
	for _, f := range ints {
		v, ok := lookup(f.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", f.key, err)
		}
		*f.dst = n
	}

	if cfg.ConnectRetries < 1 {
		cfg.ConnectRetries = 1
	}
	return cfg, nil
}

// Merge applies the present fields of o over base.
func Merge(base Config, o Override) Config {
	if o.Host != "" {
		base.Host = o.Host
	}
	if o.Port != 0 {
		base.Port = o.Port
	}
	if o.User != "" {
		base.User = o.User
	}
	if o.Password != "" {
		base.Password = o.Password
	}
	if o.Database != "" {
		base.Database = o.Database
	}
	if o.ConnectTimeout != 0 {
		base.ConnectTimeout = o.ConnectTimeout
	}
	if o.ConnectRetries != 0 {
		base.ConnectRetries = o.ConnectRetries
	}
	if base.ConnectRetries < 1 {
		base.ConnectRetries = 1
	}
	return base
}

// Resolve merges the process override and then the call override over
// defaults. It has no side effects and never fails.
func Resolve(defaults Config, process, call Override) Config {
	return Merge(Merge(defaults, process), call)
}
