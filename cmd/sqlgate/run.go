package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/koustreak/sqlgate/internal/config"
	"github.com/koustreak/sqlgate/internal/database"
	"github.com/koustreak/sqlgate/internal/database/mysql"
	"github.com/koustreak/sqlgate/internal/gateway"
	"github.com/koustreak/sqlgate/internal/logger"
	"github.com/koustreak/sqlgate/internal/server"
)

// settings is everything the commands need, resolved from environment,
// config file and flags.
type settings struct {
	defaults config.Config
	process  config.Override
	file     *config.File
}

// loadSettings reads the config file when given and applies set flags over it.
func loadSettings(c *cli.Context) (*settings, error) {
	defaults, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}

	file := config.DefaultFile()
	if path := c.String("config"); path != "" {
		if file, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	applyFlags(c, file)
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("validating flags: %w", err)
	}

	return &settings{defaults: defaults, process: file.MySQL, file: file}, nil
}

// applyFlags copies explicitly set flags into f.
func applyFlags(c *cli.Context, f *config.File) {
	o := &f.MySQL
	if c.IsSet("host") {
		o.Host = c.String("host")
	}
	if c.IsSet("port") {
		o.Port = c.Int("port")
	}
	if c.IsSet("user") {
		o.User = c.String("user")
	}
	if c.IsSet("password") {
		o.Password = c.String("password")
	}
	if c.IsSet("database") {
		o.Database = c.String("database")
	}
	if c.IsSet("connection-timeout") {
		o.ConnectTimeout = c.Int("connection-timeout")
	}
	if c.IsSet("connect-retry-count") {
		o.ConnectRetries = c.Int("connect-retry-count")
	}
	if c.IsSet("listen") {
		f.Server.Listen = c.String("listen")
	}
	if c.IsSet("log-level") {
		f.Logging.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		f.Logging.Format = c.String("log-format")
	}
}

func (s *settings) logger() *logger.Logger {
	cfg := logger.DefaultConfig()
	if s.file.Logging.Level != "" {
		cfg.Level = s.file.Logging.Level
	}
	if s.file.Logging.Format != "" {
		cfg.Format = s.file.Logging.Format
	}
	return logger.New(cfg)
}

func (s *settings) resolver() *config.Resolver {
	return config.NewResolver(s.defaults, config.NewCell(s.process))
}

func serve(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	log := s.logger()

	resolver := s.resolver()
	est := database.NewEstablisher(mysql.NewConnector(log), log)
	gw := gateway.New(resolver, est, log)

	ln, err := net.Listen("tcp", s.file.Server.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.file.Server.Listen, err)
	}

	cfg := resolver.Resolve(nil)
	log.InfoWith("sqlgate starting", map[string]interface{}{
		"version":  version,
		"mysql":    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		"database": cfg.Database,
		"retries":  cfg.ConnectRetries,
	})

	timeout := time.Duration(s.file.Server.ShutdownTimeout) * time.Second
	return server.New(gw, log).Serve(c.Context, ln, timeout)
}

func ping(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	log := s.logger()

	cfg := s.resolver().Resolve(nil)
	sess, err := database.NewEstablisher(mysql.NewConnector(log), log).Acquire(c.Context, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	rows, err := sess.Query(c.Context, database.Raw("SELECT VERSION() AS version, DATABASE() AS db"))
	if err != nil {
		return database.ClassifyError(err, "ping")
	}
	result, err := database.ScanRows(rows)
	if err != nil {
		return database.ClassifyError(err, "ping")
	}

	serverVersion, db := "unknown", ""
	if len(result) > 0 {
		if v, ok := result[0]["version"].(string); ok {
			serverVersion = v
		}
		if d, ok := result[0]["db"].(string); ok {
			db = d
		}
	}
	if db == "" {
		db = "(none)"
	}

	fmt.Fprintf(c.App.Writer, "connected to %s:%d\nserver version: %s\ncurrent database: %s\n",
		cfg.Host, cfg.Port, serverVersion, db)
	return nil
}
