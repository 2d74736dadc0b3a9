// Command sqlgate serves MySQL operations over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlgate: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sqlgate",
		Usage:   "expose MySQL query and schema operations over HTTP",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
			&cli.StringFlag{Name: "host", Usage: "MySQL host"},
			&cli.IntFlag{Name: "port", Usage: "MySQL port"},
			&cli.StringFlag{Name: "user", Usage: "MySQL user"},
			&cli.StringFlag{Name: "password", Usage: "MySQL password"},
			&cli.StringFlag{Name: "database", Usage: "default database"},
			&cli.IntFlag{Name: "connection-timeout", Usage: "connect timeout in seconds"},
			&cli.IntFlag{Name: "connect-retry-count", Usage: "connection attempts per call"},
			&cli.StringFlag{Name: "listen", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "json or console"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "ping",
				Usage:  "open one session and report the server version and current database",
				Action: ping,
			},
		},
	}
}
