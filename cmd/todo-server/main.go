// Command todo-server serves the /todos API the todo client talks to.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Makepad-fr/tada-client/internal/config"
	"github.com/Makepad-fr/tada-client/internal/logging"
	"github.com/Makepad-fr/tada-client/internal/server"
)

func main() {
	var ov config.Overrides
	flag.StringVar(&ov.ConfigFile, "config", "", "config file (default ./tada.toml, then ~/.tada/config.toml)")
	flag.StringVar(&ov.ServerAddr, "addr", "", "listen address (env TADA_SERVER_ADDR)")
	flag.StringVar(&ov.Store, "store", "", "storage backend: json, sqlite, mysql (env TADA_STORE)")
	flag.StringVar(&ov.DSN, "dsn", "", "data file or database dsn (env TADA_DSN)")
	flag.StringVar(&ov.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	if err := run(ov); err != nil {
		fmt.Fprintln(os.Stderr, "todo-server:", err)
		os.Exit(1)
	}
}

func run(ov config.Overrides) error {
	cfg, err := config.Load(ov)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, logging.OptionsFromConfig(cfg.Log, "todo-server"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := server.OpenStore(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("store ready", "store", cfg.Server.Store)

	return server.New(st, logger, cfg.Server.AllowedOrigins).ListenAndServe(ctx, cfg.Server.Addr)
}
