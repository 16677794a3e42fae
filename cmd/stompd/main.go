// File: cmd/stompd/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// stompd is the broker daemon. It accepts a TCP port and a dispatch
// strategy selector:
//
//	stompd [flags] <port> <tpc|reactor>
//
// Invalid or missing arguments print usage and exit without binding a
// socket. A TOML config file (--config) supplies the remaining tuning
// knobs; command-line arguments win over the file.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/momentics/hioload-stomp/directory"
	"github.com/momentics/hioload-stomp/server"
)

func usage(flags *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: stompd [flags] <port> <tpc|reactor>\n\nFlags:\n%s", flags.FlagUsages())
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		workers    int
		logLevel   string
		help       bool
	)
	flags := pflag.NewFlagSet("stompd", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to stompd TOML config")
	flags.IntVar(&workers, "workers", 0, "reactor worker pool size (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVarP(&help, "help", "h", false, "show help")
	flags.SetOutput(os.Stderr)

	if err := flags.Parse(os.Args[1:]); err != nil {
		usage(flags)
		return 2
	}
	if help {
		usage(flags)
		return 0
	}
	args := flags.Args()
	if len(args) < 2 {
		usage(flags)
		return 2
	}

	port, err := strconv.Atoi(args[0])
	if err != nil || port < 0 || port > 65535 {
		fmt.Fprintf(os.Stderr, "invalid port: %s\n", args[0])
		usage(flags)
		return 2
	}
	strategy, err := server.ParseStrategy(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage(flags)
		return 2
	}

	cfg, fileLogLevel, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg.ListenAddr = fmt.Sprintf(":%d", port)
	cfg.Strategy = strategy
	if workers > 0 {
		cfg.ReactorWorkers = workers
	}
	if logLevel == "" {
		logLevel = fileLogLevel
	}

	log := initLogger(logLevel)

	dir := directory.New(directory.WithLogger(log.With().Str("component", "directory").Logger()))
	srv, err := server.New(cfg,
		server.WithLogger(log.With().Str("component", "server").Logger()),
		server.WithDirectory(dir),
	)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		srv.Shutdown()
	}()

	if err := srv.Run(); err != nil {
		log.Error().Err(err).Msg("serve failed")
		return 1
	}
	return 0
}

// initLogger configures the process logger with a console writer.
func initLogger(level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log := zerolog.New(output).With().Timestamp().Str("app", "stompd").Logger()
	switch level {
	case "debug":
		log = log.Level(zerolog.DebugLevel)
	case "warn":
		log = log.Level(zerolog.WarnLevel)
	case "error":
		log = log.Level(zerolog.ErrorLevel)
	case "", "info":
		log = log.Level(zerolog.InfoLevel)
	default:
		log = log.Level(zerolog.InfoLevel)
		log.Warn().Str("level", level).Msg("unknown log level, using info")
	}
	return log
}
