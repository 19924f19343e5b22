// Command codex-bridge runs the codex delegation bridge as an MCP server
// over stdio.
package main

import (
	"flag"
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/codexbridge/codex-bridge/bridge"
	"github.com/codexbridge/codex-bridge/bridge/config"
	"github.com/codexbridge/codex-bridge/bridge/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	allowWrite := flag.Bool("allow-write", false, "allow the agent to modify files in the workspace sandbox")
	logLevel := flag.String("log-level", "info", "log level: trace, debug, info, warn, error")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", bridge.DefaultAppName, bridge.Version)
		return
	}

	// Stdout carries the MCP protocol; all logging goes to stderr.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(*logLevel); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("log_level", *logLevel).Msg("unknown log level, using info")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration")
	}

	if *allowWrite {
		cfg.Bridge.Exec.AllowWrite = true
	}

	if cfg.Bridge.Exec.AllowWrite {
		logger.Warn().Msg("write mode enabled: delegations may modify workspace files")
	} else {
		logger.Info().Msg("running in read-only mode; start with --allow-write to enable writes")
	}

	s, cleanup, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initializing server")
	}
	defer cleanup()

	logger.Info().Str("version", bridge.Version).Msg("codex-bridge serving on stdio")
	if err := mcpserver.ServeStdio(s); err != nil {
		logger.Fatal().Err(err).Msg("server terminated")
	}
}
