// Copyright (c) 2025 Neomantra Corp
//
// This is a Model Context Protocol (MCP) server exposing THE CORE's
// persisted snapshot/trade files for a feature-generator agent to read.
// Unlike dbn-go-mcp-data, every tool here is a free, read-only disk query:
// there is no billed remote fetch in the replay path.
//

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mcp_server "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"

	"github.com/krakenquant/mbpreplay/internal/mcpserver"
)

///////////////////////////////////////////////////////////////////////////////

const (
	mcpServerVersion = "0.0.1"

	defaultSSEHostPort = ":8890"
	defaultResourceRoot = "."

	// serverInstructions is sent to LLM clients during MCP initialization.
	serverInstructions = `mbp-mcp exposes locally-persisted Kraken order book snapshots and trade prints over MCP. Every tool is free and read-only: it serves whatever mbp-hist has already downloaded and built, never reaching out to the network itself.

Recommended workflow:
1. Use list_days to discover which calendar days have persisted data for a feedcode.
2. Use get_snapshots or get_trades with a [since, until) window to pull records.
3. Results are read as whole days and truncated to the first 5000 records; narrow the window to fewer days to reach later days. Records past the first 5000 of a single day are not returned.`
)

type Config struct {
	ResourceRoot string // root of the snapshot/trade resource tree

	LogJSON bool // Log in JSON format instead of text

	UseSSE      bool   // Use SSE Transport instead of STDIO
	SSEHostPort string // HostPort to use for SSE

	Verbose bool // Verbose logging
}

var config Config
var logger *slog.Logger

///////////////////////////////////////////////////////////////////////////////

func main() {
	var showHelp bool
	var logFilename string

	pflag.StringVarP(&config.ResourceRoot, "root", "r", defaultResourceRoot, "Root directory of the snapshot/trade resource tree (or set MBP_RESOURCE_ROOT envvar)")
	pflag.StringVarP(&logFilename, "log-file", "l", "", "Log file destination (or MCP_LOG_FILE envvar). Default is stderr")
	pflag.BoolVarP(&config.LogJSON, "log-json", "j", false, "Log in JSON (default is plaintext)")
	pflag.StringVarP(&config.SSEHostPort, "port", "p", "", "host:port to listen to SSE connections")
	pflag.BoolVarP(&config.UseSSE, "sse", "", false, "Use SSE Transport (default is STDIO transport)")
	pflag.BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose logging")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.Parse()

	if showHelp {
		fmt.Fprintf(os.Stdout, "usage: %s [opts]\n\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}

	if config.ResourceRoot == defaultResourceRoot {
		if envRoot := os.Getenv("MBP_RESOURCE_ROOT"); envRoot != "" {
			config.ResourceRoot = envRoot
		}
	}
	if config.SSEHostPort == "" {
		config.SSEHostPort = defaultSSEHostPort
	}

	// Set up logging
	logWriter := os.Stderr // default is stderr
	if logFilename == "" { // prefer CLI option
		logFilename = os.Getenv("MCP_LOG_FILE")
	}
	if logFilename != "" {
		logFile, err := os.OpenFile(logFilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %s\n", err.Error())
			os.Exit(1)
		}
		logWriter = logFile
		defer logFile.Close()
	}

	var logLevel = slog.LevelInfo
	if config.Verbose {
		logLevel = slog.LevelDebug
	}

	if config.LogJSON {
		logger = slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: logLevel}))
	} else {
		logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: logLevel}))
	}

	if err := run(); err != nil {
		logger.Error("run loop error", "error", err.Error())
		os.Exit(1)
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

///////////////////////////////////////////////////////////////////////////////

func run() error {
	mcpServer := mcp_server.NewMCPServer("mbp-mcp", mcpServerVersion,
		mcp_server.WithRecovery(),
		mcp_server.WithInstructions(serverInstructions),
	)

	srv := mcpserver.NewServer(expandHome(config.ResourceRoot), logger)
	srv.RegisterTools(mcpServer)

	if config.UseSSE {
		sseServer := mcp_server.NewSSEServer(mcpServer)
		logger.Info("MCP SSE server started", "hostPort", config.SSEHostPort)
		if err := sseServer.Start(config.SSEHostPort); err != nil {
			return fmt.Errorf("MCP SSE server error: %w", err)
		}
	} else {
		logger.Info("MCP STDIO server started")
		if err := mcp_server.ServeStdio(mcpServer); err != nil {
			return fmt.Errorf("MCP STDIO server error: %w", err)
		}
	}

	return nil
}
