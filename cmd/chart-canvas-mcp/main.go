package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/chart-canvas-mcp/internal/config"
	_ "github.com/ironsheep/chart-canvas-mcp/internal/plugins/contrib"
	"github.com/ironsheep/chart-canvas-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const logLevelEnv = "CHART_MCP_LOG_LEVEL"

func main() {
	var configPath string

	args := os.Args[1:]
	for len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("chart-canvas-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "--config", "-c":
			if len(args) < 2 {
				fmt.Fprintln(os.Stderr, "--config needs a file path")
				os.Exit(2)
			}
			configPath = args[1]
			args = args[1:]
		default:
			fmt.Fprintf(os.Stderr, "unknown option %q (see --help)\n", args[0])
			os.Exit(2)
		}
		args = args[1:]
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	level := cfg.Level()
	if env := os.Getenv(logLevelEnv); env != "" {
		if l := hclog.LevelFromString(env); l != hclog.NoLevel {
			level = l
		}
	}

	// stdout carries the protocol
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "chart-canvas-mcp",
		Level:  level,
		Output: os.Stderr,
	})
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit, "config", configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, server.WithLogger(logger), server.WithVersion(Version))
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	// Run blocks reading stdin, so a signal is handled here rather than
	// waiting for the next request line.
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}
}

func printUsage() {
	fmt.Println("chart-canvas-mcp - MCP server for server-side chart rendering")
	fmt.Println()
	fmt.Println("Usage: chart-canvas-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH    Load renderer settings from a TOML or YAML file")
	fmt.Println("  --version, -v        Print version information")
	fmt.Println("  --help, -h           Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Override the configured log level\n", logLevelEnv)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
