// Package main provides the playwright-mcp dispatcher: an MCP server that
// exposes a shared Playwright browser session and the Login-to-Github
// operation to MCP clients.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/playwright-mcp/pkg/config"
	"github.com/entrhq/playwright-mcp/pkg/dispatcher"
	"github.com/entrhq/playwright-mcp/pkg/logging"
	"github.com/entrhq/playwright-mcp/pkg/process"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	Transport   string
	Address     string
	Browser     string
	Headless    bool
	LogLevel    string
	ShowVersion bool

	// set records which flags were given explicitly
	set map[string]bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("playwright-mcp v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Stdout carries the protocol; everything human-readable goes to stderr.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "Shutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		cancel()
		log.Printf("playwright-mcp failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

func parseFlags() *CLIConfig {
	cli := &CLIConfig{set: map[string]bool{}}

	flag.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&cli.Transport, "transport", "stdio", "MCP transport: stdio or http")
	flag.StringVar(&cli.Address, "addr", "127.0.0.1:8931", "Listen address for the http transport")
	flag.StringVar(&cli.Browser, "browser", "chromium", "Browser engine: chromium, firefox or webkit")
	flag.BoolVar(&cli.Headless, "headless", false, "Run the browser without a window")
	flag.StringVar(&cli.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "playwright-mcp - MCP server for Playwright browser automation\n\n")
		fmt.Fprintf(os.Stderr, "Usage: playwright-mcp [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  GITHUB_USERNAME, GITHUB_PASSWORD  credentials read by Login-to-Github\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Serve over stdio (spawned by an MCP client)\n")
		fmt.Fprintf(os.Stderr, "  playwright-mcp\n\n")
		fmt.Fprintf(os.Stderr, "  # Serve over HTTP with a headless browser\n")
		fmt.Fprintf(os.Stderr, "  playwright-mcp -transport http -addr :8931 -headless\n\n")
	}

	flag.Parse()
	flag.Visit(func(f *flag.Flag) { cli.set[f.Name] = true })
	return cli
}

// applyFlags overrides file values with flags given on the command line.
func applyFlags(cfg *config.Config, cli *CLIConfig) {
	if cli.set["transport"] {
		cfg.Server.Transport = config.Transport(cli.Transport)
	}
	if cli.set["addr"] {
		cfg.Server.Address = cli.Address
	}
	if cli.set["browser"] {
		cfg.Browser.Type = config.BrowserType(cli.Browser)
	}
	if cli.set["headless"] {
		cfg.Browser.Headless = cli.Headless
	}
	if cli.set["log-level"] {
		cfg.Logging.Level = cli.LogLevel
	}
}

func run(ctx context.Context, cli *CLIConfig) error {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	applyFlags(cfg, cli)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logging.SetLevel(level)
	if cfg.Logging.Directory != "" {
		logging.SetDirectory(cfg.Logging.Directory)
	}

	// On error NewLogger still returns a working stderr logger.
	logger, err := logging.NewLogger("dispatcher")
	if err != nil {
		logger.Warnf("File logging unavailable, using stderr fallback: %v", err)
	}
	defer logger.Close()

	logger.Infof("Starting playwright-mcp v%s (transport=%s, browser=%s, headless=%t)",
		version, cfg.Server.Transport, cfg.Browser.Type, cfg.Browser.Headless)

	d, err := dispatcher.New(dispatcher.Options{
		Config:    cfg,
		Version:   version,
		Processes: process.NewKiller(logger.With("process")),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	return d.Run(ctx)
}
