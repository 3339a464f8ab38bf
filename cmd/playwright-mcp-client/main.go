// Package main provides playwright-mcp-client: it connects to a
// playwright-mcp dispatcher, invokes one tool (Login-to-Github by default),
// prints the result and exits non-zero when the tool failed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/entrhq/playwright-mcp/pkg/caller"
	"github.com/entrhq/playwright-mcp/pkg/logging"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ServerPath  string
	ServerArgs  string
	URL         string
	Tool        string
	Args        string
	Timeout     time.Duration
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("playwright-mcp-client v%s\n", version)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	failed, err := run(ctx, cli)
	if err != nil {
		log.Printf("playwright-mcp-client failed: %v", err)
		os.Exit(1)
	}
	if failed {
		os.Exit(2)
	}
}

func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.ServerPath, "server", caller.DefaultServerCommand, "Dispatcher binary to spawn over stdio")
	flag.StringVar(&cli.ServerArgs, "server-args", "", "Space-separated arguments for the spawned dispatcher")
	flag.StringVar(&cli.URL, "url", "", "Streamable HTTP endpoint of a running dispatcher (overrides -server)")
	flag.StringVar(&cli.Tool, "tool", "Login-to-Github", "Tool to invoke")
	flag.StringVar(&cli.Args, "args", "", "Tool arguments as a JSON object")
	flag.DurationVar(&cli.Timeout, "timeout", 2*time.Minute, "Overall timeout")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "playwright-mcp-client - invoke a playwright-mcp tool once\n\n")
		fmt.Fprintf(os.Stderr, "Usage: playwright-mcp-client [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Spawn the dispatcher and log in with GITHUB_USERNAME / GITHUB_PASSWORD\n")
		fmt.Fprintf(os.Stderr, "  playwright-mcp-client\n\n")
		fmt.Fprintf(os.Stderr, "  # Use a dispatcher already serving HTTP\n")
		fmt.Fprintf(os.Stderr, "  playwright-mcp-client -url http://127.0.0.1:8931\n\n")
	}

	flag.Parse()
	return cli
}

// parseArgs decodes the -args JSON object; empty means no arguments.
func parseArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid -args: %w", err)
	}
	return args, nil
}

func run(ctx context.Context, cli *CLIConfig) (bool, error) {
	args, err := parseArgs(cli.Args)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, cli.Timeout)
	defer cancel()

	logger := logging.NewWriterLogger("caller", os.Stderr)
	logging.SetLevel(logging.LevelWarn)

	c, err := caller.Dial(ctx, caller.Options{
		ServerPath: cli.ServerPath,
		ServerArgs: strings.Fields(cli.ServerArgs),
		Endpoint:   cli.URL,
		Stderr:     os.Stderr,
		Version:    version,
		Logger:     logger,
	})
	if err != nil {
		return false, err
	}
	defer c.Close()

	outcome, err := c.Invoke(ctx, cli.Tool, args)
	if err != nil {
		return false, err
	}

	fmt.Println(outcome.Text)
	return outcome.Failed, nil
}
