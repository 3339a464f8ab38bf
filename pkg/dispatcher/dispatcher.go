// Package dispatcher serves the browser and GitHub tools over MCP.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/entrhq/playwright-mcp/pkg/config"
	"github.com/entrhq/playwright-mcp/pkg/credentials"
	"github.com/entrhq/playwright-mcp/pkg/github"
	"github.com/entrhq/playwright-mcp/pkg/logging"
	"github.com/entrhq/playwright-mcp/pkg/security/navigation"
	"github.com/entrhq/playwright-mcp/pkg/security/workspace"
	"github.com/entrhq/playwright-mcp/pkg/tools/browser"
)

const (
	idleReapInterval = 30 * time.Second
	shutdownTimeout  = 5 * time.Second
)

const instructions = "Browser automation through a single shared Playwright session. " +
	"Login-to-Github signs in with credentials taken from the server environment; " +
	"the other tools act on whatever page the session currently shows."

// Options configures a Dispatcher.
type Options struct {
	Config  *config.Config
	Version string

	// LookupEnv reads credentials when Login-to-Github runs; defaults to os.LookupEnv
	LookupEnv func(string) (string, bool)

	// Processes backs Kill-all-Chromium-Processes; nil disables it
	Processes browser.ProcessKiller

	Logger *logging.Logger
}

// Dispatcher owns the MCP server and the browser session behind it.
type Dispatcher struct {
	cfg     *config.Config
	server  *mcp.Server
	manager *browser.SessionManager
	logger  *logging.Logger
}

// New builds the server and registers every tool. No browser is started.
func New(opts Options) (*Dispatcher, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewWriterLogger("dispatcher", io.Discard)
	}

	guard, err := navigation.NewGuard(cfg.Navigation.AllowedPatterns, cfg.Navigation.DeniedPatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid navigation policy: %w", err)
	}

	outputs, err := workspace.NewGuard(cfg.Browser.OutputDir, cfg.Browser.AllowedOutputDirs...)
	if err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}

	manager := browser.NewSessionManager(browser.ManagerOptions{
		Session: browser.SessionOptions{
			BrowserType: string(cfg.Browser.Type),
			Headless:    cfg.Browser.Headless,
			Viewport: browser.Viewport{
				Width:  cfg.Browser.ViewportWidth,
				Height: cfg.Browser.ViewportHeight,
			},
			Timeout: float64(cfg.Browser.Timeout.Milliseconds()),
		},
		IdleTimeout: cfg.Browser.IdleTimeout,
		SkipInstall: cfg.Browser.SkipInstall,
		Logger:      logger.With("browser"),
	})

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	server := mcp.NewServer(&mcp.Implementation{Name: cfg.Server.Name, Version: version}, &mcp.ServerOptions{
		Instructions: instructions,
		Logger:       slog.New(slog.NewTextHandler(logger.Writer(), nil)),
	})

	browser.NewToolset(manager, browser.ToolOptions{
		Guard:     guard,
		OutputDir: cfg.Browser.OutputDir,
		Workspace: outputs,
		Processes: opts.Processes,
		Logger:    logger.With("tools"),
	}).Register(server)

	github.NewTools(manager, github.ToolOptions{
		BaseURL:      cfg.GitHub.BaseURL,
		LoginTimeout: cfg.GitHub.LoginTimeout,
		EnvNames: credentials.EnvNames{
			Username: cfg.GitHub.UsernameEnv,
			Password: cfg.GitHub.PasswordEnv,
		},
		LookupEnv: opts.LookupEnv,
		Logger:    logger.With("github"),
	}).Register(server)

	return &Dispatcher{
		cfg:     cfg,
		server:  server,
		manager: manager,
		logger:  logger,
	}, nil
}

// Server returns the underlying MCP server.
func (d *Dispatcher) Server() *mcp.Server {
	return d.server
}

// Manager returns the shared browser session manager.
func (d *Dispatcher) Manager() *browser.SessionManager {
	return d.manager
}

// Run serves on the configured transport until ctx is canceled or the
// client disconnects, then releases the browser.
func (d *Dispatcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go d.manager.RunIdleReaper(ctx, idleReapInterval)

	var err error
	switch d.cfg.Server.Transport {
	case config.TransportHTTP:
		err = d.serveHTTP(ctx)
	default:
		d.logger.Infof("Serving MCP over stdio")
		err = d.server.Run(ctx, &mcp.StdioTransport{})
	}

	if closeErr := d.Close(); closeErr != nil {
		d.logger.Warnf("Browser cleanup failed: %v", closeErr)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (d *Dispatcher) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return d.server
	}, nil)

	srv := &http.Server{
		Addr:              d.cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Infof("Serving MCP over HTTP on %s", d.cfg.Server.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown failed: %w", err)
		}
		return nil
	}
}

// Close shuts the browser and the Playwright driver down.
func (d *Dispatcher) Close() error {
	return d.manager.Shutdown()
}
