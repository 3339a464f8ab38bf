package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/playwright-mcp/pkg/logging"
)

// ManagerOptions configures a SessionManager.
type ManagerOptions struct {
	Session SessionOptions

	// IdleTimeout closes the session after this much inactivity (0 disables)
	IdleTimeout time.Duration

	// SkipInstall assumes the driver and browsers are already installed
	SkipInstall bool

	Logger *logging.Logger
}

// SessionManager owns the single browser session shared by every tool.
//
// The session is created lazily on first use and recreated after it has been
// closed. Operations run one at a time: Do holds opMu for the whole callback,
// so a multi-step flow such as a login cannot interleave with another tool.
type SessionManager struct {
	opMu sync.Mutex

	mu          sync.Mutex
	playwright  *playwright.Playwright
	session     *Session
	opts        SessionOptions
	idleTimeout time.Duration
	skipInstall bool
	initialized bool
	logger      *logging.Logger
}

// NewSessionManager creates a session manager. No browser is started until
// the first call to Do.
func NewSessionManager(opts ManagerOptions) *SessionManager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewWriterLogger("browser", io.Discard)
	}

	return &SessionManager{
		opts:        withSessionDefaults(opts.Session),
		idleTimeout: opts.IdleTimeout,
		skipInstall: opts.SkipInstall,
		logger:      logger,
	}
}

func withSessionDefaults(opts SessionOptions) SessionOptions {
	if opts.BrowserType == "" {
		opts.BrowserType = DefaultBrowserType
	}
	if opts.Viewport.Width == 0 {
		opts.Viewport.Width = DefaultViewportWidth
	}
	if opts.Viewport.Height == 0 {
		opts.Viewport.Height = DefaultViewportHeight
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return opts
}

// Initialize installs (unless skipped) and starts the Playwright driver.
// Calling it again after success is a no-op.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initializeLocked()
}

func (m *SessionManager) initializeLocked() error {
	if m.initialized {
		return nil
	}

	// Driver output goes to the log file; stdout belongs to the MCP transport.
	runOpts := &playwright.RunOptions{
		Browsers: []string{m.opts.BrowserType},
		Verbose:  false,
		Stdout:   m.logger.Writer(),
		Stderr:   m.logger.Writer(),
	}

	if !m.skipInstall {
		m.logger.Infof("Installing Playwright driver and %s", m.opts.BrowserType)
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// Do runs fn against the shared session, launching it first if needed.
func (m *SessionManager) Do(ctx context.Context, fn func(*Session) error) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := m.ensureSession()
	if err != nil {
		return err
	}

	session.UpdateLastUsed()
	return fn(session)
}

// ensureSession returns the active session, filling in whichever of the
// browser, context and page is missing.
func (m *SessionManager) ensureSession() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.initializeLocked(); err != nil {
		return nil, err
	}

	if m.session == nil {
		m.session = &Session{Options: m.opts, CreatedAt: time.Now()}
	}
	s := m.session

	// A browser that crashed, was closed by the user or was killed is relaunched.
	if s.Browser != nil && !s.Browser.IsConnected() {
		m.logger.Warnf("Browser disconnected, relaunching")
		_ = s.Browser.Close()
		s.Browser, s.Context, s.Page = nil, nil, nil
	}

	if s.Browser == nil {
		browserType, err := m.browserTypeLocked()
		if err != nil {
			return nil, err
		}

		m.logger.Infof("Launching browser %s headless=%t", m.opts.BrowserType, m.opts.Headless)
		browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(m.opts.Headless),
		})
		if err != nil {
			m.session = nil
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		s.Browser = browser
		s.Context = nil
		s.Page = nil
	}

	if s.Context == nil {
		m.logger.Debugf("Creating new browser context")
		bctx, err := s.Browser.NewContext(playwright.BrowserNewContextOptions{
			Viewport: &playwright.Size{
				Width:  m.opts.Viewport.Width,
				Height: m.opts.Viewport.Height,
			},
		})
		if err != nil {
			m.dropSessionLocked()
			return nil, fmt.Errorf("failed to create context: %w", err)
		}
		s.Context = bctx
		s.Page = nil
	}

	if s.Page == nil || s.Page.IsClosed() {
		m.logger.Debugf("Creating new page")
		page, err := s.Context.NewPage()
		if err != nil {
			m.dropSessionLocked()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
		page.SetDefaultTimeout(m.opts.Timeout)
		s.Page = page
	}

	return s, nil
}

// dropSessionLocked discards a half-built session so the next Do starts
// from a fresh browser.
func (m *SessionManager) dropSessionLocked() {
	if err := m.closeSessionLocked(); err != nil {
		m.logger.Debugf("Discarding broken session: %v", err)
	}
}

func (m *SessionManager) browserTypeLocked() (playwright.BrowserType, error) {
	switch m.opts.BrowserType {
	case "chromium":
		return m.playwright.Chromium, nil
	case "firefox":
		return m.playwright.Firefox, nil
	case "webkit":
		return m.playwright.WebKit, nil
	}
	return nil, fmt.Errorf("unsupported browser type: %s", m.opts.BrowserType)
}

// HasSession reports whether a browser session is currently open.
func (m *SessionManager) HasSession() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Info returns a snapshot of the open session.
func (m *SessionManager) Info() (SessionInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return SessionInfo{}, false
	}

	info := SessionInfo{
		BrowserType: m.session.Options.BrowserType,
		Headless:    m.session.Options.Headless,
		CreatedAt:   m.session.CreatedAt,
		LastUsedAt:  m.session.LastUsedAt,
	}
	if m.session.Page != nil {
		info.CurrentURL = m.session.Page.URL()
	}
	return info, true
}

// Options returns the options the next session will be launched with.
func (m *SessionManager) Options() SessionOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// UseOptions switches launch options. An open session launched with
// different options is closed so that the next Do relaunches it.
func (m *SessionManager) UseOptions(opts SessionOptions) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	opts = withSessionDefaults(opts)
	if opts == m.opts {
		return nil
	}

	m.opts = opts
	if m.session == nil {
		return nil
	}

	m.logger.Infof("Relaunching browser as %s headless=%t", opts.BrowserType, opts.Headless)
	return m.closeSessionLocked()
}

// CloseSession closes the browser session. The driver keeps running, so the
// next Do starts a fresh browser quickly. Closing without a session is a no-op.
func (m *SessionManager) CloseSession() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeSessionLocked()
}

func (m *SessionManager) closeSessionLocked() error {
	s := m.session
	if s == nil {
		return nil
	}
	m.session = nil

	m.logger.Infof("Closing browser and cleaning up resources")

	var errs []error
	if s.Page != nil && !s.Page.IsClosed() {
		if err := s.Page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ReapIdle closes the session if it has been idle longer than the configured
// timeout. It returns true when a session was closed. A session that is busy
// running an operation is never idle.
func (m *SessionManager) ReapIdle(now time.Time) (bool, error) {
	if m.idleTimeout <= 0 {
		return false, nil
	}
	if !m.opMu.TryLock() {
		return false, nil
	}
	defer m.opMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || now.Sub(m.session.LastUsedAt) <= m.idleTimeout {
		return false, nil
	}

	m.logger.Infof("Closing browser idle since %s", m.session.LastUsedAt.Format(time.RFC3339))
	return true, m.closeSessionLocked()
}

// RunIdleReaper calls ReapIdle every interval until ctx is done.
func (m *SessionManager) RunIdleReaper(ctx context.Context, interval time.Duration) {
	if m.idleTimeout <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := m.ReapIdle(now); err != nil {
				m.logger.Warnf("Idle cleanup failed: %v", err)
			}
		}
	}
}

// Shutdown closes the session and stops the Playwright driver.
func (m *SessionManager) Shutdown() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.closeSessionLocked()

	if m.initialized && m.playwright != nil {
		if stopErr := m.playwright.Stop(); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to stop playwright: %w", stopErr))
		}
		m.playwright = nil
		m.initialized = false
	}

	return err
}
