package browser

import (
	"errors"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrElementNotFound is returned when a selector matches nothing.
var ErrElementNotFound = errors.New("element not found")

// Session is the shared browser instance with its context and page.
type Session struct {
	Browser playwright.Browser
	Context playwright.BrowserContext // cookie jar and storage shared by every tool
	Page    playwright.Page           // the one tab every tool acts on

	// Options the session was launched with
	Options SessionOptions

	CreatedAt  time.Time
	LastUsedAt time.Time
}

// SessionOptions configures how the shared session is launched.
type SessionOptions struct {
	// BrowserType is "chromium", "firefox" or "webkit"
	BrowserType string

	Headless bool
	Viewport Viewport

	// Timeout is the page-wide default in milliseconds
	Timeout float64
}

// Viewport is the page size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions controls Session.Navigate.
type NavigateOptions struct {
	// WaitUntil is one of "load", "domcontentloaded", "networkidle" or "commit"
	WaitUntil string
	Timeout   float64 // ms; 0 keeps the page default

	// LoadTimeout, when positive, additionally waits for the load event
	LoadTimeout float64
}

// ClickOptions controls Session.Click. Timeout is in milliseconds.
type ClickOptions struct {
	Selector string
	Timeout  float64
}

// FillOptions controls Session.Fill.
type FillOptions struct {
	Selector string
	Value    string
	Timeout  float64
}

// WaitOptions controls Session.Wait. State is "attached", "detached",
// "visible" or "hidden"; empty means visible.
type WaitOptions struct {
	Selector string
	State    string
	Timeout  float64
}

// ScreenshotOptions configures a page or element screenshot.
type ScreenshotOptions struct {
	// Selector limits the capture to one element when set
	Selector string
	Path     string
}

// PDFOptions configures PDF rendering. Only headless Chromium can print.
type PDFOptions struct {
	Path      string
	Landscape bool
	Format    string // e.g. "A4", "Letter"; empty uses the Playwright default
}

// SessionInfo is a snapshot of the shared session.
type SessionInfo struct {
	BrowserType string
	Headless    bool
	CurrentURL  string
	CreatedAt   time.Time
	LastUsedAt  time.Time
}

// Timeouts are in milliseconds, as Playwright expects.
const (
	DefaultTimeout         = 30000.0 // 30 seconds in milliseconds
	DefaultClickTimeout    = 5000.0
	DefaultLoadTimeout     = 5000.0
	DefaultViewportWidth   = 1920
	DefaultViewportHeight  = 1080
	DefaultBrowserType     = "chromium"
	DefaultScrollStep      = 100
	scrollSettleDuration   = 500 * time.Millisecond
	defaultArtifactPerm    = 0644
	defaultArtifactDirPerm = 0750
)
