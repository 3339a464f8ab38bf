package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

const xpathPrefix = "xpath="

// XPathSelector turns a raw XPath expression into a Playwright selector.
// Expressions that already carry the xpath= engine prefix are returned as is.
func XPathSelector(expr string) string {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, xpathPrefix) {
		return expr
	}
	return xpathPrefix + expr
}

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	// Best effort: slow subresources must not fail a navigation that
	// already reached DOMContentLoaded.
	if opts.LoadTimeout > 0 {
		_ = s.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   playwright.LoadStateLoad,
			Timeout: playwright.Float(opts.LoadTimeout),
		})
	}

	return nil
}

// GoBack navigates to the previous page in history.
func (s *Session) GoBack() error {
	s.UpdateLastUsed()

	if _, err := s.Page.GoBack(); err != nil {
		return fmt.Errorf("go back failed: %w", err)
	}
	return nil
}

// Reload reloads the current page.
func (s *Session) Reload() error {
	s.UpdateLastUsed()

	if _, err := s.Page.Reload(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

// Click clicks an element matching the selector.
func (s *Session) Click(opts ClickOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageClickOptions{}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if err := s.Page.Click(opts.Selector, playwrightOpts); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Fill fills an input element with the specified value.
func (s *Session) Fill(opts FillOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageFillOptions{}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if err := s.Page.Fill(opts.Selector, opts.Value, playwrightOpts); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// ClearField empties an input element.
func (s *Session) ClearField(selector string) error {
	return s.Fill(FillOptions{Selector: selector})
}

// Wait waits for an element to reach a state.
func (s *Session) Wait(opts WaitOptions) error {
	s.UpdateLastUsed()

	if opts.Selector == "" {
		return fmt.Errorf("selector is required for wait")
	}

	playwrightOpts := playwright.PageWaitForSelectorOptions{}

	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		playwrightOpts.State = &state
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.WaitForSelector(opts.Selector, playwrightOpts); err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	return nil
}

// WaitForURL waits until the page URL equals url. timeout is in milliseconds.
func (s *Session) WaitForURL(url string, timeout float64) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageWaitForURLOptions{}
	if timeout > 0 {
		playwrightOpts.Timeout = &timeout
	}

	if err := s.Page.WaitForURL(url, playwrightOpts); err != nil {
		return fmt.Errorf("wait for URL %s failed: %w", url, err)
	}
	return nil
}

// Count returns how many elements match the selector.
func (s *Session) Count(selector string) (int, error) {
	elements, err := s.Page.QuerySelectorAll(selector)
	if err != nil {
		return 0, fmt.Errorf("selector query failed: %w", err)
	}
	return len(elements), nil
}

func (s *Session) element(selector string) (playwright.ElementHandle, error) {
	s.UpdateLastUsed()

	element, err := s.Page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return element, nil
}

// ElementText returns the rendered text of the first matching element.
func (s *Session) ElementText(selector string) (string, error) {
	element, err := s.element(selector)
	if err != nil {
		return "", err
	}

	text, err := element.InnerText()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return text, nil
}

// ElementHTML returns the inner HTML of the first matching element.
func (s *Session) ElementHTML(selector string) (string, error) {
	element, err := s.element(selector)
	if err != nil {
		return "", err
	}

	html, err := element.InnerHTML()
	if err != nil {
		return "", fmt.Errorf("html extraction failed: %w", err)
	}
	return html, nil
}

// ElementOuterHTML returns the element including its own tag.
func (s *Session) ElementOuterHTML(selector string) (string, error) {
	element, err := s.element(selector)
	if err != nil {
		return "", err
	}

	result, err := element.Evaluate("(node) => node.outerHTML")
	if err != nil {
		return "", fmt.Errorf("html extraction failed: %w", err)
	}

	html, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected outerHTML result type %T", result)
	}
	return html, nil
}

// Attribute returns an attribute of the first matching element, or "" when
// the attribute is absent.
func (s *Session) Attribute(selector, name string) (string, error) {
	element, err := s.element(selector)
	if err != nil {
		return "", err
	}

	value, err := element.GetAttribute(name)
	if err != nil {
		return "", fmt.Errorf("attribute %s lookup failed: %w", name, err)
	}
	return value, nil
}

// PageText returns the visible text of the document body.
func (s *Session) PageText() (string, error) {
	s.UpdateLastUsed()

	result, err := s.Page.Evaluate("() => document.body ? document.body.innerText : ''")
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}

	text, _ := result.(string)
	return text, nil
}

// Content returns the full HTML of the page.
func (s *Session) Content() (string, error) {
	s.UpdateLastUsed()

	html, err := s.Page.Content()
	if err != nil {
		return "", fmt.Errorf("content extraction failed: %w", err)
	}
	return html, nil
}

// Title returns the page title.
func (s *Session) Title() (string, error) {
	title, err := s.Page.Title()
	if err != nil {
		return "", fmt.Errorf("title lookup failed: %w", err)
	}
	return title, nil
}

// URL returns the current page URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Screenshot saves a PNG of the page, or of one element when a selector is set.
func (s *Session) Screenshot(opts ScreenshotOptions) error {
	s.UpdateLastUsed()

	if err := ensureParentDir(opts.Path); err != nil {
		return err
	}

	if opts.Selector != "" {
		element, err := s.element(opts.Selector)
		if err != nil {
			return err
		}
		if _, err := element.Screenshot(playwright.ElementHandleScreenshotOptions{
			Path: playwright.String(opts.Path),
		}); err != nil {
			return fmt.Errorf("screenshot failed: %w", err)
		}
		return nil
	}

	if _, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(opts.Path),
	}); err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	return nil
}

// PDF prints the page to a PDF file.
func (s *Session) PDF(opts PDFOptions) error {
	s.UpdateLastUsed()

	if err := ensureParentDir(opts.Path); err != nil {
		return err
	}

	playwrightOpts := playwright.PagePdfOptions{
		Path: playwright.String(opts.Path),
	}
	if opts.Landscape {
		playwrightOpts.Landscape = playwright.Bool(true)
	}
	if opts.Format != "" {
		playwrightOpts.Format = playwright.String(opts.Format)
	}

	if _, err := s.Page.PDF(playwrightOpts); err != nil {
		return fmt.Errorf("pdf generation failed: %w", err)
	}
	return nil
}

// ScrollToTop scrolls the window to the top of the document.
func (s *Session) ScrollToTop() error {
	return s.scroll("() => window.scrollTo({ top: 0, behavior: 'smooth' })")
}

// ScrollToBottom scrolls the window to the end of the document.
func (s *Session) ScrollToBottom() error {
	return s.scroll("() => window.scrollTo({ top: document.body.scrollHeight, behavior: 'smooth' })")
}

// ScrollBy scrolls vertically by step pixels. Negative values scroll up.
func (s *Session) ScrollBy(step int) error {
	return s.scroll("(dy) => window.scrollBy(0, dy)", step)
}

// ScrollToElement scrolls the first matching element into view.
func (s *Session) ScrollToElement(selector string) error {
	element, err := s.element(selector)
	if err != nil {
		return err
	}

	if _, err := element.Evaluate("(node) => node.scrollIntoView({ behavior: 'smooth', block: 'center' })"); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	time.Sleep(scrollSettleDuration)
	return nil
}

func (s *Session) scroll(expression string, args ...any) error {
	s.UpdateLastUsed()

	if _, err := s.Page.Evaluate(expression, args...); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	time.Sleep(scrollSettleDuration)
	return nil
}

// PressKey presses a keyboard key such as "Enter" or "Control+A".
func (s *Session) PressKey(key string) error {
	s.UpdateLastUsed()

	if err := s.Page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("key press failed: %w", err)
	}
	return nil
}

// Cookies returns every cookie held by the browser context.
func (s *Session) Cookies() ([]playwright.Cookie, error) {
	s.UpdateLastUsed()

	cookies, err := s.Context.Cookies()
	if err != nil {
		return nil, fmt.Errorf("cookie lookup failed: %w", err)
	}
	return cookies, nil
}

// ClearCookies drops every cookie in the browser context.
func (s *Session) ClearCookies() error {
	s.UpdateLastUsed()

	if err := s.Context.ClearCookies(); err != nil {
		return fmt.Errorf("clear cookies failed: %w", err)
	}
	return nil
}

// ClearData removes cookies, localStorage and sessionStorage.
func (s *Session) ClearData() error {
	if err := s.ClearCookies(); err != nil {
		return err
	}
	if _, err := s.Page.Evaluate("() => { localStorage.clear(); sessionStorage.clear(); }"); err != nil {
		return fmt.Errorf("clear storage failed: %w", err)
	}
	return nil
}

func ensureParentDir(path string) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), defaultArtifactDirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
