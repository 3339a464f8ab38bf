// Package github scripts the GitHub web UI through a browser page: signing
// in and creating repositories.
package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/playwright-mcp/pkg/credentials"
	"github.com/entrhq/playwright-mcp/pkg/tools/browser"
)

// DefaultBaseURL is the GitHub web origin.
const DefaultBaseURL = "https://github.com"

// DefaultLoginTimeout bounds the wait for the post-login redirect.
const DefaultLoginTimeout = 15 * time.Second

// Selectors on github.com/login and the signed-in layout.
const (
	loginFieldSelector   = "#login_field"
	passwordSelector     = "#password"
	submitSelector       = `input[type="submit"][name="commit"]`
	flashSelector        = "#js-flash-container"
	userLoginSelector    = `meta[name="user-login"]`
	incorrectCredentials = "Incorrect username or password."
)

var (
	// ErrInvalidCredentials means GitHub rejected the username or password.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrNotAuthenticated means the flow finished without a signed-in page.
	ErrNotAuthenticated = errors.New("not signed in after login")
)

// Page is the part of a browser session the GitHub flows drive.
// *browser.Session implements it.
type Page interface {
	Navigate(url string, opts browser.NavigateOptions) error
	Wait(opts browser.WaitOptions) error
	Fill(opts browser.FillOptions) error
	Click(opts browser.ClickOptions) error
	WaitForURL(url string, timeout float64) error
	ElementText(selector string) (string, error)
	Attribute(selector, name string) (string, error)
	URL() string
}

var _ Page = (*browser.Session)(nil)

// LoginOptions configures Login.
type LoginOptions struct {
	// BaseURL is the GitHub origin; defaults to DefaultBaseURL
	BaseURL string

	// Timeout bounds the redirect wait after submitting; defaults to DefaultLoginTimeout
	Timeout time.Duration
}

func (o LoginOptions) withDefaults() LoginOptions {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Timeout <= 0 {
		o.Timeout = DefaultLoginTimeout
	}
	return o
}

// Login signs in on the GitHub login form and returns the signed-in account
// name. The sequence is always the same: open the login page, fill both
// fields, submit, wait for the redirect to the dashboard, then confirm the
// page belongs to a signed-in user.
func Login(ctx context.Context, page Page, creds credentials.Credentials, opts LoginOptions) (string, error) {
	opts = opts.withDefaults()

	steps := []struct {
		name string
		run  func() error
	}{
		{"open login page", func() error {
			return page.Navigate(opts.BaseURL+"/login", browser.NavigateOptions{WaitUntil: "domcontentloaded"})
		}},
		{"wait for login form", func() error {
			return page.Wait(browser.WaitOptions{Selector: loginFieldSelector, State: "visible"})
		}},
		{"fill username", func() error {
			return page.Fill(browser.FillOptions{Selector: loginFieldSelector, Value: creds.Username})
		}},
		{"fill password", func() error {
			return page.Fill(browser.FillOptions{Selector: passwordSelector, Value: creds.Password.Reveal()})
		}},
		{"submit", func() error {
			return page.Click(browser.ClickOptions{Selector: submitSelector})
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := step.run(); err != nil {
			return "", fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if err := page.WaitForURL(opts.BaseURL+"/", float64(opts.Timeout.Milliseconds())); err != nil {
		if flash, flashErr := page.ElementText(flashSelector); flashErr == nil && strings.Contains(flash, incorrectCredentials) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("wait for dashboard: %w", err)
	}

	account, err := page.Attribute(userLoginSelector, "content")
	if err != nil || strings.TrimSpace(account) == "" {
		return "", ErrNotAuthenticated
	}

	return strings.TrimSpace(account), nil
}
