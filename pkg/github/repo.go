package github

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/entrhq/playwright-mcp/pkg/tools/browser"
)

const (
	repoNameSelector        = "#repository-name-input"
	repoDescriptionSelector = "#repository-description-input"
	privateRadioSelector    = `input[type="radio"][value="private"]`
	nameAvailableSelector   = "#RepoNameInput-is-available"
	nameCheckSelector       = "#RepoNameInput-check"
	createButtonSelector    = `button[type="submit"]:has-text("Create repository")`
	repoTitleSelector       = "#repo-title-component strong a"

	availabilityTimeout = 10000.0
)

// ErrNameUnavailable means GitHub reported the repository name as taken or invalid.
var ErrNameUnavailable = errors.New("repository name is not available")

var repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// RepoOptions describes the repository to create.
type RepoOptions struct {
	Name        string
	Description string
	Private     bool

	// BaseURL is the GitHub origin; defaults to DefaultBaseURL
	BaseURL string
}

// Validate checks the options before any page is touched.
func (o RepoOptions) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("repository name is required")
	}
	if len(o.Name) > 100 || !repoNamePattern.MatchString(o.Name) {
		return fmt.Errorf("invalid repository name %q: use letters, digits, '.', '-' or '_' (max 100)", o.Name)
	}
	return nil
}

// CreateRepository fills GitHub's new-repository form and returns the URL
// of the created repository. The page must already be signed in.
func CreateRepository(ctx context.Context, page Page, opts RepoOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	steps := []struct {
		name string
		skip bool
		run  func() error
	}{
		{name: "open new repository page", run: func() error {
			return page.Navigate(base+"/new", browser.NavigateOptions{WaitUntil: "domcontentloaded"})
		}},
		{name: "wait for form", run: func() error {
			return page.Wait(browser.WaitOptions{Selector: repoNameSelector, State: "visible"})
		}},
		{name: "fill name", run: func() error {
			return page.Fill(browser.FillOptions{Selector: repoNameSelector, Value: opts.Name})
		}},
		{name: "fill description", skip: opts.Description == "", run: func() error {
			return page.Fill(browser.FillOptions{Selector: repoDescriptionSelector, Value: opts.Description})
		}},
		{name: "select private", skip: !opts.Private, run: func() error {
			return page.Click(browser.ClickOptions{Selector: privateRadioSelector})
		}},
	}

	for _, step := range steps {
		if step.skip {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := step.run(); err != nil {
			return "", fmt.Errorf("%s: %w", step.name, err)
		}
	}

	err := page.Wait(browser.WaitOptions{Selector: nameAvailableSelector, State: "visible", Timeout: availabilityTimeout})
	if err != nil {
		status, _ := page.ElementText(nameCheckSelector)
		if status = strings.TrimSpace(status); status != "" {
			return "", fmt.Errorf("%w: %s", ErrNameUnavailable, status)
		}
		return "", fmt.Errorf("%w: %s", ErrNameUnavailable, opts.Name)
	}

	if err := page.Click(browser.ClickOptions{Selector: createButtonSelector}); err != nil {
		return "", fmt.Errorf("click create: %w", err)
	}
	if err := page.Wait(browser.WaitOptions{Selector: repoTitleSelector, State: "visible"}); err != nil {
		return "", fmt.Errorf("wait for repository page: %w", err)
	}

	url := page.URL()
	if !strings.Contains(url, "/"+opts.Name) {
		return "", fmt.Errorf("unexpected URL %s after creating %s", url, opts.Name)
	}
	return url, nil
}
