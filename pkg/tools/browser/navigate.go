package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NavigateInput represents the parameters for navigation.
type NavigateInput struct {
	URL string `json:"url" jsonschema:"the URL to navigate to, including the protocol"`
}

// navigate loads a URL, waiting for DOMContentLoaded and then briefly for
// the load event.
func (t *Toolset) navigate(ctx context.Context, _ *mcp.CallToolRequest, in NavigateInput) (*mcp.CallToolResult, any, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return nil, nil, fmt.Errorf("URL must be a non-empty string")
	}

	if t.guard != nil {
		if err := t.guard.Check(url); err != nil {
			t.logger.Warnf("Navigation refused: %v", err)
			return nil, nil, err
		}
	}

	t.logger.Infof("Navigating to %s", url)
	err := t.manager.Do(ctx, func(s *Session) error {
		return s.Navigate(url, NavigateOptions{
			WaitUntil:   "domcontentloaded",
			LoadTimeout: DefaultLoadTimeout,
		})
	})
	if err != nil {
		t.logger.Warnf("Navigation to %s failed: %v", url, err)
		return nil, nil, fmt.Errorf("error navigating to %s: %w", url, err)
	}

	return textResult("Navigated to " + url), nil, nil
}

func (t *Toolset) goBack(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	t.logger.Infof("Navigating back")
	if err := t.manager.Do(ctx, (*Session).GoBack); err != nil {
		return nil, nil, err
	}
	return textResult("Navigated back"), nil, nil
}

func (t *Toolset) reload(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	t.logger.Infof("Reloading page")
	if err := t.manager.Do(ctx, (*Session).Reload); err != nil {
		return nil, nil, err
	}
	return textResult("Page reloaded"), nil, nil
}

func (t *Toolset) currentURL(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	var url string
	err := t.manager.Do(ctx, func(s *Session) error {
		url = s.URL()
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current URL: %w", err)
	}
	return textResult(url), nil, nil
}

func (t *Toolset) pageTitle(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	var title string
	err := t.manager.Do(ctx, func(s *Session) (err error) {
		title, err = s.Title()
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(title), nil, nil
}
