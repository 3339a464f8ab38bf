package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ScrollToElementInput represents the parameters for scrolling to an element.
type ScrollToElementInput struct {
	Selector string `json:"selector" jsonschema:"CSS or XPath selector of the element to scroll to"`
}

// ScrollStepInput represents the parameters for a relative scroll.
type ScrollStepInput struct {
	Step *int `json:"step,omitempty" jsonschema:"pixels to scroll, positive for down and negative for up (default 100)"`
}

func (t *Toolset) scrollToTop(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	t.logger.Infof("Scrolling to top of page")
	if err := t.manager.Do(ctx, (*Session).ScrollToTop); err != nil {
		return nil, nil, fmt.Errorf("failed to scroll to top: %w", err)
	}
	return textResult("Scrolled to top of page"), nil, nil
}

func (t *Toolset) scrollToBottom(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	t.logger.Infof("Scrolling to bottom of page")
	if err := t.manager.Do(ctx, (*Session).ScrollToBottom); err != nil {
		return nil, nil, fmt.Errorf("failed to scroll to bottom: %w", err)
	}
	return textResult("Scrolled to bottom of page"), nil, nil
}

func (t *Toolset) scrollToElement(ctx context.Context, _ *mcp.CallToolRequest, in ScrollToElementInput) (*mcp.CallToolResult, any, error) {
	selector := strings.TrimSpace(in.Selector)
	if selector == "" {
		return nil, nil, fmt.Errorf("selector must be a non-empty string")
	}

	t.logger.Infof("Scrolling to element: %s", selector)
	err := t.manager.Do(ctx, func(s *Session) error {
		return s.ScrollToElement(selector)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scroll to element: %w", err)
	}

	return textResult(fmt.Sprintf("Scrolled to element with selector '%s'", selector)), nil, nil
}

func (t *Toolset) scrollOneStep(ctx context.Context, _ *mcp.CallToolRequest, in ScrollStepInput) (*mcp.CallToolResult, any, error) {
	step := DefaultScrollStep
	if in.Step != nil {
		step = *in.Step
	}

	t.logger.Infof("Scrolling the page by %d pixels", step)
	err := t.manager.Do(ctx, func(s *Session) error {
		return s.ScrollBy(step)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scroll the page: %w", err)
	}

	return textResult(fmt.Sprintf("Scrolled the page by %d pixels", step)), nil, nil
}
