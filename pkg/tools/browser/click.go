package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClickInput represents the parameters for clicking an element.
type ClickInput struct {
	Selector string `json:"selector" jsonschema:"CSS or XPath selector of the element to click"`
}

// PressKeyInput represents the parameters for a key press.
type PressKeyInput struct {
	Key string `json:"key" jsonschema:"key to press, e.g. Enter, Tab, ArrowDown or Control+A"`
}

func (t *Toolset) click(ctx context.Context, _ *mcp.CallToolRequest, in ClickInput) (*mcp.CallToolResult, any, error) {
	selector := strings.TrimSpace(in.Selector)
	if selector == "" {
		return nil, nil, fmt.Errorf("selector must be a non-empty string")
	}

	t.logger.Infof("Clicking element with selector: %s", selector)
	err := t.manager.Do(ctx, func(s *Session) error {
		return s.Click(ClickOptions{Selector: selector, Timeout: DefaultClickTimeout})
	})
	if err != nil {
		t.logger.Errorf("Could not click element %s: %v", selector, err)
		return nil, nil, fmt.Errorf("could not click element: %w", err)
	}

	return textResult(fmt.Sprintf("Clicked element with selector '%s'", selector)), nil, nil
}

func (t *Toolset) pressKey(ctx context.Context, _ *mcp.CallToolRequest, in PressKeyInput) (*mcp.CallToolResult, any, error) {
	key := strings.TrimSpace(in.Key)
	if key == "" {
		return nil, nil, fmt.Errorf("key must be a non-empty string")
	}

	t.logger.Infof("Pressing key: %s", key)
	err := t.manager.Do(ctx, func(s *Session) error {
		return s.PressKey(key)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error pressing key: %w", err)
	}

	return textResult("Pressed key " + key), nil, nil
}
