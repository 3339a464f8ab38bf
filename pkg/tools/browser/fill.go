package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FillInput represents the parameters for filling a form field.
type FillInput struct {
	Selector string `json:"selector" jsonschema:"CSS or XPath selector of the form field"`
	Text     string `json:"text" jsonschema:"text to fill the field with"`
}

// XPathInput is shared by the tools that locate one element by XPath.
type XPathInput struct {
	XPath string `json:"xpath" jsonschema:"XPath expression locating the element"`
}

func (in XPathInput) selector() (string, error) {
	if strings.TrimSpace(in.XPath) == "" {
		return "", fmt.Errorf("XPath must be a non-empty string")
	}
	return XPathSelector(in.XPath), nil
}

// fill never logs the value; it may be a secret.
func (t *Toolset) fill(ctx context.Context, _ *mcp.CallToolRequest, in FillInput) (*mcp.CallToolResult, any, error) {
	selector := strings.TrimSpace(in.Selector)
	if selector == "" {
		return nil, nil, fmt.Errorf("selector must be a non-empty string")
	}

	t.logger.Infof("Filling text in selector: %s", selector)
	err := t.manager.Do(ctx, func(s *Session) error {
		return s.Fill(FillOptions{Selector: selector, Value: in.Text})
	})
	if err != nil {
		t.logger.Errorf("Could not fill element %s: %v", selector, err)
		return nil, nil, fmt.Errorf("could not fill element: %w", err)
	}

	return textResult(fmt.Sprintf("Filled text in element with selector '%s'", selector)), nil, nil
}

func (t *Toolset) clearField(ctx context.Context, _ *mcp.CallToolRequest, in XPathInput) (*mcp.CallToolResult, any, error) {
	selector, err := in.selector()
	if err != nil {
		return nil, nil, err
	}

	t.logger.Infof("Clearing content of input field with XPath: %s", in.XPath)
	err = t.manager.Do(ctx, func(s *Session) error {
		if _, err := s.element(selector); err != nil {
			return err
		}
		return s.ClearField(selector)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to clear input field: %w", err)
	}

	return textResult("Cleared content of input field with XPath: " + in.XPath), nil, nil
}
