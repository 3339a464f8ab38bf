package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PageHTMLInput represents the parameters for reading the page markup.
type PageHTMLInput struct {
	Clean     bool `json:"clean,omitempty" jsonschema:"strip scripts, styles and presentation attributes"`
	MaxLength int  `json:"max_length,omitempty" jsonschema:"maximum length of cleaned output in bytes"`
}

func (t *Toolset) findByXPath(ctx context.Context, _ *mcp.CallToolRequest, in XPathInput) (*mcp.CallToolResult, any, error) {
	selector, err := in.selector()
	if err != nil {
		return nil, nil, err
	}

	t.logger.Infof("Finding elements with XPath: %s", selector)
	var count int
	err = t.manager.Do(ctx, func(s *Session) (err error) {
		count, err = s.Count(selector)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error finding elements: %w", err)
	}

	return textResult(fmt.Sprintf("Found %d elements matching XPath '%s'", count, selector)), nil, nil
}

func (t *Toolset) elementHTML(ctx context.Context, _ *mcp.CallToolRequest, in XPathInput) (*mcp.CallToolResult, any, error) {
	selector, err := in.selector()
	if err != nil {
		return nil, nil, err
	}

	t.logger.Infof("Getting HTML content from element with XPath: %s", in.XPath)
	var html string
	err = t.manager.Do(ctx, func(s *Session) (err error) {
		html, err = s.ElementHTML(selector)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error getting element HTML: %w", err)
	}

	return textResult(html), nil, nil
}

func (t *Toolset) elementText(ctx context.Context, _ *mcp.CallToolRequest, in XPathInput) (*mcp.CallToolResult, any, error) {
	selector, err := in.selector()
	if err != nil {
		return nil, nil, err
	}

	t.logger.Infof("Getting text from element with XPath: %s", in.XPath)
	var text string
	err = t.manager.Do(ctx, func(s *Session) (err error) {
		text, err = s.ElementText(selector)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error getting element text: %w", err)
	}

	return textResult(text), nil, nil
}

// pageContent returns the body's innerText. Pages that refuse script
// evaluation fall back to text extracted from the serialized DOM.
func (t *Toolset) pageContent(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	var text string
	err := t.manager.Do(ctx, func(s *Session) error {
		var evalErr error
		if text, evalErr = s.PageText(); evalErr == nil {
			return nil
		}
		t.logger.Debugf("innerText unavailable, parsing page HTML: %v", evalErr)

		raw, err := s.Content()
		if err != nil {
			return err
		}
		text, err = VisibleText(raw)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get page content: %w", err)
	}

	return textResult(text), nil, nil
}

func (t *Toolset) pageHTML(ctx context.Context, _ *mcp.CallToolRequest, in PageHTMLInput) (*mcp.CallToolResult, any, error) {
	if in.MaxLength < 0 {
		return nil, nil, fmt.Errorf("max_length must not be negative")
	}

	var raw string
	err := t.manager.Do(ctx, func(s *Session) (err error) {
		raw, err = s.Content()
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if !in.Clean {
		return textResult(raw), nil, nil
	}

	cleaned, err := CleanHTML(raw, in.MaxLength)
	if err != nil {
		return nil, nil, err
	}
	return textResult(formatCleanedPage(cleaned)), nil, nil
}

func formatCleanedPage(page *CleanedPage) string {
	var b strings.Builder
	if page.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", page.Title)
	}
	if page.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", page.Description)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(page.HTML)
	if page.Truncated {
		b.WriteString("\n\n[Content truncated]")
	}
	return b.String()
}
