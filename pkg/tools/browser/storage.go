package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/playwright-community/playwright-go"
)

func (t *Toolset) clearData(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	t.logger.Infof("Clearing browser data")
	if err := t.manager.Do(ctx, (*Session).ClearData); err != nil {
		return nil, nil, err
	}
	return textResult("Browser data cleared"), nil, nil
}

func (t *Toolset) cookies(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	t.logger.Infof("Getting cookies")

	var cookies []playwright.Cookie
	err := t.manager.Do(ctx, func(s *Session) (err error) {
		cookies, err = s.Cookies()
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if cookies == nil {
		cookies = []playwright.Cookie{}
	}
	data, err := json.MarshalIndent(cookies, "", "    ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode cookies: %w", err)
	}
	return textResult(string(data)), nil, nil
}
