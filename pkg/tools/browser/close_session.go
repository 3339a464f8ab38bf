package browser

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// closeBrowser closes the shared session. The next tool call launches a
// fresh browser.
func (t *Toolset) closeBrowser(_ context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	if !t.manager.HasSession() {
		return textResult("Browser is not running."), nil, nil
	}

	if err := t.manager.CloseSession(); err != nil {
		t.logger.Errorf("Error closing browser: %v", err)
		return nil, nil, fmt.Errorf("failed to close browser: %w", err)
	}

	return textResult("Browser closed and resources cleaned up."), nil, nil
}

// killChromium terminates Playwright's Chromium processes, including ones
// this server did not launch. The shared session is dropped first so the
// next call does not reuse a dead browser.
func (t *Toolset) killChromium(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	if t.processes == nil {
		return nil, nil, fmt.Errorf("process control is not available")
	}

	t.logger.Infof("Attempting to kill all Chrome instances generated via Playwright.")

	if err := t.manager.CloseSession(); err != nil {
		t.logger.Warnf("Closing browser before kill failed: %v", err)
	}

	count, err := t.processes.KillPlaywrightBrowsers(ctx)
	if err != nil {
		t.logger.Errorf("Failed to kill Chrome instances: %v", err)
		return nil, nil, fmt.Errorf("failed to kill Chrome instances: %w", err)
	}

	return textResult(fmt.Sprintf("All Chrome instances generated via Playwright have been terminated (%d processes).", count)), nil, nil
}
