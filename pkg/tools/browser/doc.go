// Package browser drives a single Playwright browser session and exposes it
// as MCP tools.
//
// # Session
//
// A SessionManager owns one Session (browser, context and page). The
// session is launched on first use and shared by every tool:
//
//  1. Launch: the first Do call installs/starts the driver and opens a page
//  2. Use: tools run one at a time inside Do
//  3. Close: Browser-Close (or the idle reaper) releases the browser
//  4. Relaunch: the next Do opens a fresh browser with the current options
//
// Browser-Save-As-PDF switches the manager to headless Chromium because no
// other configuration can print.
//
// # Tools
//
// Toolset.Register adds the tools to an mcp.Server. Arguments are validated
// before the browser is touched, and every failure is returned as an error
// result carrying text. When ToolOptions.Workspace is set, file_path
// arguments of the capture tools must resolve inside it.
//
// # Example Usage
//
//	manager := browser.NewSessionManager(browser.ManagerOptions{
//	    Session: browser.SessionOptions{BrowserType: "chromium"},
//	})
//	defer manager.Shutdown()
//
//	err := manager.Do(ctx, func(s *browser.Session) error {
//	    return s.Navigate("https://github.com", browser.NavigateOptions{
//	        WaitUntil: "domcontentloaded",
//	    })
//	})
package browser
