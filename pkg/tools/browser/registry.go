package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/entrhq/playwright-mcp/pkg/logging"
	"github.com/entrhq/playwright-mcp/pkg/security/navigation"
	"github.com/entrhq/playwright-mcp/pkg/security/workspace"
)

// ProcessKiller terminates stray Playwright browser processes.
type ProcessKiller interface {
	KillPlaywrightBrowsers(ctx context.Context) (int, error)
}

// ToolOptions configures the browser toolset.
type ToolOptions struct {
	// Guard restricts Browser-Navigate targets; nil allows every URL
	Guard *navigation.Guard

	// OutputDir receives screenshots, PDFs and saved HTML when no path is given
	OutputDir string

	// Workspace confines file_path arguments; nil accepts any path
	Workspace *workspace.Guard

	Processes ProcessKiller
	Logger    *logging.Logger
}

// Toolset exposes the shared browser session as MCP tools.
type Toolset struct {
	manager   *SessionManager
	guard     *navigation.Guard
	outputDir string
	workspace *workspace.Guard
	processes ProcessKiller
	logger    *logging.Logger
	now       func() time.Time
}

// NewToolset creates the browser toolset for a session manager.
func NewToolset(manager *SessionManager, opts ToolOptions) *Toolset {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewWriterLogger("tools", io.Discard)
	}

	outputDir := opts.OutputDir
	if opts.Workspace != nil {
		outputDir = opts.Workspace.Root()
	}
	if outputDir == "" {
		outputDir = os.TempDir()
	}

	return &Toolset{
		manager:   manager,
		guard:     opts.Guard,
		outputDir: outputDir,
		workspace: opts.Workspace,
		processes: opts.Processes,
		logger:    logger,
		now:       time.Now,
	}
}

// Manager returns the session manager the tools operate on.
func (t *Toolset) Manager() *SessionManager {
	return t.manager
}

// Register adds every browser tool to the server.
func (t *Toolset) Register(server *mcp.Server) {
	// Session lifecycle
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Close", Description: "Close the browser and cleanup resources"}, t.closeBrowser)
	mcp.AddTool(server, &mcp.Tool{Name: "Kill-all-Chromium-Processes", Description: "Kill all Chromium browser processes to free up system resources"}, t.killChromium)

	// Navigation
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Navigate", Description: "Navigate to a URL in the browser."}, t.navigate)
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Go-Back", Description: "Go back to the previous page in the browser."}, t.goBack)
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Reload", Description: "Reload the current page."}, t.reload)
	mcp.AddTool(server, &mcp.Tool{Name: "Get-Current-URL", Description: "Get the current URL of the browser page."}, t.currentURL)
	mcp.AddTool(server, &mcp.Tool{Name: "Get-Page-Title", Description: "Get the title of the current page."}, t.pageTitle)

	// Interaction
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Click", Description: "Click on an element matching the selector"}, t.click)
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Press-Key", Description: "Press a key on the keyboard."}, t.pressKey)
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Fill", Description: "Fill a form field with text."}, t.fill)
	mcp.AddTool(server, &mcp.Tool{Name: "Clear-Field", Description: "Clear the content of a specific input field using XPath."}, t.clearField)

	// Queries
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Find-By-XPath", Description: "Find elements using an XPath expression and return their count."}, t.findByXPath)
	mcp.AddTool(server, &mcp.Tool{Name: "Get-Element-HTML", Description: "Get the HTML content of a specific element using XPath."}, t.elementHTML)
	mcp.AddTool(server, &mcp.Tool{Name: "Get-Element-Text", Description: "Get the text content of an element using XPath."}, t.elementText)
	mcp.AddTool(server, &mcp.Tool{Name: "Get-Page-Content", Description: "Get the text content of the current page."}, t.pageContent)
	mcp.AddTool(server, &mcp.Tool{Name: "Get-Page-HTML", Description: "Get the HTML content of the current page. Set clean to strip scripts, styles and presentation attributes."}, t.pageHTML)

	// Scrolling
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Scroll-To-Top", Description: "Scroll to the top of the page."}, t.scrollToTop)
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Scroll-To-Bottom", Description: "Scroll to the bottom of the page."}, t.scrollToBottom)
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Scroll-To-Element", Description: "Scroll until the element matching the selector is in view."}, t.scrollToElement)
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Scroll-One-Step", Description: "Scroll the page by one step."}, t.scrollOneStep)

	// Capture
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Screenshot", Description: "Take a screenshot of the current page or a specific element."}, t.screenshot)
	mcp.AddTool(server, &mcp.Tool{Name: "Save-Page-Screenshot", Description: "Save a screenshot of the current page."}, t.savePageScreenshot)
	mcp.AddTool(server, &mcp.Tool{Name: "Browser-Save-As-PDF", Description: "Save the current page as a PDF."}, t.saveAsPDF)
	mcp.AddTool(server, &mcp.Tool{Name: "Save-Element-As-HTML", Description: "Save a specific element's HTML content to a file using XPath."}, t.saveElementHTML)
	mcp.AddTool(server, &mcp.Tool{Name: "Save-Page-As-HTML", Description: "Save the current page's HTML content to a file."}, t.savePageHTML)

	// Storage
	mcp.AddTool(server, &mcp.Tool{Name: "Clear-Browser-Data", Description: "Clear cookies, localStorage, and sessionStorage."}, t.clearData)
	mcp.AddTool(server, &mcp.Tool{Name: "Get-Cookies", Description: "Get all cookies for the current page."}, t.cookies)
}

// NoInput is the argument type of tools that take no arguments.
type NoInput struct{}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// artifactPath returns path, or a timestamped file in the output directory
// when path is empty. With a workspace guard, relative paths land in the
// output directory and paths outside it are refused.
func (t *Toolset) artifactPath(path, prefix, ext string) (string, error) {
	if path == "" {
		path = filepath.Join(t.outputDir, fmt.Sprintf("%s_%s.%s", prefix, t.now().Format("20060102_150405"), ext))
	}
	if t.workspace == nil {
		return path, nil
	}
	return t.workspace.Resolve(path)
}
