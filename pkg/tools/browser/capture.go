package browser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ScreenshotInput represents the parameters for Browser-Screenshot.
type ScreenshotInput struct {
	Selector string `json:"selector,omitempty" jsonschema:"selector of one element to capture instead of the page"`
	FilePath string `json:"file_path,omitempty" jsonschema:"where to save the PNG; defaults to the output directory"`
}

// FilePathInput is used by tools that only take an optional output path.
type FilePathInput struct {
	FilePath string `json:"file_path,omitempty" jsonschema:"where to save the file; defaults to the output directory"`
}

// SaveElementInput represents the parameters for Save-Element-As-HTML.
type SaveElementInput struct {
	XPath    string `json:"xpath" jsonschema:"XPath expression locating the element"`
	FilePath string `json:"file_path,omitempty" jsonschema:"where to save the HTML; defaults to the output directory"`
}

// PDFInput represents the parameters for Browser-Save-As-PDF.
type PDFInput struct {
	Landscape bool   `json:"landscape,omitempty" jsonschema:"print in landscape orientation"`
	Format    string `json:"format,omitempty" jsonschema:"paper format such as A4 or Letter"`
	FilePath  string `json:"file_path,omitempty" jsonschema:"where to save the PDF; defaults to the output directory"`
}

func (t *Toolset) screenshot(ctx context.Context, _ *mcp.CallToolRequest, in ScreenshotInput) (*mcp.CallToolResult, any, error) {
	path, err := t.artifactPath(in.FilePath, "screenshot", "png")
	if err != nil {
		return nil, nil, err
	}
	opts := ScreenshotOptions{
		Selector: strings.TrimSpace(in.Selector),
		Path:     path,
	}

	if opts.Selector != "" {
		t.logger.Infof("Taking screenshot of element: %s", opts.Selector)
	} else {
		t.logger.Infof("Taking screenshot")
	}

	err = t.manager.Do(ctx, func(s *Session) error {
		return s.Screenshot(opts)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to take screenshot: %w", err)
	}

	return textResult("Screenshot saved to " + opts.Path), nil, nil
}

func (t *Toolset) savePageScreenshot(ctx context.Context, req *mcp.CallToolRequest, in FilePathInput) (*mcp.CallToolResult, any, error) {
	return t.screenshot(ctx, req, ScreenshotInput{FilePath: in.FilePath})
}

// saveAsPDF prints the page. Only headless Chromium can print, so the
// session is relaunched that way first when needed.
func (t *Toolset) saveAsPDF(ctx context.Context, _ *mcp.CallToolRequest, in PDFInput) (*mcp.CallToolResult, any, error) {
	path, err := t.artifactPath(in.FilePath, "page", "pdf")
	if err != nil {
		return nil, nil, err
	}

	opts := t.manager.Options()
	if opts.BrowserType != "chromium" || !opts.Headless {
		opts.BrowserType = "chromium"
		opts.Headless = true
		if err := t.manager.UseOptions(opts); err != nil {
			t.logger.Warnf("Closing browser before PDF relaunch failed: %v", err)
		}
	}

	t.logger.Infof("Generating PDF at %s", path)

	err = t.manager.Do(ctx, func(s *Session) error {
		return s.PDF(PDFOptions{Path: path, Landscape: in.Landscape, Format: in.Format})
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		t.logger.Warnf("Could not read page count of %s: %v", path, err)
		return textResult("PDF saved to " + path), nil, nil
	}

	return textResult(fmt.Sprintf("PDF saved to %s (%d pages)", path, pages)), nil, nil
}

func (t *Toolset) saveElementHTML(ctx context.Context, _ *mcp.CallToolRequest, in SaveElementInput) (*mcp.CallToolResult, any, error) {
	selector, err := XPathInput{XPath: in.XPath}.selector()
	if err != nil {
		return nil, nil, err
	}

	path, err := t.artifactPath(in.FilePath, "element", "html")
	if err != nil {
		return nil, nil, err
	}
	t.logger.Infof("Saving HTML content of element with XPath: %s", in.XPath)

	var html string
	err = t.manager.Do(ctx, func(s *Session) (err error) {
		html, err = s.ElementOuterHTML(selector)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error saving element HTML: %w", err)
	}
	if html == "" {
		return nil, nil, fmt.Errorf("could not extract HTML from element with XPath: %s", in.XPath)
	}

	if err := writeArtifact(path, html); err != nil {
		return nil, nil, err
	}
	return textResult("HTML content saved to " + path), nil, nil
}

func (t *Toolset) savePageHTML(ctx context.Context, _ *mcp.CallToolRequest, in FilePathInput) (*mcp.CallToolResult, any, error) {
	path, err := t.artifactPath(in.FilePath, "page", "html")
	if err != nil {
		return nil, nil, err
	}
	t.logger.Infof("Saving current page as HTML")

	var html string
	err = t.manager.Do(ctx, func(s *Session) (err error) {
		html, err = s.Content()
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save HTML: %w", err)
	}

	if err := writeArtifact(path, html); err != nil {
		return nil, nil, err
	}
	return textResult("HTML saved to " + path), nil, nil
}

func writeArtifact(path, content string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), defaultArtifactPerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
