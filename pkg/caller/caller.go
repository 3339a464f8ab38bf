// Package caller connects to a playwright-mcp dispatcher and invokes tools.
package caller

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/entrhq/playwright-mcp/pkg/logging"
)

// DefaultServerCommand is the dispatcher binary spawned when no endpoint is given.
const DefaultServerCommand = "playwright-mcp"

// Options selects how to reach the dispatcher. Endpoint wins over ServerPath.
type Options struct {
	// ServerPath is the dispatcher binary to spawn over stdio
	ServerPath string
	ServerArgs []string

	// Endpoint is the URL of a dispatcher serving streamable HTTP
	Endpoint string

	// Stderr receives the spawned dispatcher's stderr; nil discards it
	Stderr io.Writer

	Version string
	Logger  *logging.Logger
}

// Outcome is the text a tool returned and whether it reported failure.
type Outcome struct {
	Text   string
	Failed bool
}

// Caller is a connected MCP client session.
type Caller struct {
	session *mcp.ClientSession
	logger  *logging.Logger
}

// Transport builds the client transport described by opts. A spawned
// dispatcher inherits this process's environment, which is how the
// credentials reach it.
func Transport(opts Options) mcp.Transport {
	if opts.Endpoint != "" {
		return &mcp.StreamableClientTransport{Endpoint: opts.Endpoint}
	}

	path := opts.ServerPath
	if path == "" {
		path = DefaultServerCommand
	}

	cmd := exec.Command(path, opts.ServerArgs...)
	cmd.Env = os.Environ()
	cmd.Stderr = opts.Stderr
	return &mcp.CommandTransport{Command: cmd}
}

// Dial connects to the dispatcher described by opts.
func Dial(ctx context.Context, opts Options) (*Caller, error) {
	return Connect(ctx, Transport(opts), opts)
}

// Connect performs the MCP handshake over transport.
func Connect(ctx context.Context, transport mcp.Transport, opts Options) (*Caller, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewWriterLogger("caller", io.Discard)
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "playwright-mcp-client", Version: version}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to dispatcher: %w", err)
	}

	if info := session.InitializeResult(); info != nil && info.ServerInfo != nil {
		logger.Infof("Connected to %s %s", info.ServerInfo.Name, info.ServerInfo.Version)
	}

	return &Caller{session: session, logger: logger}, nil
}

// Invoke calls a tool once. A tool that fails returns an Outcome with Failed
// set; the error is reserved for transport and protocol problems.
func (c *Caller) Invoke(ctx context.Context, tool string, args map[string]any) (Outcome, error) {
	c.logger.Infof("Invoking %s", tool)

	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		return Outcome{}, fmt.Errorf("call %s: %w", tool, err)
	}

	var parts []string
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}

	outcome := Outcome{Text: strings.Join(parts, "\n"), Failed: res.IsError}
	c.logger.Infof("%s finished (failed=%t)", tool, outcome.Failed)
	return outcome, nil
}

// Tools lists the tool names the dispatcher offers.
func (c *Caller) Tools(ctx context.Context) ([]string, error) {
	var names []string
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		names = append(names, tool.Name)
	}
	return names, nil
}

// Close ends the session. A spawned dispatcher exits when its stdin closes.
func (c *Caller) Close() error {
	return c.session.Close()
}
