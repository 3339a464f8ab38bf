package github

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/entrhq/playwright-mcp/pkg/credentials"
	"github.com/entrhq/playwright-mcp/pkg/logging"
	"github.com/entrhq/playwright-mcp/pkg/tools/browser"
)

// Tool names.
const (
	LoginToolName      = "Login-to-Github"
	CreateRepoToolName = "Create-Github-Repo"
)

// LoginSuccessText is returned by the login tool on success.
const LoginSuccessText = "Logged into GitHub successfully."

// ToolOptions configures the GitHub tools.
type ToolOptions struct {
	BaseURL      string
	LoginTimeout time.Duration

	// EnvNames names the credential variables; zero values use the defaults
	EnvNames credentials.EnvNames

	// LookupEnv reads credentials at call time; defaults to os.LookupEnv
	LookupEnv func(string) (string, bool)

	Logger *logging.Logger
}

// Tools exposes the GitHub flows as MCP tools on the shared browser session.
type Tools struct {
	manager *browser.SessionManager
	opts    ToolOptions
	logger  *logging.Logger
}

// NewTools creates the GitHub tools.
func NewTools(manager *browser.SessionManager, opts ToolOptions) *Tools {
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.EnvNames = opts.EnvNames.WithDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewWriterLogger("github", io.Discard)
	}
	return &Tools{manager: manager, opts: opts, logger: logger}
}

// Register adds Login-to-Github and Create-Github-Repo to the server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name: LoginToolName,
		Description: "Logs into GitHub and creates a session. Credentials are read from the " +
			t.opts.EnvNames.Username + " and " + t.opts.EnvNames.Password +
			" environment variables of the server.",
	}, t.login)

	mcp.AddTool(server, &mcp.Tool{
		Name:        CreateRepoToolName,
		Description: "Create a new GitHub repository. Requires a prior successful Login-to-Github.",
	}, t.createRepo)
}

// LoginInput is empty: credentials never travel through the protocol.
type LoginInput struct{}

// CreateRepoInput represents the parameters for Create-Github-Repo.
type CreateRepoInput struct {
	RepoName    string `json:"repo_name" jsonschema:"name of the repository"`
	Private     bool   `json:"private,omitempty" jsonschema:"create a private repository"`
	Description string `json:"description,omitempty" jsonschema:"repository description"`
}

// SignInPage is a Page whose cookies can be dropped before a login attempt.
// *browser.Session implements it.
type SignInPage interface {
	Page
	ClearCookies() error
}

var _ SignInPage = (*browser.Session)(nil)

// login reads the credentials before touching the browser, so a missing
// variable never opens a session.
func (t *Tools) login(ctx context.Context, _ *mcp.CallToolRequest, _ LoginInput) (*mcp.CallToolResult, any, error) {
	creds, err := credentials.Load(t.opts.LookupEnv, t.opts.EnvNames)
	if err != nil {
		t.logger.Errorf("Login failed: %v", err)
		return failure("Login failed: " + err.Error()), nil, nil
	}

	var res *mcp.CallToolResult
	err = t.manager.Do(ctx, func(s *browser.Session) error {
		res = t.attemptLogin(ctx, s, creds)
		return nil
	})
	if err != nil {
		return t.loginFailure(err, creds), nil, nil
	}
	return res, nil, nil
}

// attemptLogin runs one sign-in on page. The account name is not logged; it
// is the username credential.
func (t *Tools) attemptLogin(ctx context.Context, page SignInPage, creds credentials.Credentials) *mcp.CallToolResult {
	t.logger.Infof("Logging into GitHub at %s", t.opts.BaseURL)

	// Every attempt starts signed out; GitHub redirects a live session away from /login.
	if err := page.ClearCookies(); err != nil {
		return t.loginFailure(err, creds)
	}

	if _, err := Login(ctx, page, creds, LoginOptions{BaseURL: t.opts.BaseURL, Timeout: t.opts.LoginTimeout}); err != nil {
		return t.loginFailure(err, creds)
	}

	t.logger.Infof("Login successful")
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: LoginSuccessText}}}
}

func (t *Tools) loginFailure(err error, creds credentials.Credentials) *mcp.CallToolResult {
	msg := redact("Login failed: "+err.Error(), creds.Password)
	t.logger.Errorf("%s", msg)
	return failure(msg)
}

func (t *Tools) createRepo(ctx context.Context, _ *mcp.CallToolRequest, in CreateRepoInput) (*mcp.CallToolResult, any, error) {
	opts := RepoOptions{
		Name:        strings.TrimSpace(in.RepoName),
		Description: in.Description,
		Private:     in.Private,
		BaseURL:     t.opts.BaseURL,
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	t.logger.Infof("Creating repository '%s' (private=%t)", opts.Name, opts.Private)

	var url string
	err := t.manager.Do(ctx, func(s *browser.Session) (err error) {
		url, err = CreateRepository(ctx, s, opts)
		return err
	})
	if err != nil {
		t.logger.Errorf("Failed to create repository '%s': %v", opts.Name, err)
		return nil, nil, fmt.Errorf("failed to create repository '%s': %w", opts.Name, err)
	}

	text := fmt.Sprintf("Repository '%s' created successfully on GitHub at %s", opts.Name, url)
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil, nil
}

func failure(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// redact masks the password should an underlying error ever echo it.
func redact(text string, password credentials.Secret) string {
	if secret := password.Reveal(); secret != "" {
		text = strings.ReplaceAll(text, secret, credentials.RedactedPlaceholder)
	}
	return text
}
