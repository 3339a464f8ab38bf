package github

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/playwright-mcp/pkg/credentials"
	"github.com/entrhq/playwright-mcp/pkg/logging"
	"github.com/entrhq/playwright-mcp/pkg/tools/browser"
)

func serveTools(t *testing.T, tools *Tools) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "github-test", Version: "v0.0.1"}, nil)
	tools.Register(server)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "github-test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func envLookup(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := vars[name]
		return value, ok
	}
}

func TestLoginTool_MissingCredentialsOpensNoSession(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		missing string
	}{
		{"both missing", map[string]string{}, "GITHUB_USERNAME, GITHUB_PASSWORD"},
		{"password missing", map[string]string{"GITHUB_USERNAME": "octocat"}, "GITHUB_PASSWORD"},
		{"blank username", map[string]string{"GITHUB_USERNAME": " ", "GITHUB_PASSWORD": "pw"}, "GITHUB_USERNAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := browser.NewSessionManager(browser.ManagerOptions{SkipInstall: true})
			session := serveTools(t, NewTools(manager, ToolOptions{LookupEnv: envLookup(tt.env)}))

			res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: LoginToolName})
			require.NoError(t, err)

			assert.True(t, res.IsError)
			require.Len(t, res.Content, 1)
			text := res.Content[0].(*mcp.TextContent).Text
			assert.Equal(t, "Login failed: missing required environment variable(s): "+tt.missing, text)
			assert.False(t, manager.HasSession())
		})
	}
}

func TestLoginTool_CustomEnvNames(t *testing.T) {
	manager := browser.NewSessionManager(browser.ManagerOptions{SkipInstall: true})
	tools := NewTools(manager, ToolOptions{
		EnvNames:  credentials.EnvNames{Username: "GH_USER", Password: "GH_PASS"},
		LookupEnv: envLookup(map[string]string{"GITHUB_USERNAME": "octocat", "GITHUB_PASSWORD": "pw"}),
	})
	session := serveTools(t, tools)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: LoginToolName})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "GH_USER, GH_PASS")
}

func TestRegister_LoginTakesNoArguments(t *testing.T) {
	manager := browser.NewSessionManager(browser.ManagerOptions{SkipInstall: true})
	session := serveTools(t, NewTools(manager, ToolOptions{}))

	res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	byName := map[string]*mcp.Tool{}
	for _, tool := range res.Tools {
		byName[tool.Name] = tool
	}
	require.Contains(t, byName, LoginToolName)
	require.Contains(t, byName, CreateRepoToolName)
	assert.Contains(t, byName[LoginToolName].Description, "GITHUB_USERNAME")
}

func TestCreateRepoTool_RejectsInvalidName(t *testing.T) {
	manager := browser.NewSessionManager(browser.ManagerOptions{SkipInstall: true})
	session := serveTools(t, NewTools(manager, ToolOptions{}))

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      CreateRepoToolName,
		Arguments: map[string]any{"repo_name": "not valid"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "invalid repository name")
	assert.False(t, manager.HasSession())
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "fill failed near ***REDACTED***", redact("fill failed near hunter22", credentials.Secret("hunter22")))
	assert.Equal(t, "unchanged", redact("unchanged", credentials.Secret("")))
}

// cookiePage adds cookie clearing to the recording fake page.
type cookiePage struct {
	*fakePage
	clearErr error
}

func (p *cookiePage) ClearCookies() error {
	p.steps = append(p.steps, "clear-cookies")
	return p.clearErr
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestAttemptLogin_Success(t *testing.T) {
	var logs bytes.Buffer
	tools := NewTools(nil, ToolOptions{Logger: logging.NewWriterLogger("github", &logs)})
	page := &cookiePage{fakePage: signedInPage()}

	res := tools.attemptLogin(context.Background(), page, testCredentials())

	assert.False(t, res.IsError)
	assert.Equal(t, LoginSuccessText, resultText(t, res))
	assert.Equal(t, []string{
		"clear-cookies",
		"navigate https://github.com/login",
		"wait #login_field",
		"fill #login_field (7 chars)",
		"fill #password (8 chars)",
		`click input[type="submit"][name="commit"]`,
		"wait-url https://github.com/ 15000",
		`attr meta[name="user-login"] content`,
	}, page.steps)

	assert.Contains(t, logs.String(), "Login successful")
	assert.NotContains(t, logs.String(), "octocat", "the account name is the username and must not be logged")
	assert.NotContains(t, logs.String(), "hunter22")
}

func TestAttemptLogin_StepFailureIsOneRedactedResult(t *testing.T) {
	var logs bytes.Buffer
	tools := NewTools(nil, ToolOptions{Logger: logging.NewWriterLogger("github", &logs)})
	page := &cookiePage{fakePage: signedInPage()}
	page.failClick[`input[type="submit"][name="commit"]`] = errors.New("element detached near hunter22")

	res := tools.attemptLogin(context.Background(), page, testCredentials())

	assert.True(t, res.IsError)
	assert.Equal(t, "Login failed: submit: element detached near ***REDACTED***", resultText(t, res))
	assert.NotContains(t, logs.String(), "hunter22")
	assert.NotContains(t, logs.String(), "octocat")
}

func TestAttemptLogin_ClearCookiesFailureStopsBeforeLogin(t *testing.T) {
	tools := NewTools(nil, ToolOptions{})
	page := &cookiePage{fakePage: signedInPage(), clearErr: errors.New("clear cookies failed: context closed")}

	res := tools.attemptLogin(context.Background(), page, testCredentials())

	assert.True(t, res.IsError)
	assert.Equal(t, "Login failed: clear cookies failed: context closed", resultText(t, res))
	assert.Equal(t, []string{"clear-cookies"}, page.steps)
}

func TestAttemptLogin_RepeatedCallsStartSignedOut(t *testing.T) {
	tools := NewTools(nil, ToolOptions{})
	page := &cookiePage{fakePage: signedInPage()}

	for i := 0; i < 2; i++ {
		res := tools.attemptLogin(context.Background(), page, testCredentials())
		require.False(t, res.IsError)
	}

	var clears []int
	for i, step := range page.steps {
		if step == "clear-cookies" {
			clears = append(clears, i)
		}
	}
	assert.Equal(t, []int{0, len(page.steps) / 2}, clears)
}
