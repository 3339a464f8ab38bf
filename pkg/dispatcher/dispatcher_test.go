package dispatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/playwright-mcp/pkg/config"
)

func noEnv(string) (string, bool) { return "", false }

func connect(t *testing.T, d *Dispatcher) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := d.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "dispatcher-test", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func TestNew_RegistersLoginTool(t *testing.T) {
	d, err := New(Options{LookupEnv: noEnv})
	require.NoError(t, err)

	session := connect(t, d)
	res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "Login-to-Github")
	assert.Contains(t, names, "Create-Github-Repo")
	assert.Contains(t, names, "Browser-Navigate")

	assert.Equal(t, "playwright-mcp", session.InitializeResult().ServerInfo.Name)
}

func TestLogin_MissingEnvFailsBeforeBrowser(t *testing.T) {
	d, err := New(Options{LookupEnv: noEnv})
	require.NoError(t, err)

	session := connect(t, d)
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "Login-to-Github"})
	require.NoError(t, err)

	assert.True(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "Login failed:")
	assert.Contains(t, text, "GITHUB_USERNAME")
	assert.False(t, d.Manager().HasSession(), "no browser session may be opened without credentials")
}

func TestLogin_RepeatedFailureIsStable(t *testing.T) {
	d, err := New(Options{LookupEnv: noEnv})
	require.NoError(t, err)

	session := connect(t, d)

	var texts []string
	for i := 0; i < 2; i++ {
		res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "Login-to-Github"})
		require.NoError(t, err)
		require.True(t, res.IsError)
		texts = append(texts, res.Content[0].(*mcp.TextContent).Text)
	}
	assert.Equal(t, texts[0], texts[1])
}

func TestNew_UsesConfiguredEnvNames(t *testing.T) {
	cfg := config.Default()
	cfg.GitHub.UsernameEnv = "BOT_USER"
	cfg.GitHub.PasswordEnv = "BOT_TOKEN"

	d, err := New(Options{Config: cfg, LookupEnv: noEnv})
	require.NoError(t, err)

	session := connect(t, d)
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "Login-to-Github"})
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "BOT_USER, BOT_TOKEN")
}

func TestNew_Errors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Browser.Type = "netscape"

		_, err := New(Options{Config: cfg})
		require.Error(t, err)
	})

	t.Run("invalid navigation pattern", func(t *testing.T) {
		cfg := config.Default()
		cfg.Navigation.AllowedPatterns = []string{"https://[github.com"}

		_, err := New(Options{Config: cfg})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid navigation policy")
	})

	t.Run("output directory under a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "not-a-dir")
		require.NoError(t, os.WriteFile(file, nil, 0o600))

		cfg := config.Default()
		cfg.Browser.OutputDir = filepath.Join(file, "captures")

		_, err := New(Options{Config: cfg})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output directory")
	})
}

func TestCapture_ConfinedToOutputDir(t *testing.T) {
	cfg := config.Default()
	cfg.Browser.OutputDir = t.TempDir()

	d, err := New(Options{Config: cfg, LookupEnv: noEnv})
	require.NoError(t, err)

	session := connect(t, d)
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "Save-Page-As-HTML",
		Arguments: map[string]any{"file_path": "/etc/page.html"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.False(t, d.Manager().HasSession())
}

func TestClose_WithoutSession(t *testing.T) {
	d, err := New(Options{})
	require.NoError(t, err)
	assert.NoError(t, d.Close())
}
