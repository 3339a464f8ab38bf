package browser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		wantTitle string
		wantDesc  string
		wantHTML  []string
		wantNot   []string
		truncated bool
	}{
		{
			name: "drops scripts and styles",
			input: `<html>
				<head>
					<title>Sign in to GitHub</title>
					<meta name="description" content="GitHub login">
					<script>window.secret = 1;</script>
					<style>body { color: red; }</style>
				</head>
				<body>
					<h1 id="title">Sign in</h1>
					<p class="lead">Welcome back.</p>
				</body>
			</html>`,
			wantTitle: "Sign in to GitHub",
			wantDesc:  "GitHub login",
			wantHTML:  []string{`<h1 id="title">`, "Sign in", `<p class="lead">`, "Welcome back."},
			wantNot:   []string{"<script", "window.secret", "<style", "color: red"},
		},
		{
			name: "keeps selector attributes",
			input: `<html><body>
				<form action="/session" method="post">
					<input type="text" name="login" id="login_field" autocomplete="off" data-test="user">
					<input type="submit" name="commit" value="Sign in" style="width:100%">
				</form>
			</body></html>`,
			wantHTML: []string{
				`<form action="/session" method="post">`,
				`id="login_field"`,
				`data-test="user"`,
				`name="commit"`,
				`value="Sign in"`,
			},
			wantNot: []string{"autocomplete", "style=", "</input>"},
		},
		{
			name:     "drops comments and svg",
			input:    `<html><body><!-- hidden --><svg><path d="M0"/></svg><span>shown</span></body></html>`,
			wantHTML: []string{"<span>shown</span>"},
			wantNot:  []string{"hidden", "<svg", "<path"},
		},
		{
			name:      "truncates long output",
			input:     `<html><body><p>` + strings.Repeat("word ", 200) + `</p></body></html>`,
			maxLength: 100,
			wantHTML:  []string{"..."},
			truncated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := CleanHTML(tt.input, tt.maxLength)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTitle, page.Title)
			assert.Equal(t, tt.wantDesc, page.Description)
			assert.Equal(t, tt.truncated, page.Truncated)

			for _, want := range tt.wantHTML {
				assert.Contains(t, page.HTML, want)
			}
			for _, notWant := range tt.wantNot {
				assert.NotContains(t, page.HTML, notWant)
			}

			if tt.maxLength > 0 {
				assert.LessOrEqual(t, len(page.HTML), tt.maxLength+len("..."))
			}
		})
	}
}

func TestVisibleText(t *testing.T) {
	input := `<html>
		<head><title>ignored</title><style>p { margin: 0 }</style></head>
		<body>
			<h1>Repositories</h1>
			<ul><li>alpha</li><li>beta   gamma</li></ul>
			<script>console.log("nope")</script>
			<p>Line one<br>Line two</p>
		</body>
	</html>`

	text, err := VisibleText(input)
	require.NoError(t, err)

	assert.Equal(t, "Repositories\nalpha\nbeta gamma\nLine one\nLine two", text)
}

func TestXPathSelector(t *testing.T) {
	assert.Equal(t, "xpath=//input[@id='login_field']", XPathSelector("//input[@id='login_field']"))
	assert.Equal(t, "xpath=//a", XPathSelector("xpath=//a"))
	assert.Equal(t, "xpath=/html/body", XPathSelector("  /html/body "))
}

func TestCleanerWrite_CutsOnRuneBoundary(t *testing.T) {
	c := &cleaner{limit: 4}
	c.write("ab€d")

	assert.Equal(t, "ab...", c.out.String())
	assert.True(t, utf8.ValidString(c.out.String()))
	assert.True(t, c.full)
}

func TestCleanHTML_TruncatesMultiByteText(t *testing.T) {
	page, err := CleanHTML(`<html><body><p>`+strings.Repeat("日本語", 100)+`</p></body></html>`, 50)
	require.NoError(t, err)

	assert.True(t, page.Truncated)
	assert.True(t, utf8.ValidString(page.HTML), "truncated output must stay valid UTF-8")
}
