package github

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		repo    string
		wantErr string
	}{
		{"valid", "playwright-mcp", ""},
		{"dots and underscores", "my_repo.v2", ""},
		{"empty", "", "repository name is required"},
		{"spaces", "my repo", "invalid repository name"},
		{"slash", "owner/repo", "invalid repository name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RepoOptions{Name: tt.repo}.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateRepository_Success(t *testing.T) {
	page := newFakePage()
	page.finalURL = "https://github.com/octocat/hello-world"

	url, err := CreateRepository(context.Background(), page, RepoOptions{
		Name:        "hello-world",
		Description: "first repo",
		Private:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/octocat/hello-world", url)

	assert.Equal(t, []string{
		"navigate https://github.com/new",
		"wait #repository-name-input",
		"fill #repository-name-input (11 chars)",
		"fill #repository-description-input (10 chars)",
		`click input[type="radio"][value="private"]`,
		"wait #RepoNameInput-is-available",
		`click button[type="submit"]:has-text("Create repository")`,
		"wait #repo-title-component strong a",
	}, page.steps)
}

func TestCreateRepository_SkipsOptionalSteps(t *testing.T) {
	page := newFakePage()
	page.finalURL = "https://github.com/octocat/plain"

	_, err := CreateRepository(context.Background(), page, RepoOptions{Name: "plain"})
	require.NoError(t, err)

	assert.NotContains(t, page.steps, "fill #repository-description-input (0 chars)")
	assert.NotContains(t, page.steps, `click input[type="radio"][value="private"]`)
}

func TestCreateRepository_NameUnavailable(t *testing.T) {
	page := newFakePage()
	page.failWait["#RepoNameInput-is-available"] = errors.New("timeout")
	page.texts["#RepoNameInput-check"] = "The repository hello-world already exists on this account."

	_, err := CreateRepository(context.Background(), page, RepoOptions{Name: "hello-world"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNameUnavailable)
	assert.Contains(t, err.Error(), "already exists")
	assert.NotContains(t, page.steps, `click button[type="submit"]:has-text("Create repository")`)
}

func TestCreateRepository_UnexpectedURL(t *testing.T) {
	page := newFakePage()
	page.finalURL = "https://github.com/new"

	_, err := CreateRepository(context.Background(), page, RepoOptions{Name: "hello-world"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected URL")
}

func TestCreateRepository_InvalidNameTouchesNothing(t *testing.T) {
	page := newFakePage()

	_, err := CreateRepository(context.Background(), page, RepoOptions{Name: "bad name"})
	require.Error(t, err)
	assert.Empty(t, page.steps)
}
