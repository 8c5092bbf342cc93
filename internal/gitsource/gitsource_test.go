package gitsource

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPath(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{name: "https", url: "https://github.com/conorfennell/cards.git", expected: filepath.Join("/srv/repos", "github.com", "conorfennell", "cards")},
		{name: "https without suffix", url: "https://gitlab.com/team/notes", expected: filepath.Join("/srv/repos", "gitlab.com", "team", "notes")},
		{name: "scp style", url: "git@github.com:conorfennell/cards.git", expected: filepath.Join("/srv/repos", "github.com", "conorfennell", "cards")},
		{name: "plain path", url: "/home/me/cards", wantErr: true},
		{name: "host only", url: "https://github.com", wantErr: true},
		{name: "https escaping base", url: "https://example.com/../../../home/user/project.git", wantErr: true},
		{name: "scp escaping base", url: "git@example.com:../../../etc/x.git", wantErr: true},
		{name: "https resolving to base", url: "https://example.com/..", wantErr: true},
		{name: "dot segments staying inside", url: "https://example.com/a/../b.git", expected: filepath.Join("/srv/repos", "example.com", "b")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LocalPath("/srv/repos", tc.url)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://github.com/a/b"))
	assert.True(t, IsURL("git@github.com:a/b.git"))
	assert.True(t, IsURL("/srv/cards.git"))
	assert.False(t, IsURL("./cards"))
	assert.False(t, IsURL("/home/me/notes"))
}

// newOriginRepo creates a local repository with one committed card file.
func newOriginRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cards.md"), []byte("Q: Ping?\nA: Pong\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("cards.md")
	require.NoError(t, err)
	_, err = wt.Commit("add cards", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	require.NoError(t, err)
	return dir
}

func TestSyncClonesThenPulls(t *testing.T) {
	ctx := context.Background()
	origin := newOriginRepo(t)
	checkout := filepath.Join(t.TempDir(), "checkout")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil)).With("deck_id", "d1")

	require.NoError(t, Sync(ctx, logger, origin, checkout, nil))
	data, err := os.ReadFile(filepath.Join(checkout, "cards.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Q: Ping?")

	// Second run pulls and finds nothing new.
	require.NoError(t, Sync(ctx, logger, origin, checkout, nil))

	assert.Contains(t, logs.String(), "Cloning repository")
	assert.Contains(t, logs.String(), "Pulling latest changes")
	assert.Contains(t, logs.String(), "deck_id=d1")
}
