package gist_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/require"

	"gistaudit.dev/gistaudit/internal/gist"
	"gistaudit.dev/gistaudit/testhelpers"
)

func TestGitHubStoreListDocuments(t *testing.T) {
	t.Run("follows every page", func(t *testing.T) {
		config := testhelpers.NewMockGistServerConfig()
		config.PerPage = 2
		for i := 0; i < 5; i++ {
			config.Gists = append(config.Gists, testhelpers.NewSampleGist(testhelpers.SampleGistData{
				ID:    fmt.Sprintf("g%d", i),
				Files: map[string]string{fmt.Sprintf("file-%d.md", i): "x"},
			}))
		}
		store := gist.NewGitHubStore(testhelpers.NewMockGistClient(t, config), 0)

		docs, err := store.ListDocuments(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"g0", "g1", "g2", "g3", "g4"}, gist.IDs(docs))
		require.True(t, docs[4].HasFile("file-4.md"))
		require.Equal(t, 3, config.RequestCount("GET /gists"))
	})

	t.Run("empty collection", func(t *testing.T) {
		config := testhelpers.NewMockGistServerConfig()
		store := gist.NewGitHubStore(testhelpers.NewMockGistClient(t, config), 0)

		docs, err := store.ListDocuments(context.Background())
		require.NoError(t, err)
		require.Empty(t, docs)
	})

	t.Run("server error", func(t *testing.T) {
		config := testhelpers.NewMockGistServerConfig()
		config.ErrorResponses["GET /gists"] = http.StatusInternalServerError
		store := gist.NewGitHubStore(testhelpers.NewMockGistClient(t, config), 0)

		_, err := store.ListDocuments(context.Background())
		require.ErrorContains(t, err, "failed to list gists")
	})
}

func TestGitHubStoreCreateAndUpdate(t *testing.T) {
	config := testhelpers.NewMockGistServerConfig()
	config.Gists = []*github.Gist{testhelpers.NewSampleGist(testhelpers.SampleGistData{
		ID:    "keep",
		Files: map[string]string{"notes.md": "hello"},
	})}
	store := gist.NewGitHubStore(testhelpers.NewMockGistClient(t, config), 0)

	created, err := store.CreateDocument(context.Background(), "audit-v10.md", "first")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.URL)
	require.True(t, created.HasFile("audit-v10.md"))
	require.Len(t, config.Created, 1)
	require.False(t, config.Created[0].GetPublic())

	updated, err := store.UpdateDocument(context.Background(), created.ID, "audit-v10.md", "second")
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.URL, updated.URL)

	owners := config.GistsWithFile("audit-v10.md")
	require.Len(t, owners, 1)
	require.Equal(t, "second", testhelpers.GistContent(owners[0], "audit-v10.md"))

	t.Run("updating a missing gist fails", func(t *testing.T) {
		_, err := store.UpdateDocument(context.Background(), "nope", "audit-v10.md", "x")
		require.ErrorContains(t, err, "failed to update gist nope")
	})
}

func TestPublishTwiceConverges(t *testing.T) {
	config := testhelpers.NewMockGistServerConfig()
	store := gist.NewGitHubStore(testhelpers.NewMockGistClient(t, config), 0)
	p := gist.NewPublisher(store, nil, false)
	ctx := context.Background()

	publish := func(content string) gist.PublishResult {
		docs, err := store.ListDocuments(ctx)
		require.NoError(t, err)
		owner, _ := gist.FindOwner(docs, "audit-v11.md")
		return p.Publish(ctx, owner, "audit-v11.md", content)
	}

	first := publish("one")
	require.Equal(t, gist.Created, first.Kind)

	second := publish("two")
	require.Equal(t, gist.Updated, second.Kind)
	require.Equal(t, first.DocumentID, second.DocumentID)

	owners := config.GistsWithFile("audit-v11.md")
	require.Len(t, owners, 1)
	require.Equal(t, "two", testhelpers.GistContent(owners[0], "audit-v11.md"))
}

func TestNewGitHubClient(t *testing.T) {
	var gotUser, gotPass, gotAuth string
	var gotBasic bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotBasic = r.BasicAuth()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]*github.Gist{})
	}))
	t.Cleanup(server.Close)

	t.Run("basic auth", func(t *testing.T) {
		client, err := gist.NewGitHubClient(context.Background(), gist.ClientOptions{
			Username: "octocat",
			Secret:   "hunter2",
			BaseURL:  server.URL,
		})
		require.NoError(t, err)

		_, err = gist.NewGitHubStore(client, 0).ListDocuments(context.Background())
		require.NoError(t, err)
		require.True(t, gotBasic)
		require.Equal(t, "octocat", gotUser)
		require.Equal(t, "hunter2", gotPass)
	})

	t.Run("token auth", func(t *testing.T) {
		client, err := gist.NewGitHubClient(context.Background(), gist.ClientOptions{
			Username:  "octocat",
			Secret:    "ghp_token",
			TokenAuth: true,
			BaseURL:   server.URL + "/",
		})
		require.NoError(t, err)

		_, err = gist.NewGitHubStore(client, 0).ListDocuments(context.Background())
		require.NoError(t, err)
		require.Equal(t, "Bearer ghp_token", gotAuth)
	})

	t.Run("invalid base URL", func(t *testing.T) {
		_, err := gist.NewGitHubClient(context.Background(), gist.ClientOptions{
			Username: "octocat",
			Secret:   "x",
			BaseURL:  "://bad",
		})
		require.Error(t, err)
	})
}
