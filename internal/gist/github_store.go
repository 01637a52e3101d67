package gist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// DefaultAPITimeout bounds a single gist API call when the caller sets no deadline
const DefaultAPITimeout = 30 * time.Second

const listPageSize = 100

// ClientOptions configures the authenticated GitHub client
type ClientOptions struct {
	// Username and Secret identify the caller. Both are required.
	Username string
	Secret   string
	// TokenAuth sends Secret as an OAuth2 bearer token instead of using basic auth
	TokenAuth bool
	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise
	BaseURL string
}

// NewGitHubClient creates a GitHub client authenticated with opts.
// The returned client is the only place credentials live.
func NewGitHubClient(ctx context.Context, opts ClientOptions) (*github.Client, error) {
	var httpClient *http.Client
	if opts.TokenAuth {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Secret},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	} else {
		tp := &github.BasicAuthTransport{
			Username: opts.Username,
			Password: opts.Secret,
		}
		httpClient = tp.Client()
	}
	client := github.NewClient(httpClient)

	if opts.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL %s: %w", opts.BaseURL, err)
		}
		client.BaseURL = baseURL
		client.UploadURL = baseURL
	}

	return client, nil
}

// GitHubStore implements Store on top of the GitHub gists API
type GitHubStore struct {
	client  *github.Client
	timeout time.Duration
}

// NewGitHubStore creates a store backed by client.
// A zero timeout falls back to DefaultAPITimeout.
func NewGitHubStore(client *github.Client, timeout time.Duration) *GitHubStore {
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}
	return &GitHubStore{client: client, timeout: timeout}
}

// withTimeout adds the store timeout if ctx has no deadline yet
func (s *GitHubStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListDocuments lists the authenticated user's gists, following every page
func (s *GitHubStore) ListDocuments(ctx context.Context) ([]Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := &github.GistListOptions{
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}

	var docs []Document
	for {
		gists, resp, err := s.client.Gists.List(ctx, "", opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list gists: %w", err)
		}
		for _, g := range gists {
			docs = append(docs, toDocument(g))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return docs, nil
}

// CreateDocument creates a secret gist holding filename
func (s *GitHubStore) CreateDocument(ctx context.Context, filename, content string) (*Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	g := singleFileGist(filename, content)
	g.Public = github.Bool(false)
	created, _, err := s.client.Gists.Create(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to create gist: %w", err)
	}
	doc := toDocument(created)
	return &doc, nil
}

// UpdateDocument overwrites filename in the gist id, leaving its other files alone
func (s *GitHubStore) UpdateDocument(ctx context.Context, id, filename, content string) (*Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	updated, _, err := s.client.Gists.Edit(ctx, id, singleFileGist(filename, content))
	if err != nil {
		return nil, fmt.Errorf("failed to update gist %s: %w", id, err)
	}
	doc := toDocument(updated)
	return &doc, nil
}

func singleFileGist(filename, content string) *github.Gist {
	return &github.Gist{
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(filename): {
				Filename: github.String(filename),
				Content:  github.String(content),
			},
		},
	}
}

func toDocument(g *github.Gist) Document {
	doc := Document{
		ID:    g.GetID(),
		URL:   g.GetHTMLURL(),
		Files: make(map[string]File, len(g.Files)),
	}
	for name, f := range g.Files {
		doc.Files[string(name)] = File{
			Filename: string(name),
			Size:     f.GetSize(),
			RawURL:   f.GetRawURL(),
		}
	}
	return doc
}
