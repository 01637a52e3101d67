package testhelpers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGistServerConfig configures the behavior of a mock GitHub gists server
type MockGistServerConfig struct {
	// Gists is the caller's gist collection in listing order
	Gists []*github.Gist
	// ErrorResponses maps "METHOD path" (e.g. "PATCH /gists/abc") to a status code
	ErrorResponses map[string]int
	// PerPage caps the page size the server honours, to exercise pagination
	PerPage int

	// Requests counts handled requests by "METHOD path"
	Requests map[string]int
	// Created stores gists that were created (for testing)
	Created []*github.Gist
	// Updated stores the last edit payload per gist ID (for testing)
	Updated map[string]*github.Gist

	mu     sync.Mutex
	nextID int
	server *httptest.Server
}

// NewMockGistServerConfig creates a new mock server config with defaults
func NewMockGistServerConfig() *MockGistServerConfig {
	return &MockGistServerConfig{
		ErrorResponses: make(map[string]int),
		Requests:       make(map[string]int),
		Updated:        make(map[string]*github.Gist),
		nextID:         1,
	}
}

// RequestCount returns how many requests matched "METHOD path"
func (c *MockGistServerConfig) RequestCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Requests[key]
}

// MutationCount returns the number of create and update requests handled
func (c *MockGistServerConfig) MutationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for key, n := range c.Requests {
		if strings.HasPrefix(key, http.MethodPost+" ") || strings.HasPrefix(key, http.MethodPatch+" ") {
			total += n
		}
	}
	return total
}

// GistsWithFile returns the stored gists that contain filename
func (c *MockGistServerConfig) GistsWithFile(filename string) []*github.Gist {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*github.Gist
	for _, g := range c.Gists {
		if _, ok := g.Files[github.GistFilename(filename)]; ok {
			out = append(out, g)
		}
	}
	return out
}

// NewMockGistServer creates an httptest server that mocks the GitHub gists endpoints
func NewMockGistServer(t *testing.T, config *MockGistServerConfig) *httptest.Server {
	if config == nil {
		config = NewMockGistServerConfig()
	}

	mux := http.NewServeMux()
	handler := func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()

		key := r.Method + " " + r.URL.Path
		config.Requests[key]++

		if status, ok := config.ErrorResponses[key]; ok {
			writeJSON(w, status, map[string]interface{}{"message": http.StatusText(status)})
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/gists")
		id = strings.Trim(id, "/")

		switch {
		case id == "" && r.Method == http.MethodGet:
			config.listGists(w, r)
		case id == "" && r.Method == http.MethodPost:
			config.createGist(w, r)
		case id != "" && r.Method == http.MethodPatch:
			config.editGist(w, r, id)
		default:
			http.Error(w, fmt.Sprintf("Unhandled path: %s (method: %s)", r.URL.Path, r.Method), http.StatusNotFound)
		}
	}

	mux.HandleFunc("/gists", handler)
	mux.HandleFunc("/gists/", handler)

	server := httptest.NewServer(mux)
	config.server = server
	t.Cleanup(func() { server.Close() })
	return server
}

// NewMockGistClient creates a GitHub client configured to use a mock gists server
func NewMockGistClient(t *testing.T, config *MockGistServerConfig) *github.Client {
	server := NewMockGistServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL
	return client
}

func (c *MockGistServerConfig) listGists(w http.ResponseWriter, r *http.Request) {
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage <= 0 {
		perPage = 30
	}
	if c.PerPage > 0 && perPage > c.PerPage {
		perPage = c.PerPage
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * perPage
	if start > len(c.Gists) {
		start = len(c.Gists)
	}
	end := start + perPage
	if end > len(c.Gists) {
		end = len(c.Gists)
	}

	if end < len(c.Gists) {
		next := *r.URL
		q := next.Query()
		q.Set("page", strconv.Itoa(page+1))
		q.Set("per_page", strconv.Itoa(perPage))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<%s%s>; rel="next"`, c.server.URL, next.RequestURI()))
	}

	listed := make([]*github.Gist, 0, end-start)
	for _, g := range c.Gists[start:end] {
		listed = append(listed, withoutContent(g))
	}
	writeJSON(w, http.StatusOK, listed)
}

func (c *MockGistServerConfig) createGist(w http.ResponseWriter, r *http.Request) {
	var payload github.Gist
	if !decodeBody(w, r, &payload) {
		return
	}

	id := fmt.Sprintf("gist%d", c.nextID)
	c.nextID++

	g := &github.Gist{
		ID:      github.String(id),
		HTMLURL: github.String(c.server.URL + "/gist/" + id),
		Public:  github.Bool(payload.GetPublic()),
		Files:   make(map[github.GistFilename]github.GistFile, len(payload.Files)),
	}
	for name, f := range payload.Files {
		g.Files[name] = storedFile(name, f)
	}

	c.Gists = append(c.Gists, g)
	c.Created = append(c.Created, &payload)
	writeJSON(w, http.StatusCreated, g)
}

func (c *MockGistServerConfig) editGist(w http.ResponseWriter, r *http.Request, id string) {
	var g *github.Gist
	for _, existing := range c.Gists {
		if existing.GetID() == id {
			g = existing
			break
		}
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "Not Found"})
		return
	}

	var payload github.Gist
	if !decodeBody(w, r, &payload) {
		return
	}

	if g.Files == nil {
		g.Files = make(map[github.GistFilename]github.GistFile)
	}
	for name, f := range payload.Files {
		g.Files[name] = storedFile(name, f)
	}

	c.Updated[id] = &payload
	writeJSON(w, http.StatusOK, g)
}

func storedFile(name github.GistFilename, f github.GistFile) github.GistFile {
	content := f.GetContent()
	return github.GistFile{
		Filename: github.String(string(name)),
		Content:  github.String(content),
		Size:     github.Int(len(content)),
		RawURL:   github.String("https://gist.example.com/raw/" + string(name)),
	}
}

// withoutContent mirrors the list endpoint, which omits file contents
func withoutContent(g *github.Gist) *github.Gist {
	listed := *g
	listed.Files = make(map[github.GistFilename]github.GistFile, len(g.Files))
	for name, f := range g.Files {
		f.Content = nil
		listed.Files[name] = f
	}
	return &listed
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	bodyBytes, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(bodyBytes, v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v (body: %s)", err, string(bodyBytes)), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
