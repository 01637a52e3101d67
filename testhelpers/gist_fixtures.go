package testhelpers

import (
	"github.com/google/go-github/v62/github"
)

// SampleGistData provides common gist data for testing
type SampleGistData struct {
	ID      string
	HTMLURL string
	// Files maps filename to content
	Files map[string]string
}

// NewSampleGist creates a github.Gist from sample data
func NewSampleGist(data SampleGistData) *github.Gist {
	htmlURL := data.HTMLURL
	if htmlURL == "" {
		htmlURL = "https://gist.github.com/" + data.ID
	}

	g := &github.Gist{
		ID:      github.String(data.ID),
		HTMLURL: github.String(htmlURL),
		Public:  github.Bool(false),
		Files:   make(map[github.GistFilename]github.GistFile, len(data.Files)),
	}
	for name, content := range data.Files {
		g.Files[github.GistFilename(name)] = github.GistFile{
			Filename: github.String(name),
			Content:  github.String(content),
			Size:     github.Int(len(content)),
		}
	}
	return g
}

// GistContent returns the content stored for filename, or "" if absent
func GistContent(g *github.Gist, filename string) string {
	f, ok := g.Files[github.GistFilename(filename)]
	if !ok {
		return ""
	}
	return f.GetContent()
}
