// Package gist finds, creates and updates the GitHub gists that hold audit reports.
package gist

import (
	"context"
)

// File is one file of a remote document
type File struct {
	Filename string
	Size     int
	RawURL   string
}

// Document is a remote multi-file document such as a gist.
// This is a simplified struct to avoid coupling to go-github library
type Document struct {
	ID    string
	URL   string
	Files map[string]File
}

// HasFile reports whether the document contains filename
func (d Document) HasFile(filename string) bool {
	_, ok := d.Files[filename]
	return ok
}

// Store is an interface for remote document interactions
type Store interface {
	// ListDocuments returns every document visible to the authenticated caller
	ListDocuments(ctx context.Context) ([]Document, error)

	// CreateDocument creates a new document holding a single file
	CreateDocument(ctx context.Context, filename, content string) (*Document, error)

	// UpdateDocument replaces the content of one file of an existing document
	UpdateDocument(ctx context.Context, id, filename, content string) (*Document, error)
}
