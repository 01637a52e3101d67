package gist

import (
	"context"
	"log/slog"

	gaerrors "gistaudit.dev/gistaudit/internal/errors"
)

// ResultKind is the outcome of a publish
type ResultKind int

const (
	// Failed means the create or update request did not succeed
	Failed ResultKind = iota
	// Created means a new document was created
	Created
	// Updated means an existing document was overwritten in place
	Updated
)

func (k ResultKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "failed"
	}
}

// PublishResult describes what a publish did
type PublishResult struct {
	Kind       ResultKind
	FileName   string
	DocumentID string
	URL        string
	// DryRun is set when no request was sent; Kind is what would have happened
	DryRun bool
	Err    error
}

// OK reports whether the publish succeeded
func (r PublishResult) OK() bool {
	return r.Kind != Failed
}

// Publisher creates or updates the document owning an audit file
type Publisher struct {
	store  Store
	logger *slog.Logger
	dryRun bool
}

// NewPublisher creates a publisher writing to store.
// With dryRun set no request is sent to the store.
func NewPublisher(store Store, logger *slog.Logger, dryRun bool) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger, dryRun: dryRun}
}

// Publish writes content to filename. It updates owner when one is given and
// creates a new document otherwise, issuing exactly one request either way.
// It never retries.
func (p *Publisher) Publish(ctx context.Context, owner *Document, filename, content string) PublishResult {
	if owner != nil {
		return p.update(ctx, owner, filename, content)
	}
	return p.create(ctx, filename, content)
}

func (p *Publisher) update(ctx context.Context, owner *Document, filename, content string) PublishResult {
	result := PublishResult{Kind: Updated, FileName: filename, DocumentID: owner.ID, URL: owner.URL}
	if p.dryRun {
		p.logger.Info("dry run: skipping gist update", "gist", owner.ID, "file", filename)
		result.DryRun = true
		return result
	}

	p.logger.Debug("updating gist", "gist", owner.ID, "file", filename, "bytes", len(content))
	doc, err := p.store.UpdateDocument(ctx, owner.ID, filename, content)
	if err != nil {
		return failed(filename, owner.ID, err)
	}
	result.DocumentID = doc.ID
	result.URL = doc.URL
	return result
}

func (p *Publisher) create(ctx context.Context, filename, content string) PublishResult {
	result := PublishResult{Kind: Created, FileName: filename}
	if p.dryRun {
		p.logger.Info("dry run: skipping gist creation", "file", filename)
		result.DryRun = true
		return result
	}

	p.logger.Debug("creating gist", "file", filename, "bytes", len(content))
	doc, err := p.store.CreateDocument(ctx, filename, content)
	if err != nil {
		return failed(filename, "", err)
	}
	result.DocumentID = doc.ID
	result.URL = doc.URL
	return result
}

func failed(filename, id string, err error) PublishResult {
	return PublishResult{
		Kind:       Failed,
		FileName:   filename,
		DocumentID: id,
		Err:        gaerrors.NewPublishError(err),
	}
}
