// Package sync drives one audit run: resolve the comparison branch, generate
// the report, find the gist that owns the audit file and publish to it.
package sync

import (
	"context"
	"log/slog"
	"time"

	"gistaudit.dev/gistaudit/internal/audit"
	gaerrors "gistaudit.dev/gistaudit/internal/errors"
	"gistaudit.dev/gistaudit/internal/gist"
)

// Options configures an Orchestrator
type Options struct {
	// DryRun generates the report and matches, but publishes nothing
	DryRun bool
	// FirstMatch picks the first owner in listing order when several gists
	// hold the audit file, instead of failing
	FirstMatch bool
	// ReportTimeout bounds report generation; zero means no extra bound
	ReportTimeout time.Duration
	// OnTransition, if set, is called on every state change
	OnTransition func(State)
}

// Orchestrator runs audit syncs. It keeps no state between calls, so one
// Orchestrator may serve concurrent Sync calls for different branches.
type Orchestrator struct {
	provider  audit.Provider
	store     gist.Store
	publisher *gist.Publisher
	logger    *slog.Logger
	opts      Options
}

// NewOrchestrator creates an orchestrator using provider for reports and store for publishing
func NewOrchestrator(provider audit.Provider, store gist.Store, logger *slog.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		provider:  provider,
		store:     store,
		publisher: gist.NewPublisher(store, logger, opts.DryRun),
		logger:    logger,
		opts:      opts,
	}
}

// Sync publishes a fresh audit report for branch. Every failure is returned
// as an error and as a Failed result; nothing is retried.
func (o *Orchestrator) Sync(ctx context.Context, branch string) (gist.PublishResult, error) {
	o.transition(Start, branch)

	o.transition(ResolvingBranch, branch)
	target, err := audit.ComparisonTarget(branch)
	if err != nil {
		return o.fail(branch, "", err)
	}
	opts := audit.NewFilterOptions(branch)
	filename := audit.FileName(branch)

	o.transition(FetchingReport, branch)
	report, err := o.fetchReport(ctx, branch, target, opts)
	if err != nil {
		return o.fail(branch, filename, gaerrors.NewReportGenerationError(err))
	}

	o.transition(ListingDocuments, branch)
	docs, err := o.store.ListDocuments(ctx)
	if err != nil {
		return o.fail(branch, filename, gaerrors.NewListingError(err))
	}
	o.logger.Debug("listed gists", "count", len(docs))

	o.transition(Matching, branch)
	owner, err := o.match(docs, filename)
	if err != nil {
		return o.fail(branch, filename, err)
	}

	o.transition(Publishing, branch)
	result := o.publisher.Publish(ctx, owner, filename, report)

	// Done wraps publish failures too; only earlier steps end in Failed.
	o.transition(Done, branch)
	if !result.OK() {
		return result, result.Err
	}
	o.logger.Debug("published audit", "branch", branch, "file", filename, "result", result.Kind.String(), "url", result.URL)
	return result, nil
}

func (o *Orchestrator) fetchReport(ctx context.Context, branch, target string, opts audit.FilterOptions) (string, error) {
	if o.opts.ReportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.ReportTimeout)
		defer cancel()
	}

	branchA := audit.StagingBranch(branch)
	branchB := audit.UpstreamBranch(target)
	o.logger.Debug("generating audit report", "from", branchA, "against", branchB, "exclude", opts.ExcludeLabels)

	start := time.Now()
	report, err := o.provider.Report(ctx, branchA, branchB, opts)
	if err != nil {
		return "", err
	}
	o.logger.Debug("generated audit report", "bytes", len(report), "took", time.Since(start).Round(time.Millisecond))
	return report, nil
}

// match returns the owner of filename, or nil when none exists yet
func (o *Orchestrator) match(docs []gist.Document, filename string) (*gist.Document, error) {
	owners := gist.Owners(docs, filename)
	if len(owners) > 1 {
		ids := gist.IDs(owners)
		if !o.opts.FirstMatch {
			return nil, gaerrors.NewAmbiguousOwnerError(filename, ids)
		}
		o.logger.Warn("several gists hold the audit file, using the first", "file", filename, "gists", ids)
	}

	owner, ok := gist.FindOwner(docs, filename)
	if !ok {
		o.logger.Debug("no gist holds the audit file", "file", filename)
		return nil, nil
	}
	o.logger.Debug("found owning gist", "file", filename, "gist", owner.ID)
	return owner, nil
}

func (o *Orchestrator) fail(branch, filename string, err error) (gist.PublishResult, error) {
	o.transition(Failed, branch)
	return gist.PublishResult{Kind: gist.Failed, FileName: filename, Err: err}, err
}

func (o *Orchestrator) transition(s State, branch string) {
	o.logger.Debug("sync state", "branch", branch, "state", s.String())
	if o.opts.OnTransition != nil {
		o.opts.OnTransition(s)
	}
}
