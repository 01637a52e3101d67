package audit

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	gaerrors "gistaudit.dev/gistaudit/internal/errors"
)

// DefaultReportTimeout bounds report generation when the caller sets no deadline
const DefaultReportTimeout = 10 * time.Minute

// DefaultBranchDiffCommand is the executable used by CommandProvider
const DefaultBranchDiffCommand = "branch-diff"

// Provider produces the audit report text for a pair of branches
type Provider interface {
	// Report returns the commits on branchA that are missing from branchB,
	// filtered by opts
	Report(ctx context.Context, branchA, branchB string, opts FilterOptions) (string, error)
}

// ProviderFunc adapts a plain function to a Provider
type ProviderFunc func(ctx context.Context, branchA, branchB string, opts FilterOptions) (string, error)

// Report calls f
func (f ProviderFunc) Report(ctx context.Context, branchA, branchB string, opts FilterOptions) (string, error) {
	return f(ctx, branchA, branchB, opts)
}

// CommandProvider runs the branch-diff tool and returns its markdown output
type CommandProvider struct {
	command    string
	workingDir string
}

// NewCommandProvider creates a provider that runs command in workingDir.
// An empty command falls back to DefaultBranchDiffCommand.
func NewCommandProvider(command, workingDir string) *CommandProvider {
	if command == "" {
		command = DefaultBranchDiffCommand
	}
	return &CommandProvider{command: command, workingDir: workingDir}
}

// Args returns the command line passed to branch-diff
func (p *CommandProvider) Args(branchA, branchB string, opts FilterOptions) []string {
	var args []string
	if opts.FilterRelease {
		args = append(args, "--filter-release")
	}
	if len(opts.ExcludeLabels) > 0 {
		args = append(args, "--exclude-label="+strings.Join(opts.ExcludeLabels, ","))
	}
	return append(args, branchA, branchB)
}

// Report runs branch-diff and returns its standard output
func (p *CommandProvider) Report(ctx context.Context, branchA, branchB string, opts FilterOptions) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultReportTimeout)
		defer cancel()
	}

	args := p.Args(branchA, branchB, opts)
	cmd := exec.CommandContext(ctx, p.command, args...)
	if p.workingDir != "" {
		cmd.Dir = p.workingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", gaerrors.NewCommandError(p.command, args, strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}
