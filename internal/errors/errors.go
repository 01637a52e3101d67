// Package errors provides sentinel errors and custom error types for gistaudit.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for each way a sync run can fail
var (
	// ErrUnknownBranch indicates that a branch has no comparison target
	ErrUnknownBranch = errors.New("unknown branch")

	// ErrReportGenerationFailed indicates that the audit report could not be produced
	ErrReportGenerationFailed = errors.New("report generation failed")

	// ErrListingFailed indicates that the remote documents could not be enumerated
	ErrListingFailed = errors.New("listing documents failed")

	// ErrPublishFailed indicates that a create or update request failed
	ErrPublishFailed = errors.New("publish failed")

	// ErrAmbiguousOwner indicates that more than one document owns the audit filename
	ErrAmbiguousOwner = errors.New("ambiguous document owner")

	// ErrMissingCredentials indicates that the store identity or secret is not configured
	ErrMissingCredentials = errors.New("missing credentials")
)

// UnknownBranchError represents a branch that is absent from the successor table
type UnknownBranchError struct {
	BranchName string
}

func (e *UnknownBranchError) Error() string {
	return fmt.Sprintf("no comparison target configured for branch %s", e.BranchName)
}

// Is returns true if the target error is ErrUnknownBranch
func (e *UnknownBranchError) Is(target error) bool {
	return target == ErrUnknownBranch
}

// NewUnknownBranchError creates a new UnknownBranchError
func NewUnknownBranchError(branchName string) *UnknownBranchError {
	return &UnknownBranchError{BranchName: branchName}
}

// StepError wraps the underlying failure of a single sync step.
// Kind is one of the step sentinels above and is what errors.Is matches.
type StepError struct {
	Kind error
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Is returns true if the target error is the step kind
func (e *StepError) Is(target error) bool {
	return target == e.Kind
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewReportGenerationError wraps a report provider failure
func NewReportGenerationError(err error) *StepError {
	return &StepError{Kind: ErrReportGenerationFailed, Err: err}
}

// NewListingError wraps a document listing failure
func NewListingError(err error) *StepError {
	return &StepError{Kind: ErrListingFailed, Err: err}
}

// NewPublishError wraps a create or update failure
func NewPublishError(err error) *StepError {
	return &StepError{Kind: ErrPublishFailed, Err: err}
}

// AmbiguousOwnerError represents a filename owned by several remote documents
type AmbiguousOwnerError struct {
	FileName    string
	DocumentIDs []string
}

func (e *AmbiguousOwnerError) Error() string {
	return fmt.Sprintf("%d documents contain %s: %s", len(e.DocumentIDs), e.FileName, strings.Join(e.DocumentIDs, ", "))
}

// Is returns true if the target error is ErrAmbiguousOwner
func (e *AmbiguousOwnerError) Is(target error) bool {
	return target == ErrAmbiguousOwner
}

// NewAmbiguousOwnerError creates a new AmbiguousOwnerError
func NewAmbiguousOwnerError(fileName string, documentIDs []string) *AmbiguousOwnerError {
	return &AmbiguousOwnerError{
		FileName:    fileName,
		DocumentIDs: documentIDs,
	}
}

// CommandError represents an error from an external command execution
type CommandError struct {
	Command string
	Args    []string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError
func NewCommandError(command string, args []string, stderr string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Args:    args,
		Stderr:  stderr,
		Err:     err,
	}
}
