// Package cli implements the gistaudit command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gistaudit.dev/gistaudit/internal/audit"
	"gistaudit.dev/gistaudit/internal/config"
	gaerrors "gistaudit.dev/gistaudit/internal/errors"
	"gistaudit.dev/gistaudit/internal/gist"
	"gistaudit.dev/gistaudit/internal/output"
	"gistaudit.dev/gistaudit/internal/sync"
)

// Deps builds the collaborators of a run from the resolved configuration
type Deps struct {
	NewStore    func(ctx context.Context, cfg *config.Config) (gist.Store, error)
	NewProvider func(cfg *config.Config) audit.Provider
	// Stdout receives status lines; nil means the command's output writer
	Stdout io.Writer
}

// DefaultDeps talks to GitHub and runs branch-diff
func DefaultDeps() Deps {
	return Deps{
		NewStore: func(ctx context.Context, cfg *config.Config) (gist.Store, error) {
			client, err := gist.NewGitHubClient(ctx, cfg.ClientOptions())
			if err != nil {
				return nil, err
			}
			return gist.NewGitHubStore(client, cfg.APITimeout), nil
		},
		NewProvider: func(cfg *config.Config) audit.Provider {
			return audit.NewCommandProvider(cfg.BranchDiff, cfg.RepoDir)
		},
	}
}

type flags struct {
	envFile       string
	dryRun        bool
	firstMatch    bool
	debug         bool
	tokenAuth     bool
	logFile       string
	branchDiff    string
	repoDir       string
	reportTimeout time.Duration
	apiTimeout    time.Duration
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version string) *cobra.Command {
	return NewRootCmdWithDeps(version, DefaultDeps())
}

// NewRootCmdWithDeps creates the root cobra command with the given collaborators
func NewRootCmdWithDeps(version string, deps Deps) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "gistaudit <branch>",
		Short: "Publish the backport audit of a release branch to a gist",
		Long: `Generates the audit of commits on <branch>-staging that are missing from the
branch it is compared against, then writes it to the gist holding
audit-<major>.md, creating that gist on the first run.

Credentials are read from USERNAME and PASSWORD, either in the environment
or in a .env file.`,
		Example:       "  gistaudit v10.x",
		Version:       version,
		ValidArgs:     audit.KnownBranches(),
		Args:          branchArg,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			stdout := deps.Stdout
			if stdout == nil {
				stdout = cmd.OutOrStdout()
			}
			return run(cmd, args[0], f, deps, stdout)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	cmd.Flags().StringVar(&f.envFile, "config", "", "Path to a dotenv file with credentials (default .env if present)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Generate and match, but do not create or update any gist")
	cmd.Flags().BoolVar(&f.firstMatch, "first-match", false, "When several gists hold the audit file, update the first one listed")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Print debug output")
	cmd.Flags().BoolVar(&f.tokenAuth, "token-auth", false, "Send PASSWORD as an OAuth token instead of using basic auth")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "Also write a detailed log to this file")
	cmd.Flags().StringVar(&f.branchDiff, "branch-diff", "", "branch-diff executable used to generate the report")
	cmd.Flags().StringVar(&f.repoDir, "repo-dir", "", "Repository the report is generated in (default current directory)")
	cmd.Flags().DurationVar(&f.reportTimeout, "report-timeout", 0, "Maximum time for report generation")
	cmd.Flags().DurationVar(&f.apiTimeout, "api-timeout", 0, "Maximum time for each GitHub API call")

	return cmd
}

func branchArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &UsageError{Err: fmt.Errorf("expected exactly one branch, one of: %s", strings.Join(audit.KnownBranches(), ", "))}
	}
	return nil
}

func run(cmd *cobra.Command, branch string, f flags, deps Deps, stdout io.Writer) error {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, f)

	splog, err := output.NewSplogWithOptions(output.Options{
		Writer:  stdout,
		LogFile: cfg.LogFile,
		Debug:   f.debug,
	})
	if err != nil {
		return err
	}
	defer func() { _ = splog.Close() }()

	if err := cfg.Validate(); err != nil {
		splog.Fail("Configuration error: %v", err)
		return &ReportedError{Err: err}
	}
	if cfg.EnvFileUsed != "" {
		splog.Debug("read configuration from %s", cfg.EnvFileUsed)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := deps.NewStore(ctx, cfg)
	if err != nil {
		splog.Fail("Failed to create GitHub client: %v", err)
		return &ReportedError{Err: err}
	}

	orchestrator := sync.NewOrchestrator(deps.NewProvider(cfg), store, splog.Logger().With("branch", branch), sync.Options{
		DryRun:        f.dryRun,
		FirstMatch:    f.firstMatch,
		ReportTimeout: cfg.ReportTimeout,
	})

	result, err := orchestrator.Sync(ctx, branch)
	report(splog, branch, result, err)
	if err != nil {
		return &ReportedError{Err: err}
	}
	return nil
}

// applyFlags lets explicitly set flags override file and environment values
func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) {
	changed := cmd.Flags().Changed
	if changed("token-auth") {
		cfg.TokenAuth = f.tokenAuth
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if changed("branch-diff") {
		cfg.BranchDiff = f.branchDiff
	}
	if changed("repo-dir") {
		cfg.RepoDir = f.repoDir
	}
	if changed("report-timeout") {
		cfg.ReportTimeout = f.reportTimeout
	}
	if changed("api-timeout") {
		cfg.APITimeout = f.apiTimeout
	}
}

// report prints the single pass or fail line for a run
func report(splog *output.Splog, branch string, result gist.PublishResult, err error) {
	switch {
	case err == nil && result.DryRun && result.Kind == gist.Created:
		splog.Pass("Dry run: would create a new gist for %s", result.FileName)
	case err == nil && result.DryRun:
		splog.Pass("Dry run: would update gist at: %s", splog.URL(result.URL))
	case err == nil && result.Kind == gist.Created:
		splog.Pass("Created new gist at: %s", splog.URL(result.URL))
	case err == nil:
		splog.Pass("See updated gist at: %s", splog.URL(result.URL))
	case result.DocumentID != "":
		splog.Fail("Failed to update gist: %v", err)
	case errors.Is(err, gaerrors.ErrPublishFailed):
		splog.Fail("Failed to create new gist: %v", err)
	default:
		splog.Fail("Failed to audit %s: %v", branch, err)
	}
}

// UsageError is returned when the command line is malformed
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ReportedError wraps a failure whose fail line has already been printed
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// ExitCode maps an Execute error to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// Reported reports whether err's message has already been shown to the user
func Reported(err error) bool {
	var reported *ReportedError
	return errors.As(err, &reported)
}
