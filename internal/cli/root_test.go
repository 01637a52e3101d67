package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/require"

	"gistaudit.dev/gistaudit/internal/audit"
	"gistaudit.dev/gistaudit/internal/cli"
	"gistaudit.dev/gistaudit/internal/config"
	gaerrors "gistaudit.dev/gistaudit/internal/errors"
	"gistaudit.dev/gistaudit/internal/gist"
	"gistaudit.dev/gistaudit/testhelpers"
)

type harness struct {
	server    *testhelpers.MockGistServerConfig
	stdout    bytes.Buffer
	reportErr error
	storeErr  error
	reports   int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, name := range []string{"USERNAME", "PASSWORD", "GISTAUDIT_LOG_FILE", "GISTAUDIT_TOKEN_AUTH"} {
		t.Setenv(name, "")
	}
	t.Setenv("USERNAME", "octocat")
	t.Setenv("PASSWORD", "hunter2")
	return &harness{server: testhelpers.NewMockGistServerConfig()}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	client := testhelpers.NewMockGistClient(t, h.server)
	deps := cli.Deps{
		NewStore: func(_ context.Context, cfg *config.Config) (gist.Store, error) {
			if h.storeErr != nil {
				return nil, h.storeErr
			}
			return gist.NewGitHubStore(client, cfg.APITimeout), nil
		},
		NewProvider: func(*config.Config) audit.Provider {
			return audit.ProviderFunc(func(_ context.Context, branchA, branchB string, _ audit.FilterOptions) (string, error) {
				h.reports++
				if h.reportErr != nil {
					return "", h.reportErr
				}
				return "# " + branchA + " vs " + branchB + "\n", nil
			})
		},
		Stdout: &h.stdout,
	}

	cmd := cli.NewRootCmdWithDeps("test", deps)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func TestRootCmdCreatesThenUpdates(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "v10.x")
	require.NoError(t, err)
	require.Contains(t, h.stdout.String(), "✓ Created new gist at: ")

	h.stdout.Reset()
	err = h.run(t, "v10.x")
	require.NoError(t, err)
	require.Contains(t, h.stdout.String(), "✓ See updated gist at: ")

	owners := h.server.GistsWithFile("audit-v10.md")
	require.Len(t, owners, 1)
	require.Equal(t, "# v10.x-staging vs upstream/v11.x\n", testhelpers.GistContent(owners[0], "audit-v10.md"))
}

func TestRootCmdUsage(t *testing.T) {
	h := newHarness(t)

	err := h.run(t)
	require.Error(t, err)
	require.Equal(t, 2, cli.ExitCode(err))
	require.False(t, cli.Reported(err))

	err = h.run(t, "v10.x", "v11.x")
	require.Equal(t, 2, cli.ExitCode(err))

	err = h.run(t, "--no-such-flag", "v10.x")
	require.Equal(t, 2, cli.ExitCode(err))
	require.Equal(t, 0, h.reports)
}

func TestRootCmdMissingCredentials(t *testing.T) {
	h := newHarness(t)
	t.Setenv("PASSWORD", "")

	err := h.run(t, "v10.x")
	require.Error(t, err)
	require.True(t, errors.Is(err, gaerrors.ErrMissingCredentials))
	require.True(t, cli.Reported(err))
	require.Equal(t, 1, cli.ExitCode(err))
	require.Contains(t, h.stdout.String(), "✗ Configuration error")
	require.Equal(t, 0, h.reports)
	require.Equal(t, 0, h.server.RequestCount("GET /gists"))
}

func TestRootCmdUnknownBranch(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "v7.x")
	require.True(t, errors.Is(err, gaerrors.ErrUnknownBranch))
	require.Equal(t, 1, cli.ExitCode(err))
	require.Contains(t, h.stdout.String(), "✗ Failed to audit v7.x")
	require.Equal(t, 0, h.reports)
	require.Equal(t, 0, h.server.RequestCount("GET /gists"))
}

func TestRootCmdFailures(t *testing.T) {
	t.Run("report failure", func(t *testing.T) {
		h := newHarness(t)
		h.reportErr = errors.New("not a git repository")

		err := h.run(t, "v11.x")
		require.True(t, errors.Is(err, gaerrors.ErrReportGenerationFailed))
		require.Equal(t, 1, cli.ExitCode(err))
		require.Contains(t, h.stdout.String(), "not a git repository")
		require.Equal(t, 0, h.server.RequestCount("GET /gists"))
	})

	t.Run("create failure", func(t *testing.T) {
		h := newHarness(t)
		h.server.ErrorResponses["POST /gists"] = http.StatusUnauthorized

		err := h.run(t, "v11.x")
		require.True(t, errors.Is(err, gaerrors.ErrPublishFailed))
		require.Contains(t, h.stdout.String(), "✗ Failed to create new gist")
	})

	t.Run("update failure", func(t *testing.T) {
		h := newHarness(t)
		h.server.Gists = []*github.Gist{testhelpers.NewSampleGist(testhelpers.SampleGistData{
			ID:    "abc",
			Files: map[string]string{"audit-v11.md": "old"},
		})}
		h.server.ErrorResponses["PATCH /gists/abc"] = http.StatusForbidden

		err := h.run(t, "v11.x")
		require.True(t, errors.Is(err, gaerrors.ErrPublishFailed))
		require.Contains(t, h.stdout.String(), "✗ Failed to update gist")
		require.Equal(t, 0, h.server.RequestCount("POST /gists"))
	})

	t.Run("client failure", func(t *testing.T) {
		h := newHarness(t)
		h.storeErr = errors.New("bad base url")

		err := h.run(t, "v11.x")
		require.Error(t, err)
		require.Contains(t, h.stdout.String(), "✗ Failed to create GitHub client")
		require.Equal(t, 0, h.reports)
	})
}

func TestRootCmdDryRun(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "--dry-run", "v10.x")
	require.NoError(t, err)
	require.Contains(t, h.stdout.String(), "✓ Dry run: would create a new gist for audit-v10.md")
	require.Equal(t, 0, h.server.MutationCount())
}

func TestRootCmdLogFile(t *testing.T) {
	h := newHarness(t)
	logFile := filepath.Join(t.TempDir(), "gistaudit.log")

	err := h.run(t, "--log-file", logFile, "v10.x")
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "sync state")
	require.Contains(t, string(data), "Created new gist at")
}

func TestRootCmdEnvFile(t *testing.T) {
	h := newHarness(t)
	t.Setenv("USERNAME", "")
	t.Setenv("PASSWORD", "")

	envFile := filepath.Join(t.TempDir(), "audit.env")
	require.NoError(t, os.WriteFile(envFile, []byte("USERNAME=octocat\nPASSWORD=hunter2\n"), 0600))

	err := h.run(t, "--config", envFile, "v11.x")
	require.NoError(t, err)
	require.Contains(t, h.stdout.String(), "✓ Created new gist at: ")
}
