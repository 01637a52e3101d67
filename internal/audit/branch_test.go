package audit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gistaudit.dev/gistaudit/internal/audit"
	gaerrors "gistaudit.dev/gistaudit/internal/errors"
)

func TestComparisonTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		branch   string
		expected string
	}{
		{branch: "v10.x", expected: "v11.x"},
		{branch: "v11.x", expected: "master"},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			t.Parallel()
			target, err := audit.ComparisonTarget(tt.branch)
			require.NoError(t, err)
			require.Equal(t, tt.expected, target)
		})
	}

	t.Run("unknown branch", func(t *testing.T) {
		t.Parallel()
		_, err := audit.ComparisonTarget("v7.x")
		require.Error(t, err)
		require.True(t, errors.Is(err, gaerrors.ErrUnknownBranch))

		var unknown *gaerrors.UnknownBranchError
		require.True(t, errors.As(err, &unknown))
		require.Equal(t, "v7.x", unknown.BranchName)
	})
}

func TestKnownBranches(t *testing.T) {
	t.Parallel()
	require.Equal(t, []string{"v10.x", "v11.x"}, audit.KnownBranches())
}

func TestNewFilterOptions(t *testing.T) {
	t.Parallel()

	opts := audit.NewFilterOptions("v10.x")
	require.True(t, opts.FilterRelease)
	require.Equal(t, []string{
		"semver-major",
		"semver-minor",
		"dont-land-on-v10.x",
		"backport-requested-v10.x",
		"backported-to-v10.x",
		"baking-for-lts",
	}, opts.ExcludeLabels)
}

func TestFileName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "audit-v10.md", audit.FileName("v10.x"))
	require.Equal(t, "audit-v11.md", audit.FileName("v11.x"))
	require.Equal(t, "audit-master.md", audit.FileName("master"))
}

func TestBranchRefs(t *testing.T) {
	t.Parallel()

	require.Equal(t, "v11.x-staging", audit.StagingBranch("v11.x"))
	require.Equal(t, "upstream/master", audit.UpstreamBranch("master"))
}
