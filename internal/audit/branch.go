package audit

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	gaerrors "gistaudit.dev/gistaudit/internal/errors"
)

// TrunkBranch is the comparison target of the newest release line
const TrunkBranch = "master"

// successors maps a release line to the line it is diffed against
var successors = map[string]string{
	"v10.x": "v11.x",
	"v11.x": TrunkBranch,
}

// excludeLabelTemplates are the PR labels filtered out of every report.
// %[1]s is replaced with the audited branch name.
var excludeLabelTemplates = []string{
	"semver-major",
	"semver-minor",
	"dont-land-on-%[1]s",
	"backport-requested-%[1]s",
	"backported-to-%[1]s",
	"baking-for-lts",
}

// FilterOptions controls which commits the report provider leaves out
type FilterOptions struct {
	FilterRelease bool
	ExcludeLabels []string
}

// ComparisonTarget returns the line the given branch is audited against
func ComparisonTarget(branch string) (string, error) {
	target, ok := successors[branch]
	if !ok {
		return "", gaerrors.NewUnknownBranchError(branch)
	}
	return target, nil
}

// KnownBranches returns the branches that can be audited
func KnownBranches() []string {
	return slices.Sorted(maps.Keys(successors))
}

// NewFilterOptions builds the filter used for auditing branch
func NewFilterOptions(branch string) FilterOptions {
	labels := make([]string, 0, len(excludeLabelTemplates))
	seen := make(map[string]bool, len(excludeLabelTemplates))
	for _, tmpl := range excludeLabelTemplates {
		label := tmpl
		if strings.Contains(tmpl, "%[1]s") {
			label = fmt.Sprintf(tmpl, branch)
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return FilterOptions{
		FilterRelease: true,
		ExcludeLabels: labels,
	}
}

// FileName returns the gist filename that holds the audit for branch,
// e.g. "v10.x" -> "audit-v10.md"
func FileName(branch string) string {
	major, _, _ := strings.Cut(branch, ".")
	return fmt.Sprintf("audit-%s.md", major)
}

// StagingBranch is the local line whose commits are audited
func StagingBranch(branch string) string {
	return branch + "-staging"
}

// UpstreamBranch is the remote-tracking name of a comparison target
func UpstreamBranch(target string) string {
	return "upstream/" + target
}
