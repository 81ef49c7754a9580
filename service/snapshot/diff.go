package snapshot

import (
	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// DiffStats summarises a golden mismatch.
type DiffStats struct {
	Hunks   int
	Added   int
	Changed int
	Deleted int
}

// GenerateDiff produces a unified diff between expected and actual text.
// If both are identical an empty diff is returned.
func GenerateDiff(expected, actual, goldenPath string, contextLines int) (string, DiffStats, error) {
	if expected == actual {
		return "", DiffStats{}, nil
	}
	if contextLines <= 0 {
		contextLines = 3
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: goldenPath + " (expected)",
		ToFile:   goldenPath + " (actual)",
		Context:  contextLines,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", DiffStats{}, err
	}
	return patch, diffStats(patch), nil
}

func diffStats(patch string) DiffStats {
	fileDiff, err := sgdiff.ParseFileDiff([]byte(patch))
	if err != nil || fileDiff == nil {
		return DiffStats{}
	}
	stat := fileDiff.Stat()
	return DiffStats{
		Hunks:   len(fileDiff.Hunks),
		Added:   int(stat.Added),
		Changed: int(stat.Changed),
		Deleted: int(stat.Deleted),
	}
}
