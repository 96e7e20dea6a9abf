package report

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff between a previously exported report and a
// freshly composed one. An empty string means the reports are identical.
func Diff(previous, current string) (string, error) {
	if previous == current {
		return "", nil
	}
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(current),
		FromFile: "previous",
		ToFile:   "regenerated",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return "", fmt.Errorf("diff reports: %w", err)
	}
	return text, nil
}
