package util

import (
	"fmt"

	"github.com/r3labs/diff"
)

// ProtectedChangelog diffs before and after, failing if any top-level
// field outside of allowedFields has changed
func ProtectedChangelog(allowedFields map[string]bool, before, after interface{}) (diff.Changelog, error) {
	changelog, err := diff.Diff(before, after)
	if err != nil {
		return nil, err
	}

	// going through changes and checking whether every changed field is allowed
	for _, change := range changelog {
		if _, ok := allowedFields[change.Path[0]]; !ok {
			return nil, fmt.Errorf("`%s` is protected and cannot be changed", change.Path[0])
		}
	}

	return changelog, nil
}

// ChangedFields returns the distinct top-level field names of a changelog
func ChangedFields(changelog diff.Changelog) []string {
	seen := make(map[string]bool, len(changelog))
	fields := make([]string, 0, len(changelog))

	for _, change := range changelog {
		if len(change.Path) == 0 || seen[change.Path[0]] {
			continue
		}

		seen[change.Path[0]] = true
		fields = append(fields, change.Path[0])
	}

	return fields
}
