// Package worklist computes the remaining work of a resumed run.
package worklist

import "github.com/go-scripts/dictscrape/internal/types"

// Remaining filters out variables whose names are already in done,
// preserving listing order. Listing order is the canonical processing
// order for the whole run.
func Remaining(all []types.VariableSummary, done map[string]struct{}) []types.VariableSummary {
	pending := make([]types.VariableSummary, 0, len(all))
	for _, v := range all {
		if _, ok := done[v.Name]; !ok {
			pending = append(pending, v)
		}
	}
	return pending
}
