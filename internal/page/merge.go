package page

import (
	"sort"
	"time"
)

// DedupeBy removes items whose key was already seen, keeping the first
// occurrence. Order is otherwise preserved. Items with an empty key are
// kept unconditionally.
func DedupeBy[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if k == "" {
			out = append(out, item)
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// MergeByTimestamp combines multiple already-fetched lists into one,
// newest first. Ties keep their relative arrival order (earlier lists
// first, then position within a list).
func MergeByTimestamp[T any](ts func(T) time.Time, lists ...[]T) []T {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	merged := make([]T, 0, total)
	for _, l := range lists {
		merged = append(merged, l...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return ts(merged[i]).After(ts(merged[j]))
	})
	return merged
}
