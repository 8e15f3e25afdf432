// Package diff computes structured summaries of the differences between two
// document snapshots.
package diff

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/jonathan/resume-editor/internal/types"
)

const (
	// DefaultSizeThreshold is the combined serialized size above which only a
	// top-level comparison is performed
	DefaultSizeThreshold = 50000
	// MaxExamples is the number of example changes kept in a summary
	MaxExamples = 3
	// MaxValueLength is the rune length example values are truncated to
	MaxValueLength = 100
)

// Change kinds
const (
	KindAdded    = "added"
	KindRemoved  = "removed"
	KindModified = "modified"
)

// Options configures diff computation
type Options struct {
	SizeThreshold int // zero selects DefaultSizeThreshold
}

// Compute returns the differences between before and after. Neither argument is modified.
func Compute(before, after types.Document, opts *Options) types.DiffSummary {
	threshold := DefaultSizeThreshold
	if opts != nil && opts.SizeThreshold > 0 {
		threshold = opts.SizeThreshold
	}

	var changes []types.Change
	coarse := serializedSize(before)+serializedSize(after) > threshold
	if coarse {
		changes = coarseChanges(before, after)
	} else {
		changes = walk("", map[string]any(before), map[string]any(after), nil)
	}
	return summarize(changes, coarse)
}

// Changes returns every difference found by a full recursive comparison.
func Changes(before, after any) []types.Change {
	return walk("", before, after, nil)
}

func summarize(changes []types.Change, coarse bool) types.DiffSummary {
	summary := types.DiffSummary{Coarse: coarse}
	var modified, other []types.Change
	for _, c := range changes {
		switch c.Kind {
		case KindAdded:
			summary.AddedCount++
			other = append(other, c)
		case KindRemoved:
			summary.RemovedCount++
			other = append(other, c)
		case KindModified:
			summary.ModifiedCount++
			modified = append(modified, c)
		}
	}

	// Modifications are the most informative examples, so they come first
	for _, c := range append(modified, other...) {
		if len(summary.Examples) == MaxExamples {
			break
		}
		summary.Examples = append(summary.Examples, c)
	}
	return summary
}

func walk(path string, before, after any, out []types.Change) []types.Change {
	if types.KindOf(before) != types.KindOf(after) {
		return append(out, modifiedChange(path, before, after))
	}

	switch b := before.(type) {
	case map[string]any:
		a := asMap(after)
		for _, k := range unionKeys(b, a) {
			bv, inBefore := b[k]
			av, inAfter := a[k]
			child := joinKey(path, k)
			switch {
			case !inBefore:
				out = append(out, types.Change{Path: child, Kind: KindAdded, NewValue: preview(av)})
			case !inAfter:
				out = append(out, types.Change{Path: child, Kind: KindRemoved, OldValue: preview(bv)})
			default:
				out = walk(child, bv, av, out)
			}
		}
		return out
	case types.Document:
		return walk(path, map[string]any(b), after, out)
	case []any:
		a, _ := after.([]any)
		common := min(len(b), len(a))
		for i := 0; i < common; i++ {
			out = walk(fmt.Sprintf("%s[%d]", path, i), b[i], a[i], out)
		}
		for i := common; i < len(a); i++ {
			out = append(out, types.Change{Path: fmt.Sprintf("%s[%d]", path, i), Kind: KindAdded, NewValue: preview(a[i])})
		}
		for i := common; i < len(b); i++ {
			out = append(out, types.Change{Path: fmt.Sprintf("%s[%d]", path, i), Kind: KindRemoved, OldValue: preview(b[i])})
		}
		return out
	}

	if !types.Equal(before, after) {
		out = append(out, modifiedChange(path, before, after))
	}
	return out
}

// coarseChanges compares top-level sections only. Same-length lists are
// compared per item; lists of different lengths count as one modification.
func coarseChanges(before, after types.Document) []types.Change {
	var out []types.Change
	for _, k := range unionKeys(before, after) {
		bv, inBefore := before[k]
		av, inAfter := after[k]
		switch {
		case !inBefore:
			out = append(out, types.Change{Path: k, Kind: KindAdded, NewValue: preview(av)})
		case !inAfter:
			out = append(out, types.Change{Path: k, Kind: KindRemoved, OldValue: preview(bv)})
		case types.Equal(bv, av):
		default:
			bl, bIsList := bv.([]any)
			al, aIsList := av.([]any)
			if !bIsList || !aIsList {
				out = append(out, modifiedChange(k, bv, av))
				continue
			}
			if len(bl) != len(al) {
				out = append(out, types.Change{
					Path:     k,
					Kind:     KindModified,
					OldValue: fmt.Sprintf("List with %d items", len(bl)),
					NewValue: fmt.Sprintf("List with %d items", len(al)),
				})
				continue
			}
			for i := range bl {
				if !types.Equal(bl[i], al[i]) {
					out = append(out, modifiedChange(fmt.Sprintf("%s[%d]", k, i), bl[i], al[i]))
				}
			}
		}
	}
	return out
}

func modifiedChange(path string, before, after any) types.Change {
	return types.Change{Path: path, Kind: KindModified, OldValue: preview(before), NewValue: preview(after)}
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case types.Document:
		return t
	}
	return nil
}

func unionKeys[M ~map[string]any](a, b M) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// preview renders a value for display, truncated to MaxValueLength runes.
func preview(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case nil:
		s = "null"
	default:
		data, err := json.Marshal(t)
		if err != nil {
			s = fmt.Sprint(t)
		} else {
			s = string(data)
		}
	}
	return Truncate(s, MaxValueLength)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func serializedSize(doc types.Document) int {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0
	}
	return len(data)
}
