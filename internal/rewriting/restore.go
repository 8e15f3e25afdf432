package rewriting

import (
	"fmt"
	"sort"

	"github.com/jonathan/resume-editor/internal/types"
)

// RestoreDropped puts back keys the generator left out in lenient mode.
// Top-level mapping keys missing from candidate are copied from original,
// and so are keys missing from list entries at matching indexes. Values the
// generator did return are never touched. Returns the restored paths.
func RestoreDropped(section string, original, candidate any) (any, []string) {
	switch orig := original.(type) {
	case map[string]any:
		cand, ok := candidate.(map[string]any)
		if !ok {
			return candidate, nil
		}
		return restoreKeys(section, orig, cand)
	case []any:
		cand, ok := candidate.([]any)
		if !ok {
			return candidate, nil
		}
		var restored []string
		out := make([]any, len(cand))
		copy(out, cand)
		for i := range out {
			if i >= len(orig) {
				break
			}
			origEntry, ok := orig[i].(map[string]any)
			if !ok {
				continue
			}
			candEntry, ok := out[i].(map[string]any)
			if !ok {
				continue
			}
			entry, paths := restoreKeys(fmt.Sprintf("%s[%d]", section, i), origEntry, candEntry)
			out[i] = entry
			restored = append(restored, paths...)
		}
		return out, restored
	default:
		return candidate, nil
	}
}

func restoreKeys(path string, original, candidate map[string]any) (map[string]any, []string) {
	var missing []string
	for k := range original {
		if _, ok := candidate[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return candidate, nil
	}
	sort.Strings(missing)

	out := make(map[string]any, len(candidate)+len(missing))
	for k, v := range candidate {
		out[k] = v
	}
	paths := make([]string, 0, len(missing))
	for _, k := range missing {
		v, err := types.CloneValue(original[k])
		if err != nil {
			v = original[k]
		}
		out[k] = v
		paths = append(paths, path+"."+k)
	}
	return out, paths
}
