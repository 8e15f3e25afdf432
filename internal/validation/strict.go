package validation

import (
	"fmt"
	"sort"

	"github.com/jonathan/resume-editor/internal/types"
)

// CheckStrict verifies that after differs from before only in scalar text.
// Mapping key sets, every list length and every value kind must be identical.
// Returns *StrictViolationError on the first deviation.
func CheckStrict(section string, before, after any) error {
	return checkStrict(section, before, after)
}

func checkStrict(path string, before, after any) error {
	bk, ak := types.KindOf(before), types.KindOf(after)
	if bk != ak {
		return &StrictViolationError{
			Path:    path,
			Message: fmt.Sprintf("kind changed from %s to %s", bk, ak),
		}
	}

	switch b := before.(type) {
	case map[string]any:
		a := after.(map[string]any)
		added, removed := keyDelta(b, a)
		if len(added) > 0 {
			return &StrictViolationError{Path: path, Message: fmt.Sprintf("keys added: %v", added)}
		}
		if len(removed) > 0 {
			return &StrictViolationError{Path: path, Message: fmt.Sprintf("keys removed: %v", removed)}
		}
		keys := make([]string, 0, len(b))
		for k := range b {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := checkStrict(path+"."+k, b[k], a[k]); err != nil {
				return err
			}
		}
	case []any:
		a := after.([]any)
		if len(b) != len(a) {
			return &StrictViolationError{
				Path:    path,
				Message: fmt.Sprintf("list length changed from %d to %d", len(b), len(a)),
			}
		}
		for i := range b {
			if err := checkStrict(fmt.Sprintf("%s[%d]", path, i), b[i], a[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func keyDelta(before, after map[string]any) (added, removed []string) {
	for k := range after {
		if _, ok := before[k]; !ok {
			added = append(added, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			removed = append(removed, k)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
