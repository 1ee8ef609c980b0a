package audit

import (
	"reflect"
	"sort"
)

// DiffObjects returns the keys whose values differ between before and after,
// including keys present on only one side. The result is sorted so callers
// and stored events see a stable order.
func DiffObjects(before, after map[string]any) []string {
	if before == nil && after == nil {
		return nil
	}

	changed := make(map[string]struct{})

	for key, beforeVal := range before {
		afterVal, ok := after[key]
		if !ok || !reflect.DeepEqual(beforeVal, afterVal) {
			changed[key] = struct{}{}
		}
	}

	for key := range after {
		if _, ok := before[key]; !ok {
			changed[key] = struct{}{}
		}
	}

	if len(changed) == 0 {
		return nil
	}

	fields := make([]string, 0, len(changed))
	for key := range changed {
		fields = append(fields, key)
	}

	sort.Strings(fields)

	return fields
}
