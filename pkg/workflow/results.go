package workflow

import (
	"fmt"
)

// Results holds the outputs of completed steps, keyed by step name. Later
// steps read earlier outputs through it; builders receive it read-only.
type Results map[string]any

// ResultAs returns the named step's result as T.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func ResultAs[T any](results Results, name string) (T, error) {
	var zero T

	raw, ok := results[name]
	if !ok {
		return zero, fmt.Errorf("no result recorded for step %q", name)
	}

	typed, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("step %q result is %T, not %T", name, raw, zero)
	}

	return typed, nil
}
