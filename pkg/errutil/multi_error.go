// Package errutil combines the errors reported by the stages of a pipeline.
package errutil

import "strings"

// Multi returns nil when every argument is nil, the only non-nil argument when
// there is one, and otherwise an error carrying all of them in order.
//
// Arguments that already carry several errors, either from Multi or from
// errors.Join, are spliced in so the result stays flat.
func Multi(errs ...error) error {
	var kept stageErrors
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case interface{ Unwrap() []error }:
			kept = append(kept, err.Unwrap()...)
		default:
			kept = append(kept, err)
		}
	}
	if len(kept) == 0 {
		return nil
	} else if len(kept) == 1 {
		return kept[0]
	}
	return kept
}

type stageErrors []error

func (se stageErrors) Error() string {
	msgs := make([]string, len(se))
	for i, err := range se {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

func (se stageErrors) Unwrap() []error { return se }
