package utils

import "errors"

// RunAndWrapOnError runs fn only when *err is non-nil, and joins its error
// into *err. Meant for deferred cleanup that must not mask the original error.
func RunAndWrapOnError(err *error, fn func() error) {
	if *err == nil {
		return
	}
	if fnErr := fn(); fnErr != nil {
		*err = errors.Join(*err, fnErr)
	}
}
