package errors

import "fmt"

// RecoverPanic converts a panic in the calling function into an internal
// AppError stored in *errp. It must be deferred directly:
//
//	defer errors.RecoverPanic(&err)
func RecoverPanic(errp *error) {
	r := recover()
	if r == nil {
		return
	}

	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%v", r)
	}
	*errp = Wrap(cause, ErrCodeInternal, "Unexpected failure while reading the repository").
		WithSeverity(SeverityCritical).
		WithSuggestions("Run 'git fsck' to check the repository for corruption")
}
