package errors

import stdErrors "errors"

// CodeOf extracts the AppError code from err, or an empty string when err
// does not wrap an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if stdErrors.As(err, &appErr) && appErr != nil {
		return appErr.Code
	}

	return ""
}

// IsPermanent reports whether err marks the destination conversation as
// permanently unreachable.
func IsPermanent(err error) bool {
	return CodeOf(err) == "E310"
}

// IsExhausted reports whether err marks a spent retry budget.
func IsExhausted(err error) bool {
	return CodeOf(err) == "E311"
}

// IsRetryable reports whether another attempt at the failed operation may
// succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}

	return false
}
