package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries an error code, an operator-facing message, a message safe
// to show to the end user, and retry semantics for the delivery engine.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewAuthError reports a rejected webhook credential. Never retried.
func NewAuthError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: "Unauthorized",
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewValidationError reports a structurally invalid request or payload.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E110",
		Message:     msg,
		UserMessage: fmt.Sprintf("Bad Request: %s", msg),
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewStorageError reports a failed read or write of the shared document.
// The operation is abandoned; the caller surfaces a best-effort message.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("document store error: %s", underlyingMsg),
		UserMessage: "Temporary storage problem, please try again later",
		Severity:    SeverityHigh,
		Retryable:   false,
		cause:       cause,
	}
}

// NewDeliveryError reports a transient Telegram send failure eligible for
// another attempt.
func NewDeliveryError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("telegram delivery error: %s", underlyingMsg),
		UserMessage: "Service temporarily unavailable",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewBlockedError reports a permanent delivery failure: the destination
// conversation is gone or the user blocked the bot. Never retried.
func NewBlockedError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E310",
		Message:     fmt.Sprintf("destination unreachable: %s", underlyingMsg),
		UserMessage: "Recipient is unreachable",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       cause,
	}
}

// NewExhaustedError reports that the retry budget for a send was spent on
// transient failures. Distinct from E310: it does not mean the destination
// is gone and must never trigger a binding deactivation.
func NewExhaustedError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E311",
		Message:     fmt.Sprintf("delivery attempts exhausted: %s", underlyingMsg),
		UserMessage: "Could not deliver the message, please try again later",
		Severity:    SeverityHigh,
		Retryable:   false,
		cause:       cause,
	}
}
