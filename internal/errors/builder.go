package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder accumulates context for an error before it is marked.
type ErrorBuilder struct {
	err     error
	hint    string
	details map[string]any
}

// NewError starts a builder from a fresh error message.
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepth(1, msg)}
}

// NewErrorf starts a builder from a formatted message.
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepthf(1, format, args...)}
}

// WithError starts a builder wrapping an existing error. The original error
// chain, including markers, is preserved.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.NewWithDepth(1, "unknown error")
	}
	return &ErrorBuilder{err: err}
}

// WithMessage prefixes the error with additional context.
func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.WrapWithDepth(1, b.err, msg)
	return b
}

// WithHint attaches a user-facing hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hint = hint
	return b
}

// WithHintf attaches a formatted user-facing hint.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details that are safe to
// surface in API responses.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	if b.details == nil {
		b.details = make(map[string]any, len(details))
	}
	for k, v := range details {
		b.details[k] = v
	}
	return b
}

// Mark finalizes the builder and tags the error with the given marker.
func (b *ErrorBuilder) Mark(marker error) error {
	err := b.err
	if b.hint != "" {
		err = errors.WithHint(err, b.hint)
	}
	if len(b.details) > 0 {
		err = &reportableError{cause: err, details: b.details}
	}
	return errors.Mark(err, marker)
}

// reportableError carries details intended for API consumers.
type reportableError struct {
	cause   error
	details map[string]any
}

func (e *reportableError) Error() string { return e.cause.Error() }
func (e *reportableError) Unwrap() error { return e.cause }

// GetDisplayMessage returns the most specific hint on the chain, falling
// back to the error message.
func GetDisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[len(hints)-1]
	}
	return err.Error()
}

// GetReportableDetails merges all reportable details on the chain, outermost wins.
func GetReportableDetails(err error) map[string]any {
	result := make(map[string]any)
	for err != nil {
		if re, ok := err.(*reportableError); ok {
			for k, v := range re.details {
				if _, exists := result[k]; !exists {
					result[k] = v
				}
			}
		}
		err = errors.UnwrapOnce(err)
	}
	return result
}
