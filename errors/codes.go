// Package errors provides the error taxonomy for copy planning.
package errors

// ErrorCode names a class of planning failure.
// Codes are stable strings so orchestrators can match on them without
// depending on Go error types (they are the names emitted by the CLI).
type ErrorCode string

const (
	// Input errors.

	// CodeValidation indicates a structural defect in the request that will
	// fail identically on every resubmission.
	CodeValidation ErrorCode = "ValidationError"

	// CodeInvalidThawPolicy indicates a thaw policy override is not allowed for its tier.
	CodeInvalidThawPolicy ErrorCode = "InvalidThawParamsError"

	// Resolution errors.

	// CodeSourceObjectNotFound indicates a referenced source object does not exist.
	CodeSourceObjectNotFound ErrorCode = "SourceObjectNotFound"

	// CodeWildcardExpansionMaximum indicates a wildcard expanded past the safety ceiling.
	CodeWildcardExpansionMaximum ErrorCode = "WildcardExpansionMaximumError"

	// CodeWildcardExpansionEmpty indicates a wildcard expanded to nothing.
	CodeWildcardExpansionEmpty ErrorCode = "WildcardExpansionEmptyError"

	// Thaw errors.

	// CodeStillThawing is the single retryable condition: objects are being restored.
	CodeStillThawing ErrorCode = "IsThawingError"

	// Destination errors.

	// CodeAccessDenied indicates the credentials cannot perform the operation.
	CodeAccessDenied ErrorCode = "AccessDeniedError"

	// CodeWrongRegion indicates a bucket lives outside the required region.
	CodeWrongRegion ErrorCode = "WrongRegionError"

	// System errors.

	// CodeTimeout indicates the invocation deadline expired or was cancelled.
	CodeTimeout ErrorCode = "TimeoutError"

	// CodeUnknown indicates an unclassified upstream or internal error.
	CodeUnknown ErrorCode = "Error"
)

// IsRetryable reports whether a caller should re-invoke the same request
// after a delay. Only CodeStillThawing qualifies; upstream service errors
// are left to the caller's own retry policy.
func (c ErrorCode) IsRetryable() bool {
	return c == CodeStillThawing
}

// String returns the code as a string.
func (c ErrorCode) String() string {
	return string(c)
}
