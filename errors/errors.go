package errors

import (
	"context"
	"errors"
	"fmt"
)

// Error represents a failed planning operation with the object it concerned.
// It wraps the underlying AWS SDK error or one of the typed errors below.
type Error struct {
	// Op is the operation that failed (e.g., "headObject", "expand", "restore")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3copy.%s s3://%s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3copy.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3copy.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3copy.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for planning failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidInput indicates that the request failed structural validation
	ErrInvalidInput = errors.New("s3copy: invalid input")

	// ErrInvalidObjectKey indicates that an object key cannot be used where it was given
	ErrInvalidObjectKey = errors.New("s3copy: invalid object key")

	// ErrInvalidThawPolicy indicates a thaw override names a speed or day count the tier does not accept
	ErrInvalidThawPolicy = errors.New("s3copy: invalid thaw policy")

	// ErrObjectNotFound indicates that a source object does not exist
	ErrObjectNotFound = errors.New("s3copy: object not found")

	// ErrWildcardExpansionMaximum indicates a wildcard matched more objects than allowed
	ErrWildcardExpansionMaximum = errors.New("s3copy: wildcard expansion exceeds maximum")

	// ErrWildcardExpansionEmpty indicates a wildcard matched no objects
	ErrWildcardExpansionEmpty = errors.New("s3copy: wildcard expansion is empty")

	// ErrStillThawing indicates objects are being restored and the call should be repeated later
	ErrStillThawing = errors.New("s3copy: objects are still thawing")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3copy: access denied")

	// ErrWrongRegion indicates that the bucket is in a different region to the client
	ErrWrongRegion = errors.New("s3copy: bucket in wrong region")
)

// ValidationKind identifies which input rule a ValidationError broke.
type ValidationKind string

const (
	// KindDestinationFolderKeyInvalid covers the batch destinationFolderKey rules.
	KindDestinationFolderKeyInvalid ValidationKind = "DestinationFolderKeyFieldInvalid"

	// KindMaximumExpansionInvalid covers a non-positive maximumExpansion.
	KindMaximumExpansionInvalid ValidationKind = "MaximumExpansionFieldInvalid"

	// KindSourceBucketInvalid covers a missing sourceBucket.
	KindSourceBucketInvalid ValidationKind = "SourceBucketFieldInvalid"

	// KindSourceKeyInvalid covers a missing or traversing sourceKey.
	KindSourceKeyInvalid ValidationKind = "SourceKeyFieldInvalid"

	// KindMutuallyExclusiveFolders covers sourceRootFolderKey and
	// destinationRelativeFolderKey given together.
	KindMutuallyExclusiveFolders ValidationKind = "MutuallyExclusiveFolderFields"

	// KindDestinationRelativeFolderKeyInvalid covers the destinationRelativeFolderKey rules.
	KindDestinationRelativeFolderKeyInvalid ValidationKind = "DestinationRelativeFolderKeyFieldInvalid"

	// KindSourceRootFolderKeyInvalid covers the sourceRootFolderKey rules.
	KindSourceRootFolderKeyInvalid ValidationKind = "SourceRootFolderKeyFieldInvalid"

	// KindWildcardConflict covers a wildcard item that also sets
	// sourceRootFolderKey or sums.
	KindWildcardConflict ValidationKind = "WildcardFieldConflict"
)

// ValidationError reports a structural defect in a request.
// Index is the offending item's position, or -1 for batch-level fields.
type ValidationError struct {
	Kind    ValidationKind
	Index   int
	Bucket  string
	Key     string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Bucket != "" || e.Key != "" {
		return fmt.Sprintf("%s: item %d (s3://%s/%s): %s", e.Kind, e.Index, e.Bucket, e.Key, e.Message)
	}
	return fmt.Sprintf("%s: item %d: %s", e.Kind, e.Index, e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// SourceObjectNotFoundError reports a source object that does not exist or is not accessible.
type SourceObjectNotFoundError struct {
	Bucket string
	Key    string
}

// Error implements the error interface.
func (e *SourceObjectNotFoundError) Error() string {
	return fmt.Sprintf("object s3://%s/%s does not exist or is not accessible", e.Bucket, e.Key)
}

// Is matches ErrObjectNotFound.
func (e *SourceObjectNotFoundError) Is(target error) bool {
	return target == ErrObjectNotFound
}

// WildcardExpansionMaximumError reports a wildcard that matched more than Maximum objects.
type WildcardExpansionMaximumError struct {
	Bucket  string
	Key     string
	Maximum int
}

// Error implements the error interface.
func (e *WildcardExpansionMaximumError) Error() string {
	return fmt.Sprintf(
		"expanding s3://%s/%s resulted in a number of objects that exceeds our safety limit of %d",
		e.Bucket, e.Key, e.Maximum,
	)
}

// Is matches ErrWildcardExpansionMaximum.
func (e *WildcardExpansionMaximumError) Is(target error) bool {
	return target == ErrWildcardExpansionMaximum
}

// WildcardExpansionEmptyError reports a wildcard that matched no objects.
type WildcardExpansionEmptyError struct {
	Bucket string
	Key    string
}

// Error implements the error interface.
func (e *WildcardExpansionEmptyError) Error() string {
	return fmt.Sprintf("expanding s3://%s/%s resulted in no objects", e.Bucket, e.Key)
}

// Is matches ErrWildcardExpansionEmpty.
func (e *WildcardExpansionEmptyError) Is(target error) bool {
	return target == ErrWildcardExpansionEmpty
}

// StillThawingError reports that Thawing of Total objects are being restored.
// It is the only error a caller should answer by retrying after a delay.
type StillThawingError struct {
	Thawing int
	Total   int
}

// Error implements the error interface.
func (e *StillThawingError) Error() string {
	return fmt.Sprintf("%d/%d are in the process of thawing", e.Thawing, e.Total)
}

// Is matches ErrStillThawing.
func (e *StillThawingError) Is(target error) bool {
	return target == ErrStillThawing
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStillThawing checks if an error is the retryable thawing signal.
func IsStillThawing(err error) bool {
	return errors.Is(err, ErrStillThawing)
}

// IsRetryable reports whether the caller should repeat the call after a delay.
func IsRetryable(err error) bool {
	return Code(err).IsRetryable()
}

// Code classifies an error into its ErrorCode.
func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStillThawing):
		return CodeStillThawing
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, ErrInvalidThawPolicy):
		return CodeInvalidThawPolicy
	case errors.Is(err, ErrObjectNotFound):
		return CodeSourceObjectNotFound
	case errors.Is(err, ErrWildcardExpansionMaximum):
		return CodeWildcardExpansionMaximum
	case errors.Is(err, ErrWildcardExpansionEmpty):
		return CodeWildcardExpansionEmpty
	case errors.Is(err, ErrAccessDenied):
		return CodeAccessDenied
	case errors.Is(err, ErrWrongRegion):
		return CodeWrongRegion
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CodeTimeout
	default:
		return CodeUnknown
	}
}
