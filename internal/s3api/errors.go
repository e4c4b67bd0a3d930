package s3api

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3 error codes that change how an operation reacts.
const (
	CodeNotFound                 = "NotFound"
	CodeNoSuchKey                = "NoSuchKey"
	CodeAccessDenied             = "AccessDenied"
	CodePermanentRedirect        = "PermanentRedirect"
	CodeRestoreAlreadyInProgress = "RestoreAlreadyInProgress"
)

// ErrorCode returns the API error code carried by err, or "" when err did
// not come from the service.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound reports whether err says the object does not exist.
// HEAD responses carry no body, so the SDK reports them as types.NotFound.
func IsNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	switch ErrorCode(err) {
	case CodeNotFound, CodeNoSuchKey:
		return true
	}
	return false
}
