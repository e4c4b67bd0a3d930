// Package testutil provides a builder for creating mock S3 clients.
package testutil

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		client: &MockS3Client{},
	}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithHeadObject configures the HeadObject behavior.
func (b *MockBuilder) WithHeadObject(
	fn func(context.Context, *s3.HeadObjectInput) (*s3.HeadObjectOutput, error),
) *MockBuilder {
	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithListObjectsV2 configures the ListObjectsV2 behavior.
func (b *MockBuilder) WithListObjectsV2(
	fn func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error),
) *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return fn(ctx, params)
	}
	return b
}

// WithRestoreObject configures the RestoreObject behavior.
func (b *MockBuilder) WithRestoreObject(
	fn func(context.Context, *s3.RestoreObjectInput) (*s3.RestoreObjectOutput, error),
) *MockBuilder {
	b.client.RestoreObjectFunc = func(ctx context.Context, params *s3.RestoreObjectInput, _ ...func(*s3.Options)) (*s3.RestoreObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithPutObject configures the PutObject behavior.
func (b *MockBuilder) WithPutObject(
	fn func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error),
) *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithSuccessfulPut configures the mock to always accept uploads.
func (b *MockBuilder) WithSuccessfulPut() *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		// Consume the body if provided
		if params.Body != nil {
			_, _ = io.Copy(io.Discard, params.Body)
		}
		return &s3.PutObjectOutput{
			ETag: StringPtr(`"test-etag"`),
		}, nil
	}
	return b
}

// WithObjectNotFound configures the mock to answer HEAD with a not found error.
func (b *MockBuilder) WithObjectNotFound() *MockBuilder {
	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return nil, &types.NotFound{Message: StringPtr("Not Found")}
	}
	return b
}

// WithEmptyBucket configures the mock to return an empty bucket listing.
func (b *MockBuilder) WithEmptyBucket() *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return &s3.ListObjectsV2Output{
			Name:        params.Bucket,
			Prefix:      params.Prefix,
			MaxKeys:     params.MaxKeys,
			IsTruncated: BoolPtr(false),
			KeyCount:    Int32Ptr(0),
		}, nil
	}
	return b
}

// WithAccessDenied configures the mock to return access denied errors.
func (b *MockBuilder) WithAccessDenied() *MockBuilder {
	accessDeniedErr := APIError("AccessDenied", "Access Denied")

	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return nil, accessDeniedErr
	}
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return nil, accessDeniedErr
	}
	b.client.RestoreObjectFunc = func(ctx context.Context, params *s3.RestoreObjectInput, _ ...func(*s3.Options)) (*s3.RestoreObjectOutput, error) {
		return nil, accessDeniedErr
	}
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, accessDeniedErr
	}

	return b
}

// APIError builds a service error carrying the given S3 error code.
func APIError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message, Fault: smithy.FaultClient}
}
