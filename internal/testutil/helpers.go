// Package testutil provides test helper functions.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StringPtr returns a pointer to the given string.
// This is useful for AWS SDK inputs that require string pointers.
func StringPtr(s string) *string {
	return aws.String(s)
}

// Int64Ptr returns a pointer to the given int64.
// This is useful for AWS SDK inputs that require int64 pointers.
func Int64Ptr(i int64) *int64 {
	return aws.Int64(i)
}

// Int32Ptr returns a pointer to the given int32.
// This is useful for AWS SDK inputs that require int32 pointers.
func Int32Ptr(i int32) *int32 {
	return aws.Int32(i)
}

// IntPtr returns a pointer to the given int.
func IntPtr(i int) *int {
	return &i
}

// BoolPtr returns a pointer to the given bool.
// This is useful for AWS SDK inputs that require bool pointers.
func BoolPtr(b bool) *bool {
	return aws.Bool(b)
}

// TimePtr returns a pointer to the given time.
// This is useful for AWS SDK outputs that return time pointers.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// FixedTime is the last modified time given to objects created by the helpers.
var FixedTime = time.Date(2024, 3, 1, 12, 30, 45, 123_000_000, time.UTC)

// CreateTestObject creates a listing entry for use in ListObjectsV2 outputs.
func CreateTestObject(key string, size int64) types.Object {
	return types.Object{
		Key:          StringPtr(key),
		Size:         Int64Ptr(size),
		ETag:         StringPtr(fmt.Sprintf(`"etag-%s"`, strings.ReplaceAll(key, "/", "-"))),
		LastModified: TimePtr(FixedTime),
		StorageClass: types.ObjectStorageClassStandard,
	}
}

// CreateListObjectsV2Output creates a single listing page.
// A non-empty nextToken marks the page as truncated.
func CreateListObjectsV2Output(objects []types.Object, nextToken string) *s3.ListObjectsV2Output {
	output := &s3.ListObjectsV2Output{
		Contents:    objects,
		KeyCount:    Int32Ptr(int32(len(objects))),
		IsTruncated: BoolPtr(nextToken != ""),
	}
	if nextToken != "" {
		output.NextContinuationToken = StringPtr(nextToken)
	}
	return output
}

// CreateHeadObjectOutput creates a HeadObject output for a readable object.
func CreateHeadObjectOutput(size int64, storageClass types.StorageClass) *s3.HeadObjectOutput {
	return &s3.HeadObjectOutput{
		ContentLength: Int64Ptr(size),
		ETag:          StringPtr(`"test-etag"`),
		LastModified:  TimePtr(FixedTime),
		StorageClass:  storageClass,
	}
}

// GenerateTestBucketName creates a unique bucket name for testing.
// It uses a prefix and random suffix to avoid conflicts.
func GenerateTestBucketName(prefix string) string {
	// S3 bucket names must be lowercase and follow DNS naming rules
	//nolint:gosec // Using math/rand is fine for test bucket names
	suffix := rand.Intn(1000000)
	return fmt.Sprintf("%s-%d-%d", strings.ToLower(prefix), time.Now().Unix(), suffix)
}
