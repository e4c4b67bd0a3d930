package testutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/s3api"
)

// FakeObject is an object held by FakeS3.
type FakeObject struct {
	Size          int64
	ETag          string
	LastModified  time.Time
	StorageClass  types.StorageClass
	ArchiveStatus types.ArchiveStatus

	// RestoreOngoing and RestoreExpiry describe the x-amz-restore marker.
	// No marker is reported while RestoreExpiry is zero and no restore is ongoing.
	RestoreOngoing bool
	RestoreExpiry  time.Time
}

// RestoreCall records one RestoreObject request accepted by FakeS3.
type RestoreCall struct {
	Bucket string
	Key    string
	Days   int32
	Tier   types.Tier
}

// FakeS3 is an in-memory, multi-bucket implementation of s3api.S3API.
// Restores stay ongoing until CompleteRestore is called.
type FakeS3 struct {
	mu       sync.Mutex
	buckets  map[string]map[string]*FakeObject
	restores []RestoreCall
	puts     []string

	// PageSize caps listing pages; zero means 1000 like S3.
	PageSize int32

	// ListCalls counts ListObjectsV2 requests.
	ListCalls int
}

var _ s3api.S3API = (*FakeS3)(nil)

// NewFakeS3 creates an empty fake store.
func NewFakeS3() *FakeS3 {
	return &FakeS3{buckets: make(map[string]map[string]*FakeObject)}
}

// CreateBucket adds an empty bucket.
func (f *FakeS3) CreateBucket(bucket string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[bucket]; !ok {
		f.buckets[bucket] = make(map[string]*FakeObject)
	}
}

// PutTestObject stores a STANDARD object of the given size, creating the bucket if needed.
func (f *FakeS3) PutTestObject(bucket, key string, size int64) *FakeObject {
	return f.PutTestObjectWithClass(bucket, key, size, types.StorageClassStandard, "")
}

// PutTestObjectWithClass stores an object with an explicit storage class and archive status.
func (f *FakeS3) PutTestObjectWithClass(
	bucket, key string, size int64, class types.StorageClass, status types.ArchiveStatus,
) *FakeObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[bucket]; !ok {
		f.buckets[bucket] = make(map[string]*FakeObject)
	}
	obj := &FakeObject{
		Size:          size,
		ETag:          fmt.Sprintf(`"%x"`, len(key)*7919+int(size)),
		LastModified:  FixedTime,
		StorageClass:  class,
		ArchiveStatus: status,
	}
	f.buckets[bucket][key] = obj
	return obj
}

// CompleteRestore finishes an ongoing restore so the object reads as restored.
func (f *FakeS3) CompleteRestore(bucket, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if obj := f.lookup(bucket, key); obj != nil {
		obj.RestoreOngoing = false
		obj.RestoreExpiry = FixedTime.AddDate(0, 0, 1)
	}
}

// Restores returns the accepted restore requests in call order.
func (f *FakeS3) Restores() []RestoreCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RestoreCall(nil), f.restores...)
}

// Puts returns the keys written with PutObject as "bucket/key".
func (f *FakeS3) Puts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.puts...)
}

func (f *FakeS3) lookup(bucket, key string) *FakeObject {
	objects, ok := f.buckets[bucket]
	if !ok {
		return nil
	}
	return objects[key]
}

func noSuchBucket(bucket string) error {
	return &types.NoSuchBucket{Message: StringPtr("The specified bucket does not exist: " + bucket)}
}

func restoreMarker(obj *FakeObject) *string {
	switch {
	case obj.RestoreOngoing:
		return StringPtr(`ongoing-request="true"`)
	case !obj.RestoreExpiry.IsZero():
		return StringPtr(fmt.Sprintf(`ongoing-request="false", expiry-date="%s"`,
			obj.RestoreExpiry.Format(http.TimeFormat)))
	default:
		return nil
	}
}

// HeadObject reports the metadata of a stored object.
func (f *FakeS3) HeadObject(
	ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	obj := f.lookup(deref(params.Bucket), deref(params.Key))
	if obj == nil {
		return nil, &types.NotFound{Message: StringPtr("Not Found")}
	}

	output := &s3.HeadObjectOutput{
		ContentLength: Int64Ptr(obj.Size),
		ETag:          StringPtr(obj.ETag),
		LastModified:  TimePtr(obj.LastModified),
		ArchiveStatus: obj.ArchiveStatus,
		Restore:       restoreMarker(obj),
	}
	// S3 omits the header for STANDARD objects
	if obj.StorageClass != types.StorageClassStandard {
		output.StorageClass = obj.StorageClass
	}
	return output, nil
}

// ListObjectsV2 lists keys under a prefix in key order, one page per call.
func (f *FakeS3) ListObjectsV2(
	ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++

	bucket := deref(params.Bucket)
	objects, ok := f.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}

	prefix := deref(params.Prefix)
	after := deref(params.ContinuationToken)
	keys := make([]string, 0, len(objects))
	for key := range objects {
		if strings.HasPrefix(key, prefix) && key > after {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	if params.MaxKeys != nil && *params.MaxKeys > 0 && *params.MaxKeys < pageSize {
		pageSize = *params.MaxKeys
	}

	output := &s3.ListObjectsV2Output{
		Name:        params.Bucket,
		Prefix:      params.Prefix,
		IsTruncated: BoolPtr(false),
	}
	if len(keys) > int(pageSize) {
		keys = keys[:pageSize]
		output.IsTruncated = BoolPtr(true)
		output.NextContinuationToken = StringPtr(keys[len(keys)-1])
	}

	for _, key := range keys {
		obj := objects[key]
		output.Contents = append(output.Contents, types.Object{
			Key:          StringPtr(key),
			Size:         Int64Ptr(obj.Size),
			ETag:         StringPtr(obj.ETag),
			LastModified: TimePtr(obj.LastModified),
			StorageClass: types.ObjectStorageClass(obj.StorageClass),
		})
	}
	output.KeyCount = Int32Ptr(int32(len(output.Contents)))
	return output, nil
}

// RestoreObject starts a restore of an archived object.
func (f *FakeS3) RestoreObject(
	ctx context.Context, params *s3.RestoreObjectInput, _ ...func(*s3.Options),
) (*s3.RestoreObjectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key := deref(params.Bucket), deref(params.Key)
	obj := f.lookup(bucket, key)
	if obj == nil {
		return nil, &types.NoSuchKey{Message: StringPtr("The specified key does not exist.")}
	}

	archived := obj.StorageClass == types.StorageClassGlacier ||
		obj.StorageClass == types.StorageClassDeepArchive ||
		(obj.StorageClass == types.StorageClassIntelligentTiering && obj.ArchiveStatus != "")
	if !archived {
		return nil, APIError("InvalidObjectState", "Restore is not allowed for the object's current storage class")
	}
	if obj.RestoreOngoing {
		return nil, APIError("RestoreAlreadyInProgress", "Object restore is already in progress")
	}

	call := RestoreCall{Bucket: bucket, Key: key}
	if req := params.RestoreRequest; req != nil {
		if req.Days != nil {
			call.Days = *req.Days
		}
		if req.GlacierJobParameters != nil {
			call.Tier = req.GlacierJobParameters.Tier
		}
	}
	f.restores = append(f.restores, call)
	obj.RestoreOngoing = true
	return &s3.RestoreObjectOutput{}, nil
}

// PutObject stores an object body.
func (f *FakeS3) PutObject(
	ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var size int64
	if params.Body != nil {
		n, err := io.Copy(io.Discard, params.Body)
		if err != nil {
			return nil, err
		}
		size = n
	}

	f.mu.Lock()
	bucket := deref(params.Bucket)
	_, ok := f.buckets[bucket]
	f.mu.Unlock()
	if !ok {
		return nil, noSuchBucket(bucket)
	}

	obj := f.PutTestObject(bucket, deref(params.Key), size)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, bucket+"/"+deref(params.Key))
	return &s3.PutObjectOutput{ETag: StringPtr(obj.ETag)}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
