package list

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListObjectsV2(
		ctx context.Context,
		input *s3.ListObjectsV2Input,
		opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// Lister handles listing and expansion of S3 prefixes.
type Lister struct {
	client S3Interface
}

// New creates a new Lister.
func New(client S3Interface) *Lister {
	return &Lister{
		client: client,
	}
}

// Config holds configuration for list operations.
type Config struct {
	Bucket   string
	Prefix   string
	PageSize int32
}

// Result represents one page of a listing.
type Result struct {
	Objects           []s3types.Object
	IsTruncated       bool
	ContinuationToken string
	KeyCount          int
}

// ListWithPaginator creates a paginator over every page below config.Prefix.
func (l *Lister) ListWithPaginator(config *Config) *Paginator {
	return &Paginator{
		client:    l.client,
		config:    config,
		pageSize:  optimalPageSize(config),
		firstPage: true,
	}
}

// Expand lists every object below folderPrefix in bucket, skipping folder
// placeholders. The sequence stops with a *errors.WildcardExpansionMaximumError
// as soon as more than maximum objects were produced, and with a
// *errors.WildcardExpansionEmptyError when the listing finished without any.
// Key is the wildcard as written by the caller and only used in errors.
//
// The sequence is single-use: ranging again lists the prefix again.
func (l *Lister) Expand(
	ctx context.Context,
	bucket, folderPrefix, key string,
	maximum int,
) iter.Seq2[s3types.Object, error] {
	return func(yield func(s3types.Object, error) bool) {
		paginator := l.ListWithPaginator(&Config{
			Bucket: bucket,
			Prefix: folderPrefix,
		})

		count := 0
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(s3types.Object{}, errors.NewObjectError("expand", bucket, key, err))
				return
			}

			for _, obj := range page.Objects {
				if IsFolderPlaceholder(obj) {
					continue
				}

				count++
				if count > maximum {
					yield(s3types.Object{}, &errors.WildcardExpansionMaximumError{
						Bucket:  bucket,
						Key:     key,
						Maximum: maximum,
					})
					return
				}

				if !yield(obj, nil) {
					return
				}
			}
		}

		if count == 0 {
			yield(s3types.Object{}, &errors.WildcardExpansionEmptyError{Bucket: bucket, Key: key})
		}
	}
}

// FolderPrefix returns the listing prefix of a wildcard key: the folder
// with its trailing slash, so "abc/*" never matches a sibling "abcdef".
// The bucket-wide wildcard "/*" lists everything.
func FolderPrefix(wildcardKey string) string {
	prefix := strings.TrimSuffix(wildcardKey, "*")
	if prefix == "/" {
		return ""
	}
	return prefix
}

// IsFolderPlaceholder reports whether a listing entry is the zero-byte
// object consoles create to show an empty folder.
func IsFolderPlaceholder(obj s3types.Object) bool {
	return obj.Size == 0 && strings.HasSuffix(obj.Key, "/")
}

// Paginator handles pagination with continuation tokens.
type Paginator struct {
	client            S3Interface
	config            *Config
	pageSize          int32
	continuationToken *string
	hasMorePages      bool
	firstPage         bool
}

// HasMorePages returns true if there are more pages to fetch.
func (p *Paginator) HasMorePages() bool {
	return p.firstPage || p.hasMorePages
}

// NextPage fetches the next page of results.
func (p *Paginator) NextPage(ctx context.Context) (*Result, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.config.Bucket),
		MaxKeys: aws.Int32(p.pageSize),
	}

	if p.config.Prefix != "" {
		input.Prefix = aws.String(p.config.Prefix)
	}

	if !p.firstPage && p.continuationToken != nil {
		input.ContinuationToken = p.continuationToken
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects page: %w", err)
	}

	p.firstPage = false
	p.hasMorePages = aws.ToBool(output.IsTruncated) && output.NextContinuationToken != nil
	p.continuationToken = output.NextContinuationToken

	return convertOutput(output), nil
}

// convertOutput converts S3 output to our Result type.
func convertOutput(output *s3.ListObjectsV2Output) *Result {
	result := &Result{
		Objects:     make([]s3types.Object, 0, len(output.Contents)),
		IsTruncated: aws.ToBool(output.IsTruncated),
		KeyCount:    int(aws.ToInt32(output.KeyCount)),
	}

	if output.NextContinuationToken != nil {
		result.ContinuationToken = *output.NextContinuationToken
	}

	for _, obj := range output.Contents {
		result.Objects = append(result.Objects, s3types.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}

	return result
}

// optimalPageSize determines the page size for pagination.
func optimalPageSize(config *Config) int32 {
	if config.PageSize > 0 && config.PageSize <= 1000 {
		return config.PageSize
	}
	// Default to maximum for efficiency
	return 1000
}
