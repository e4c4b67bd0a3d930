package head

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// Prober fetches object metadata with HeadObject.
type Prober struct {
	s3Client s3api.S3API
}

// New creates a new Prober.
func New(s3Client s3api.S3API) *Prober {
	return &Prober{
		s3Client: s3Client,
	}
}

// Probe returns the metadata of bucket/key.
// A missing object is reported as *errors.SourceObjectNotFoundError; any
// other failure is wrapped in an *errors.Error naming the object.
func (p *Prober) Probe(ctx context.Context, bucket, key string) (*s3types.ObjectMetadata, error) {
	output, err := p.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if s3api.IsNotFound(err) {
			return nil, &errors.SourceObjectNotFoundError{Bucket: bucket, Key: key}
		}
		if s3api.ErrorCode(err) == s3api.CodeAccessDenied {
			return nil, errors.NewObjectError("headObject", bucket, key, errors.ErrAccessDenied).
				WithMessage(err.Error())
		}
		return nil, errors.NewObjectError("headObject", bucket, key, err)
	}

	return convertOutput(output), nil
}

func convertOutput(output *s3.HeadObjectOutput) *s3types.ObjectMetadata {
	// HeadObject omits the storage class of STANDARD objects
	storageClass := s3types.StorageClass(output.StorageClass)
	if storageClass == "" {
		storageClass = s3types.StorageClassStandard
	}

	return &s3types.ObjectMetadata{
		ContentLength: aws.ToInt64(output.ContentLength),
		LastModified:  aws.ToTime(output.LastModified),
		ETag:          aws.ToString(output.ETag),
		StorageClass:  storageClass,
		ArchiveStatus: s3types.ArchiveStatus(output.ArchiveStatus),
		Restore:       aws.ToString(output.Restore),
	}
}
