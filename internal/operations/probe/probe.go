package probe

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// MarkerBody is the content of the marker object.
const MarkerBody = "A file created by s3copy to ensure correct permissions and to mark the start of the copy process"

// WriteProber writes marker objects.
type WriteProber struct {
	s3Client s3api.S3API
}

// New creates a new WriteProber.
func New(s3Client s3api.S3API) *WriteProber {
	return &WriteProber{
		s3Client: s3Client,
	}
}

// CanWrite uploads the marker object and returns its key. A bucket in
// another region than RequiredRegion yields errors.ErrWrongRegion and a
// refused write yields errors.ErrAccessDenied.
func (p *WriteProber) CanWrite(ctx context.Context, req s3types.CanWriteRequest) (string, error) {
	if req.DestinationBucket == "" {
		return "", errors.NewError("canWrite", errors.ErrInvalidInput).
			WithMessage("destinationBucket must be specified")
	}
	if err := validation.ValidateDestinationFolderKey(req.DestinationFolderKey); err != nil {
		return "", err
	}
	if req.MarkerRelativeKey == "" || strings.HasSuffix(req.MarkerRelativeKey, "/") ||
		strings.Contains(req.MarkerRelativeKey, "..") {
		return "", errors.NewError("canWrite", errors.ErrInvalidObjectKey).
			WithKey(req.MarkerRelativeKey).
			WithMessage("marker key must name an object below the destination folder")
	}

	key := req.DestinationFolderKey + req.MarkerRelativeKey

	var optFns []func(*s3.Options)
	if req.RequiredRegion != "" {
		optFns = append(optFns, func(o *s3.Options) {
			o.Region = req.RequiredRegion
		})
	}

	_, err := p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(req.DestinationBucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(MarkerBody),
	}, optFns...)
	if err != nil {
		switch s3api.ErrorCode(err) {
		case s3api.CodePermanentRedirect:
			return "", errors.NewObjectError("canWrite", req.DestinationBucket, key, errors.ErrWrongRegion).
				WithMessage("put failed because the bucket is in another region")
		case s3api.CodeAccessDenied:
			return "", errors.NewObjectError("canWrite", req.DestinationBucket, key, errors.ErrAccessDenied).
				WithMessage("put failed with access denied")
		}
		return "", errors.NewObjectError("canWrite", req.DestinationBucket, key, err)
	}

	return key, nil
}
