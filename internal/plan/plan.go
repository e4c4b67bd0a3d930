package plan

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/destination"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/operations/head"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/operations/list"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// ISOTimeFormat is the layout of lastModifiedISOString: UTC with milliseconds.
const ISOTimeFormat = "2006-01-02T15:04:05.000Z"

// Planner resolves copy instructions against S3.
type Planner struct {
	prober  *head.Prober
	lister  *list.Lister
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Planner. logger and m may be nil.
func New(s3Client s3api.S3API, logger *slog.Logger, m *metrics.Metrics) *Planner {
	return &Planner{
		prober:  head.New(s3Client),
		lister:  list.New(s3Client),
		logger:  logger,
		metrics: m,
	}
}

// Resolve validates the request, then resolves every item in input order
// and returns the objects sorted by destination key.
func (p *Planner) Resolve(ctx context.Context, req s3types.ResolveRequest) ([]s3types.ResolvedObject, error) {
	if err := validation.ValidateRequest(req.BatchInput, req.Items); err != nil {
		return nil, err
	}

	var acc Accumulator
	for i, item := range req.Items {
		var err error
		if validation.IsWildcard(item.SourceKey) {
			err = p.expandItem(ctx, i, item, req.BatchInput, &acc)
		} else {
			err = p.probeItem(ctx, item, req.BatchInput, &acc)
		}
		if err != nil {
			return nil, err
		}
	}

	p.metrics.RecordResolved(acc.Len())
	if p.logger != nil {
		p.logger.InfoContext(ctx, "resolved copy plan",
			"items", len(req.Items),
			"objects", acc.Len(),
			"destinationFolderKey", req.BatchInput.DestinationFolderKey)
	}

	return acc.Sorted(), nil
}

func (p *Planner) probeItem(
	ctx context.Context,
	item s3types.SourceItem,
	batch s3types.BatchInput,
	acc *Accumulator,
) error {
	meta, err := p.prober.Probe(ctx, item.SourceBucket, item.SourceKey)
	if err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "failed to probe source object",
				"bucket", item.SourceBucket,
				"key", item.SourceKey,
				"error", err)
		}
		return err
	}

	destinationKey, err := destination.Resolve(
		item.SourceKey,
		item.SourceRootFolderKey,
		batch.DestinationFolderKey,
		deref(item.DestinationRelativeFolderKey),
	)
	if err != nil {
		return errors.NewObjectError("resolve", item.SourceBucket, item.SourceKey, err)
	}

	acc.Add(s3types.ResolvedObject{
		SourceBucket:          item.SourceBucket,
		SourceKey:             item.SourceKey,
		DestinationKey:        destinationKey,
		StorageClass:          string(meta.StorageClass),
		Size:                  meta.ContentLength,
		ETag:                  meta.ETag,
		LastModifiedISOString: formatTime(meta.LastModified),
		Sums:                  item.Sums,
	})
	return nil
}

func (p *Planner) expandItem(
	ctx context.Context,
	index int,
	item s3types.SourceItem,
	batch s3types.BatchInput,
	acc *Accumulator,
) error {
	if err := validation.ValidateWildcardItem(index, item); err != nil {
		return err
	}

	prefix := list.FolderPrefix(item.SourceKey)
	relative := deref(item.DestinationRelativeFolderKey)

	// Objects are staged so a failed expansion leaves acc untouched.
	var staged []s3types.ResolvedObject
	for obj, err := range p.lister.Expand(ctx, item.SourceBucket, prefix, item.SourceKey, batch.MaximumExpansion) {
		if err != nil {
			p.metrics.RecordExpansion(expansionOutcome(err))
			if p.logger != nil {
				p.logger.ErrorContext(ctx, "failed to expand wildcard",
					"bucket", item.SourceBucket,
					"key", item.SourceKey,
					"maximumExpansion", batch.MaximumExpansion,
					"error", err)
			}
			return err
		}

		destinationKey, err := destination.Resolve(obj.Key, &prefix, batch.DestinationFolderKey, relative)
		if err != nil {
			return errors.NewObjectError("resolve", item.SourceBucket, obj.Key, err)
		}

		staged = append(staged, s3types.ResolvedObject{
			SourceBucket:          item.SourceBucket,
			SourceKey:             obj.Key,
			DestinationKey:        destinationKey,
			StorageClass:          storageClassOrDefault(obj.StorageClass),
			Size:                  obj.Size,
			ETag:                  obj.ETag,
			LastModifiedISOString: formatTime(obj.LastModified),
		})
	}

	p.metrics.RecordExpansion(metrics.ExpansionOK)
	if p.logger != nil {
		p.logger.DebugContext(ctx, "expanded wildcard",
			"bucket", item.SourceBucket,
			"key", item.SourceKey,
			"objects", len(staged))
	}

	for _, obj := range staged {
		acc.Add(obj)
	}
	return nil
}

func expansionOutcome(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrWildcardExpansionMaximum):
		return metrics.ExpansionMaximum
	case stderrors.Is(err, errors.ErrWildcardExpansionEmpty):
		return metrics.ExpansionEmpty
	default:
		return metrics.ExpansionError
	}
}

func storageClassOrDefault(storageClass string) string {
	if storageClass == "" {
		return string(s3types.StorageClassStandard)
	}
	return storageClass
}

func formatTime(t time.Time) string {
	return t.UTC().Format(ISOTimeFormat)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
