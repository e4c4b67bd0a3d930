package thaw

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/operations/head"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// Gate probes objects and issues restores for archived ones.
type Gate struct {
	s3Client s3api.S3API
	prober   *head.Prober
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a Gate. logger and m may be nil.
func New(s3Client s3api.S3API, logger *slog.Logger, m *metrics.Metrics) *Gate {
	return &Gate{
		s3Client: s3Client,
		prober:   head.New(s3Client),
		logger:   logger,
		metrics:  m,
	}
}

// Run gates every item in order and returns a tagged result.
//
// A missing object, a restore request the store refuses, an invalid policy
// and context expiry end the call with an error. Any other probe failure
// is logged and the object is passed on unchecked, so the copy stage can
// report it with its own diagnostics.
func (g *Gate) Run(ctx context.Context, req s3types.ThawRequest) (*s3types.ThawResult, error) {
	if err := ValidatePolicy(req.BatchInput); err != nil {
		return nil, err
	}

	result := &s3types.ThawResult{
		Total:     len(req.Items),
		Items:     req.Items,
		Decisions: make([]s3types.ThawDecision, 0, len(req.Items)),
	}

	for _, item := range req.Items {
		decision, err := g.gateItem(ctx, item, req.BatchInput)
		if err != nil {
			return nil, err
		}
		if decision.State == s3types.ThawStateArchivedRestoring {
			result.Thawing++
		}
		result.Decisions = append(result.Decisions, decision)
	}

	result.Status = s3types.ThawStatusReady
	if result.Thawing > 0 {
		result.Status = s3types.ThawStatusStillThawing
	}
	g.metrics.SetThawing(result.Thawing)

	if g.logger != nil {
		g.logger.InfoContext(ctx, "gated objects",
			"status", result.Status,
			"thawing", result.Thawing,
			"total", result.Total)
	}

	return result, nil
}

func (g *Gate) gateItem(
	ctx context.Context,
	item s3types.ThawItem,
	policy s3types.ThawPolicy,
) (s3types.ThawDecision, error) {
	decision := s3types.ThawDecision{Bucket: item.Bucket, Key: item.Key}

	meta, err := g.prober.Probe(ctx, item.Bucket, item.Key)
	if err != nil {
		if errors.IsObjectNotFound(err) || ctx.Err() != nil {
			return decision, err
		}
		if g.logger != nil {
			g.logger.WarnContext(ctx, "skipping object that could not be probed",
				"bucket", item.Bucket,
				"key", item.Key,
				"error", err)
		}
		decision.State = s3types.ThawStateActive
		decision.Skipped = true
		return decision, nil
	}

	decision.State = Classify(meta)
	decision.Tier = TierOf(meta)
	if decision.State != s3types.ThawStateArchivedIdle {
		return decision, nil
	}

	rule := RuleFor(policy, decision.Tier)
	decision.Days = rule.Days
	decision.Speed = rule.Speed

	alreadyRestoring, err := g.restore(ctx, item, rule)
	if err != nil {
		if g.logger != nil {
			g.logger.ErrorContext(ctx, "failed to issue restore",
				"bucket", item.Bucket,
				"key", item.Key,
				"tier", decision.Tier,
				"error", err)
		}
		return decision, err
	}

	decision.State = s3types.ThawStateArchivedRestoring
	decision.Issued = !alreadyRestoring
	if decision.Issued {
		g.metrics.RecordRestore(string(decision.Tier), string(rule.Speed))
		if g.logger != nil {
			g.logger.InfoContext(ctx, "issued restore",
				"bucket", item.Bucket,
				"key", item.Key,
				"tier", decision.Tier,
				"days", rule.Days,
				"speed", rule.Speed)
		}
	}

	return decision, nil
}

// restore asks S3 to restore one object. A restore that another caller
// started between our probe and this request is reported, not failed.
func (g *Gate) restore(ctx context.Context, item s3types.ThawItem, rule Rule) (alreadyRestoring bool, err error) {
	_, err = g.s3Client.RestoreObject(ctx, &s3.RestoreObjectInput{
		Bucket: aws.String(item.Bucket),
		Key:    aws.String(item.Key),
		RestoreRequest: &types.RestoreRequest{
			Days: aws.Int32(int32(rule.Days)),
			GlacierJobParameters: &types.GlacierJobParameters{
				Tier: types.Tier(rule.Speed),
			},
		},
	})
	if err == nil {
		return false, nil
	}

	if s3api.ErrorCode(err) == s3api.CodeRestoreAlreadyInProgress {
		return true, nil
	}

	return false, errors.NewObjectError("restoreObject", item.Bucket, item.Key, err)
}
