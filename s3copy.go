package s3copy

import (
	"context"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// Resolve validates req, probes direct items, expands wildcard items and
// returns every object with its destination key, sorted by destination key.
// Any failure fails the whole call; no partial list is returned.
func (c *Client) Resolve(ctx context.Context, req s3types.ResolveRequest) ([]s3types.ResolvedObject, error) {
	start := time.Now()

	objects, err := c.planner.Resolve(ctx, req)
	c.record(ctx, "resolve", start, err)
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// Thaw probes every item and issues restores for archived objects that
// are not being restored yet. A result with Status StillThawing means the
// caller should call Thaw again after a delay; result.Err() converts it
// to a retryable *errors.StillThawingError.
func (c *Client) Thaw(ctx context.Context, req s3types.ThawRequest) (*s3types.ThawResult, error) {
	start := time.Now()

	result, err := c.gate.Run(ctx, req)
	if err == nil && !result.Ready() {
		c.metrics.RecordOperation("thaw", metrics.StatusThawing, time.Since(start).Seconds())
		return result, nil
	}
	c.record(ctx, "thaw", start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CanWrite writes a marker object into the destination to prove the copy
// will be allowed, returning the marker key.
func (c *Client) CanWrite(ctx context.Context, req s3types.CanWriteRequest) (string, error) {
	start := time.Now()

	key, err := c.writer.CanWrite(ctx, req)
	c.record(ctx, "canWrite", start, err)
	if err != nil {
		return "", err
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "destination is writable",
			"bucket", req.DestinationBucket,
			"key", key)
	}
	return key, nil
}

func (c *Client) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailure
		if c.logger != nil {
			c.logger.ErrorContext(ctx, "operation failed",
				"operation", operation,
				"code", errors.Code(err),
				"error", err)
		}
	}
	c.metrics.RecordOperation(operation, status, time.Since(start).Seconds())
}
