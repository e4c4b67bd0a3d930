package s3copy

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

func newTestClient(t *testing.T, fake *testutil.FakeS3) (*Client, *prometheus.Registry, *bytes.Buffer) {
	t.Helper()
	registry := prometheus.NewRegistry()
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewWithClient(fake, WithMetrics(registry), WithLogger(logger)), registry, &logs
}

func TestClient_ResolveThenThaw(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.PutTestObject("src", "run/a.bam", 10)
	fake.PutTestObjectWithClass("src", "run/cold/b.bam", 20, types.StorageClassGlacier, "")

	client, _, logs := newTestClient(t, fake)
	ctx := context.Background()

	objects, err := client.Resolve(ctx, s3types.ResolveRequest{
		BatchInput: s3types.BatchInput{DestinationFolderKey: "copy/", MaximumExpansion: 10},
		Items:      []s3types.SourceItem{{SourceBucket: "src", SourceKey: "run/*"}},
	})
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "copy/a.bam", objects[0].DestinationKey)
	assert.Equal(t, "copy/cold/b.bam", objects[1].DestinationKey)
	assert.Equal(t, "GLACIER", objects[1].StorageClass)

	req := s3types.ThawRequest{}
	for _, obj := range objects {
		req.Items = append(req.Items, s3types.ThawItem{Bucket: obj.SourceBucket, Key: obj.SourceKey})
	}

	result, err := client.Thaw(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, s3types.ThawStatusStillThawing, result.Status)
	assert.Equal(t, 1, result.Thawing)
	assert.True(t, errors.IsStillThawing(result.Err()))

	fake.CompleteRestore("src", "run/cold/b.bam")

	result, err = client.Thaw(ctx, req)
	require.NoError(t, err)
	assert.True(t, result.Ready())
	assert.Equal(t, req.Items, result.Items)

	assert.Contains(t, logs.String(), `"msg":"issued restore"`)
}

func TestClient_Metrics(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.PutTestObjectWithClass("src", "deep.bam", 1, types.StorageClassDeepArchive, "")
	fake.CreateBucket("dest")

	client, registry, _ := newTestClient(t, fake)
	ctx := context.Background()

	_, err := client.Resolve(ctx, s3types.ResolveRequest{
		BatchInput: s3types.BatchInput{MaximumExpansion: 1},
		Items:      []s3types.SourceItem{{SourceBucket: "src", SourceKey: "missing.bam"}},
	})
	require.Error(t, err)

	_, err = client.Thaw(ctx, s3types.ThawRequest{Items: []s3types.ThawItem{{Bucket: "src", Key: "deep.bam"}}})
	require.NoError(t, err)

	_, err = client.CanWrite(ctx, s3types.CanWriteRequest{DestinationBucket: "dest", MarkerRelativeKey: "marker"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(client.metrics.OperationsTotal.WithLabelValues("resolve", "failure")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(client.metrics.OperationsTotal.WithLabelValues("thaw", "thawing")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(client.metrics.OperationsTotal.WithLabelValues("canWrite", "success")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(client.metrics.ObjectsThawing))

	count, err := promtestutil.GatherAndCount(registry, "s3copy_restores_issued_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClient_ResolveFailureIsLogged(t *testing.T) {
	client, _, logs := newTestClient(t, testutil.NewFakeS3())

	_, err := client.Resolve(context.Background(), s3types.ResolveRequest{
		BatchInput: s3types.BatchInput{DestinationFolderKey: "bad", MaximumExpansion: 1},
	})

	var validationErr *errors.ValidationError
	require.True(t, stderrors.As(err, &validationErr))
	assert.Contains(t, logs.String(), `"code":"ValidationError"`)
}

func TestClient_CanWrite(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.CreateBucket("dest")
	client := NewWithClient(fake)

	key, err := client.CanWrite(context.Background(), s3types.CanWriteRequest{
		DestinationBucket:    "dest",
		DestinationFolderKey: "out/",
		MarkerRelativeKey:    "STARTED.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, "out/STARTED.txt", key)
	assert.Equal(t, []string{"dest/out/STARTED.txt"}, fake.Puts())

	_, err = client.CanWrite(context.Background(), s3types.CanWriteRequest{
		DestinationBucket: "elsewhere",
		MarkerRelativeKey: "STARTED.txt",
	})
	require.Error(t, err)
}
