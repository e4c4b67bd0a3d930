//go:build integration
// +build integration

package s3copy_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// TestIntegrationResolveAndThaw runs the planner against LocalStack.
func TestIntegrationResolveAndThaw(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, s3Client, cleanup := testutil.SetupLocalStackTest(t)
	defer cleanup()

	bucket := testutil.GenerateTestBucketName("s3copy-source")
	require.NoError(t, testutil.CreateTestBucketInLocalStack(ctx, s3Client, bucket))

	prefix := "run/"
	seed := map[string]types.StorageClass{
		prefix + "1.bam":              "",
		prefix + "aa/file2.bam":       "",
		prefix + "aa/file3.fastq":     "",
		prefix + "bb/file4.fastq":     types.StorageClassDeepArchive,
		prefix + "bb/file5.fastq":     "",
		prefix + "bb/ccc/file6.fastq": "",
		prefix + "none/":              "",
	}
	for i := range 10 {
		seed[fmt.Sprintf("%slots/of/%d.txt", prefix, i)] = ""
	}
	for key, class := range seed {
		require.NoError(t, testutil.SeedObject(ctx, s3Client, bucket, key, class))
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	client, err := s3copy.New(
		s3copy.WithRegion(container.Region()),
		s3copy.WithEndpoint(container.Endpoint()),
		s3copy.WithForcePathStyle(true),
	)
	require.NoError(t, err)

	batch := s3types.BatchInput{DestinationFolderKey: "abc/", MaximumExpansion: 5}

	t.Run("wildcard over maximum", func(t *testing.T) {
		_, err := client.Resolve(ctx, s3types.ResolveRequest{
			BatchInput: batch,
			Items:      []s3types.SourceItem{{SourceBucket: bucket, SourceKey: prefix + "lots/of/*"}},
		})
		assert.ErrorIs(t, err, errors.ErrWildcardExpansionMaximum)
	})

	t.Run("wildcard over empty folder", func(t *testing.T) {
		_, err := client.Resolve(ctx, s3types.ResolveRequest{
			BatchInput: batch,
			Items:      []s3types.SourceItem{{SourceBucket: bucket, SourceKey: prefix + "none/*"}},
		})
		assert.ErrorIs(t, err, errors.ErrWildcardExpansionEmpty)
	})

	t.Run("duplicates preserved", func(t *testing.T) {
		objects, err := client.Resolve(ctx, s3types.ResolveRequest{
			BatchInput: batch,
			Items: []s3types.SourceItem{
				{SourceBucket: bucket, SourceKey: prefix + "1.bam"},
				{SourceBucket: bucket, SourceKey: prefix + "aa/file2.bam"},
				{SourceBucket: bucket, SourceKey: prefix + "aa/*"},
			},
		})
		require.NoError(t, err)

		keys := make([]string, 0, len(objects))
		for _, obj := range objects {
			keys = append(keys, obj.DestinationKey)
		}
		assert.Equal(t, []string{"abc/1.bam", "abc/file2.bam", "abc/file2.bam", "abc/file3.fastq"}, keys)
	})

	t.Run("deep archive starts thawing", func(t *testing.T) {
		result, err := client.Thaw(ctx, s3types.ThawRequest{
			Items: []s3types.ThawItem{
				{Bucket: bucket, Key: prefix + "1.bam"},
				{Bucket: bucket, Key: prefix + "bb/file4.fastq"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
		assert.Equal(t, 1, result.Thawing)
		assert.True(t, errors.IsStillThawing(result.Err()))
	})

	t.Run("can write marker", func(t *testing.T) {
		key, err := client.CanWrite(ctx, s3types.CanWriteRequest{
			DestinationBucket:    bucket,
			DestinationFolderKey: "abc/",
			MarkerRelativeKey:    "STARTED_COPY.txt",
		})
		require.NoError(t, err)
		assert.Equal(t, "abc/STARTED_COPY.txt", key)
	})
}
