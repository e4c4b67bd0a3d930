package list

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/testutil"
)

func collect(t *testing.T, l *Lister, prefix string, maximum int) ([]string, error) {
	t.Helper()
	var keys []string
	for obj, err := range l.Expand(context.Background(), "bucket", prefix, prefix+"*", maximum) {
		if err != nil {
			return keys, err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func TestFolderPrefix(t *testing.T) {
	assert.Equal(t, "abc/", FolderPrefix("abc/*"))
	assert.Equal(t, "a/b/", FolderPrefix("a/b/*"))
	assert.Equal(t, "", FolderPrefix("/*"))
}

func TestLister_Expand(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.PageSize = 2
	for i := range 5 {
		fake.PutTestObject("bucket", fmt.Sprintf("data/file%d.txt", i), 10)
	}
	fake.PutTestObject("bucket", "data/", 0)
	fake.PutTestObject("bucket", "data/nested/", 0)
	fake.PutTestObject("bucket", "data/nested/deep.txt", 3)
	fake.PutTestObject("bucket", "data/empty.txt", 0)
	fake.PutTestObject("bucket", "database.txt", 1)
	fake.PutTestObject("bucket", "placeholders/", 0)
	fake.PutTestObject("bucket", "placeholders/a/", 0)

	tests := []struct {
		name     string
		prefix   string
		maximum  int
		want     []string
		checkErr func(t *testing.T, err error)
	}{
		{
			name:    "expands_across_pages_and_skips_placeholders",
			prefix:  "data/",
			maximum: 100,
			want: []string{
				"data/empty.txt",
				"data/file0.txt", "data/file1.txt", "data/file2.txt", "data/file3.txt", "data/file4.txt",
				"data/nested/deep.txt",
			},
		},
		{
			name:    "exact_maximum_is_allowed",
			prefix:  "data/",
			maximum: 7,
			want: []string{
				"data/empty.txt",
				"data/file0.txt", "data/file1.txt", "data/file2.txt", "data/file3.txt", "data/file4.txt",
				"data/nested/deep.txt",
			},
		},
		{
			name:    "exceeding_maximum_fails",
			prefix:  "data/",
			maximum: 3,
			checkErr: func(t *testing.T, err error) {
				var maxErr *errors.WildcardExpansionMaximumError
				require.True(t, stderrors.As(err, &maxErr))
				assert.Equal(t, "bucket", maxErr.Bucket)
				assert.Equal(t, "data/*", maxErr.Key)
				assert.Equal(t, 3, maxErr.Maximum)
			},
		},
		{
			name:    "only_placeholders_is_empty",
			prefix:  "placeholders/",
			maximum: 10,
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errors.ErrWildcardExpansionEmpty)
				assert.Equal(t, errors.CodeWildcardExpansionEmpty, errors.Code(err))
			},
		},
		{
			name:    "missing_prefix_is_empty",
			prefix:  "nothing/",
			maximum: 10,
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errors.ErrWildcardExpansionEmpty)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := collect(t, New(fake), tt.prefix, tt.maximum)
			if tt.checkErr != nil {
				require.Error(t, err)
				tt.checkErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestLister_ExpandStopsListingAtMaximum(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.PageSize = 2
	for i := range 10 {
		fake.PutTestObject("bucket", fmt.Sprintf("lots/%d.txt", i), 1)
	}

	_, err := collect(t, New(fake), "lots/", 3)
	assert.ErrorIs(t, err, errors.ErrWildcardExpansionMaximum)
	assert.Equal(t, 2, fake.ListCalls)
}

func TestLister_ExpandIsLazy(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.PageSize = 1
	for i := range 4 {
		fake.PutTestObject("bucket", fmt.Sprintf("lazy/%d.txt", i), 1)
	}

	seq := New(fake).Expand(context.Background(), "bucket", "lazy/", "lazy/*", 10)
	assert.Equal(t, 0, fake.ListCalls)

	for obj, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, "lazy/0.txt", obj.Key)
		break
	}
	assert.Equal(t, 1, fake.ListCalls)
}

func TestLister_ExpandListError(t *testing.T) {
	client := testutil.NewMockBuilder().WithAccessDenied().Build()

	_, err := collect(t, New(client), "data/", 10)
	require.Error(t, err)

	var opErr *errors.Error
	require.True(t, stderrors.As(err, &opErr))
	assert.Equal(t, "expand", opErr.Op)
	assert.Equal(t, "bucket", opErr.Bucket)
}

func TestPaginator_ContinuationToken(t *testing.T) {
	var tokens []string
	client := testutil.NewMockBuilder().
		WithListObjectsV2(func(ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
			if in.ContinuationToken == nil {
				tokens = append(tokens, "")
				return testutil.CreateListObjectsV2Output(
					[]types.Object{testutil.CreateTestObject("p/a", 1)}, "next"), nil
			}
			tokens = append(tokens, *in.ContinuationToken)
			return testutil.CreateListObjectsV2Output(
				[]types.Object{testutil.CreateTestObject("p/b", 1)}, ""), nil
		}).
		Build()

	paginator := New(client).ListWithPaginator(&Config{Bucket: "bucket", Prefix: "p/", PageSize: 1})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		require.NoError(t, err)
		for _, obj := range page.Objects {
			keys = append(keys, obj.Key)
		}
	}

	assert.Equal(t, []string{"p/a", "p/b"}, keys)
	assert.Equal(t, []string{"", "next"}, tokens)
}

func TestIsFolderPlaceholder(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.PutTestObject("bucket", "dir/", 0)
	fake.PutTestObject("bucket", "dir/nonempty/", 5)

	keys, err := collect(t, New(fake), "dir/", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/nonempty/"}, keys)
}
