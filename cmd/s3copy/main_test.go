package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

const testBucket = "source-bucket"

type invocation struct {
	code   int
	stdout string
	stderr string
	cfg    *Config
}

// invoke runs the CLI against fake with stdin as the request document.
func invoke(t *testing.T, fake *testutil.FakeS3, stdin string, args ...string) invocation {
	t.Helper()

	var stdout, stderr bytes.Buffer
	var seen *Config
	factory := func(cfg *Config, logger *slog.Logger) (*s3copy.Client, error) {
		seen = cfg
		return s3copy.NewWithClient(fake, s3copy.WithLogger(logger)), nil
	}

	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr, factory)
	return invocation{code: code, stdout: stdout.String(), stderr: stderr.String(), cfg: seen}
}

func decodeEnvelope(t *testing.T, out string) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	return env
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Resolve(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.PutTestObject(testBucket, "run/a/1.bam", 10)
	fake.PutTestObject(testBucket, "run/a/2.bam", 20)

	request := `{
		"BatchInput": {"destinationFolderKey": "dest/", "maximumExpansion": 10},
		"Items": [{"sourceBucket": "source-bucket", "sourceKey": "run/a/*"}]
	}`

	got := invoke(t, fake, request, "resolve")
	require.Equal(t, exitOK, got.code, got.stdout)

	var objects []s3types.ResolvedObject
	require.NoError(t, json.Unmarshal([]byte(got.stdout), &objects))
	require.Len(t, objects, 2)
	assert.Equal(t, "dest/1.bam", objects[0].DestinationKey)
	assert.Equal(t, "dest/2.bam", objects[1].DestinationKey)
	assert.Equal(t, "STANDARD", objects[0].StorageClass)
	assert.Contains(t, got.stderr, "invocation=")
}

func TestRun_ResolveErrors(t *testing.T) {
	tests := []struct {
		name     string
		request  string
		wantType string
	}{
		{
			name:     "malformed document",
			request:  `{"BatchInput": `,
			wantType: "ValidationError",
		},
		{
			name:     "unknown field",
			request:  `{"BatchInput": {"destinationFolderKey": "dest/", "maximumExpansion": 1}, "Items": [], "Extra": 1}`,
			wantType: "ValidationError",
		},
		{
			name: "missing object",
			request: `{
				"BatchInput": {"destinationFolderKey": "dest/", "maximumExpansion": 1},
				"Items": [{"sourceBucket": "source-bucket", "sourceKey": "missing.bam"}]
			}`,
			wantType: "SourceObjectNotFound",
		},
		{
			name: "empty wildcard",
			request: `{
				"BatchInput": {"destinationFolderKey": "dest/", "maximumExpansion": 1},
				"Items": [{"sourceBucket": "source-bucket", "sourceKey": "nothing/*"}]
			}`,
			wantType: "WildcardExpansionEmptyError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeS3()
			fake.CreateBucket(testBucket)

			got := invoke(t, fake, tt.request, "resolve")
			assert.Equal(t, exitError, got.code)

			env := decodeEnvelope(t, got.stdout)
			assert.Equal(t, tt.wantType, env.ErrorType)
			assert.NotEmpty(t, env.ErrorMessage)
		})
	}
}

func TestRun_Thaw(t *testing.T) {
	request := `{
		"Items": [
			{"bucket": "source-bucket", "key": "cold.bam"},
			{"bucket": "source-bucket", "key": "warm.bam"}
		],
		"BatchInput": {}
	}`

	t.Run("archived objects exit with tempfail", func(t *testing.T) {
		fake := testutil.NewFakeS3()
		fake.PutTestObjectWithClass(testBucket, "cold.bam", 1, types.StorageClassDeepArchive, "")
		fake.PutTestObject(testBucket, "warm.bam", 1)

		got := invoke(t, fake, request, "thaw")
		assert.Equal(t, exitStillThawing, got.code)

		env := decodeEnvelope(t, got.stdout)
		assert.Equal(t, "IsThawingError", env.ErrorType)
		assert.Contains(t, env.ErrorMessage, "1/2")

		restores := fake.Restores()
		require.Len(t, restores, 1)
		assert.Equal(t, int32(1), restores[0].Days)
		assert.Equal(t, types.TierStandard, restores[0].Tier)
	})

	t.Run("readable objects pass through", func(t *testing.T) {
		fake := testutil.NewFakeS3()
		fake.PutTestObject(testBucket, "cold.bam", 1)
		fake.PutTestObject(testBucket, "warm.bam", 1)

		got := invoke(t, fake, request, "thaw")
		require.Equal(t, exitOK, got.code, got.stdout)

		var items []s3types.ThawItem
		require.NoError(t, json.Unmarshal([]byte(got.stdout), &items))
		assert.Equal(t, []s3types.ThawItem{
			{Bucket: testBucket, Key: "cold.bam"},
			{Bucket: testBucket, Key: "warm.bam"},
		}, items)
	})

	t.Run("config policy applies under request overrides", func(t *testing.T) {
		fake := testutil.NewFakeS3()
		fake.PutTestObjectWithClass(testBucket, "cold.bam", 1, types.StorageClassDeepArchive, "")
		fake.PutTestObjectWithClass(testBucket, "warm.bam", 1, types.StorageClassGlacier, "")

		cfgPath := writeFile(t, "config.yaml", `
thaw_policy:
  glacierDeepArchiveThawDays: 7
  glacierFlexibleRetrievalThawDays: 3
`)
		overriding := `{
			"Items": [
				{"bucket": "source-bucket", "key": "cold.bam"},
				{"bucket": "source-bucket", "key": "warm.bam"}
			],
			"BatchInput": {"glacierFlexibleRetrievalThawDays": 2}
		}`

		got := invoke(t, fake, overriding, "thaw", "--config", cfgPath)
		assert.Equal(t, exitStillThawing, got.code)

		restores := fake.Restores()
		require.Len(t, restores, 2)
		assert.Equal(t, int32(7), restores[0].Days)
		assert.Equal(t, int32(2), restores[1].Days)
	})

	t.Run("disallowed speed is rejected", func(t *testing.T) {
		fake := testutil.NewFakeS3()
		fake.PutTestObjectWithClass(testBucket, "cold.bam", 1, types.StorageClassDeepArchive, "")
		fake.PutTestObject(testBucket, "warm.bam", 1)

		bad := `{
			"Items": [{"bucket": "source-bucket", "key": "cold.bam"}],
			"BatchInput": {"glacierDeepArchiveThawSpeed": "Expedited"}
		}`

		got := invoke(t, fake, bad, "thaw")
		assert.Equal(t, exitError, got.code)
		assert.Equal(t, "InvalidThawParamsError", decodeEnvelope(t, got.stdout).ErrorType)
		assert.Empty(t, fake.Restores())
	})
}

func TestRun_CanWrite(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.CreateBucket("dest-bucket")

	request := `{
		"destinationBucket": "dest-bucket",
		"destinationFolderKey": "out/",
		"destinationStartCopyRelativeKey": "STARTED_COPY.txt"
	}`

	got := invoke(t, fake, request, "can-write")
	require.Equal(t, exitOK, got.code, got.stdout)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(got.stdout), &out))
	assert.Equal(t, "out/STARTED_COPY.txt", out["key"])
	assert.Equal(t, []string{"dest-bucket/out/STARTED_COPY.txt"}, fake.Puts())
}

func TestRun_InputFile(t *testing.T) {
	fake := testutil.NewFakeS3()
	fake.PutTestObject(testBucket, "one.bam", 1)

	path := writeFile(t, "request.json", `{
		"BatchInput": {"destinationFolderKey": "", "maximumExpansion": 1},
		"Items": [{"sourceBucket": "source-bucket", "sourceKey": "one.bam"}]
	}`)

	got := invoke(t, fake, "", "resolve", "--input", path)
	require.Equal(t, exitOK, got.code, got.stdout)
	assert.Contains(t, got.stdout, `"destinationKey": "one.bam"`)
}

func TestRun_FlagsOverrideConfig(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", `
region: eu-west-1
endpoint: http://localhost:4566
max_retries: 5
`)
	request := `{"BatchInput": {"destinationFolderKey": "", "maximumExpansion": 1}, "Items": []}`

	got := invoke(t, testutil.NewFakeS3(), request,
		"resolve", "--config", cfgPath, "--region", "ap-southeast-2", "--path-style")
	require.Equal(t, exitOK, got.code, got.stdout)
	require.NotNil(t, got.cfg)

	assert.Equal(t, "ap-southeast-2", got.cfg.Region)
	assert.Equal(t, "http://localhost:4566", got.cfg.Endpoint)
	assert.Equal(t, 5, got.cfg.MaxRetries)
	assert.True(t, got.cfg.ForcePathStyle)
}

func TestRun_SetupErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad log level", args: []string{"resolve", "--log-level", "loud"}},
		{name: "bad log format", args: []string{"resolve", "--log-format", "xml"}},
		{name: "missing config", args: []string{"resolve", "--config", "/nonexistent/s3copy.yaml"}},
		{name: "unknown command", args: []string{"copy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoke(t, testutil.NewFakeS3(), "{}", tt.args...)
			assert.Equal(t, exitError, got.code)
			assert.Equal(t, "Error", decodeEnvelope(t, got.stdout).ErrorType)
		})
	}
}

func TestRun_Version(t *testing.T) {
	got := invoke(t, testutil.NewFakeS3(), "", "version", "--log-level", "loud")
	assert.Equal(t, exitOK, got.code)
	assert.Contains(t, got.stdout, "s3copy dev")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}
