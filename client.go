package s3copy

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/operations/probe"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/plan"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/internal/thaw"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// Client plans copies using one S3 client.
// It holds no state between calls and is safe for concurrent use.
type Client struct {
	// s3Client is the S3 API the operations call
	s3Client s3api.S3API

	planner *plan.Planner
	gate    *thaw.Gate
	writer  *probe.WriteProber

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a new client with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	client, err := s3copy.New(
//	    s3copy.WithRegion("us-west-2"),
//	    s3copy.WithMaxRetries(5),
//	)
func New(opts ...s3types.Option) (*Client, error) {
	clientCfg := defaultConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
		})
	}

	switch {
	case clientCfg.CustomHTTPClient != nil:
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = clientCfg.CustomHTTPClient
		})
	case clientCfg.Timeout > 0:
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return newClient(s3.NewFromConfig(cfg, s3Opts...), clientCfg), nil
}

// NewWithClient creates a client over a custom S3API implementation.
// This is primarily used for testing with mocked clients. Options that
// configure the AWS connection are ignored.
func NewWithClient(s3Client s3api.S3API, opts ...s3types.Option) *Client {
	clientCfg := defaultConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}
	return newClient(s3Client, clientCfg)
}

func defaultConfig() *s3types.ClientConfig {
	return &s3types.ClientConfig{
		MaxRetries: 3, // Default retry count
	}
}

func newClient(s3Client s3api.S3API, clientCfg *s3types.ClientConfig) *Client {
	var m *metrics.Metrics
	if clientCfg.Registerer != nil {
		m = metrics.New(clientCfg.Registerer)
	}

	return &Client{
		s3Client: s3Client,
		planner:  plan.New(s3Client, clientCfg.Logger, m),
		gate:     thaw.New(s3Client, clientCfg.Logger, m),
		writer:   probe.New(s3Client),
		logger:   clientCfg.Logger,
		metrics:  m,
	}
}
