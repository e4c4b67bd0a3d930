// s3copy plans bulk copies between S3 buckets.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	// exitStillThawing is EX_TEMPFAIL: repeat the call later.
	exitStillThawing = 75
)

// clientFactory builds the planner client from the merged configuration.
type clientFactory func(cfg *Config, logger *slog.Logger) (*s3copy.Client, error)

// app holds the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	newClient clientFactory

	cfgFile   string
	logLevel  string
	logFormat string
	input     string
	deadline  time.Duration

	region         string
	endpoint       string
	forcePathStyle bool
	maxRetries     int

	cfg    *Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, newAWSClient)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout, stderr io.Writer,
	newClient clientFactory,
) int {
	a := &app{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	writeErrorEnvelope(stdout, err)
	if errors.IsStillThawing(err) {
		return exitStillThawing
	}
	return exitError
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "s3copy",
		Short: "Plan bulk copies between S3 buckets",
		Long: `s3copy resolves copy instructions into concrete objects and gates the copy
behind restores of archived objects. It never copies data itself.

Requests and responses are JSON documents. Read them from a file with
--input or from stdin.

  # Resolve wildcards and destination keys
  s3copy resolve --input request.json > objects.json

  # Start restores; exits 75 until every object is readable
  s3copy thaw --input thaw.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file path")
	flags.StringVarP(&a.logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "text", "log format (text, json)")
	flags.StringVarP(&a.input, "input", "i", "-", "request document path, - for stdin")
	flags.DurationVar(&a.deadline, "deadline", 0, "overall deadline of the call (0 = none)")
	flags.StringVar(&a.region, "region", "", "AWS region")
	flags.StringVar(&a.endpoint, "endpoint", "", "custom S3 endpoint URL")
	flags.BoolVar(&a.forcePathStyle, "path-style", false, "use path-style S3 URLs")
	flags.IntVar(&a.maxRetries, "max-retries", 0, "maximum attempts per S3 request")

	rootCmd.AddCommand(newResolveCmd(a))
	rootCmd.AddCommand(newThawCmd(a))
	rootCmd.AddCommand(newCanWriteCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := DefaultConfig()
	if a.cfgFile != "" {
		loaded, err := LoadConfig(a.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("region") {
		cfg.Region = a.region
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = a.endpoint
	}
	if flags.Changed("path-style") {
		cfg.ForcePathStyle = a.forcePathStyle
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = a.maxRetries
	}
	a.cfg = cfg

	logger, err := newLogger(a.stderr, a.logLevel, a.logFormat)
	if err != nil {
		return err
	}
	a.logger = logger.With("invocation", uuid.NewString(), "command", cmd.Name())
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: expected text or json", format)
	}
}

func newAWSClient(cfg *Config, logger *slog.Logger) (*s3copy.Client, error) {
	opts := []s3types.Option{
		s3copy.WithLogger(logger),
		s3copy.WithMaxRetries(cfg.MaxRetries),
		s3copy.WithForcePathStyle(cfg.ForcePathStyle),
	}
	if cfg.Region != "" {
		opts = append(opts, s3copy.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, s3copy.WithEndpoint(cfg.Endpoint))
	}
	if cfg.timeout > 0 {
		opts = append(opts, s3copy.WithTimeout(cfg.timeout))
	}
	return s3copy.New(opts...)
}

// callContext applies --deadline to the command context.
func (a *app) callContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if a.deadline > 0 {
		return context.WithTimeout(cmd.Context(), a.deadline)
	}
	return context.WithCancel(cmd.Context())
}

// readRequest decodes the request document from --input.
func (a *app) readRequest(v any) error {
	var r io.Reader = a.stdin
	if a.input != "" && a.input != "-" {
		f, err := os.Open(a.input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.NewError("decodeRequest", errors.ErrInvalidInput).WithMessage(err.Error())
	}
	return nil
}

func (a *app) writeJSON(v any) error {
	encoder := json.NewEncoder(a.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// errorEnvelope is the failure document orchestrators match on.
type errorEnvelope struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

func writeErrorEnvelope(w io.Writer, err error) {
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(errorEnvelope{
		ErrorType:    errors.Code(err).String(),
		ErrorMessage: err.Error(),
	})
}
