// Package main is the entrypoint for the Digest Worker Lambda function.
//
// The Digest Worker runs once per day on a schedule. Each invocation resolves
// the target date (today before the cutoff hour, tomorrow after), loads the
// day's events and the standing email alerts, matches events to users,
// renders one digest email per matched user, and dispatches them in paced
// batches through the email provider.
//
// Cold Start (main):
//  1. Initialize structured logger.
//  2. Load and validate configuration; abort before any I/O on failure.
//  3. Open the pgx connection pool.
//  4. Initialize the email provider (Resend, or a logging stub in
//     local/test mode).
//  5. Initialize CloudWatch metrics (noop in local mode).
//  6. Wire the fetcher, renderer, dispatcher, and digest service.
//  7. Register the handler and call lambda.Start.
//
// Local mode (APP_ENV=local) runs the handler once directly instead of
// starting the Lambda runtime.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/google/uuid"

	"matchday/internal/config"
	"matchday/internal/db"
	"matchday/internal/digest"
	"matchday/internal/dispatch"
	"matchday/internal/external"
	"matchday/internal/types"
)

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
// slog.Logger satisfies Info, Error, and Warn directly, but With returns
// *slog.Logger rather than types.Logger, so an adapter is necessary.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

var _ types.Logger = (*slogAdapter)(nil)

// Handler holds the dependencies for the digest worker Lambda handler.
type Handler struct {
	service *digest.Service
	logger  types.Logger
}

// Handle executes one digest run. The optional input carries a target-date
// override for backfills; scheduled invocations pass an empty input.
func (h *Handler) Handle(ctx context.Context, input digest.RunInput) (*digest.RunReport, error) {
	runID := uuid.NewString()
	ctx = types.WithRunID(ctx, runID)
	logger := h.logger.With("run_id", runID)

	report, err := h.service.Run(ctx, input)
	if err != nil {
		logger.Error("digest run failed", "error", err)
		return nil, err
	}
	return report, nil
}

func logLevel(cfg *config.Config) slog.Level {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// Bootstrap logger; replaced once config decides the level.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	typedLogger := &slogAdapter{logger: logger}

	logger.Info("digest worker initializing (cold start)",
		"environment", cfg.Environment,
		"timezone", cfg.Digest.Timezone,
		"cutoff_hour", cfg.Digest.CutoffHour,
	)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	catalogRepo := db.NewCatalogRepository(pool)
	eventRepo := db.NewEventRepository(pool)
	alertRepo := db.NewAlertRepository(pool)
	userRepo := db.NewUserRepository(pool)

	var provider external.EmailProvider
	if cfg.Email.ResendAPIKey.IsSet() && !cfg.IsLocal() && !cfg.IsTestMode {
		provider = external.NewResendClient(
			&http.Client{Timeout: 10 * time.Second},
			external.ResendClientConfig{
				APIKey: cfg.Email.ResendAPIKey,
				Logger: logger,
			},
		)
	} else {
		logger.Warn("email transport in stub mode, digests will be logged instead of sent")
		provider = external.NewStubEmailProvider(typedLogger)
	}

	var metrics dispatch.MetricsPublisher = dispatch.NoopMetrics{}
	if cfg.Observability.EnableMetrics && !cfg.IsLocal() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("failed to load AWS SDK config", "error", err)
			os.Exit(1)
		}
		metrics = dispatch.NewCloudWatchMetrics(
			cloudwatch.NewFromConfig(awsCfg),
			cfg.Observability.MetricNamespace,
			typedLogger,
		)
	}

	from := types.SenderIdentity{
		Address: cfg.Email.FromAddress,
		Name:    cfg.Email.FromName,
	}
	dispatcher := dispatch.NewDispatcher(provider, from, cfg.Dispatch, typedLogger)

	renderer, err := digest.NewRenderer()
	if err != nil {
		logger.Error("failed to initialize digest renderer", "error", err)
		os.Exit(1)
	}

	fetcher := digest.NewFetcher(catalogRepo, eventRepo, alertRepo, userRepo, typedLogger)

	service, err := digest.NewService(
		fetcher,
		renderer,
		dispatcher,
		metrics,
		types.RealClock{},
		cfg.Digest,
		typedLogger,
	)
	if err != nil {
		logger.Error("failed to initialize digest service", "error", err)
		os.Exit(1)
	}

	handler := &Handler{service: service, logger: typedLogger}

	logger.Info("digest worker initialized",
		"from_address", cfg.Email.FromAddress,
		"batch_size", cfg.Dispatch.BatchSize,
	)

	// Local mode: run the handler once directly instead of starting the
	// Lambda runtime. A DIGEST_TARGET_DATE override allows backfills.
	if cfg.IsLocal() {
		input := digest.RunInput{TargetDate: os.Getenv("DIGEST_TARGET_DATE")}
		report, err := handler.Handle(ctx, input)
		if err != nil {
			os.Exit(1)
		}
		logger.Info("digest run summary",
			"target_date", report.TargetDate,
			"events", report.Events,
			"matched_users", report.MatchedUsers,
			"sent", report.Sent,
			"failed", report.Failed,
		)
		return
	}

	lambda.Start(handler.Handle)
}
