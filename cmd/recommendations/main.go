package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/vtagz/recommendations/config"
	"github.com/vtagz/recommendations/internal/metrics"
	"github.com/vtagz/recommendations/internal/middleware"
	"github.com/vtagz/recommendations/internal/tracing"
	"github.com/vtagz/recommendations/pkg/consumer"
	"github.com/vtagz/recommendations/pkg/graph"
	"github.com/vtagz/recommendations/pkg/processor"
	"github.com/vtagz/recommendations/pkg/routes/health"
	"github.com/vtagz/recommendations/pkg/routes/recommendation"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLogger := newZapLogger(cfg)
	defer func() { _ = zapLogger.Sync() }()

	logger := ectologger.NewEctoLogger(func(entry ectologger.EctoLogMessage) {
		zapLogger.Info("log", zap.Any("entry", entry))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracerProvider := tracing.Init(cfg.AppName)
	defer func() { _ = tracerProvider.Shutdown(context.Background()) }()

	// Graph store must be reachable before anything is consumed.
	graphClient, err := graph.NewClient(graph.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to create graph client")
		os.Exit(1)
	}
	defer func() { _ = graphClient.Close(context.Background()) }()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := graphClient.VerifyConnectivity(connectCtx); err != nil {
		cancel()
		logger.WithError(err).Error("Graph database is unreachable")
		os.Exit(1)
	}
	cancel()

	engine := graph.NewService(graphClient, logger)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to load AWS config")
		os.Exit(1)
	}
	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		// Local/test queues run against a custom endpoint.
		if cfg.SQSQueueEndpoint != "" && cfg.TestMode {
			o.BaseEndpoint = aws.String(cfg.SQSQueueEndpoint)
		}
	})

	registry := processor.NewRegistry(processor.New(engine, logger))
	consumerMetrics := metrics.NewConsumer(prometheus.DefaultRegisterer)
	queueConsumer := consumer.New(cfg, sqsClient, registry, logger, consumerMetrics)

	if cfg.SQSConsumerEnabled {
		queueConsumer.Start(ctx)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Logger(logger))
	e.HTTPErrorHandler = middleware.Error(logger)

	checker := health.NewChecker(graphClient, queueConsumer, version)
	checker.RegisterRoutes(e)
	checker.SetReady(true)

	api := e.Group("/api/v1")
	recommendation.NewHandler(engine, logger).Register(api)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.WithField("addr", addr).Infof("Server listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server stopped unexpectedly")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	// The consumer stop is honored between batches; the in-flight batch
	// runs to completion before this returns.
	if cfg.SQSConsumerEnabled {
		queueConsumer.Stop()
	}
}

func newZapLogger(cfg config.Config) *zap.Logger {
	if cfg.PrettyLogs {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
