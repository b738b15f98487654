package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/expression"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
	"go-chi-calculator/internal/session"
)

func main() {

	ctx := context.Background()

	// Config
	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger()
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	if cfg.OTelLogsEnabled {
		logShutdown, err := observability.InitLogging(ctx)
		if err != nil {
			panic(err)
		}
		defer logShutdown(ctx)
	}

	if cfg.OTelEnabled {
		// Tracing
		traceShutdown, err := observability.InitTracing(ctx)
		if err != nil {
			panic(err)
		}
		defer traceShutdown(ctx)

		// Metrics
		metricShutdown, err := initMetrics(ctx)
		if err != nil {
			panic(err)
		}
		defer metricShutdown(ctx)
	} else if err := calculator.InitMetrics(); err != nil {
		panic(err)
	}

	// Calculator
	evaluator, err := expression.New(cfg.EvaluatorEngine)
	if err != nil {
		panic(err)
	}

	store, closeStore, err := initStateStore(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer closeStore()

	engine := calculator.NewEngine(evaluator, calculator.WithEvaluationObserver(calculator.RecordEvaluation))
	service := calculator.NewService(store, engine)

	// Router
	secret := []byte(cfg.SessionSecret)
	router := server.NewRouter(server.Dependencies{
		Calculator:  calculator.NewHandler(service, evaluator),
		Identity:    session.NewIdentity(secret, cfg.SessionMaxAge, cfg.SessionCookieSecure),
		AntiForgery: session.AntiForgery(secret, cfg.SessionCookieSecure),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("session_backend", cfg.SessionBackend),
			zap.String("evaluator", cfg.EvaluatorEngine),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("server shutdown", zap.Error(err))
	}
}
