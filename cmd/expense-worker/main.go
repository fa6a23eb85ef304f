package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/amqp"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/cli"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/config"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/metrics"
	gsheet "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/sheets/google"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker, (*config.Config).ValidateMirror)
	logger.Info("Starting expense-worker")

	ctx, stop := cli.SignalContext()
	defer stop()

	initCtx, cancelInit := context.WithTimeout(ctx, 30*time.Second)
	sheetsClient, err := gsheet.New(initCtx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err == nil {
		err = sheetsClient.EnsureHeader(initCtx)
	}
	cancelInit()
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets mirror", err)
	}
	logger.Info("Google Sheets mirror ready",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	m := metrics.New()
	mirror := worker.NewMirrorWorker(sheetsClient, m, logger)

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.Consume(gctx, mirror.Handle)
	})
	g.Go(func() error {
		logger.Info("Serving worker metrics", "port", cfg.WorkerMetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		amqpClient.Close()
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	logger.Info("Worker shutdown complete")
}
