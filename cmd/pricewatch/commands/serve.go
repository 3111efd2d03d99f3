package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Houeta/pricewatch/internal/bot"
	"github.com/Houeta/pricewatch/internal/httpapi"
	"github.com/Houeta/pricewatch/internal/scheduler"
	"github.com/Houeta/pricewatch/internal/services/alerts"
	"github.com/Houeta/pricewatch/internal/services/chatlink"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the optional Telegram bot and the scrape schedule",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.close()

	notifier := alerts.MultiNotifier{alerts.NewLogNotifier(logger)}

	var (
		chatBot *bot.Bot
		links   httpapi.ChatLinker
	)
	if cfg.Tg.Enabled() {
		chatBot, err = bot.NewBot(logger, cfg.Tg.Token, cfg.Tg.Timeout, application.store)
		if err != nil {
			return err
		}
		notifier = append(notifier, chatBot)
		links = chatlink.NewIssuer(logger, application.store)
	}

	pipeline := application.pipeline(notifier)
	handler := httpapi.NewHandler(
		logger, pipeline, application.registry, application.store,
		alerts.NewService(logger, application.store), httpapi.HeaderIdentity{}, links,
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(logger, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if chatBot != nil {
		// Start the bot in a goroutine to allow serve to listen for signals.
		go chatBot.Start()
	}

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(schedulerCtx, logger, cfg.ScrapeInterval, func(ctx context.Context) error {
			_, err := pipeline.RunAll(ctx)
			return err
		})
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.", "addr", cfg.HTTPAddr)

	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")
	case err = <-serveErr:
		logger.ErrorContext(ctx, "HTTP server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.ErrorContext(shutdownCtx, "HTTP server shutdown failed", "error", shutdownErr)
	}
	if chatBot != nil {
		chatBot.Stop()
	}

	// The store is closed on return; wait for an in-flight scheduled run to finish with it.
	stopScheduler()
	<-schedulerDone

	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")

	return err
}
