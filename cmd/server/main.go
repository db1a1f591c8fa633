package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docslice/internal/api"
	"github.com/dgallion1/docslice/internal/chunker"
	"github.com/dgallion1/docslice/internal/config"
	"github.com/dgallion1/docslice/internal/convert"
	"github.com/dgallion1/docslice/internal/parser"
	"github.com/dgallion1/docslice/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	catalog := chunker.DefaultCatalog()
	if cfg.CatalogFile != "" {
		catalog, err = chunker.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			log.Error("load pattern catalog", "path", cfg.CatalogFile, "error", err)
			os.Exit(1)
		}
	}
	log.Info("pattern catalog ready", "families", catalog.Len(), "path", cfg.CatalogFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	parserOpts := parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext}
	var conv *convert.Client
	if cfg.MinerUURL != "" {
		conv = convert.NewClient(cfg.MinerUURL, cfg.MinerUTimeout, log)
		parserOpts.PDFConverter = conv
		log.Info("pdf conversion service enabled", "url", cfg.MinerUURL)
	}

	// Initialize pipeline.
	proc := pipeline.NewProcessor(catalog, parserOpts, cfg.DefaultSplitter, log)
	orch := pipeline.NewOrchestrator(cfg, proc, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, conv, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.MinerUTimeout + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. HTTP goes first so no submit races the queue close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if conv != nil {
			conv.Close()
		}
	}()

	log.Info("starting docslice", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
