package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vbonduro/fieldsales/internal/config"
	"github.com/vbonduro/fieldsales/internal/db"
	kvsqlite "github.com/vbonduro/fieldsales/internal/kvstore/sqlite"
	"github.com/vbonduro/fieldsales/internal/logging"
	"github.com/vbonduro/fieldsales/internal/photostore/local"
	"github.com/vbonduro/fieldsales/internal/remote"
	"github.com/vbonduro/fieldsales/internal/service"
	"github.com/vbonduro/fieldsales/internal/session"
	"github.com/vbonduro/fieldsales/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	kv := kvsqlite.NewStore(database)
	client := remote.NewClient(cfg.APIBaseURL, time.Duration(cfg.HTTPTimeoutSeconds)*time.Second)
	sess := session.New(client, kv, logger)
	fieldService := service.NewFieldService(client, sess, kv, photoStg, service.Options{MaxCached: cfg.CacheMaxItems}, logger)
	srv := web.NewServer(fieldService, logger).HTTPServer(cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting server", "addr", cfg.ListenAddr, "api", cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
	}
}
