package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wavespace/internal/config"
	"wavespace/internal/db"
	"wavespace/internal/logger"
	"wavespace/internal/server"
	"wavespace/internal/session"
	"wavespace/internal/store"
)

func main() {
	autoMigrate := flag.Bool("migrate", false, "run schema auto-migration before serving")
	flag.Parse()

	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()
	if dotenvErr != nil {
		log.Warn("failed to load .env", zap.Error(dotenvErr))
	}

	var backing session.Store
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set; quizzes are kept in memory")
		backing = store.NewMemory()
	} else {
		conn, err := db.Open(cfg, log)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		if *autoMigrate {
			if err := db.Migrate(conn, log); err != nil {
				log.Fatal("database migration failed", zap.Error(err))
			}
		}
		backing = store.NewGorm(conn, cfg.LockTimeout())
	}

	srv := server.New(backing, cfg, log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Start(ctx); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("wavespace server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}
}
