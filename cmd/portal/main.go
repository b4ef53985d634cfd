// Package main запускает HTTP-сервер партнёрского портала.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/craudioviz/partner-portal/internal/assistant"
	"github.com/craudioviz/partner-portal/internal/config"
	"github.com/craudioviz/partner-portal/internal/handler"
	"github.com/craudioviz/partner-portal/internal/middleware"
	"github.com/craudioviz/partner-portal/internal/repository"
	"github.com/craudioviz/partner-portal/internal/service"
)

const leadExpirySweepInterval = time.Hour

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	var aiClient *assistant.Client
	if cfg.OpenAIKey != "" {
		aiClient = assistant.NewClient(cfg.OpenAIKey, cfg.OpenAIModel)
	} else {
		sugar.Info("OpenAI key is not set, assistant runs with canned replies")
	}

	svc := service.NewService(repo, aiClient)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск фонового процесса истечения лидов
	svc.StartLeadExpirySweeper(ctx, leadExpirySweepInterval)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting partner portal server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
