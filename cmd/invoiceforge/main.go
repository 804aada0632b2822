package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/invoiceforge/invoiceforge/internal/app"
	"github.com/invoiceforge/invoiceforge/internal/directory/clients"
	"github.com/invoiceforge/invoiceforge/internal/directory/companies"
	"github.com/invoiceforge/invoiceforge/internal/invoices"
	"github.com/invoiceforge/invoiceforge/internal/mail"
	"github.com/invoiceforge/invoiceforge/internal/platform/cache"
	"github.com/invoiceforge/invoiceforge/internal/platform/store"
	"github.com/invoiceforge/invoiceforge/jobs"
	"github.com/invoiceforge/invoiceforge/report"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	st, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		logger.Error("init store", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	redisClient, err := newCache(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, pdf cache and archive disabled", slog.Any("error", err))
	}

	gotenberg := report.NewGotenberg(cfg.GotenbergURL)
	if err := gotenberg.Ping(ctx); err != nil {
		logger.Warn("gotenberg not reachable at startup", slog.Any("error", err))
	}
	renderer, err := report.NewRenderer(logger, gotenberg, redisClient, cfg.PDFCacheTTL)
	if err != nil {
		logger.Error("init renderer", slog.Any("error", err))
		os.Exit(1)
	}

	var mailer invoices.Mailer
	if cfg.ShareEnabled() {
		mailer = mail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}

	var archiver invoices.Archiver
	if cfg.ArchiveEnabled && redisClient != nil {
		jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			_ = jobClient.Close()
		}()
		archiver = jobClient
	}

	companySvc := companies.NewService(st, logger)
	clientSvc := clients.NewService(st, logger)
	invoiceSvc := invoices.NewService(logger, companySvc, clientSvc, renderer, mailer, archiver)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		InvoiceHandler: invoices.NewHandler(logger, invoiceSvc),
		ClientHandler:  clients.NewHandler(logger, clientSvc),
		CompanyHandler: companies.NewHandler(logger, companySvc),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}

func newStore(ctx context.Context, cfg *app.Config) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case "supabase":
		return store.NewSupabase(cfg.SupabaseURL, cfg.SupabaseAnonKey), func() {}, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store.NewPostgres(pool), pool.Close, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

func newCache(ctx context.Context, cfg *app.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	return cache.New(ctx, cfg.RedisAddr)
}
