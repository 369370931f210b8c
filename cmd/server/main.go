// Command rys-server starts the premium entitlement backend.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/cleanup"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/config"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/grandfathered"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/limiter"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/mail"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/migrate"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/payment"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/repository/postgres"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/server/httpapi"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/service"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and serves HTTP until a signal.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer db.Close()

	// Repositories and stores
	requestRepo := postgres.NewAuthRequestRepo(db, cfg.RequestTTL)
	cacheRepo := postgres.NewSubscriptionRepo(db, cfg.CacheTTL)
	emailLimiter := limiter.NewPG(db.Pool, cfg.RateLimitWindow, cfg.RateLimitMax)
	pollLimiter := limiter.NewMemory(cfg.PollWindow, cfg.PollLimit)

	gf, err := grandfathered.Load(cfg.GrandfatheredFile)
	if err != nil {
		logger.Fatal("grandfathered list", zap.Error(err))
	}
	logger.Info("grandfathered list loaded", zap.Int("entries", gf.Len()))

	issuer := token.NewIssuer([]byte(cfg.JWTSecret),
		cfg.SessionTTL, cfg.LicenseTTL, cfg.GrandfatheredLicenseTTL)

	smtpHost := cfg.SMTPAddr
	if h, _, err := net.SplitHostPort(cfg.SMTPAddr); err == nil {
		smtpHost = h
	}
	sender := mail.NewSMTP(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword, smtpHost, cfg.SiteName)

	base := strings.TrimRight(cfg.BaseURL, "/")
	provider := payment.NewStripe(cfg.StripeSecretKey, payment.StripeConfig{
		PriceMonthly: cfg.StripePriceMonthly,
		PriceAnnual:  cfg.StripePriceAnnual,
		SuccessURL:   base + "/checkout/success",
		CancelURL:    base + "/checkout/cancel",
		ReturnURL:    base,
	})
	reconciler := payment.NewReconciler(cacheRepo, provider, logger)

	// Services
	authSvc := service.NewAuthService(requestRepo, emailLimiter, sender, issuer, cfg.BaseURL, cfg.LinkTTL, logger)
	licenseSvc := service.NewLicenseService(cacheRepo, gf, provider, issuer, logger)

	// Background sweep of expired requests and lapsed limiter windows.
	sweeper := cleanup.New(requestRepo, emailLimiter, cfg.CleanupInterval, logger)
	go sweeper.Run(ctx)

	srv := httpapi.New(authSvc, licenseSvc, reconciler, issuer, pollLimiter, cfg.StripeWebhookSecret, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.Start(cfg.Addr)
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
