// Package app wires the storefront's dependencies and runs the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/urbanelite/storefront/internal/domain/account"
	"github.com/urbanelite/storefront/internal/domain/checkout"
	"github.com/urbanelite/storefront/internal/domain/coupon"
	"github.com/urbanelite/storefront/internal/domain/review"
	"github.com/urbanelite/storefront/internal/httpapi"
	"github.com/urbanelite/storefront/internal/payment"
	"github.com/urbanelite/storefront/internal/repository"
	"github.com/urbanelite/storefront/pkg/health"
	"github.com/urbanelite/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	platformFee, err := decimal.NewFromString(cfg.PlatformFee)
	if err != nil {
		return errors.Wrap(err, "parse platform fee")
	}

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	ownerRepo := repository.NewOwnerRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	// Domain services.
	accountSvc := account.NewService(accountRepo)
	ownerSvc := account.NewOwnerService(ownerRepo)
	couponValidator := coupon.NewValidator(couponRepo)
	checkoutSvc := checkout.NewService(checkout.Config{
		PlatformFee: platformFee,
		StockMode:   checkout.StockMode(cfg.StockMode),
	}, accountRepo, couponRepo, couponValidator, orderRepo, sessionRepo)
	reviewSvc := review.NewService(reviewRepo, accountRepo)

	// Payment gateway: fall back to a disabled stub when not configured.
	var intents payment.IntentCreator
	gateway, err := payment.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.Currency)
	switch {
	case err == nil:
		intents = gateway
	case errors.Is(err, payment.ErrNotConfigured):
		lg.Warn("Payment gateway not configured, gateway routes disabled")
		intents = payment.DisabledGateway{}
	default:
		return errors.Wrap(err, "create payment gateway")
	}
	verifier := payment.NewVerifier(cfg.Razorpay.KeySecret)

	// HTTP handlers.
	tokens := httpapi.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	h := httpapi.NewHandler(
		httpapi.Config{ImageBaseURL: cfg.ImageBaseURL, SecureCookies: cfg.CORS.AllowCredentials},
		tokens,
		accountSvc,
		accountRepo,
		ownerSvc,
		productRepo,
		couponRepo,
		checkoutSvc,
		orderRepo,
		reviewSvc,
		intents,
		verifier,
	)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
