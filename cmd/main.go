package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/avetisk/authgate/internal/api/http/handler"
	"github.com/avetisk/authgate/internal/api/http/httpctx"
	"github.com/avetisk/authgate/internal/api/http/router"
	httpServer "github.com/avetisk/authgate/internal/api/http/server"
	"github.com/avetisk/authgate/internal/config"
	"github.com/avetisk/authgate/internal/delivery"
	"github.com/avetisk/authgate/internal/logger"
	"github.com/avetisk/authgate/internal/model"
	"github.com/avetisk/authgate/internal/repository/memory"
	"github.com/avetisk/authgate/internal/repository/postgres"
	redisrepo "github.com/avetisk/authgate/internal/repository/redis"
	"github.com/avetisk/authgate/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)

	otpStore, sessionStore, rateLimitStore, sweeper, err := buildVolatileStores(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize volatile stores", "error", err)
	}

	channel := buildDeliveryChannel(cfg, logger)

	otpService := service.NewOTP(otpStore, logger)
	sessionService := service.NewSession(sessionStore, logger)
	authService := service.NewAuth(otpService, sessionService, userRepo, logger)
	issuerService := service.NewIssuer(
		otpService,
		rateLimitStore,
		channel,
		cfg.RateLimit.MaxSends,
		cfg.RateLimit.Lockout,
		cfg.Delivery.Timeout,
		logger,
	)

	ctxMgr := httpctx.NewManager()
	authHandler := handler.NewAuthHandler(issuerService, authService, sessionService, userRepo, ctxMgr, cfg.DevMode, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := router.New(authHandler, sessionService, ctxMgr, cfg, registry, logger)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = httpServer.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = httpServer.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	if sweeper != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runSweeper(ctx, sweeper, logger)
		}()
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// buildVolatileStores picks redis-backed stores when redis is configured and
// falls back to in-process stores otherwise. The returned sweeper is non-nil
// only for the in-process variant, where expired codes are not reaped by TTL.
func buildVolatileStores(ctx context.Context, cfg *config.Config) (model.OTPStore, model.SessionStore, model.RateLimitStore, model.OTPStore, error) {
	if cfg.Redis.Enabled {
		client, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return redisrepo.NewOTPStore(client),
			redisrepo.NewSessionStore(client),
			redisrepo.NewRateLimitStore(client, cfg.RateLimit.Window, cfg.RateLimit.Lockout),
			nil,
			nil
	}

	otpStore := memory.NewOTPStore()
	return otpStore,
		memory.NewSessionStore(),
		memory.NewRateLimitStore(cfg.RateLimit.Window, cfg.RateLimit.Lockout),
		otpStore,
		nil
}

func buildDeliveryChannel(cfg *config.Config, logger *logger.Logger) model.DeliveryChannel {
	switch cfg.Delivery.Channel {
	case "whatsapp":
		if cfg.Delivery.WhatsAppBridgeURL != "" {
			return delivery.NewWhatsAppBridge(cfg.Delivery.WhatsAppBridgeURL, cfg.Delivery.Timeout)
		}
	case "sms":
		if cfg.Delivery.SMSGatewayURL != "" {
			return delivery.NewSMSGateway(cfg.Delivery.SMSGatewayURL, cfg.Delivery.SMSAPIKey, cfg.Delivery.Timeout)
		}
	}
	return delivery.NewDevEcho(logger)
}

func runSweeper(ctx context.Context, store model.OTPStore, logger *logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Sweep(ctx); err != nil {
				logger.Error("failed to sweep expired codes", "error", err)
			}
		}
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
