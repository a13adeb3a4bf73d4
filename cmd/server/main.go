package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Skotchmaster/medical_shop/internal/httpserver"
	"github.com/Skotchmaster/medical_shop/internal/repo"
	"github.com/Skotchmaster/medical_shop/internal/revocation"
	"github.com/Skotchmaster/medical_shop/internal/search"
	"github.com/Skotchmaster/medical_shop/internal/service"
	"github.com/Skotchmaster/medical_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/medical_shop/pkg/db"
	"github.com/Skotchmaster/medical_shop/pkg/events"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
	middleware "github.com/Skotchmaster/medical_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/medical_shop/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/medical_shop/pkg/tokens"
)

func main() {
	cfg := config.Load()
	cfg.MustRequire("DATABASE_URL", "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	r := repo.New(db)

	var denylist middleware.Denylist
	var redisDenylist *revocation.RedisDenylist
	if cfg.RedisAddr != "" {
		redisDenylist = revocation.NewRedisDenylist(revocation.NewRedisClient(cfg.RedisAddr))
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisDenylist.Ping(pingCtx); err != nil {
			logger.Warn("redis_unreachable", "addr", cfg.RedisAddr, "error", err)
		}
		pingCancel()
		denylist = redisDenylist
	} else {
		logger.Warn("token_revocation_disabled", "reason", "REDIS_ADDR not set")
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	if len(cfg.KafkaBrokers) > 0 {
		if err := events.EnsureTopics(cfg.KafkaBrokers[0], events.Topics...); err != nil {
			logger.Warn("kafka_ensure_topics_error", "error", err)
		}
	}

	var searcher service.ProductSearcher
	if cfg.ElasticURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		es, err := search.NewClient(esCtx, search.Config{
			URL:      cfg.ElasticURL,
			Username: cfg.ElasticUser,
			Password: cfg.ElasticPassword,
			Index:    cfg.ProductIndex,
		})
		esCancel()
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "error", err)
		} else {
			searcher = search.NewSearcher(es, cfg.ProductIndex)
		}
	}

	issuer := &tokens.Issuer{
		Secret:   cfg.JWTSecret,
		UserTTL:  cfg.UserTokenTTL,
		AdminTTL: cfg.AdminTokenTTL,
	}

	deps := &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:      r,
			Issuer:    issuer,
			Denylist:  denylist,
			Publisher: publisher,
			ResetTTL:  cfg.ResetTokenTTL,
		}},
		Catalog:  &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Publisher: publisher, Searcher: searcher}},
		Category: &httpserver.CategoryHTTP{Svc: &service.CategoryService{Repo: r}},
		Cart:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: r}},
		Order:    &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Publisher: publisher}},
		Support:  &httpserver.SupportHTTP{Svc: &service.SupportService{Repo: r, WhatsApp: cfg.SupportWhatsApp}},

		Gate:         middleware.NewGate(cfg.JWTSecret, denylist),
		LoginLimiter: ratelimit.NewPerMinute(cfg.LoginRatePerMinute),
		Ready:        r.Ping,
	}

	e := httpserver.NewEcho(logger, cfg.AllowedOrigins)
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = publisher.Close()
	if redisDenylist != nil {
		_ = redisDenylist.Close()
	}
	_ = pkgdb.Close(db)

	logger.Info("server stopped")
}
