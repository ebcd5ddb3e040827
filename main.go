package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/api"
	"github.com/lealre/cinematch-backend/internal/config"
	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/push"
	"github.com/lealre/cinematch-backend/internal/server"
	"github.com/lealre/cinematch-backend/internal/services/awards"
	"github.com/lealre/cinematch-backend/internal/services/connections"
	"github.com/lealre/cinematch-backend/internal/services/ratings"
	"github.com/lealre/cinematch-backend/internal/services/watchlist"
	"github.com/lealre/cinematch-backend/internal/tmdb"
)

const shutdownTimeout = 20 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := logx.Setup(logx.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongodb.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	db := mongodb.NewDB(client, cfg.MongoDatabase)

	catalog := newCatalog(ctx, cfg, logger)
	sender := newSender(ctx, cfg, logger)

	loc, err := time.LoadLocation(cfg.AwardsTimezone)
	if err != nil {
		return err
	}

	connSvc := connections.NewService(db, catalog, sender,
		connections.WithDeadlineEnforcement(cfg.EnforceVoteDeadline))

	a := api.NewAPI(api.API{
		Connections: connSvc,
		Awards:      awards.NewService(db, loc, awards.WithLockHour(cfg.AwardsLockHour)),
		Ratings:     ratings.NewService(db),
		Watchlist:   watchlist.NewService(db),
		Catalog:     catalog,
		Users:       db,
		Ping:        db.Ping,
	})

	srv := newHTTPServer(ctx, cfg.Address, server.NewHandler(a, cfg.JwtSecret, db))

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("address", cfg.Address).Info("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
	connSvc.Wait()
	return nil
}

// newHTTPServer ties every request context to ctx, so long-lived event
// streams end when ctx is cancelled and Shutdown does not wait on them.
func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// newCatalog builds the TMDB client, backed by Redis when REDIS_ADDR is set.
func newCatalog(ctx context.Context, cfg config.Config, logger *logrus.Logger) *tmdb.Client {
	if cfg.TmdbApiToken == "" {
		logger.Warn("TMDB_API_TOKEN is not set, catalog requests will be rejected upstream")
	}

	var opts []tmdb.Option
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, catalog cache disabled")
		} else {
			opts = append(opts, tmdb.WithCache(tmdb.NewRedisCache(rdb), cfg.CatalogCacheTTL))
		}
	}
	return tmdb.NewClient(cfg.TmdbBaseURL, cfg.TmdbApiToken, cfg.TmdbTimeout, opts...)
}

// newSender returns the FCM sender when credentials are configured and a
// logging sender otherwise.
func newSender(ctx context.Context, cfg config.Config, logger *logrus.Logger) push.Sender {
	if cfg.FirebaseCredentialsPath == "" {
		logger.Info("push notifications are logged only")
		return push.LogSender{}
	}
	sender, err := push.NewFCMSender(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logger.WithError(err).Warn("firebase unavailable, push notifications are logged only")
		return push.LogSender{}
	}
	return sender
}
