package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fastandfab/sellerservice/internal/blobstore"
	"github.com/fastandfab/sellerservice/internal/cache"
	"github.com/fastandfab/sellerservice/internal/db"
	"github.com/fastandfab/sellerservice/internal/handlers"
	"github.com/fastandfab/sellerservice/internal/logger"
	"github.com/fastandfab/sellerservice/internal/repository/postgres"
	"github.com/fastandfab/sellerservice/internal/service/auth"
	"github.com/fastandfab/sellerservice/internal/service/auth/tokenmanager"
	"github.com/fastandfab/sellerservice/internal/service/media"
	"github.com/fastandfab/sellerservice/internal/service/product"
	"github.com/fastandfab/sellerservice/internal/service/seller"
	"github.com/fastandfab/sellerservice/internal/service/sweeper"
)

const (
	shutdownTimeout = 5 * time.Second
	cacheKeyPrefix  = "sellerservice:"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger  logger.Logger
	sweeper *sweeper.Sweeper
	closers []func()
}

func NewServerApp(ctx context.Context, c *Config) (_ *ServerApp, err error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	if c.DatabaseDSN == "" {
		return nil, errors.New("database connection string is required")
	}

	// Resources opened so far are released if initialization fails
	app := &ServerApp{ListenAddr: c.ListenAddr, logger: l}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	app.closers = append(app.closers, pool.Close)

	storage := postgres.NewStorage(pool)

	// Initialize services
	if c.RefreshSecret == "" {
		l.Warn("REFRESH_TOKEN_SECRET is not set, refresh tokens are signed with the access token secret")
	}
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
	}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	productCache, err := app.newCache(ctx, c)
	if err != nil {
		return nil, err
	}
	productService := product.NewService(product.Config{Cache: productCache, Logger: l}, storage)

	blobs, err := app.newBlobStore(ctx, c)
	if err != nil {
		return nil, err
	}
	mediaService := media.NewService(media.Config{Logger: l}, blobs)

	services := handlers.Services{
		Auth:    authService,
		Seller:  seller.NewService(storage),
		Product: productService,
		Media:   mediaService,
		Health:  storage,
		Blobs:   blobs,
	}

	app.Handler = handlers.NewRouter(services, handlers.Config{
		CORSOrigins: c.CORSOrigins,
		Details:     c.Environment == logger.EnvDevelopment,
	}, l)
	app.sweeper = sweeper.New(sweeper.Config{Interval: c.SweepInterval, Logger: l}, tokenManager)

	return app, nil
}

func (s *ServerApp) newCache(ctx context.Context, c *Config) (cache.Cache, error) {
	if c.RedisURL == "" {
		s.logger.Info("REDIS_URL is not set, product cache is disabled")
		return cache.Noop{}, nil
	}

	rc, err := cache.NewRedisCache(ctx, c.RedisURL, cacheKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
	}
	s.closers = append(s.closers, func() { _ = rc.Close() })
	return rc, nil
}

// Return S3 store if endpoint is configured, in-process store otherwise
func (s *ServerApp) newBlobStore(ctx context.Context, c *Config) (blobstore.Store, error) {
	if c.StorageEndpoint == "" {
		s.logger.Warn("STORAGE_ENDPOINT is not set, images are kept in memory and lost on restart")
		return blobstore.NewMemoryStore("http://" + c.ListenAddr + "/media"), nil
	}

	store, err := blobstore.NewS3Store(ctx, blobstore.S3Config{
		Endpoint:  c.StorageEndpoint,
		AccessKey: c.StorageAccessKey,
		SecretKey: c.StorageSecretKey,
		Bucket:    c.StorageBucket,
		UseSSL:    c.StorageUseSSL,
		PublicURL: c.StoragePublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while connecting to image storage. Err: %w", err)
	}
	return store, nil
}

func (s *ServerApp) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	sweeperStopped := s.sweeper.Run(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-sweeperStopped

	return err
}
