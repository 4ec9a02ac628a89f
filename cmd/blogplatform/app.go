package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkuznecov/blogplatform/internal/db"
	"github.com/mkuznecov/blogplatform/internal/handlers"
	"github.com/mkuznecov/blogplatform/internal/logger"
	"github.com/mkuznecov/blogplatform/internal/repository/postgres"
	"github.com/mkuznecov/blogplatform/internal/service/auth"
	"github.com/mkuznecov/blogplatform/internal/service/blog"
	"github.com/mkuznecov/blogplatform/internal/service/comment"
	"github.com/mkuznecov/blogplatform/internal/service/post"
	"github.com/mkuznecov/blogplatform/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTokenTTL,
		RefreshTTL:    c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User(), storage.Session(), logger)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	blogService := blog.NewService(storage.Blog(), storage.Post())
	postService := post.NewService(storage.Post(), storage.Comment())
	commentService := comment.NewService(storage)
	userService := user.NewService(auth.DefaultHasher, storage.User())

	// Complete all together as router
	mux := handlers.NewRouter(
		handlers.RouterConfig{
			AdminLogin:    c.AdminLogin,
			AdminPassword: c.AdminPassword,
			EnableTesting: c.EnableTesting,
		},
		authService,
		blogService,
		postService,
		commentService,
		userService,
		storage,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
