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

	"github.com/courseloop/courseloop/internal/app"
	"github.com/courseloop/courseloop/internal/auth"
	"github.com/courseloop/courseloop/internal/courses"
	"github.com/courseloop/courseloop/internal/platform/cache"
	"github.com/courseloop/courseloop/internal/platform/db"
	"github.com/courseloop/courseloop/internal/rbac"
	"github.com/courseloop/courseloop/internal/token"
	"github.com/courseloop/courseloop/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// The throttle is best-effort: without redis logins still work,
	// just unthrottled.
	var throttle *auth.Throttle
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, login throttle disabled", slog.Any("error", err))
	} else {
		throttle = auth.NewThrottle(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	tokens := token.NewService(cfg.JWTSecret, cfg.TokenTTL)

	authService := auth.NewService(auth.NewRepository(pool), throttle)
	resolver := rbac.NewResolver(tokens, authService)
	guard := rbac.Middleware{Resolver: resolver, Logger: logger}
	cookies := auth.NewCookieWriter(cfg.IsProduction(), tokens.TTL())

	usersService := users.NewService(users.NewRepository(pool))
	coursesService := courses.NewService(courses.NewRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    auth.NewHandler(logger, authService, tokens, resolver, cookies),
		UsersHandler:   users.NewHandler(logger, usersService, guard),
		CoursesHandler: courses.NewHandler(logger, coursesService, guard),
		Guard:          guard,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
