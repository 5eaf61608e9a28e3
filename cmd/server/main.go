// Command server runs the church website API.
//
// @title                      Church Website API
// @version                    1.0
// @description                Content API for sermons, events, ministries, gallery albums, the about page, hero banners and the contact inbox.
// @BasePath                   /api
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-church-backend/docs"
	"github.com/tbourn/go-church-backend/internal/auth"
	"github.com/tbourn/go-church-backend/internal/config"
	httpapi "github.com/tbourn/go-church-backend/internal/http"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/observability"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/services"
	"github.com/tbourn/go-church-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := sysutil.ConfigureLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	zerolog.DefaultContextLogger = &logger

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	store, err := imageStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	images := media.NewUploader(media.NewBreakerStore("image-store", store), media.Optimizer{
		MaxDimension: cfg.Upload.MaxDimension,
		Quality:      cfg.Upload.JPEGQuality,
	})

	enforcer, err := auth.NewEnforcer()
	if err != nil {
		return err
	}

	likes := services.NewLikeService(db, cfg.LikeTTL)
	go likes.Sweep(ctx, cfg.LikeSweepInterval)

	gin.SetMode(cfg.GinMode)
	docs.SwaggerInfo.BasePath = cfg.APIBasePath
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:     db,
		Images: images,
		Likes:  likes,
		Tokens: auth.NewVerifier(cfg.JWTSecret),
		Policy: enforcer,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.AppEnv).
			Str("db", cfg.DB.Driver).
			Str("storage", cfg.Storage.Driver).
			Msg("http server listening")
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

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// imageStore selects the object store backend.
func imageStore(ctx context.Context, cfg config.StorageConfig) (media.Store, error) {
	if cfg.Driver == "memory" {
		log.Warn().Msg("using in-memory image store; uploads are lost on restart")
		return media.NewMemoryStore(cfg.PublicURL), nil
	}
	return media.NewS3Store(ctx, cfg)
}
