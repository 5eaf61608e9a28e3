// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, rate limiting and the
// role checks on content-management routes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/auth"
	"github.com/tbourn/go-church-backend/internal/config"
	"github.com/tbourn/go-church-backend/internal/http/handlers"
	"github.com/tbourn/go-church-backend/internal/http/middleware"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/services"
)

// contactScope names the idempotency keys of the public contact form.
const contactScope = "contact"

// formOverhead is the body allowance for non-file form fields.
const formOverhead = 1 << 20

// Deps are the collaborators RegisterRoutes needs beyond configuration.
type Deps struct {
	DB     *gorm.DB
	Images services.ImageStore
	Likes  *services.LikeService
	Tokens middleware.TokenVerifier
	Policy middleware.PolicyChecker
}

// NewServices builds the content services over db and images.
func NewServices(d Deps, cfg config.Config) handlers.Services {
	likes := d.Likes
	if likes == nil {
		likes = services.NewLikeService(d.DB, cfg.LikeTTL)
	}
	return handlers.Services{
		Sermons:    services.NewSermonService(d.DB, d.Images),
		Likes:      likes,
		Events:     services.NewEventService(d.DB, d.Images),
		Ministries: services.NewMinistryService(d.DB, d.Images),
		Gallery:    services.NewGalleryService(d.DB, d.Images, cfg.Upload.MaxFiles),
		About:      services.NewAboutService(d.DB, d.Images, cfg.CacheTTL),
		Hero:       services.NewHeroService(d.DB, d.Images, cfg.CacheTTL),
		Contact:    services.NewContactService(d.DB, cfg.IdempotencyTTL),
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Compression and metrics
//  7. CORS and security headers
//
// The API group adds the rate limiter; the contact form validates its
// Idempotency-Key first so that replays bypass the limiter.
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn().Err(err).Strs("proxies", cfg.TrustedProxies).Msg("invalid trusted proxies; forwarding headers ignored")
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())

	maxFiles := int64(max(cfg.Upload.MaxFiles, 1))
	r.Use(limitBody(cfg.Upload.MaxBytes*maxFiles + formOverhead))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "Route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC()})
	})
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(NewServices(d, cfg), handlers.Options{
		MaxUploadBytes: cfg.Upload.MaxBytes,
		MaxUploadFiles: cfg.Upload.MaxFiles,
		Development:    cfg.Development(),
	})

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	idem := middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{Scope: contactScope},
		func(ctx context.Context, identity, scope, key string, now time.Time) (bool, error) {
			_, err := repo.GetIdempotency(ctx, d.DB, identity, scope, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			return err == nil, err
		},
	)

	authn := middleware.Authenticate(d.Tokens)
	can := func(obj, act string) gin.HandlerFunc { return middleware.Authorize(d.Policy, obj, act) }

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.POST("/contact", idem, rl.Handler(), h.SubmitContact)
	api.Use(rl.Handler())
	{
		sermons := api.Group("/sermons")
		sermons.GET("", h.ListSermons)
		sermons.GET("/:id", h.GetSermon)
		sermons.POST("/:id/like", h.ToggleSermonLike)
		sermons.GET("/:id/like-status", h.SermonLikeStatus)
		sermons.POST("", authn, can(auth.ObjSermons, auth.ActCreate), h.CreateSermon)
		sermons.PUT("/:id", authn, can(auth.ObjSermons, auth.ActUpdate), h.UpdateSermon)
		sermons.DELETE("/:id", authn, can(auth.ObjSermons, auth.ActDelete), h.DeleteSermon)

		events := api.Group("/events")
		events.GET("", h.ListEvents)
		events.GET("/:id", h.GetEvent)
		events.POST("", authn, can(auth.ObjEvents, auth.ActCreate), h.CreateEvent)
		events.PUT("/:id", authn, can(auth.ObjEvents, auth.ActUpdate), h.UpdateEvent)
		events.DELETE("/:id", authn, can(auth.ObjEvents, auth.ActDelete), h.DeleteEvent)

		ministries := api.Group("/ministries")
		ministries.GET("", h.ListMinistries)
		ministries.GET("/:id", h.GetMinistry)
		ministries.POST("", authn, can(auth.ObjMinistries, auth.ActCreate), h.CreateMinistry)
		ministries.PUT("/:id", authn, can(auth.ObjMinistries, auth.ActUpdate), h.UpdateMinistry)
		ministries.DELETE("/:id", authn, can(auth.ObjMinistries, auth.ActDelete), h.DeleteMinistry)

		gallery := api.Group("/gallery")
		gallery.GET("", h.ListAlbums)
		gallery.GET("/:id", h.GetAlbum)
		gallery.POST("", authn, can(auth.ObjGallery, auth.ActCreate), h.CreateAlbum)
		gallery.POST("/:id/images", authn, can(auth.ObjGallery, auth.ActUpdate), h.AddAlbumImages)
		gallery.DELETE("/:id", authn, can(auth.ObjGallery, auth.ActDelete), h.DeleteAlbum)
		gallery.DELETE("/:id/images/:imageId", authn, can(auth.ObjGallery, auth.ActUpdate), h.DeleteAlbumImage)

		about := api.Group("/about")
		about.GET("", h.GetAbout)
		about.PUT("", authn, can(auth.ObjAbout, auth.ActUpdate), h.UpdateAbout)
		about.POST("/section-image", authn, can(auth.ObjAbout, auth.ActUpdate), h.UploadSectionImage)
		about.POST("/leader-image", authn, can(auth.ObjAbout, auth.ActUpdate), h.UploadLeaderImage)
		about.DELETE("/image/*publicId", authn, can(auth.ObjAbout, auth.ActUpdate), h.DeleteAboutImage)

		hero := api.Group("/hero-settings")
		hero.GET("/:page", h.GetHero)
		hero.PUT("/:page", authn, can(auth.ObjHero, auth.ActUpdate), h.UpdateHero)

		inbox := api.Group("/contact/messages", authn)
		inbox.GET("", can(auth.ObjContact, auth.ActRead), h.ListContactMessages)
		inbox.GET("/:id", can(auth.ObjContact, auth.ActRead), h.GetContactMessage)
		inbox.PUT("/:id", can(auth.ObjContact, auth.ActUpdate), h.UpdateContactMessage)
		inbox.DELETE("/:id", can(auth.ObjContact, auth.ActDelete), h.DeleteContactMessage)
	}
}

// corsMiddleware allows every origin when allowed is empty and only the
// listed origins otherwise. Credentials are never allowed.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-User-ID", "If-None-Match", middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders: []string{"X-Request-ID", "ETag", "Retry-After", "Idempotency-Replayed"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowed) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowed
	}
	return cors.New(cfg)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
