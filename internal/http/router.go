package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/auth"
)

const (
	loginPath        = "/authors/login/"
	demoLoginPath    = "/demo-auth/login-cookie/"
	demoLogoutPath   = "/demo-auth/logout-cookie/"
	corsPreflightTTL = 12 * time.Hour
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(newCORS(cfg.CORSAllowedOrigins))
	router.Use(RequestIDMiddleware())

	if cfg.ReadOnly {
		router.Use(ReadOnlyMiddleware(loginPath, demoLoginPath, demoLogoutPath))
	}

	// Resolve bearer tokens on every request so the audit trail knows the actor
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.OptionalAuthor())
	}

	if cfg.MediaPath != "" {
		router.Static("/media", cfg.MediaPath)
	}
	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/", Root)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	registerAuthorRoutes(router, cfg)
	registerCatalogRoutes(router, cfg)
	registerOrderRoutes(router, cfg)
	registerAuditRoutes(router, cfg)

	if cfg.DemoAuthEnabled {
		registerDemoAuthRoutes(router, cfg)
	}

	return router
}

func newCORS(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", auth.CSRFTokenHeader, AuthTokenHeader, RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        corsPreflightTTL,
	}

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	return cors.New(config)
}

// requireAuthor returns the bearer guard, or a handler rejecting every
// request when authentication is not configured.
func requireAuthor(cfg RouterConfig) gin.HandlerFunc {
	if cfg.AuthMiddleware == nil {
		return func(c *gin.Context) {
			respondAppError(c, auth.ErrTokenRejected)
		}
	}
	return cfg.AuthMiddleware.RequireAuthor()
}

func registerAuthorRoutes(router *gin.Engine, cfg RouterConfig) {
	if cfg.Authors != nil {
		authors := NewAuthorsController(cfg.Authors, cfg.Hasher, cfg.Authenticator, cfg.Auditor)

		login := []gin.HandlerFunc{authors.Login}
		if cfg.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{cfg.LoginLimiter.Middleware()}, login...)
		}

		group := router.Group("/authors")
		group.POST("/", authors.Create)
		group.GET("/", authors.List)
		group.POST("/login/", login...)
		group.GET("/me/", requireAuthor(cfg), authors.Me)
		group.GET("/:id/", authors.Get)
		group.PATCH("/:id/", authors.Update)
		group.DELETE("/:id/", authors.Delete)
	}

	if cfg.Profiles != nil {
		profiles := NewProfilesController(cfg.Profiles, cfg.Auditor)

		group := router.Group("/profiles")
		group.POST("/", profiles.Create)
		group.GET("/", profiles.List)
		group.GET("/author/:author_id/", profiles.GetByAuthor)

		me := group.Group("/me", requireAuthor(cfg))
		me.POST("/", profiles.CreateMine)
		me.GET("/", profiles.GetMine)
		me.PATCH("/", profiles.UpdateMine)
		me.DELETE("/", profiles.DeleteMine)
	}
}

func registerCatalogRoutes(router *gin.Engine, cfg RouterConfig) {
	if cfg.Genres != nil {
		genres := NewGenresController(cfg.Genres, cfg.Auditor)

		group := router.Group("/genres")
		group.GET("/", genres.List)
		group.POST("/", genres.Create)
		group.GET("/:id/", genres.Get)
		group.GET("/:id/with_books/", genres.WithBooks)
		group.PATCH("/:id/", genres.Update)
		group.DELETE("/:id/", genres.Delete)
	}

	if cfg.Books != nil {
		books := NewBooksController(cfg.Books, cfg.Auditor)

		group := router.Group("/books")
		group.GET("/", books.List)
		group.POST("/", books.Create)
		group.GET("/:id/", books.Get)
		group.PUT("/:id/", books.Replace)
		group.PATCH("/:id/", books.Update)
		group.DELETE("/:id/", books.Delete)
		group.POST("/:id/tags/:tag_id/", books.AttachTag)
		group.DELETE("/:id/tags/:tag_id/", books.DetachTag)
	}

	if cfg.Tags != nil {
		tags := NewTagsController(cfg.Tags, cfg.Auditor)

		group := router.Group("/tags")
		group.GET("/", tags.List)
		group.POST("/", tags.Create)
		group.GET("/:id/", tags.Get)
		group.PUT("/:id/", tags.Replace)
		group.DELETE("/:id/", tags.Delete)
	}
}

func registerOrderRoutes(router *gin.Engine, cfg RouterConfig) {
	if cfg.Orders == nil {
		return
	}
	orders := NewOrdersController(cfg.Orders, cfg.Auditor)

	group := router.Group("/orders")
	group.GET("/", orders.List)
	group.POST("/", orders.Create)
	group.GET("/:id/", orders.Get)
	group.DELETE("/:id/", orders.Delete)
}

// Audit and task routes are for superusers only.
func registerAuditRoutes(router *gin.Engine, cfg RouterConfig) {
	if cfg.AuditEvents == nil || cfg.AuthMiddleware == nil {
		return
	}
	controller := NewAuditController(cfg.AuditEvents, cfg.TaskQueue, cfg.AuditRetentionDays)
	admin := router.Group("/", cfg.AuthMiddleware.RequireAuthor(), cfg.AuthMiddleware.RequireSuperuser())

	admin.GET("/audit/events/", controller.ListEvents)
	admin.POST("/audit/cleanup/", controller.Cleanup)
	admin.GET("/tasks/:id/", controller.TaskStatus)
}

func registerDemoAuthRoutes(router *gin.Engine, cfg RouterConfig) {
	demo := NewDemoAuthController(cfg.DemoCredentials, cfg.DemoTokens, cfg.SessionManager, cfg.Auditor)

	group := router.Group("/demo-auth")
	group.GET("/basic-auth/", demo.BasicAuthCredentials)
	if cfg.DemoCredentials != nil {
		group.GET("/basic-auth-username/", demo.BasicAuthUsername)
	}
	if cfg.DemoTokens != nil {
		group.GET("/some-http-header-auth/", demo.HeaderAuth)
	}

	if cfg.SessionManager == nil || cfg.DemoCredentials == nil || len(cfg.CSRFSecret) == 0 {
		return
	}

	// CSRF runs before the session so the session context survives the
	// request replacement done by gorilla/csrf
	cookies := group.Group("/",
		auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies),
		cfg.SessionManager.LoadAndSave(),
	)
	cookies.GET("/csrf-token/", demo.CSRFToken)
	cookies.POST("/login-cookie/", demo.LoginCookie)
	cookies.GET("/check-cookie/", demo.CheckCookie)
	cookies.POST("/logout-cookie/", demo.LogoutCookie)
}
