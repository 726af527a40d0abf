package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	auditsvc "github.com/Paul-Starodub/fast-library/internal/audit"
	"github.com/Paul-Starodub/fast-library/internal/auth"
	"github.com/Paul-Starodub/fast-library/internal/config"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/database/audit"
	"github.com/Paul-Starodub/fast-library/internal/database/authors"
	"github.com/Paul-Starodub/fast-library/internal/database/books"
	"github.com/Paul-Starodub/fast-library/internal/database/genres"
	"github.com/Paul-Starodub/fast-library/internal/database/orders"
	"github.com/Paul-Starodub/fast-library/internal/database/profiles"
	"github.com/Paul-Starodub/fast-library/internal/database/tags"
	"github.com/Paul-Starodub/fast-library/internal/demoauth"
	http_controllers "github.com/Paul-Starodub/fast-library/internal/http"
	"github.com/Paul-Starodub/fast-library/internal/scheduler"
	"github.com/Paul-Starodub/fast-library/internal/tasks"
)

const limiterPruneInterval = 10 * time.Minute

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -9 cannot be caught, so only SIGINT and SIGTERM are handled
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the background workers go away
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Fast Library v%s", version)

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	authorRepo := authors.NewRepository(db.DB)
	auditService := auditsvc.NewService(audit.NewRepository(db.DB))

	// Bearer tokens
	secretKey := cfg.Auth.SecretKey
	if secretKey == "" {
		secretKey, err = auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate token key: %v", err)
		}
		log.Printf("WARNING: SECRET_KEY is not set. Generated a temporary key; issued tokens will not survive a restart.")
	}
	tokens, err := auth.NewTokenService(secretKey, cfg.Auth.AccessTokenTTL, cfg.Auth.TokenIssuer, cfg.Auth.TokenAudience)
	if err != nil {
		log.Fatalf("Invalid SECRET_KEY: %v", err)
	}
	authService := auth.NewService(authorRepo, tokens)

	var loginLimiter *auth.KeyedRateLimiter
	if cfg.Auth.LoginRateLimit > 0 {
		loginLimiter = auth.NewKeyedRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateBurst)
		go pruneLimiter(bgCtx, loginLimiter)
	}

	routerCfg := http_controllers.RouterConfig{
		Authors:            authorRepo,
		Profiles:           profiles.NewRepository(db.DB),
		Genres:             genres.NewRepository(db.DB),
		Books:              books.NewRepository(db.DB),
		Tags:               tags.NewRepository(db.DB),
		Orders:             orders.NewRepository(db.DB),
		Hasher:             auth.Hasher{Cost: cfg.Auth.BcryptCost},
		Authenticator:      authService,
		AuthMiddleware:     auth.NewMiddleware(authService),
		LoginLimiter:       loginLimiter,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		ReadOnly:           cfg.HTTP.ReadOnly,
		MediaPath:          cfg.HTTP.MediaPath,
		StaticPath:         cfg.HTTP.StaticPath,
		Database:           db,
		Version:            version,
	}
	if cfg.HTTP.ReadOnly {
		log.Printf("Read-only mode enabled - write operations will be rejected")
	}

	if cfg.Audit.Enabled {
		routerCfg.Auditor = auditService
		routerCfg.AuditEvents = auditService
	} else {
		log.Printf("Audit logging disabled")
	}

	if cfg.DemoAuth.Enabled {
		if err := configureDemoAuth(bgCtx, cfg, db, &routerCfg); err != nil {
			log.Fatalf("Failed to initialize demo auth: %v", err)
		}
	}

	// Background tasks and the retention schedule
	var taskClient *tasks.Client
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))
		go taskClient.Start(bgCtx)
		routerCfg.TaskQueue = taskClient

		if cfg.Audit.Enabled && cfg.Audit.CleanupSchedule != "" {
			cleanupScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
			if err := cleanupScheduler.Start(bgCtx); err != nil {
				log.Printf("WARNING: Failed to start audit cleanup scheduler: %v", err)
				cleanupScheduler = nil
			}
		}
	} else {
		log.Printf("Background tasks disabled - audit cleanup endpoints will return 404")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}

// configureDemoAuth wires the three demo login styles: static header
// tokens, HTTP basic credentials and cookie sessions guarded by CSRF.
func configureDemoAuth(ctx context.Context, cfg *config.Config, db *database.Database, routerCfg *http_controllers.RouterConfig) error {
	var tokenStore demoauth.Store = demoauth.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		client, err := demoauth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		go func() {
			<-ctx.Done()
			client.Close()
		}()
		tokenStore = demoauth.NewRedisStore(client)
		log.Printf("Demo auth tokens stored in Redis at %s", cfg.Redis.Addr)
	}
	if err := demoauth.Seed(ctx, tokenStore, cfg.DemoAuth.Tokens); err != nil {
		return fmt.Errorf("seed demo tokens: %w", err)
	}

	var sessionStore scs.Store
	if db.Driver == config.DriverSQLite {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return fmt.Errorf("get SQL DB for sessions: %w", err)
		}
		sessionStore, err = auth.NewSQLiteSessionStore(sqlDB)
		if err != nil {
			return fmt.Errorf("create session store: %w", err)
		}
	}

	csrfSecret, err := sessionSecret(cfg.Auth.SessionSecret)
	if err != nil {
		return err
	}

	routerCfg.DemoAuthEnabled = true
	routerCfg.DemoCredentials = demoauth.NewCredentials(cfg.DemoAuth.Users)
	routerCfg.DemoTokens = tokenStore
	routerCfg.SessionManager = auth.NewSessionManager(sessionStore, cfg.Auth)
	routerCfg.CSRFSecret = csrfSecret
	routerCfg.SecureCookies = cfg.Auth.SecureCookies
	return nil
}

// sessionSecret decodes a hex secret, falls back to raw bytes, and generates
// one when none is configured.
func sessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	generated, err := auth.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	log.Printf("Generated session secret (set SESSION_SECRET to persist)")
	return hex.DecodeString(generated)
}

func pruneLimiter(ctx context.Context, limiter *auth.KeyedRateLimiter) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := limiter.Prune(); removed > 0 {
				log.Printf("Pruned %d idle login limiters", removed)
			}
		}
	}
}
