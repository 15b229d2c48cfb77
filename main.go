package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kendall-kelly/baskets-api/config"
	"github.com/kendall-kelly/baskets-api/controllers"
	"github.com/kendall-kelly/baskets-api/middleware"
	"github.com/kendall-kelly/baskets-api/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zap.L().Info("Starting Baskets API server...", zap.String("env", cfg.GoEnv))

	if err := config.ConnectDatabase(cfg); err != nil {
		return err
	}
	db := config.GetDB()
	if err := config.Migrate(db); err != nil {
		return err
	}
	zap.L().Info("Database migration completed successfully")

	if err := controllers.RegisterValidators(); err != nil {
		return err
	}

	b, err := connectBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	opts := []services.Option{
		services.WithDeliveryCache(b.cache),
		services.WithAuditLog(b.audit),
	}
	services.InitUserService(db, opts...)
	services.InitOrderService(db, opts...)
	services.InitDeliveryService(db, opts...)
	services.InitCatalogService(db, opts...)
	services.InitExportService(db, b.storage, opts...)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, middleware.EnsureValidToken(cfg))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("Server is running", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// backends are the optional stores next to the database. Each falls back to
// a no-op (or nil storage) when not configured.
type backends struct {
	cache   services.DeliveryCache
	audit   services.AuditLog
	storage services.ObjectStorage
	closers []func()
}

func (b *backends) close() {
	for _, closeFn := range b.closers {
		closeFn()
	}
}

// connectBackends connects Redis, MongoDB and S3 concurrently. An unreachable
// cache or audit log is disabled with a warning; a broken S3 setup is fatal.
func connectBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{
		cache: services.NoopDeliveryCache{},
		audit: services.NoopAuditLog{},
	}
	var cacheCloser, auditCloser func()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.RedisAddr != "" {
		g.Go(func() error {
			redisCache := services.NewRedisDeliveryCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.DeliveryCacheTTL)
			if err := redisCache.Ping(gctx); err != nil {
				zap.L().Warn("Redis unreachable, delivery cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
				_ = redisCache.Close()
				return nil
			}
			b.cache = redisCache
			cacheCloser = func() { _ = redisCache.Close() }
			zap.L().Info("Delivery cache enabled", zap.String("addr", cfg.RedisAddr))
			return nil
		})
	}

	if cfg.MongoURI != "" {
		g.Go(func() error {
			auditLog, err := services.NewMongoAuditLog(gctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoAuditCollection)
			if err == nil {
				err = auditLog.Ping(gctx)
			}
			if err != nil {
				zap.L().Warn("MongoDB unreachable, order audit log disabled", zap.Error(err))
				if auditLog != nil {
					_ = auditLog.Close(context.Background())
				}
				return nil
			}
			b.audit = auditLog
			auditCloser = func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = auditLog.Close(closeCtx)
			}
			zap.L().Info("Order audit log enabled", zap.String("database", cfg.MongoDatabase))
			return nil
		})
	}

	if cfg.ExportStorageEnabled() {
		g.Go(func() error {
			storage, err := services.NewS3Storage(gctx, cfg)
			if err != nil {
				return err
			}
			b.storage = storage
			zap.L().Info("Export storage enabled", zap.String("bucket", cfg.AWSS3Bucket))
			return nil
		})
	} else {
		zap.L().Info("AWS_S3_BUCKET not set, order form uploads disabled")
	}

	err := g.Wait()
	for _, closeFn := range []func(){cacheCloser, auditCloser} {
		if closeFn != nil {
			b.closers = append(b.closers, closeFn)
		}
	}
	if err != nil {
		b.close()
		return nil, err
	}
	return b, nil
}

// setupRouter builds the HTTP handler. authenticate validates bearer tokens
// on the protected routes.
func setupRouter(cfg *config.Config, authenticate gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(zap.L()), gin.Recovery(), cors.New(corsConfig(cfg)))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
	}
	controllers.RegisterRoutes(v1, authenticate)

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Location", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Baskets API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
