package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/controllers/http"
	"storefront/internal/domain"
	"storefront/internal/infra"
	mmysql "storefront/internal/infra/mysql"
	"storefront/internal/infra/rabbitmq"
	rdbclient "storefront/internal/infra/redis"
	"storefront/internal/infra/s3"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/repository/memory"
	mysqlrepo "storefront/internal/repository/mysql"
	redisrepo "storefront/internal/repository/redis"
	"storefront/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const productCacheTTL = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	config.SetupLogging(cfg)

	ctx := context.Background()

	db, err := mmysql.NewMySQL(cfg.MySQL)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db: handle: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisHost != "" {
		redisClient, err = rdbclient.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword)
		if err != nil {
			if cfg.CartStore == "redis" {
				log.Fatalf("redis: %v", err)
			}
			log.Warnf("redis unavailable, product cache disabled: %v", err)
		}
	}

	productRepo := mysqlrepo.NewProductRepository(db)
	categoryRepo := mysqlrepo.NewCategoryRepository(db)
	orderRepo := mysqlrepo.NewOrderRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)

	var cacheClient infra.CacheClient
	if redisClient != nil {
		cacheClient = redisClient
	}
	catalogCache := infra.NewCachedCatalog(productRepo, cacheClient, productCacheTTL)
	go warmCatalog(ctx, productRepo, catalogCache)

	var cartRepo repository.CartRepository
	if cfg.CartStore == "redis" {
		cartRepo = redisrepo.NewCartRepository(redisClient, cfg.CartTTL)
	} else {
		cartRepo = memory.NewCartRepository()
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.NoopPublisher{}
	var closePublisher func()
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("failed to init publisher: %v", err)
		}
		publisher = p
		closePublisher = p.Close
	} else {
		log.Warn("RABBITMQ_URL not set, order events are dropped")
	}

	var images s3.ImageStore
	if cfg.S3Bucket != "" {
		images, err = s3.NewImageStoreFromEnv(ctx, cfg.S3Bucket)
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
	}

	carts := services.NewCartService(cartRepo, catalogCache)
	catalog := services.NewCatalogService(productRepo, categoryRepo, catalogCache, catalogCache, images)
	orders := services.NewOrderService(orderRepo, carts, publisher)
	auth := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerSec, cfg.LoginBurst)
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				limiter.Cleanup(now)
			case <-stopCleanup:
				return
			}
		}
	}()

	store := middleware.NewCookieStore(cfg.SessionSecret, cfg.SessionSecure, int(cfg.CartTTL.Seconds()))
	handler := http.NewHandler(catalog, carts, orders, auth, store, limiter, sqlDB)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), metrics.InstrumentHTTP())
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.SetHTMLTemplate(http.Templates())
	handler.RegisterRoutes(r)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting storefront on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("server run: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	close(stopCleanup)

	orders.Wait()
	if closePublisher != nil {
		closePublisher()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	_ = sqlDB.Close()
}

// warmCatalog loads the newest products into the cache.
func warmCatalog(ctx context.Context, products repository.ProductRepository, cache *infra.CachedCatalog) {
	latest, _, err := products.List(ctx, domain.ProductFilter{Ordering: "-created_at", Page: 1, Limit: 50})
	if err != nil {
		log.Printf("Failed to warm up cache: %v", err)
		return
	}
	ids := make([]uint64, 0, len(latest))
	for _, p := range latest {
		ids = append(ids, p.ID)
	}
	if err := cache.Warmup(ctx, ids); err != nil {
		log.Printf("Failed to warm up cache: %v", err)
	}
}
