// Command scraper serves /scrapeProduct on its own, without the order store,
// gateway or mailer.
package main

import (
	"log"
	"time"

	controllers "github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/controllers/http"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/scraper"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/pkg/config"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/pkg/logger"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	extractor := scraper.NewExtractor(infra.NewPageClient(cfg.ScrapeTimeout), scraper.DefaultRegistry(), zl)
	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr(),
			DialTimeout: 2 * time.Second,
			ReadTimeout: 500 * time.Millisecond,
		})
		defer rdb.Close()
		extractor.SetRedisClient(rdb, cfg.ScrapeCacheTTL)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		zl.Fatal("trusted proxies", zap.Error(err))
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(zl))
	r.GET("/health", controllers.Health)
	controllers.NewScrapeHandler(extractor, zl).RegisterRoutes(r, middleware.RateLimit(cfg.ScrapeRatePerMin))

	zl.Info("starting scraper", zap.String("port", cfg.Port), zap.Strings("sites", scraper.DefaultRegistry().Names()))
	if err := r.Run(":" + cfg.Port); err != nil {
		zl.Fatal("server run", zap.Error(err))
	}
}
