package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	controllers "github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/controllers/http"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra/dynamo"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra/mailer"
	mmysql "github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra/mysql"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra/rabbitmq"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/invoice"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/payment"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository"
	dynamorepo "github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository/dynamodb"
	mysqlrepo "github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository/mysql"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/scraper"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/services"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/pkg/config"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/pkg/logger"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := newOrderRepository(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("order store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.Nop{}
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.EventExchange, zl)
		if err != nil {
			zl.Fatal("failed to init publisher", zap.Error(err))
		}
		defer p.Close()
		publisher = p
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	defer redisClient.Close()

	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	smtp := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	renderer := invoice.NewRenderer(cfg.InvoiceBrand, cfg.InvoiceLogoPath)

	orders := services.NewOrderService(repo, gateway, publisher, zl)
	webhooks := services.NewWebhookService(cfg.RazorpayWebhookSecret, repo, publisher, zl)
	invoices := services.NewInvoiceService(renderer, smtp, cfg.InvoiceBrand, zl)

	extractor := scraper.NewExtractor(infra.NewPageClient(cfg.ScrapeTimeout), scraper.DefaultRegistry(), zl)
	extractor.SetRedisClient(redisClient, cfg.ScrapeCacheTTL)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		zl.Fatal("trusted proxies", zap.Error(err))
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(zl))
	r.GET("/health", controllers.Health)

	controllers.NewHandler(orders, webhooks, invoices, redisClient, zl).RegisterRoutes(r)
	controllers.NewScrapeHandler(extractor, zl).RegisterRoutes(r, middleware.RateLimit(cfg.ScrapeRatePerMin))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("starting wishlist2cart api", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
}

func newOrderRepository(ctx context.Context, cfg *config.Config, zl *zap.Logger) (repository.OrderRepository, error) {
	switch cfg.StoreDriver {
	case "dynamodb":
		client, err := dynamo.NewClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, err
		}
		return dynamorepo.NewOrderRepository(client, cfg.OrderTableName), nil
	default:
		db, err := mmysql.NewMySQL(cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		return mysqlrepo.NewOrderRepository(db, zl), nil
	}
}
