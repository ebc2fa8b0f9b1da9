package routes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"geekgalaxy_pos/internal/adapter/http/handlers"
	"geekgalaxy_pos/internal/adapter/http/middleware"
	"geekgalaxy_pos/internal/adapter/persistence/boltdb"
	"geekgalaxy_pos/internal/adapter/persistence/postgres"
	"geekgalaxy_pos/internal/adapter/persistence/repository"
	"geekgalaxy_pos/internal/infrastructure/auth"
	"geekgalaxy_pos/internal/infrastructure/cache"
	"geekgalaxy_pos/internal/infrastructure/config"
	"geekgalaxy_pos/internal/infrastructure/database"
	"geekgalaxy_pos/internal/infrastructure/messaging"
	"geekgalaxy_pos/internal/infrastructure/observability"
	"geekgalaxy_pos/internal/infrastructure/payments"
	"geekgalaxy_pos/internal/usecase"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// storage is the persistence backend selected by STORE_DRIVER.
type storage struct {
	products interfaces.IProductRepository
	sales    interfaces.ISaleRepository
	clients  interfaces.IClientRepository
	uow      interfaces.IUnitOfWork
	close    func()
}

// Run will start the server and block until SIGINT or SIGTERM.
func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, shutdownTracing, err := observability.SetupTracingSDK(ctx, cfg)
	if err != nil {
		logger.Fatal("[pos] failed to set up tracing", zap.Error(err))
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("[pos] failed to open storage", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	var idempotency interfaces.IIdempotencyStore
	var closeIdempotency func() error
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewIdempotencyStore(cfg.RedisURL, cfg.IdempotencyTTL, cfg.IdempotencyPendingTTL())
		if err != nil {
			logger.Fatal("[pos] failed to connect to redis", zap.Error(err))
		}
		idempotency = redisStore
		closeIdempotency = redisStore.Close
	} else {
		logger.Warn("[pos] REDIS_URL not set, Idempotency-Key headers are ignored")
	}

	notifier, closeNotifier := buildNotifier(cfg, tp, logger)

	policy := auth.NewRolePolicy()
	saleUseCase := usecase.NewSaleUseCase(usecase.SaleUseCaseDeps{
		UnitOfWork:    store.uow,
		Sales:         store.sales,
		Policy:        policy,
		Notifier:      notifier,
		Idempotency:   idempotency,
		Logger:        logger,
		Tracer:        tp.Tracer("geekgalaxy_pos/usecase"),
		TxTimeout:     cfg.TxTimeout,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	productUseCase := usecase.NewProductUseCase(store.products, store.uow, policy, logger, cfg.TxTimeout)
	clientUseCase := usecase.NewClientUseCase(store.clients, policy, logger)

	router := newRouter(cfg, logger, routeHandlers{
		products: handlers.NewProductHandler(productUseCase),
		sales:    handlers.NewSaleHandler(saleUseCase),
		clients:  handlers.NewClientHandler(clientUseCase),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("[pos] listening", zap.Int("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("[pos] failed to startup the application", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("[pos] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("[pos] http shutdown", zap.Error(err))
	}
	// Cancellation notifications still in flight must reach finance before the sinks close.
	saleUseCase.Wait()
	if closeNotifier != nil {
		if err := closeNotifier(); err != nil {
			logger.Error("[pos] closing notifier", zap.Error(err))
		}
	}
	if closeIdempotency != nil {
		if err := closeIdempotency(); err != nil {
			logger.Error("[pos] closing redis", zap.Error(err))
		}
	}
	store.close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("[pos] tracing shutdown", zap.Error(err))
	}
}

type routeHandlers struct {
	products *handlers.ProductHandler
	sales    *handlers.SaleHandler
	clients  *handlers.ClientHandler
}

func newRouter(cfg *config.Config, logger *zap.Logger, h routeHandlers) *gin.Engine {
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	setMiddlewares(router, logger)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	addPingRoutes(v1)

	// Rotas autenticadas
	authenticated := v1.Group("")
	authenticated.Use(middleware.RequirePrincipal())
	addProductRoutes(authenticated, h.products)
	addSaleRoutes(authenticated, h.sales)
	addClientRoutes(authenticated, h.clients)

	return router
}

func setMiddlewares(router *gin.Engine, logger *zap.Logger) {
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("[pos] recovered from panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &storage{
			products: postgres.NewProductRepository(db),
			sales:    postgres.NewSaleRepository(db),
			clients:  postgres.NewClientRepository(db),
			uow:      postgres.NewUnitOfWork(db, cfg.TxMaxAttempts),
			close:    db.Close,
		}, nil

	case config.StoreBolt:
		db, err := boltdb.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return &storage{
			products: boltdb.NewProductRepository(db),
			sales:    boltdb.NewSaleRepository(db),
			clients:  boltdb.NewClientRepository(db),
			uow:      boltdb.NewUnitOfWork(db),
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error("[pos] closing bolt", zap.Error(err))
				}
			},
		}, nil

	case config.StoreDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &storage{
			products: repository.NewProductDynamoRepository(ddb, cfg.ProductsTable),
			sales:    repository.NewSaleDynamoRepository(ddb, cfg.SalesTable),
			clients:  repository.NewClientDynamoRepository(ddb, cfg.ClientsTable),
			uow:      repository.NewDynamoUnitOfWork(ddb, repository.Tables{Products: cfg.ProductsTable, Sales: cfg.SalesTable, Clients: cfg.ClientsTable}, cfg.TxMaxAttempts),
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// buildNotifier assembles the finance sinks for cancelled sales: the SaleCancelled topic when
// a broker is configured and the Mercado Pago refund when credentials are present. With neither,
// cancellations are only logged.
func buildNotifier(cfg *config.Config, tp trace.TracerProvider, logger *zap.Logger) (interfaces.IFinancialNotifier, func() error) {
	var sinks []interfaces.IFinancialNotifier
	var closeFn func() error

	if cfg.KafkaBroker != "" {
		producer, err := messaging.NewSalesProducer(cfg, tp)
		if err != nil {
			logger.Error("[pos] kafka producer not configured", zap.Error(err))
		} else {
			kafkaNotifier := messaging.NewKafkaNotifier(producer, logger)
			sinks = append(sinks, kafkaNotifier)
			closeFn = kafkaNotifier.Close
		}
	}

	gateway, err := payments.NewMercadoPagoGateway(cfg.MercadoPagoAccessToken, cfg.PaymentGatewayMock, logger)
	if err != nil {
		logger.Warn("[pos] mercado pago refunds disabled", zap.Error(err))
	} else {
		sinks = append(sinks, gateway)
	}

	if len(sinks) == 0 {
		return messaging.NewLogNotifier(logger), closeFn
	}
	return messaging.NewFanOutNotifier(sinks...), closeFn
}
