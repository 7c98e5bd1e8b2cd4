package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Searching96/flight-management-system-sub002/internal/api"
	"github.com/Searching96/flight-management-system-sub002/internal/api/handler"
	custommw "github.com/Searching96/flight-management-system-sub002/internal/api/middleware"
	"github.com/Searching96/flight-management-system-sub002/internal/application"
	"github.com/Searching96/flight-management-system-sub002/internal/config"
	"github.com/Searching96/flight-management-system-sub002/internal/infrastructure/kafka"
	"github.com/Searching96/flight-management-system-sub002/internal/infrastructure/postgres"
	redisinfra "github.com/Searching96/flight-management-system-sub002/internal/infrastructure/redis"
	"github.com/Searching96/flight-management-system-sub002/internal/pkg/logger"
	"github.com/Searching96/flight-management-system-sub002/internal/pkg/metrics"
	"github.com/Searching96/flight-management-system-sub002/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Set(logger.NewLogger(env))
	defer logger.Sync()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// Redis接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisinfra.Ping(ctx, redisClient); err != nil {
			cancel()
			logger.Fatal("Redis接続エラー", zap.Error(err))
		}
		cancel()
	}

	// Kafkaパブリッシャー
	publisher := kafka.NewPublisher(&cfg.Kafka)
	defer publisher.Close()

	// メトリクス初期化
	m := metrics.Init()

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	flightRepo := postgres.NewFlightRepository(db)
	invRepo := postgres.NewInventoryRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)

	// Redisインフラ
	lockManager := redisinfra.NewLockManager(redisClient)
	availabilityCache := redisinfra.NewAvailabilityCache(redisClient)

	// サービス
	bookingParams := application.NewBookingParams(&cfg.Booking)
	flightService := application.NewFlightService(flightRepo)
	inventoryService := application.NewInventoryService(invRepo, availabilityCache)
	bookingService := application.NewBookingService(
		txManager, flightRepo, invRepo, ticketRepo,
		lockManager, availabilityCache, publisher, bookingParams,
	)

	// ホールド期限スイーパー起動
	sweeper := worker.NewHoldExpirySweeper(bookingService, cfg.Booking.SweepInterval)
	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	defer sweeperCancel()
	go sweeper.Start(sweeperCtx)

	// Echoサーバー
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	flightHandler := handler.NewFlightHandler(flightService, inventoryService)
	bookingHandler := handler.NewBookingHandler(bookingService)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/flights", flightHandler.Create)
	v1.GET("/flights", flightHandler.List)
	v1.GET("/flights/:id", flightHandler.GetByID)
	v1.PUT("/flights/:id", flightHandler.Update)
	v1.DELETE("/flights/:id", flightHandler.Delete)

	v1.POST("/flights/:id/inventories", flightHandler.CreateInventory)
	v1.GET("/flights/:id/inventories", flightHandler.ListInventories)
	v1.GET("/flights/:id/inventories/:class/remaining", flightHandler.GetRemainingCount)
	v1.DELETE("/flights/:id/inventories/:class", flightHandler.DeleteInventory)
	v1.GET("/flights/:id/seats/availability", bookingHandler.CheckSeat)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings/:code", bookingHandler.GetByCode)
	v1.POST("/bookings/:code/payment", bookingHandler.PaymentCallback)

	v1.GET("/tickets/:id", bookingHandler.GetTicket)
	v1.POST("/tickets/:id/cancel", bookingHandler.CancelTicket)
	v1.GET("/passengers/:passenger_id/tickets", bookingHandler.GetPassengerTickets)

	// Prometheusメトリクス（Basic認証は環境変数設定時のみ有効）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("シャットダウン開始")

	// スイーパー停止（実行中の回収が終わるまで待つ）
	sweeperCancel()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("シャットダウン完了")
}
