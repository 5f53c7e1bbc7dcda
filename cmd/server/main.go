package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"flight-booking/config"
	"flight-booking/internal/cache"
	"flight-booking/internal/database"
	"flight-booking/internal/handler"
	"flight-booking/internal/middleware"
	"flight-booking/internal/payment"
	"flight-booking/internal/queue"
	"flight-booking/internal/repository"
	"flight-booking/internal/service"
	"flight-booking/internal/worker"
	"flight-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	defer logger.Sync()

	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	notifyQueue, err := queue.NewRedisStreamNotificationQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize notification queue: %v", err)
	}

	flightRepo := repository.NewFlightRepository(db.Pool)
	ticketRepo := repository.NewTicketRepository(db.Pool)
	orderRepo := repository.NewOrderRepository(db.Pool)
	notificationRepo := repository.NewNotificationRepository(db.Pool)
	userRepo := repository.NewUserRepository(db.Pool)
	feedbackRepo := repository.NewFeedbackRepository(db.Pool)
	statsRepo := repository.NewStatsRepository(db.Pool)

	flightCache := cache.NewFlightCache(rdb, 5*time.Minute)

	gateways := payment.NewRegistry(
		payment.NewMoMoGateway(cfg.MoMo, nil),
		payment.NewVNPayGateway(cfg.VNPay),
	)

	flightService := service.NewFlightService(flightRepo, flightCache)
	bookingService := service.NewBookingService(db, flightRepo, ticketRepo, notificationRepo, flightCache, notifyQueue)
	orderService := service.NewOrderService(db, orderRepo, ticketRepo, notificationRepo, notifyQueue)
	paymentService := service.NewPaymentService(gateways, orderRepo, orderService)
	notificationService := service.NewNotificationService(notificationRepo)
	userService := service.NewUserService(db, userRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo)
	statsService := service.NewStatsService(statsRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationWorker := worker.NewNotificationWorker(notificationService, notifyQueue)
	if err := notificationWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start notification worker: %v", err)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.Metrics())

	auth := middleware.Auth(cfg.Auth.JWTSecret)
	admin := middleware.RequireAdmin()

	handler.NewHealthHandler(db, rdb).RegisterRoutes(router)
	handler.NewFlightHandler(flightService).RegisterRoutes(router, auth, admin)
	handler.NewTicketHandler(bookingService).RegisterRoutes(router, auth, admin)
	handler.NewOrderHandler(orderService).RegisterRoutes(router, auth, admin)
	handler.NewPaymentHandler(paymentService).RegisterRoutes(router, auth)
	handler.NewNotificationHandler(notificationService).RegisterRoutes(router, auth)
	handler.NewUserHandler(userService).RegisterRoutes(router, auth, admin)
	handler.NewFeedbackHandler(feedbackService).RegisterRoutes(router, auth, admin)
	handler.NewStatsHandler(statsService).RegisterRoutes(router, auth, admin)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithComponent("server").Info("listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()

	// 給進行中的請求一點時間收尾
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithComponent("server").Error("shutdown failed", zap.Error(err))
	}
}
