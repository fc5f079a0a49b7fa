package main

import (
	"bufio"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"github.com/raceday/booking/config"
	"github.com/raceday/booking/internal/adapter/handler"
	"github.com/raceday/booking/internal/adapter/notifier"
	"github.com/raceday/booking/internal/adapter/repository/postgres"
	"github.com/raceday/booking/internal/core/services"
	"github.com/raceday/booking/internal/platform/cache"
	"github.com/raceday/booking/internal/platform/database"
)

func loadEnv(filepath string) {
	file, err := os.Open(filepath)

	if err != nil {
		log.Println("No .env file found, using OS environment variables.")
		return
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			os.Setenv(key, value)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Failed to read .env file: %v\n", err)
	}
}

func main() {
	loadEnv(".env")

	cfg := config.Load()

	db, err := database.NewPostgresDB(database.Config{
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		DBName:     cfg.DBName,
		MaxRetries: cfg.DBConnectRetries,
		RetryDelay: cfg.DBConnectDelay,
	})
	if err != nil {
		log.Fatalf("Failed to connect to db after retries: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	defer db.Close()

	log.Printf("Connecting to Redis at %s...", cfg.RedisURL)

	redisClient, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Redis connected successfully!")

	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	bookingService := services.NewBookingService(eventRepo, bookingRepo, redisClient)
	reconciler := services.NewPaymentReconciler(bookingService, paymentRepo)

	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(reconciler)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.PublishKey = cfg.PubNubPublishKey

		pn := pubnub.NewPubNub(pnConfig)
		listener := notifier.NewPaymentListener(pn, reconciler, cfg.PaymentChannel)

		go listener.Run(rootCtx)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/events", bookingHandler.CreateEvent)
	mux.HandleFunc("/bookings", bookingHandler.CreateBooking)
	mux.HandleFunc("/bookings/cancel", bookingHandler.CancelBooking)
	mux.HandleFunc("/bookings/discount", bookingHandler.ApplyDiscount)
	mux.HandleFunc("/payments/result", paymentHandler.PaymentResult)
	mux.HandleFunc("/payments/refund", paymentHandler.Refund)
	mux.HandleFunc("/capacity", bookingHandler.GetCapacity)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, `{"status":"db unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		if err := cache.HealthCheck(redisClient); err != nil {
			http.Error(w, `{"status":"redis unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
