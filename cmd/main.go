package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/sevasetu/foundation-backend/config"
	"github.com/sevasetu/foundation-backend/database"
	"github.com/sevasetu/foundation-backend/internal/auditlog"
	"github.com/sevasetu/foundation-backend/internal/donation"
	"github.com/sevasetu/foundation-backend/internal/invoice"
	"github.com/sevasetu/foundation-backend/internal/notification"
	"github.com/sevasetu/foundation-backend/internal/queue"
	"github.com/sevasetu/foundation-backend/internal/storage"
	"github.com/sevasetu/foundation-backend/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&donation.Donor{},
		&donation.Donation{},
		&invoice.Invoice{},
		&auditlog.AuditLog{},
	); err != nil {
		log.Fatalf("❌ DB AutoMigrate failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// Redis backs the best-effort invoice sequence counter
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Firebase Storage holds the generated PDFs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewFirebaseStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Firebase Storage init failed: %v", err)
	}

	// Init repositories & services
	auditRepo := auditlog.NewRepository(db)
	auditSvc := auditlog.NewService(auditRepo)

	donationRepo := donation.NewRepository(db)
	invoiceRepo := invoice.NewRepository(db)

	mailer := notification.NewEmailSender(cfg)
	sequencer := invoice.NewRedisSequencer(rdb)
	payments := invoice.NewRazorpayFetcher(cfg.RazorpayKey, cfg.RazorpaySecret)

	foundation := invoice.Foundation{
		Name:    cfg.FoundationName,
		Address: cfg.FoundationAddress,
		PAN:     cfg.FoundationPAN,
		Reg80G:  cfg.Foundation80GNo,
		Email:   cfg.FoundationEmail,
		Phone:   cfg.FoundationPhone,
	}

	invoiceSvc := invoice.NewService(
		invoiceRepo, donationRepo, store, mailer,
		sequencer, payments, auditSvc, foundation,
	)

	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaInvoiceTopic)
	defer producer.Close()

	donationSvc := donation.NewService(donationRepo, producer, cfg, auditSvc)

	// Log any invoices left without a PDF by an earlier crash; they need a
	// reconciliation pass, not silent repair.
	if stuck, err := invoiceRepo.ListMissingPDF(ctx); err != nil {
		log.Printf("⚠️ Reconciliation scan failed: %v", err)
	} else if len(stuck) > 0 {
		log.Printf("⚠️ %d invoice(s) have no PDF attached, see /api/v1/invoices/reconciliation", len(stuck))
	}

	// Start the invoice worker pool
	worker := invoice.NewWorker(cfg, invoiceSvc)
	worker.Start(ctx)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, invoice.NewHandler(invoiceSvc), donation.NewHandler(donationSvc))

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		fmt.Printf("🚀 Server starting on port %s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown: stop consuming, drain in-flight jobs, close HTTP
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	cancel()
	worker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
