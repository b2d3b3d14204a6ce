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

	"ems_backend/internal/api"
	"ems_backend/internal/app/service"
	"ems_backend/internal/app/worker"
	"ems_backend/internal/common/security"
	"ems_backend/internal/domain/repository"
	"ems_backend/internal/platform/config"
	"ems_backend/internal/platform/database"
	"ems_backend/internal/platform/mailer"
	"ems_backend/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database (runs migrations)
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis (mail outbox queue)
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize SMTP sender with a startup health check
	smtpSender := mailer.NewSMTPSender()
	mailer.VerifyStartup(smtpSender)

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)

	// 7. Initialize Services
	notificationService := service.NewNotificationService(userRepo, smtpSender, queue.RDB)
	registrationService := service.NewRegistrationService(userRepo, notificationService)
	approvalService := service.NewApprovalService(userRepo, notificationService)
	authService := service.NewAuthService(userRepo)

	// 8. Initialize Mail Worker (as a goroutine)
	mailWorker := worker.NewMailWorker(queue.RDB, smtpSender)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go mailWorker.Start(workerCtx)
	fmt.Println("Mail worker started.")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(registrationService, authService, approvalService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
