// Command devserver runs a small stand-in for the Drupal backend the
// mobile client posts to.
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

	"github.com/joho/godotenv"

	"github.com/christianyates/DrupalGeoPicture/internal/config"
	"github.com/christianyates/DrupalGeoPicture/internal/repository"
	"github.com/christianyates/DrupalGeoPicture/internal/service"
	transport "github.com/christianyates/DrupalGeoPicture/internal/transport/http"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := config.Load()

	log.Printf("Starting devserver...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)

	db, err := repository.NewStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	acct, err := db.EnsureAccount(ctx, cfg.DevUser, cfg.DevPass)
	if err != nil {
		log.Fatalf("Failed to seed account: %v", err)
	}
	log.Printf("Dev account %q ready (uid %d)", acct.Name, acct.UID)

	svc := service.New(db)
	server := transport.NewServer(svc)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down devserver...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Devserver stopped")
}
