package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/config"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/database"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/server"
	"github.com/UFAZ-L2-CS1/ufaz-slay-meter-sub000/internal/war"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db := database.New(cfg.Database)
	defer db.Close()

	selector := war.NewSelector(db.GetDB(), cfg.War.RecentVibeSample)
	warService, err := war.NewService(db.GetDB(), selector, war.SystemClock(), war.Options{
		StartTime: cfg.War.StartTime,
		Timezone:  cfg.War.Timezone,
	})
	if err != nil {
		log.Fatalf("Failed to build war service: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background war lifecycle: startup reconciliation, daily creation
	// trigger and the minute sweep that closes expired wars.
	war.NewScheduler(warService).Start(ctx)

	srv := server.NewServer(cfg, db, warService)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
