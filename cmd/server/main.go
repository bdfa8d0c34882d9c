package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/powermfg/order-reporter/internal/api"
	"github.com/powermfg/order-reporter/internal/bigcommerce"
	"github.com/powermfg/order-reporter/internal/config"
	"github.com/powermfg/order-reporter/internal/mailer"
	"github.com/powermfg/order-reporter/internal/report"
	"github.com/powermfg/order-reporter/internal/scheduler"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Power Manufacturing Order Reporter")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Warning: %v — API endpoints will fail until credentials are set", err)
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		log.Fatalf("Invalid report timezone %q: %v", cfg.Report.Timezone, err)
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize BigCommerce client
	bcClient := bigcommerce.NewClient(cfg.BigCommerce)

	// Initialize SES mailer
	sender, err := mailer.New(ctx, cfg.SES)
	if err != nil {
		log.Fatalf("Failed to initialize SES mailer: %v", err)
	}

	// Initialize the report pipeline
	service := report.NewService(bcClient, sender, cfg.Report, cfg.BigCommerce.OrderLimit, loc)

	// Start the daily scheduler in background
	sched := scheduler.New(service, loc, cfg.Report.SendHour)
	go sched.Start(ctx)
	log.Printf("Scheduler started: daily at %02d:00 %s (next run %s)",
		cfg.Report.SendHour, cfg.Report.Timezone, sched.NextRun(time.Now()).Format(time.RFC1123))

	// Initialize and start API server
	handlers := api.NewHandlers(service, sched, sender, cfg)
	server := api.NewServer(cfg.Server, handlers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	// Cancel background tasks
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
