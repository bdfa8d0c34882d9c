package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
	"github.com/powermfg/order-reporter/internal/config"
	"github.com/powermfg/order-reporter/internal/mailer"
	"github.com/powermfg/order-reporter/internal/report"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	dryRun := flag.Bool("dry-run", false, "build the report but print it instead of emailing")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config invalid: %v", err)
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		log.Fatalf("Invalid report timezone %q: %v", cfg.Report.Timezone, err)
	}

	ctx := context.Background()

	bcClient := bigcommerce.NewClient(cfg.BigCommerce)

	var sender mailer.Sender
	if *dryRun {
		sender = printSender{}
	} else {
		sender, err = mailer.New(ctx, cfg.SES)
		if err != nil {
			log.Fatalf("Failed to initialize SES mailer: %v", err)
		}
	}

	service := report.NewService(bcClient, sender, cfg.Report, cfg.BigCommerce.OrderLimit, loc)

	now := time.Now()
	log.Printf("Running daily orders report for %s (%s)", now.In(loc).Format("January 2, 2006"), cfg.Report.Timezone)

	result, err := service.RunDailyReport(ctx, now)
	if err != nil {
		if result != nil {
			log.Printf("Report built (%d orders, %d urgent) but delivery failed", result.OrdersProcessed, result.UrgentCount)
		}
		log.Fatalf("Run failed: %v", err)
	}

	fmt.Println("---------------------------------------------------------")
	fmt.Printf("Run ID:            %s\n", result.RunID)
	fmt.Printf("Orders processed:  %d\n", result.OrdersProcessed)
	fmt.Printf("Urgent orders:     %d\n", result.UrgentCount)
	fmt.Printf("Email delivered:   %v\n", result.Delivered)
	fmt.Printf("Duration:          %s\n", result.Duration)
	fmt.Println("---------------------------------------------------------")

	if !result.Delivered && result.OrdersProcessed == 0 {
		log.Println("No orders found for today; email skipped")
	}
}

// printSender writes the report to stdout instead of sending it.
type printSender struct{}

func (printSender) Send(_ context.Context, msg mailer.Message) error {
	fmt.Printf("To:      %s\nSubject: %s\n\n%s\n", msg.To, msg.Subject, msg.Text)
	return nil
}
