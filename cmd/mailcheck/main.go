// cmd/mailcheck/main.go
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/email"
	"github.com/your-org/storefront/internal/pkg/logger"
)

// mailcheck sends a welcome e-mail through the configured provider so SMTP
// or SendGrid credentials can be verified before deploying.
func main() {
	to := flag.String("to", "", "recipient address")
	name := flag.String("name", "Storefront Tester", "recipient name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Discard().Fatal(err)
	}
	log := logger.New(cfg)

	if *to == "" {
		log.Error("Usage: mailcheck -to <address> [-name <name>]")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := email.NewEmailService(cfg, log)
	if err := svc.SendWelcomeEmail(ctx, *to, *name); err != nil {
		log.WithError(err).WithField("provider", cfg.Email.Provider).Fatal("Send failed")
	}

	log.WithField("provider", cfg.Email.Provider).WithField("to", *to).Info("Test e-mail sent")
}
