// cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/checkout"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"github.com/your-org/storefront/internal/infrastructure/database/mongo"
	"github.com/your-org/storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/interfaces/http"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/routes"
	"github.com/your-org/storefront/internal/pkg/email"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/pdf"
)

// store is the document store behind users, orders and saved items
type store interface {
	user.Repository
	order.Repository
	wishlist.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	checks := map[string]handlers.Pinger{"redis": redisClient}

	db, closeDB, err := openStore(ctx, cfg, log, checks)
	if err != nil {
		log.WithError(err).Fatal("Failed to open document store")
	}
	defer closeDB()

	catalog, index, err := buildCatalog(cfg, log, redisClient)
	if err != nil {
		log.WithError(err).Fatal("Failed to build product catalog")
	}

	mailer := email.NewEmailService(cfg, log)
	invoices := pdf.NewService(cfg)

	productService := product.NewService(catalog, index, log)
	cartService := cart.NewService(redisClient, catalog, cfg, log)
	checkoutService := checkout.NewService(cartService, db, redisClient, mailer, cfg, log)
	orderService := order.NewService(db, invoices, log)
	userService := user.NewService(db, mailer, cfg, log)
	wishlistService := wishlist.NewService(db, catalog, cartService, log)

	pricing := checkoutService.Pricing()
	server := http.NewServer(cfg, log, redisClient, handlers.NewHealthHandler(cfg, checks), &routes.Handlers{
		Auth:     handlers.NewAuthHandler(userService, cfg, log),
		Product:  handlers.NewProductHandler(productService, log),
		Cart:     handlers.NewCartHandler(cartService, pricing, log),
		Checkout: handlers.NewCheckoutHandler(checkoutService, log),
		Order:    handlers.NewOrderHandler(orderService, log),
		Wishlist: handlers.NewWishlistHandler(wishlistService, pricing, log),
	})

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}

// openStore connects the configured storage driver and registers its health check
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger, checks map[string]handlers.Pinger) (store, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		conn, err := postgres.NewConnection(cfg, log)
		if err != nil {
			return nil, nil, err
		}

		migration := postgres.NewMigration(conn.GetDB(), log)
		if err := migration.RunAutoMigrations(); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			log.WithError(err).Warn("Index creation failed")
		}

		checks["postgres"] = conn
		return postgres.NewStore(conn.GetDB()), func() { _ = conn.Close() }, nil

	default:
		conn, err := mongo.NewConnection(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}

		s := mongo.NewStore(conn.Database)
		if err := s.CreateIndexes(ctx); err != nil {
			log.WithError(err).Warn("Index creation failed")
		}

		checks["mongo"] = conn
		return s, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = conn.Close(closeCtx)
		}, nil
	}
}

// buildCatalog assembles the product source: the seed catalog alone, or the
// product API in front of it, with a Redis cache on top either way
func buildCatalog(cfg *config.Config, log *logrus.Logger, client *redis.Client) (product.Catalog, product.Index, error) {
	seed, err := product.NewSeedCatalog()
	if err != nil {
		return nil, nil, err
	}

	var source product.Catalog = seed
	if cfg.Catalog.Provider == "rapidapi" {
		source = product.Chain(product.NewRapidAPIClient(cfg, log), seed)
	}

	return product.NewCachedCatalog(source, client, cfg.Catalog.CacheTTL, log), seed, nil
}
