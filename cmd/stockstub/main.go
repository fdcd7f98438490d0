// Command stockstub serves an in-memory inventory API with the same routes, auth
// and error bodies as the production backend, for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/config"
	"github.com/mamadbah2/meuestoque/internal/domain/models"
	"github.com/mamadbah2/meuestoque/internal/repository/memory"
	"github.com/mamadbah2/meuestoque/internal/server/auth"
	"github.com/mamadbah2/meuestoque/internal/server/handlers"
	"github.com/mamadbah2/meuestoque/internal/server/router"
	"github.com/mamadbah2/meuestoque/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "optional .env file")
	seed := flag.Bool("seed", true, "start with sample records")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var fixtures []models.RecordFields
	if *seed {
		fixtures = sampleRecords()
	}
	products := memory.NewProductRepository(fixtures...)

	users, err := memory.NewUserRepository(cfg.Stub.Users)
	if err != nil {
		baseLogger.Fatal("failed to init user repository", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(cfg.Stub.JWTSecret)
	if err != nil {
		baseLogger.Fatal("failed to init token service", zap.Error(err))
	}

	inventoryHandler := handlers.NewInventoryHandler(products, baseLogger.Named("handlers.inventory"))
	authHandler := handlers.NewAuthHandler(users, tokens, baseLogger.Named("handlers.auth"))
	engine := router.New(inventoryHandler, authHandler, cfg.Inventory.Resource, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Stub.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("stub server starting", zap.String("port", cfg.Stub.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func sampleRecords() []models.RecordFields {
	return []models.RecordFields{
		{Name: "Monitor", UnitPrice: 899.90, Category: "Eletrônicos", Quantity: 12},
		{Name: "Teclado", UnitPrice: 149.50, Category: "Periféricos", Quantity: 3},
		{Name: "Mouse", UnitPrice: 79.00, Category: "Periféricos", Quantity: 25},
		{Name: "Cadeira", UnitPrice: 1200.00, Category: "Móveis", Quantity: 4},
		{Name: "Notebook", UnitPrice: 4599.00, Category: "Eletrônicos", Quantity: 7},
	}
}
