package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErfanXH/Polaris/pkg/telemetry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Polaris server",
	Long:  `Apply pending migrations and start the Polaris HTTP API.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	dbManager := dbManagerFrom(cmd)

	// Run migrations
	if err := dbManager.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	service := telemetry.NewService(dbManager, telemetry.WithMaxBatch(cfg.BulkMaxRecords))

	// Setup Router
	routeManager := NewRouteManager(dbManager, service, AuthConfig{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL,
	}, cfg.Server.AllowedOrigins)
	routeManager.Setup()

	addr := ":" + cfg.Server.Port

	server := &http.Server{
		Handler:      routeManager.Handler(),
		Addr:         addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting Polaris server on %s...", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
