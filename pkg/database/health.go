package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"
)

// HealthChecker monitors database connection health and logs state
// transitions. It never reconnects; sql.DB re-dials on its own.
type HealthChecker struct {
	db            *sql.DB
	checkInterval time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
	ticker        *time.Ticker
	mu            sync.RWMutex
	isHealthy     bool
	lastError     error
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *sql.DB, checkInterval time.Duration) *HealthChecker {
	return &HealthChecker{
		db:            db,
		checkInterval: checkInterval,
		stopChan:      make(chan struct{}),
		isHealthy:     true,
	}
}

// Start begins monitoring the database connection
func (chc *HealthChecker) Start() {
	chc.ticker = time.NewTicker(chc.checkInterval)

	go func() {
		for {
			select {
			case <-chc.stopChan:
				chc.ticker.Stop()
				return
			case <-chc.ticker.C:
				chc.checkConnection()
			}
		}
	}()
}

// Stop stops monitoring the database connection. Safe to call twice.
func (chc *HealthChecker) Stop() {
	chc.stopOnce.Do(func() {
		close(chc.stopChan)
	})
}

// checkConnection performs a health check on the database connection
func (chc *HealthChecker) checkConnection() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chc.setStatus(chc.db.PingContext(ctx))
}

func (chc *HealthChecker) setStatus(err error) {
	chc.mu.Lock()
	defer chc.mu.Unlock()

	if err != nil {
		if chc.isHealthy {
			log.Printf("❌ Database connection health check failed: %v", err)
		}
		chc.isHealthy = false
		chc.lastError = err
		return
	}

	if !chc.isHealthy {
		log.Println("✓ Database connection restored")
	}
	chc.isHealthy = true
	chc.lastError = nil
}

// IsHealthy returns the current health status of the connection
func (chc *HealthChecker) IsHealthy() bool {
	chc.mu.RLock()
	defer chc.mu.RUnlock()
	return chc.isHealthy
}

// LastError returns the error of the most recent failed check, if any.
func (chc *HealthChecker) LastError() error {
	chc.mu.RLock()
	defer chc.mu.RUnlock()
	return chc.lastError
}

// EnsureConnection pings the database before a query is executed and
// records the result.
func (chc *HealthChecker) EnsureConnection(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := chc.db.PingContext(pingCtx)
	if err != nil && ctx.Err() != nil {
		// the caller gave up; says nothing about the database
		return fmt.Errorf("database connection check failed: %w", err)
	}

	chc.setStatus(err)
	if err != nil {
		return fmt.Errorf("database connection check failed: %w", err)
	}

	return nil
}
