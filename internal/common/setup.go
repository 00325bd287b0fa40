package common

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"finance-sync-go/internal/database"
	"finance-sync-go/internal/formance"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/session"
	"finance-sync-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

const (
	BackendSQLite   = "sqlite"
	BackendFormance = "formance"
)

type Services struct {
	Store   store.EntityStore
	Backend string
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the entity store selected by cfg.Store.Backend
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	var (
		st  store.EntityStore
		err error
	)

	switch cfg.Store.Backend {
	case BackendSQLite, "":
		st, err = database.NewService(ctx, cfg.Database)
	case BackendFormance:
		st, err = formance.NewService(ctx, cfg.Formance)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want %s or %s)", cfg.Store.Backend, BackendSQLite, BackendFormance)
	}
	if err != nil {
		return nil, err
	}

	backend := cfg.Store.Backend
	if backend == "" {
		backend = BackendSQLite
	}
	zap.L().Info("Entity store ready", zap.String("backend", backend))

	return &Services{
		Store:   st,
		Backend: backend,
	}, nil
}

// NewSession builds a session over the services' store, wired from cfg
func (cs *Services) NewSession(cfg *models.Config) (*session.Session, error) {
	clock, err := Clock(cfg.Reconciler.Timezone)
	if err != nil {
		return nil, err
	}
	categories, err := LoadCategories(cfg.Session.CategoriesFile)
	if err != nil {
		return nil, err
	}

	return session.New(session.Config{
		Store:             cs.Store,
		GuestDataFile:     cfg.Session.GuestDataFile,
		Categories:        categories,
		DisableReconciler: !cfg.Reconciler.Enabled,
		AutoPayDelay:      cfg.Reconciler.AutoPayDelay,
		Clock:             clock,
	}), nil
}

func (cs *Services) Close() {
	if cs.Store != nil {
		cs.Store.Close()
	}
}

// Clock returns a wall clock in the named IANA zone, or local time when
// timezone is empty
func Clock(timezone string) (func() time.Time, error) {
	if timezone == "" {
		return time.Now, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return func() time.Time { return time.Now().In(loc) }, nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
