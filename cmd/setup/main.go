package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"finance-sync-go/internal/actions"
	"finance-sync-go/internal/common"
	"finance-sync-go/internal/config"
	"finance-sync-go/internal/models"
	"finance-sync-go/internal/state"

	"go.uber.org/zap"
)

// seedOwner writes the seed categories for an owner that has none
func seedOwner(ctx context.Context, services *common.Services, ownerId string, categories []models.Category) (bool, error) {
	data, err := services.Store.Snapshot(ctx, ownerId)
	if err != nil {
		zap.L().Error("Error loading owner data",
			zap.String("owner_id", ownerId),
			zap.Error(err))
		return false, err
	}

	if len(data.Categories) > 0 {
		zap.L().Info("Owner already has categories",
			zap.String("owner_id", ownerId),
			zap.Int("count", len(data.Categories)))
		return false, nil
	}

	d := actions.New(ownerId, services.Store, state.New(data))
	seeded, err := d.SeedCategories(ctx, categories)
	if err != nil {
		zap.L().Error("Error seeding categories",
			zap.String("owner_id", ownerId),
			zap.Error(err))
		return false, err
	}

	zap.L().Info("Seeded categories",
		zap.String("owner_id", ownerId),
		zap.Int("count", len(categories)))
	return seeded, nil
}

func parseOwners(list string) []string {
	var owners []string
	for _, o := range strings.Split(list, ",") {
		if o = strings.TrimSpace(o); o != "" {
			owners = append(owners, o)
		}
	}
	return owners
}

func seedOwners(ctx context.Context, services *common.Services, owners []string, categories []models.Category) {
	var seededOwners, failedOwners int
	var failed []string

	for _, ownerId := range owners {
		zap.L().Info("Processing owner", zap.String("owner_id", ownerId))

		seeded, err := seedOwner(ctx, services, ownerId, categories)
		if err != nil {
			failedOwners++
			failed = append(failed, ownerId)
			continue
		}
		if seeded {
			seededOwners++
		}
	}

	// Log summary
	if failedOwners > 0 {
		zap.L().Warn("Setup completed with some failures",
			zap.Int("owners_seeded", seededOwners),
			zap.Int("failed_owners", failedOwners),
			zap.Strings("failed_owner_ids", failed))
	} else {
		zap.L().Info("Setup completed successfully",
			zap.Int("owners_seeded", seededOwners))
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ownersFlag := flag.String("owners", "", "Comma-separated owner ids to prepare (default: every stored owner)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Loading seed categories", zap.String("file", cfg.Session.CategoriesFile))
	categories, err := common.LoadCategories(cfg.Session.CategoriesFile)
	if err != nil {
		zap.L().Fatal("Failed to load categories", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	owners := parseOwners(*ownersFlag)
	if len(owners) == 0 {
		owners, err = common.ResolveOwners(ctx, services.Store, "")
		if err != nil {
			zap.L().Fatal("Failed to list owners", zap.Error(err))
		}
	}
	if len(owners) == 0 {
		fmt.Println("No owners to prepare; pass --owners alice,bob")
		return
	}

	seedOwners(ctx, services, owners, categories)
}
