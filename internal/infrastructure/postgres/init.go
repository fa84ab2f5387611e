package postgres

import (
	"fmt"
	"log"

	"github.com/LavaJover/shvark-dish-request-service/internal/config"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.DishConfig) *gorm.DB {
	dsn := cfg.Storage.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if cfg.Storage.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			log.Fatalf("failed to auto-migrate db: %v\n", err)
		}
	}

	return db
}

// AutoMigrate creates the tables and the partial unique indexes gorm tags cannot express.
// Works on postgres and sqlite.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.DishRequestModel{}, &models.OfferModel{}, &models.OfferStatusEventModel{}); err != nil {
		return fmt.Errorf("auto-migrate models: %w", err)
	}
	for _, stmt := range models.OfferIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create offer index: %w", err)
		}
	}
	return nil
}
