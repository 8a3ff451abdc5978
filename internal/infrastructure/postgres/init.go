package postgres

import (
	"log"

	"github.com/mkarelin/sales-commission-service/internal/config"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/logger"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.CommissionConfig) *gorm.DB {
	dsn := cfg.CommissionDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.OrderModel{}, &models.AllocationModel{}, &models.SettlementModel{}, &logger.OrderTransitionEvent{})

	return db
}
