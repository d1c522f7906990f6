package postgres

import (
	"log"

	"github.com/joesantos1/querodesconto-parceiros/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MustInitDB opens the pool. The schema is owned by the SQL migrations, not by
// AutoMigrate.
func MustInitDB(cfg *config.CupomConfig) *gorm.DB {
	dsn := cfg.CupomDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v\n", err)
	}
	sqlDB.SetMaxOpenConns(cfg.CupomDB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.CupomDB.MaxIdleConns)

	return db
}
