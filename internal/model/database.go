package model

import (
	"referral-server/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the database connection
func InitDB(cfg *config.DatabaseConfig) error {
	var logLevel logger.LogLevel
	if config.Get().Server.Mode == "debug" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	DB = db
	return nil
}

// AutoMigrate keeps the table structure current
func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Organization{},
		&Role{},
		&Referral{},
		&Notification{},
		&Webhook{},
		&WebhookLog{},
		&AuditLog{},
	)
}
