package config

import (
	"fmt"

	"cineteca/internal/entity"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  databaseURL,
		PreferSimpleProtocol: true, // Disable prepared statements completely
	}), &gorm.Config{
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.RoleClaim{},
		&entity.User{},
		&entity.UserClaim{},
		&entity.ConfirmationCode{},
		&entity.AuditLog{},
		&entity.Studio{},
		&entity.Category{},
		&entity.Movie{},
	)
}
