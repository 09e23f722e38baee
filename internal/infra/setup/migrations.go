package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

// MigrateDB 创建或更新 users、products、damage_records 三张表。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	// products 必须先于 damage_records 创建，外键依赖它
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.DamageRecord{},
	)
	if err != nil {
		logrus.Errorf("Failed to auto-migrate tables: %v", err)
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	logrus.Debug("Database migration completed successfully")
	return nil
}
