package database

import (
	"github.com/P3chys/exchange-api/internal/config"
	"github.com/P3chys/exchange-api/internal/models"
	"github.com/P3chys/exchange-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedAdmin creates the configured administrator when no administrator
// exists yet.
func SeedAdmin(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role_id = ?", models.RoleAdministrator).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("administrator already exists, skipping seed")
		return nil
	}

	hashedPassword, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        cfg.AdminEmail,
		PasswordHash: hashedPassword,
		RoleID:       models.RoleAdministrator,
		DisplayName:  cfg.AdminName,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info("created default administrator", zap.String("email", cfg.AdminEmail))
	return nil
}
