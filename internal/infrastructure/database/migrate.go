package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running GORM auto-migrations...")

	// parents before children so foreign keys resolve
	err := db.AutoMigrate(
		&model.User{},
		&model.Board{},
		&model.Membership{},
		&model.InviteLink{},
		&model.Card{},
		&model.Task{},
		&model.CardMember{},
		&model.BoardActivity{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes GORM tags cannot express
func createCustomIndexes(db *gorm.DB) error {
	// at most one owner per board
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_board_members_single_owner ON board_members (board_id) WHERE role = 'OWNER'`).Error; err != nil {
		return err
	}

	return nil
}
