package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
)

type inviteLinkRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewInviteLinkRepository creates a new invite link repository
func NewInviteLinkRepository(db *gorm.DB, logger *zap.Logger) repository.InviteLinkRepository {
	return &inviteLinkRepository{db: db, logger: logger}
}

func (r *inviteLinkRepository) Create(ctx context.Context, link *model.InviteLink) error {
	if err := conn(ctx, r.db).Create(link).Error; err != nil {
		return fmt.Errorf("failed to create invite link: %w", translate(err))
	}
	return nil
}

func (r *inviteLinkRepository) GetLatest(ctx context.Context, boardID string) (*model.InviteLink, error) {
	var link model.InviteLink
	err := conn(ctx, r.db).
		Where("board_id = ?", boardID).
		Order("created_at DESC").
		First(&link).Error
	if err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *inviteLinkRepository) ExistsCode(ctx context.Context, boardID, code string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&model.InviteLink{}).
		Where("board_id = ? AND code = ?", boardID, code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return count > 0, nil
}

func (r *inviteLinkRepository) DeleteOthers(ctx context.Context, boardID, keepCode string) (int64, error) {
	result := conn(ctx, r.db).
		Where("board_id = ? AND code <> ?", boardID, keepCode).
		Delete(&model.InviteLink{})
	if result.Error != nil {
		r.logger.Error("Failed to prune invite links", zap.String("board_id", boardID), zap.Error(result.Error))
		return 0, fmt.Errorf("failed to prune invite links: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *inviteLinkRepository) DeleteByBoard(ctx context.Context, boardID string) error {
	if err := conn(ctx, r.db).Where("board_id = ?", boardID).Delete(&model.InviteLink{}).Error; err != nil {
		return fmt.Errorf("failed to delete invite links: %w", err)
	}
	return nil
}
