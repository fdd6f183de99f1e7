package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
)

type activityRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewActivityRepository creates a new board activity repository
func NewActivityRepository(db *gorm.DB, logger *zap.Logger) repository.ActivityRepository {
	return &activityRepository{db: db, logger: logger}
}

func (r *activityRepository) Create(ctx context.Context, activity *model.BoardActivity) error {
	if err := conn(ctx, r.db).Create(activity).Error; err != nil {
		r.logger.Error("Failed to record board activity",
			zap.String("board_id", activity.BoardID),
			zap.String("action", activity.Action),
			zap.Error(err))
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (r *activityRepository) ListByBoard(ctx context.Context, boardID string, page entity.PaginationParams) ([]*model.BoardActivity, int64, error) {
	base := conn(ctx, r.db).Model(&model.BoardActivity{}).Where("board_id = ?", boardID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	var activities []*model.BoardActivity
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&activities).Error
	if err != nil {
		r.logger.Error("Failed to list board activity", zap.String("board_id", boardID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, total, nil
}

func (r *activityRepository) DeleteByBoard(ctx context.Context, boardID string) error {
	if err := conn(ctx, r.db).Where("board_id = ?", boardID).Delete(&model.BoardActivity{}).Error; err != nil {
		return fmt.Errorf("failed to delete activities: %w", err)
	}
	return nil
}
