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

type boardRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewBoardRepository creates a new board repository
func NewBoardRepository(db *gorm.DB, logger *zap.Logger) repository.BoardRepository {
	return &boardRepository{db: db, logger: logger}
}

func (r *boardRepository) Create(ctx context.Context, board *model.Board) error {
	if err := conn(ctx, r.db).Omit("Memberships", "Cards", "InviteLinks").Create(board).Error; err != nil {
		r.logger.Error("Failed to create board", zap.Error(err))
		return fmt.Errorf("failed to create board: %w", translate(err))
	}
	return nil
}

func (r *boardRepository) GetByID(ctx context.Context, id string) (*model.Board, error) {
	var board model.Board
	if err := conn(ctx, r.db).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, translate(err)
	}
	return &board, nil
}

// ListForUser joins board_members so only boards the user belongs to are returned.
func (r *boardRepository) ListForUser(ctx context.Context, userID string, query entity.BoardQuery) ([]*model.Board, int64, error) {
	base := conn(ctx, r.db).
		Model(&model.Board{}).
		Joins("JOIN board_members ON board_members.board_id = boards.id").
		Where("board_members.user_id = ?", userID)
	if query.Search != "" {
		base = base.Where("boards.title ILIKE ?", containsPattern(query.Search))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		r.logger.Error("Failed to count boards", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count boards: %w", err)
	}

	var boards []*model.Board
	err := base.Session(&gorm.Session{}).
		Select("boards.*").
		Order(query.OrderClause()).
		Offset(query.Offset()).
		Limit(query.Limit).
		Find(&boards).Error
	if err != nil {
		r.logger.Error("Failed to list boards", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list boards: %w", err)
	}

	return boards, total, nil
}

func (r *boardRepository) Update(ctx context.Context, id string, update model.BoardUpdate) error {
	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Cover != nil {
		updates["cover"] = *update.Cover
	}
	if len(updates) == 0 {
		return nil
	}

	result := conn(ctx, r.db).Model(&model.Board{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		r.logger.Error("Failed to update board", zap.String("board_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to update board: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *boardRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Board{})
	if result.Error != nil {
		r.logger.Error("Failed to delete board", zap.String("board_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete board: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
