package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
)

type cardRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *gorm.DB, logger *zap.Logger) repository.CardRepository {
	return &cardRepository{db: db, logger: logger}
}

func orderedTasks(db *gorm.DB) *gorm.DB {
	return db.Order("card_tasks.position ASC, card_tasks.created_at ASC")
}

// preloadCard loads tasks and assignees along with each assignee's user.
func preloadCard(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tasks", orderedTasks).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("card_members.created_at ASC")
		}).
		Preload("Members.Membership.User")
}

func (r *cardRepository) Create(ctx context.Context, card *model.Card) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(card).Error; err != nil {
		r.logger.Error("Failed to create card", zap.String("board_id", card.BoardID), zap.Error(err))
		return fmt.Errorf("failed to create card: %w", translate(err))
	}
	return nil
}

func (r *cardRepository) GetByID(ctx context.Context, boardID, cardID string) (*model.Card, error) {
	var card model.Card
	err := preloadCard(conn(ctx, r.db)).
		Where("id = ? AND board_id = ?", cardID, boardID).
		First(&card).Error
	if err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *cardRepository) ListByBoard(ctx context.Context, boardID string) ([]*model.Card, error) {
	var cards []*model.Card
	err := preloadCard(conn(ctx, r.db)).
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&cards).Error
	if err != nil {
		r.logger.Error("Failed to list cards", zap.String("board_id", boardID), zap.Error(err))
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepository) Update(ctx context.Context, card *model.Card) error {
	result := conn(ctx, r.db).
		Model(&model.Card{}).
		Where("id = ?", card.ID).
		Updates(map[string]interface{}{
			"title":       card.Title,
			"description": card.Description,
			"status":      card.Status,
			"priority":    card.Priority,
			"cover":       card.Cover,
		})
	if result.Error != nil {
		r.logger.Error("Failed to update card", zap.String("card_id", card.ID), zap.Error(result.Error))
		return fmt.Errorf("failed to update card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *cardRepository) Delete(ctx context.Context, cardID string) error {
	db := conn(ctx, r.db)
	if err := db.Where("card_id = ?", cardID).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("failed to delete card tasks: %w", err)
	}
	if err := db.Where("card_id = ?", cardID).Delete(&model.CardMember{}).Error; err != nil {
		return fmt.Errorf("failed to delete card members: %w", err)
	}

	result := db.Where("id = ?", cardID).Delete(&model.Card{})
	if result.Error != nil {
		r.logger.Error("Failed to delete card", zap.String("card_id", cardID), zap.Error(result.Error))
		return fmt.Errorf("failed to delete card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *cardRepository) DeleteByBoard(ctx context.Context, boardID string) error {
	db := conn(ctx, r.db)
	cardIDs := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Card{}).
		Select("id").
		Where("board_id = ?", boardID)

	if err := db.Where("card_id IN (?)", cardIDs).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("failed to delete card tasks: %w", err)
	}
	if err := db.Where("card_id IN (?)", cardIDs).Delete(&model.CardMember{}).Error; err != nil {
		return fmt.Errorf("failed to delete card members: %w", err)
	}
	if err := db.Where("board_id = ?", boardID).Delete(&model.Card{}).Error; err != nil {
		return fmt.Errorf("failed to delete cards: %w", err)
	}
	return nil
}

func (r *cardRepository) CreateTasks(ctx context.Context, tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Create(&tasks).Error; err != nil {
		return fmt.Errorf("failed to create tasks: %w", translate(err))
	}
	return nil
}

func (r *cardRepository) UpdateTask(ctx context.Context, task *model.Task) error {
	err := conn(ctx, r.db).
		Model(&model.Task{}).
		Where("id = ? AND card_id = ?", task.ID, task.CardID).
		Updates(map[string]interface{}{
			"task":     task.Task,
			"is_done":  task.IsDone,
			"position": task.Position,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (r *cardRepository) DeleteTasks(ctx context.Context, cardID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Where("card_id = ? AND id IN ?", cardID, ids).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	return nil
}

func (r *cardRepository) CreateMembers(ctx context.Context, members []*model.CardMember) error {
	if len(members) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Omit("Membership").Create(&members).Error; err != nil {
		return fmt.Errorf("failed to assign card members: %w", translate(err))
	}
	return nil
}

func (r *cardRepository) UpdateMember(ctx context.Context, member *model.CardMember) error {
	err := conn(ctx, r.db).
		Model(&model.CardMember{}).
		Where("id = ? AND card_id = ?", member.ID, member.CardID).
		Update("team_id", member.TeamID).Error
	if err != nil {
		return fmt.Errorf("failed to update card member: %w", translate(err))
	}
	return nil
}

func (r *cardRepository) DeleteMembers(ctx context.Context, cardID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Where("card_id = ? AND id IN ?", cardID, ids).Delete(&model.CardMember{}).Error; err != nil {
		return fmt.Errorf("failed to delete card members: %w", err)
	}
	return nil
}

func (r *cardRepository) DeleteMembersByTeam(ctx context.Context, teamID string) error {
	if err := conn(ctx, r.db).Where("team_id = ?", teamID).Delete(&model.CardMember{}).Error; err != nil {
		return fmt.Errorf("failed to unassign member from cards: %w", err)
	}
	return nil
}
