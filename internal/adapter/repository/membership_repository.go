package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
)

// roleOrder lists owners first, then admins, then members.
const roleOrder = "CASE board_members.role WHEN 'OWNER' THEN 0 WHEN 'ADMIN' THEN 1 ELSE 2 END"

type membershipRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB, logger *zap.Logger) repository.MembershipRepository {
	return &membershipRepository{db: db, logger: logger}
}

func (r *membershipRepository) Create(ctx context.Context, membership *model.Membership) error {
	if err := conn(ctx, r.db).Omit("User").Create(membership).Error; err != nil {
		err = translate(err)
		if !errors.Is(err, repository.ErrDuplicate) {
			r.logger.Error("Failed to create membership",
				zap.String("board_id", membership.BoardID),
				zap.String("user_id", membership.UserID),
				zap.Error(err))
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *membershipRepository) GetByID(ctx context.Context, teamID string) (*model.Membership, error) {
	var m model.Membership
	if err := conn(ctx, r.db).Preload("User").Where("id = ?", teamID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *membershipRepository) GetByBoardAndUser(ctx context.Context, boardID, userID string) (*model.Membership, error) {
	var m model.Membership
	err := conn(ctx, r.db).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *membershipRepository) GetOwner(ctx context.Context, boardID string) (*model.Membership, error) {
	var m model.Membership
	err := conn(ctx, r.db).
		Where("board_id = ? AND role = ?", boardID, model.RoleOwner).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *membershipRepository) ListByBoard(ctx context.Context, boardID string, query entity.TeamQuery) ([]*model.Membership, int64, error) {
	base := conn(ctx, r.db).
		Model(&model.Membership{}).
		Joins("JOIN users ON users.id = board_members.user_id").
		Where("board_members.board_id = ?", boardID)
	if query.Search != "" {
		base = base.Where("users.username ILIKE ?", prefixPattern(query.Search))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		r.logger.Error("Failed to count team", zap.String("board_id", boardID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count team: %w", err)
	}

	var members []*model.Membership
	err := base.Session(&gorm.Session{}).
		Select("board_members.*").
		Preload("User").
		Order(roleOrder).
		Order("users.username ASC").
		Offset(query.Offset()).
		Limit(query.Limit).
		Find(&members).Error
	if err != nil {
		r.logger.Error("Failed to list team", zap.String("board_id", boardID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list team: %w", err)
	}

	return members, total, nil
}

func (r *membershipRepository) ListAllByBoard(ctx context.Context, boardID string) ([]*model.Membership, error) {
	var members []*model.Membership
	err := conn(ctx, r.db).
		Joins("User").
		Where("board_members.board_id = ?", boardID).
		Order(roleOrder).
		Order("board_members.created_at ASC").
		Find(&members).Error
	if err != nil {
		r.logger.Error("Failed to list board roster", zap.String("board_id", boardID), zap.Error(err))
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	return members, nil
}

func (r *membershipRepository) CountByRole(ctx context.Context, boardID string, role model.Role) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&model.Membership{}).
		Where("board_id = ? AND role = ?", boardID, role).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count, nil
}

func (r *membershipRepository) UpdateRole(ctx context.Context, teamID string, role model.Role, permission model.Permission) error {
	result := conn(ctx, r.db).
		Model(&model.Membership{}).
		Where("id = ?", teamID).
		Updates(map[string]interface{}{
			"role":       role,
			"permission": permission,
		})
	if result.Error != nil {
		r.logger.Error("Failed to update membership role",
			zap.String("team_id", teamID),
			zap.String("role", string(role)),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *membershipRepository) Delete(ctx context.Context, teamID string) error {
	result := conn(ctx, r.db).Where("id = ?", teamID).Delete(&model.Membership{})
	if result.Error != nil {
		r.logger.Error("Failed to delete membership", zap.String("team_id", teamID), zap.Error(result.Error))
		return fmt.Errorf("failed to delete membership: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *membershipRepository) DeleteByBoard(ctx context.Context, boardID string) error {
	if err := conn(ctx, r.db).Where("board_id = ?", boardID).Delete(&model.Membership{}).Error; err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	return nil
}
