package repository

import (
	"context"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
)

// MembershipRepository is the durable store of (board, user, role, permission).
// It does not enforce the single-owner rule; the membership usecase does.
type MembershipRepository interface {
	Create(ctx context.Context, membership *model.Membership) error
	GetByID(ctx context.Context, teamID string) (*model.Membership, error)
	GetByBoardAndUser(ctx context.Context, boardID, userID string) (*model.Membership, error)
	GetOwner(ctx context.Context, boardID string) (*model.Membership, error)
	// ListByBoard filters by username prefix and preloads the user.
	ListByBoard(ctx context.Context, boardID string, query entity.TeamQuery) ([]*model.Membership, int64, error)
	// ListAllByBoard returns the whole roster, owner first.
	ListAllByBoard(ctx context.Context, boardID string) ([]*model.Membership, error)
	CountByRole(ctx context.Context, boardID string, role model.Role) (int64, error)
	// UpdateRole sets role and permission together in one statement.
	UpdateRole(ctx context.Context, teamID string, role model.Role, permission model.Permission) error
	Delete(ctx context.Context, teamID string) error
	DeleteByBoard(ctx context.Context, boardID string) error
}

// InviteLinkRepository stores the join-by-link tokens of a board.
type InviteLinkRepository interface {
	Create(ctx context.Context, link *model.InviteLink) error
	// GetLatest returns the most recently created link of the board.
	GetLatest(ctx context.Context, boardID string) (*model.InviteLink, error)
	ExistsCode(ctx context.Context, boardID, code string) (bool, error)
	// DeleteOthers removes every link of the board except keepCode.
	DeleteOthers(ctx context.Context, boardID, keepCode string) (int64, error)
	DeleteByBoard(ctx context.Context, boardID string) error
}
