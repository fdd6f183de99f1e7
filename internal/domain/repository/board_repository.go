package repository

import (
	"context"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
)

// BoardRepository defines the persistence operations on boards
type BoardRepository interface {
	Create(ctx context.Context, board *model.Board) error
	GetByID(ctx context.Context, id string) (*model.Board, error)
	// ListForUser returns the boards userID is a member of and the total count.
	ListForUser(ctx context.Context, userID string, query entity.BoardQuery) ([]*model.Board, int64, error)
	Update(ctx context.Context, id string, update model.BoardUpdate) error
	Delete(ctx context.Context, id string) error
}
