package repository

import (
	"context"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.BoardActivity) error
	// ListByBoard returns newest first.
	ListByBoard(ctx context.Context, boardID string, page entity.PaginationParams) ([]*model.BoardActivity, int64, error)
	DeleteByBoard(ctx context.Context, boardID string) error
}
