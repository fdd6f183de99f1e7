package repository

import (
	"context"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Upsert inserts the user or refreshes its profile columns.
	Upsert(ctx context.Context, user *model.User) error
}
