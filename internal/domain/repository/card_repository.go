package repository

import (
	"context"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
)

// CardRepository defines the persistence operations on cards and their
// task and assignee collections.
type CardRepository interface {
	Create(ctx context.Context, card *model.Card) error
	// GetByID loads the card with tasks (by position) and assignees.
	GetByID(ctx context.Context, boardID, cardID string) (*model.Card, error)
	ListByBoard(ctx context.Context, boardID string) ([]*model.Card, error)
	// Update writes the scalar columns of the card.
	Update(ctx context.Context, card *model.Card) error
	Delete(ctx context.Context, cardID string) error
	DeleteByBoard(ctx context.Context, boardID string) error

	CreateTasks(ctx context.Context, tasks []*model.Task) error
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTasks(ctx context.Context, cardID string, ids []string) error

	CreateMembers(ctx context.Context, members []*model.CardMember) error
	UpdateMember(ctx context.Context, member *model.CardMember) error
	DeleteMembers(ctx context.Context, cardID string, ids []string) error
	// DeleteMembersByTeam unassigns a membership from every card.
	DeleteMembersByTeam(ctx context.Context, teamID string) error
}
