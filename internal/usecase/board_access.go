package usecase

import (
	"context"
	"errors"

	domainerrors "github.com/wekeepgrowing/board-server/internal/domain/errors"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
)

// boardAccess loads a board together with the caller's membership.
type boardAccess struct {
	boards  repository.BoardRepository
	members repository.MembershipRepository
}

// load returns NotFound when the board is absent. The membership is nil when
// userID is not on the board.
func (a boardAccess) load(ctx context.Context, boardID, userID string) (*model.Board, *model.Membership, error) {
	board, err := a.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, nil, notFoundOr(err, domainerrors.MsgBoardNotFound, "failed to load board")
	}

	membership, err := a.members.GetByBoardAndUser(ctx, boardID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return board, nil, nil
		}
		return nil, nil, apperrors.Wrap(err, "failed to load membership")
	}
	return board, membership, nil
}

// owner returns the current owner membership, or nil if the board has none.
func (a boardAccess) owner(ctx context.Context, boardID string) (*model.Membership, error) {
	owner, err := a.members.GetOwner(ctx, boardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to load board owner")
	}
	return owner, nil
}

// notFoundOr maps repository.ErrNotFound to a NotFound domain error and
// wraps anything else as internal.
func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domainerrors.NotFound(notFoundMsg)
	}
	return apperrors.Wrap(err, internalMsg)
}

// conflictOr maps repository.ErrDuplicate to a Conflict domain error.
func conflictOr(err error, conflictMsg, internalMsg string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return domainerrors.Conflict(conflictMsg)
	}
	return apperrors.Wrap(err, internalMsg)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
