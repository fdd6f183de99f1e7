package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/dto"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
)

// BoardEventChannel is the pub/sub channel carrying events of one board.
func BoardEventChannel(boardID string) string {
	return "board:" + boardID
}

// activityLog appends audit entries inside the caller's transaction and
// publishes them once the transaction has committed.
type activityLog struct {
	repo      repository.ActivityRepository
	publisher repository.EventPublisher
	logger    *zap.Logger
}

func (a activityLog) record(ctx context.Context, boardID, actorID, action string, metadata map[string]interface{}) (*model.BoardActivity, error) {
	entry := &model.BoardActivity{
		BoardID:  boardID,
		ActorID:  actorID,
		Action:   action,
		Metadata: metadata,
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		return nil, apperrors.Wrap(err, "failed to record activity")
	}
	return entry, nil
}

// publish is best effort; failures are logged.
func (a activityLog) publish(ctx context.Context, entries ...*model.BoardActivity) {
	if a.publisher == nil {
		return
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		at := e.CreatedAt
		if at.IsZero() {
			at = time.Now()
		}
		event := dto.BoardEvent{
			BoardID:  e.BoardID,
			ActorID:  e.ActorID,
			Action:   e.Action,
			Metadata: e.Metadata,
			At:       at,
		}
		if err := a.publisher.Publish(ctx, BoardEventChannel(e.BoardID), event); err != nil {
			a.logger.Warn("Failed to publish board event",
				zap.String("board_id", e.BoardID),
				zap.String("action", e.Action),
				zap.Error(err))
		}
	}
}
