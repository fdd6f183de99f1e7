package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/dto"
	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/board-server/internal/domain/errors"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	"github.com/wekeepgrowing/board-server/internal/domain/service"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
	"github.com/wekeepgrowing/board-server/pkg/uniqueid"
)

const maxTitleLength = 100

// BoardRepositories groups the stores the board flows touch.
type BoardRepositories struct {
	Boards     repository.BoardRepository
	Members    repository.MembershipRepository
	Links      repository.InviteLinkRepository
	Cards      repository.CardRepository
	Activities repository.ActivityRepository
	Transactor repository.Transactor
	Publisher  repository.EventPublisher
}

// StorageFolders names the storage folders of each cover kind.
type StorageFolders struct {
	Board string
	Card  string
}

type CreateBoardInput struct {
	Title string
	Cover *repository.Upload
}

// UpdateBoardInput carries the fields to change; nil fields are left as is.
type UpdateBoardInput struct {
	Title *string
	Cover *repository.Upload
}

// BoardUsecase handles board CRUD
type BoardUsecase struct {
	access     boardAccess
	boards     repository.BoardRepository
	members    repository.MembershipRepository
	links      repository.InviteLinkRepository
	cards      repository.CardRepository
	activities repository.ActivityRepository
	tx         repository.Transactor
	issuer     linkIssuer
	activity   activityLog
	covers     coverStore
	cardCovers coverStore
	logger     *zap.Logger
}

// NewBoardUsecase creates a new board usecase
func NewBoardUsecase(
	repos BoardRepositories,
	tokens *service.LinkTokenGenerator,
	storage repository.FileStorage,
	folders StorageFolders,
	logger *zap.Logger,
) *BoardUsecase {
	return &BoardUsecase{
		access:     boardAccess{boards: repos.Boards, members: repos.Members},
		boards:     repos.Boards,
		members:    repos.Members,
		links:      repos.Links,
		cards:      repos.Cards,
		activities: repos.Activities,
		tx:         repos.Transactor,
		issuer:     linkIssuer{links: repos.Links, tokens: tokens},
		activity:   activityLog{repo: repos.Activities, publisher: repos.Publisher, logger: logger},
		covers:     coverStore{storage: storage, folder: folders.Board, logger: logger},
		cardCovers: coverStore{storage: storage, folder: folders.Card, logger: logger},
		logger:     logger,
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return "", domainerrors.Validation("Invalid title", map[string]string{"title": "is required"})
	case len([]rune(title)) > maxTitleLength:
		return "", domainerrors.Validation("Invalid title", map[string]string{"title": "must be at most 100 characters"})
	}
	return title, nil
}

// CreateBoard creates the board, its OWNER membership and a VIEW invite link.
// The cover is uploaded first and deleted again if the transaction fails.
func (u *BoardUsecase) CreateBoard(ctx context.Context, userID string, in CreateBoardInput) (*dto.Board, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}

	cover, err := u.covers.upload(ctx, in.Cover)
	if err != nil {
		return nil, err
	}

	var (
		board *model.Board
		entry *model.BoardActivity
	)

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		boardID, err := uniqueid.Generate("B")
		if err != nil {
			return apperrors.Wrap(err, "failed to generate board id")
		}
		board = &model.Board{ID: boardID, Title: title, CreatedBy: userID}
		if cover != "" {
			board.Cover = &cover
		}
		if err := u.boards.Create(ctx, board); err != nil {
			return apperrors.Wrap(err, "failed to create board")
		}

		teamID, err := uniqueid.Generate("M")
		if err != nil {
			return apperrors.Wrap(err, "failed to generate team id")
		}
		owner := &model.Membership{
			ID:         teamID,
			BoardID:    boardID,
			UserID:     userID,
			Role:       model.RoleOwner,
			Permission: service.DerivePermission(model.RoleOwner),
		}
		if err := u.members.Create(ctx, owner); err != nil {
			return apperrors.Wrap(err, "failed to create owner membership")
		}

		if _, err := u.issuer.issue(ctx, boardID, model.PermissionView); err != nil {
			return err
		}

		entry, err = u.activity.record(ctx, boardID, userID, model.ActionBoardCreated, map[string]interface{}{
			"title": title,
		})
		return err
	})
	if err != nil {
		u.covers.discard(ctx, cover)
		return nil, err
	}

	u.activity.publish(ctx, entry)
	u.logger.Info("Board created", zap.String("board_id", board.ID), zap.String("user_id", userID))

	view := u.view(ctx, board)
	view.Role, view.Permission = model.RoleOwner, model.PermissionEdit
	return &view, nil
}

// ListBoards pages through the boards userID is a member of.
func (u *BoardUsecase) ListBoards(ctx context.Context, userID string, query entity.BoardQuery) ([]dto.Board, entity.Paging, error) {
	query.Normalize()

	boards, total, err := u.boards.ListForUser(ctx, userID, query)
	if err != nil {
		return nil, entity.Paging{}, apperrors.Wrap(err, "failed to list boards")
	}

	views := make([]dto.Board, 0, len(boards))
	for _, b := range boards {
		views = append(views, u.view(ctx, b))
	}
	return views, entity.NewPaging(query.Page, query.Limit, total), nil
}

// GetBoard returns the board with its whole team and all cards.
func (u *BoardUsecase) GetBoard(ctx context.Context, userID, boardID string) (*dto.BoardDetail, error) {
	board, actor, err := u.access.load(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	if err := service.CanView(actor).Err(); err != nil {
		return nil, err
	}

	team, err := u.members.ListAllByBoard(ctx, boardID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load team")
	}
	cards, err := u.cards.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load cards")
	}

	detail := dto.BoardDetail{
		Board: u.view(ctx, board),
		Team:  make([]dto.Member, 0, len(team)),
		Cards: make([]dto.Card, 0, len(cards)),
	}
	detail.Role, detail.Permission = actor.Role, actor.Permission
	for _, m := range team {
		detail.Team = append(detail.Team, dto.NewMember(m))
	}
	for _, c := range cards {
		detail.Cards = append(detail.Cards, dto.NewCard(c, u.cardCovers.url(ctx, c.Cover)))
	}
	return &detail, nil
}

// UpdateBoard changes the title and/or cover. A replaced cover is deleted
// after commit.
func (u *BoardUsecase) UpdateBoard(ctx context.Context, userID, boardID string, in UpdateBoardInput) (*dto.Board, error) {
	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		in.Title = &title
	}

	cover, err := u.covers.upload(ctx, in.Cover)
	if err != nil {
		return nil, err
	}

	var (
		board    *model.Board
		actor    *model.Membership
		previous string
		entry    *model.BoardActivity
	)

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		board, actor, err = u.access.load(ctx, boardID, userID)
		if err != nil {
			return err
		}
		if err := service.CanEditBoard(actor).Err(); err != nil {
			return err
		}

		update := model.BoardUpdate{Title: in.Title}
		fields := []string{}
		if in.Title != nil {
			fields = append(fields, "title")
		}
		if cover != "" {
			previous = deref(board.Cover)
			update.Cover = &cover
			fields = append(fields, "cover")
		}
		if len(fields) == 0 {
			return nil
		}

		if err := u.boards.Update(ctx, boardID, update); err != nil {
			return notFoundOr(err, domainerrors.MsgBoardNotFound, "failed to update board")
		}
		board, err = u.boards.GetByID(ctx, boardID)
		if err != nil {
			return notFoundOr(err, domainerrors.MsgBoardNotFound, "failed to reload board")
		}

		entry, err = u.activity.record(ctx, boardID, userID, model.ActionBoardUpdated, map[string]interface{}{
			"fields": fields,
		})
		return err
	})
	if err != nil {
		u.covers.discard(ctx, cover)
		return nil, err
	}

	u.covers.discard(ctx, previous)
	u.activity.publish(ctx, entry)

	view := u.view(ctx, board)
	view.Role, view.Permission = actor.Role, actor.Permission
	return &view, nil
}

// DeleteBoard removes the board and everything it owns. Only the creator may
// delete a board. Cover objects are deleted after commit.
func (u *BoardUsecase) DeleteBoard(ctx context.Context, userID, boardID string) error {
	var (
		boardCover string
		cardCovers []string
	)

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		board, actor, err := u.access.load(ctx, boardID, userID)
		if err != nil {
			return err
		}
		if err := service.CanDeleteBoard(actor, board).Err(); err != nil {
			return err
		}

		cards, err := u.cards.ListByBoard(ctx, boardID)
		if err != nil {
			return apperrors.Wrap(err, "failed to load cards")
		}
		for _, c := range cards {
			if c.Cover != nil {
				cardCovers = append(cardCovers, *c.Cover)
			}
		}
		boardCover = deref(board.Cover)

		if err := u.cards.DeleteByBoard(ctx, boardID); err != nil {
			return apperrors.Wrap(err, "failed to delete cards")
		}
		if err := u.links.DeleteByBoard(ctx, boardID); err != nil {
			return apperrors.Wrap(err, "failed to delete invite links")
		}
		if err := u.activities.DeleteByBoard(ctx, boardID); err != nil {
			return apperrors.Wrap(err, "failed to delete activity")
		}
		if err := u.members.DeleteByBoard(ctx, boardID); err != nil {
			return apperrors.Wrap(err, "failed to delete memberships")
		}
		if err := u.boards.Delete(ctx, boardID); err != nil {
			return notFoundOr(err, domainerrors.MsgBoardNotFound, "failed to delete board")
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.covers.discard(ctx, boardCover)
	u.cardCovers.discard(ctx, cardCovers...)
	u.activity.publish(ctx, &model.BoardActivity{
		BoardID:   boardID,
		ActorID:   userID,
		Action:    model.ActionBoardDeleted,
		CreatedAt: time.Now(),
	})
	u.logger.Info("Board deleted", zap.String("board_id", boardID), zap.String("user_id", userID))
	return nil
}

func (u *BoardUsecase) view(ctx context.Context, b *model.Board) dto.Board {
	return dto.Board{
		BoardID:   b.ID,
		Title:     b.Title,
		Cover:     u.covers.url(ctx, b.Cover),
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
