package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/dto"
	domainerrors "github.com/wekeepgrowing/board-server/internal/domain/errors"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	"github.com/wekeepgrowing/board-server/internal/domain/service"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
	"github.com/wekeepgrowing/board-server/pkg/uniqueid"
)

// TaskInput is one entry of a card's task list. An empty ID creates a task.
type TaskInput struct {
	ID     string `json:"id"`
	Task   string `json:"task" validate:"required,max=255"`
	IsDone bool   `json:"is_done"`
}

// CardMemberInput assigns a board membership to a card.
type CardMemberInput struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id" validate:"required"`
}

type CreateCardInput struct {
	Title       string
	Description string
	Status      model.CardStatus
	Priority    model.Priority
	Tasks       []TaskInput
	Members     []CardMemberInput
	Cover       *repository.Upload
}

// UpdateCardInput carries the fields to change. A nil Tasks or Members leaves
// that collection untouched; a non-nil one replaces it by reconciliation.
type UpdateCardInput struct {
	Title       *string
	Description *string
	Status      *model.CardStatus
	Priority    *model.Priority
	Tasks       *[]TaskInput
	Members     *[]CardMemberInput
	Cover       *repository.Upload
}

// CardUsecase handles card CRUD inside a board
type CardUsecase struct {
	access   boardAccess
	members  repository.MembershipRepository
	cards    repository.CardRepository
	tx       repository.Transactor
	activity activityLog
	covers   coverStore
	logger   *zap.Logger
}

// NewCardUsecase creates a new card usecase
func NewCardUsecase(repos BoardRepositories, storage repository.FileStorage, folders StorageFolders, logger *zap.Logger) *CardUsecase {
	return &CardUsecase{
		access:   boardAccess{boards: repos.Boards, members: repos.Members},
		members:  repos.Members,
		cards:    repos.Cards,
		tx:       repos.Transactor,
		activity: activityLog{repo: repos.Activities, publisher: repos.Publisher, logger: logger},
		covers:   coverStore{storage: storage, folder: folders.Card, logger: logger},
		logger:   logger,
	}
}

// CreateCard adds a card with its tasks and assignees to the board.
func (u *CardUsecase) CreateCard(ctx context.Context, userID, boardID string, in CreateCardInput) (*dto.Card, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.CardStatusTodo
	}
	if in.Priority == "" {
		in.Priority = model.PriorityLow
	}
	if err := validateCardEnums(&in.Status, &in.Priority); err != nil {
		return nil, err
	}

	cover, err := u.covers.upload(ctx, in.Cover)
	if err != nil {
		return nil, err
	}

	var (
		card  *model.Card
		entry *model.BoardActivity
	)

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, actor, err := u.access.load(ctx, boardID, userID)
		if err != nil {
			return err
		}
		if err := service.CanEditCard(actor).Err(); err != nil {
			return err
		}
		if err := u.checkAssignees(ctx, boardID, in.Members); err != nil {
			return err
		}

		cardID, err := uniqueid.Generate("C")
		if err != nil {
			return apperrors.Wrap(err, "failed to generate card id")
		}
		card = &model.Card{
			ID:          cardID,
			BoardID:     boardID,
			Title:       title,
			Description: in.Description,
			Status:      in.Status,
			Priority:    in.Priority,
			CreatedBy:   userID,
		}
		if cover != "" {
			card.Cover = &cover
		}
		if err := u.cards.Create(ctx, card); err != nil {
			return apperrors.Wrap(err, "failed to create card")
		}

		if err := u.syncTasks(ctx, card, in.Tasks); err != nil {
			return err
		}
		if err := u.syncMembers(ctx, card, in.Members); err != nil {
			return err
		}

		entry, err = u.activity.record(ctx, boardID, userID, model.ActionCardCreated, map[string]interface{}{
			"card_id": cardID,
			"title":   title,
		})
		if err != nil {
			return err
		}

		card, err = u.cards.GetByID(ctx, boardID, cardID)
		return notFoundIfErr(err)
	})
	if err != nil {
		u.covers.discard(ctx, cover)
		return nil, err
	}

	u.activity.publish(ctx, entry)
	view := dto.NewCard(card, u.covers.url(ctx, card.Cover))
	return &view, nil
}

// GetCard returns a card of the board to any member.
func (u *CardUsecase) GetCard(ctx context.Context, userID, boardID, cardID string) (*dto.Card, error) {
	_, actor, err := u.access.load(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	if err := service.CanView(actor).Err(); err != nil {
		return nil, err
	}

	card, err := u.cards.GetByID(ctx, boardID, cardID)
	if err != nil {
		return nil, notFoundIfErr(err)
	}
	view := dto.NewCard(card, u.covers.url(ctx, card.Cover))
	return &view, nil
}

// UpdateCard applies scalar changes and reconciles the task and assignee
// collections in one transaction.
func (u *CardUsecase) UpdateCard(ctx context.Context, userID, boardID, cardID string, in UpdateCardInput) (*dto.Card, error) {
	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		in.Title = &title
	}
	if err := validateCardEnums(in.Status, in.Priority); err != nil {
		return nil, err
	}

	cover, err := u.covers.upload(ctx, in.Cover)
	if err != nil {
		return nil, err
	}

	var (
		card     *model.Card
		previous string
		entry    *model.BoardActivity
	)

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, actor, err := u.access.load(ctx, boardID, userID)
		if err != nil {
			return err
		}
		if err := service.CanEditCard(actor).Err(); err != nil {
			return err
		}

		card, err = u.cards.GetByID(ctx, boardID, cardID)
		if err != nil {
			return notFoundIfErr(err)
		}

		fields := []string{}
		if in.Title != nil {
			card.Title = *in.Title
			fields = append(fields, "title")
		}
		if in.Description != nil {
			card.Description = *in.Description
			fields = append(fields, "description")
		}
		if in.Status != nil {
			card.Status = *in.Status
			fields = append(fields, "status")
		}
		if in.Priority != nil {
			card.Priority = *in.Priority
			fields = append(fields, "priority")
		}
		if cover != "" {
			previous = deref(card.Cover)
			card.Cover = &cover
			fields = append(fields, "cover")
		}
		if err := u.cards.Update(ctx, card); err != nil {
			return notFoundOr(err, domainerrors.MsgCardNotFound, "failed to update card")
		}

		if in.Tasks != nil {
			if err := u.syncTasks(ctx, card, *in.Tasks); err != nil {
				return err
			}
			fields = append(fields, "tasks")
		}
		if in.Members != nil {
			if err := u.checkAssignees(ctx, boardID, *in.Members); err != nil {
				return err
			}
			if err := u.syncMembers(ctx, card, *in.Members); err != nil {
				return err
			}
			fields = append(fields, "members")
		}

		entry, err = u.activity.record(ctx, boardID, userID, model.ActionCardUpdated, map[string]interface{}{
			"card_id": cardID,
			"fields":  fields,
		})
		if err != nil {
			return err
		}

		card, err = u.cards.GetByID(ctx, boardID, cardID)
		return notFoundIfErr(err)
	})
	if err != nil {
		u.covers.discard(ctx, cover)
		return nil, err
	}

	u.covers.discard(ctx, previous)
	u.activity.publish(ctx, entry)
	view := dto.NewCard(card, u.covers.url(ctx, card.Cover))
	return &view, nil
}

// DeleteCard removes a card with its tasks and assignees.
func (u *CardUsecase) DeleteCard(ctx context.Context, userID, boardID, cardID string) error {
	var (
		cover string
		entry *model.BoardActivity
	)

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, actor, err := u.access.load(ctx, boardID, userID)
		if err != nil {
			return err
		}
		if err := service.CanEditCard(actor).Err(); err != nil {
			return err
		}

		card, err := u.cards.GetByID(ctx, boardID, cardID)
		if err != nil {
			return notFoundIfErr(err)
		}
		cover = deref(card.Cover)

		if err := u.cards.Delete(ctx, cardID); err != nil {
			return notFoundOr(err, domainerrors.MsgCardNotFound, "failed to delete card")
		}

		entry, err = u.activity.record(ctx, boardID, userID, model.ActionCardDeleted, map[string]interface{}{
			"card_id": cardID,
			"title":   card.Title,
		})
		return err
	})
	if err != nil {
		return err
	}

	u.covers.discard(ctx, cover)
	u.activity.publish(ctx, entry)
	return nil
}

// checkAssignees verifies each team id is a distinct membership of boardID.
func (u *CardUsecase) checkAssignees(ctx context.Context, boardID string, inputs []CardMemberInput) error {
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if in.TeamID == "" {
			return domainerrors.Validation("Invalid card members", map[string]string{"members": "team_id is required"})
		}
		if seen[in.TeamID] {
			return domainerrors.Validation("Invalid card members", map[string]string{
				"members": fmt.Sprintf("team_id %s is listed more than once", in.TeamID),
			})
		}
		seen[in.TeamID] = true

		m, err := u.members.GetByID(ctx, in.TeamID)
		if err != nil && !isNotFound(err) {
			return apperrors.Wrap(err, "failed to load member")
		}
		if err != nil || m.BoardID != boardID {
			return domainerrors.Validation("Invalid card members", map[string]string{
				"members": fmt.Sprintf("team_id %s is not a member of this board", in.TeamID),
			})
		}
	}
	return nil
}

// syncTasks reconciles card.Tasks with inputs; list order becomes position.
func (u *CardUsecase) syncTasks(ctx context.Context, card *model.Card, inputs []TaskInput) error {
	existing := make([]*model.Task, 0, len(card.Tasks))
	for i := range card.Tasks {
		existing = append(existing, &card.Tasks[i])
	}

	incoming := make([]*model.Task, 0, len(inputs))
	for i, in := range inputs {
		incoming = append(incoming, &model.Task{
			ID:       in.ID,
			CardID:   card.ID,
			Task:     in.Task,
			IsDone:   in.IsDone,
			Position: i,
		})
	}

	diff := Reconcile(existing, incoming, func(t *model.Task) string { return t.ID })

	if len(diff.Delete) > 0 {
		ids := make([]string, 0, len(diff.Delete))
		for _, t := range diff.Delete {
			ids = append(ids, t.ID)
		}
		if err := u.cards.DeleteTasks(ctx, card.ID, ids); err != nil {
			return apperrors.Wrap(err, "failed to delete tasks")
		}
	}
	for _, t := range diff.Update {
		if err := u.cards.UpdateTask(ctx, t); err != nil {
			return apperrors.Wrap(err, "failed to update task")
		}
	}
	for _, t := range diff.Create {
		id, err := uniqueid.Generate("T")
		if err != nil {
			return apperrors.Wrap(err, "failed to generate task id")
		}
		t.ID = id
	}
	if err := u.cards.CreateTasks(ctx, diff.Create); err != nil {
		return apperrors.Wrap(err, "failed to create tasks")
	}
	return nil
}

// syncMembers reconciles card.Members with inputs. An input without an id
// that names an already assigned team id keeps the existing assignment,
// unless another input claims that assignment by id.
func (u *CardUsecase) syncMembers(ctx context.Context, card *model.Card, inputs []CardMemberInput) error {
	existing := make([]*model.CardMember, 0, len(card.Members))
	byTeam := make(map[string]string, len(card.Members))
	for i := range card.Members {
		existing = append(existing, &card.Members[i])
		byTeam[card.Members[i].TeamID] = card.Members[i].ID
	}
	current := make(map[string]string, len(card.Members))
	for _, m := range card.Members {
		current[m.ID] = m.TeamID
	}

	claimed := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if in.ID != "" {
			claimed[in.ID] = true
		}
	}

	incoming := make([]*model.CardMember, 0, len(inputs))
	for _, in := range inputs {
		id := in.ID
		if id == "" && !claimed[byTeam[in.TeamID]] {
			id = byTeam[in.TeamID]
		}
		incoming = append(incoming, &model.CardMember{ID: id, CardID: card.ID, TeamID: in.TeamID})
	}

	diff := Reconcile(existing, incoming, func(m *model.CardMember) string { return m.ID })

	if len(diff.Delete) > 0 {
		ids := make([]string, 0, len(diff.Delete))
		for _, m := range diff.Delete {
			ids = append(ids, m.ID)
		}
		if err := u.cards.DeleteMembers(ctx, card.ID, ids); err != nil {
			return apperrors.Wrap(err, "failed to unassign card members")
		}
	}
	for _, m := range diff.Update {
		if current[m.ID] == m.TeamID {
			continue
		}
		if err := u.cards.UpdateMember(ctx, m); err != nil {
			return conflictOr(err, "Member is already assigned to this card", "failed to update card member")
		}
	}
	for _, m := range diff.Create {
		id, err := uniqueid.Generate("A")
		if err != nil {
			return apperrors.Wrap(err, "failed to generate assignment id")
		}
		m.ID = id
	}
	if err := u.cards.CreateMembers(ctx, diff.Create); err != nil {
		return conflictOr(err, "Member is already assigned to this card", "failed to assign card members")
	}
	return nil
}

func validateCardEnums(status *model.CardStatus, priority *model.Priority) error {
	details := map[string]string{}
	if status != nil && !status.Valid() {
		details["status"] = "must be one of TODO, DOING, DONE"
	}
	if priority != nil && !priority.Valid() {
		details["priority"] = "must be one of LOW, MEDIUM, HIGH"
	}
	if len(details) > 0 {
		return domainerrors.Validation("Invalid card", details)
	}
	return nil
}

func notFoundIfErr(err error) error {
	if err == nil {
		return nil
	}
	return notFoundOr(err, domainerrors.MsgCardNotFound, "failed to load card")
}
