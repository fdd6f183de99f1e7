package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainerrors "github.com/wekeepgrowing/board-server/internal/domain/errors"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/middleware/auth"
	"github.com/wekeepgrowing/board-server/internal/usecase"
)

// CardRequest is the body of card create and update. Multipart requests carry
// tasks and members as JSON-encoded form fields.
type CardRequest struct {
	Title       *string                    `json:"title" validate:"omitempty,max=100"`
	Description *string                    `json:"description" validate:"omitempty,max=2000"`
	Status      *model.CardStatus          `json:"status" validate:"omitempty,oneof=TODO DOING DONE"`
	Priority    *model.Priority            `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Tasks       *[]usecase.TaskInput       `json:"tasks" validate:"omitempty,dive"`
	Members     *[]usecase.CardMemberInput `json:"members" validate:"omitempty,dive"`
}

func isForm(c echo.Context) bool {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ctype, echo.MIMEMultipartForm) || strings.HasPrefix(ctype, echo.MIMEApplicationForm)
}

// formString returns nil when key is absent so partial updates keep the field.
func formString(form url.Values, key string) *string {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func bindCardRequest(c echo.Context) (*CardRequest, error) {
	req := &CardRequest{}
	if !isForm(c) {
		if err := c.Bind(req); err != nil {
			return nil, domainerrors.Validation("Invalid request body", nil)
		}
		return req, c.Validate(req)
	}

	form, err := c.FormParams()
	if err != nil {
		return nil, domainerrors.Validation("Invalid multipart form", nil)
	}
	req.Title = formString(form, "title")
	req.Description = formString(form, "description")
	if s := formString(form, "status"); s != nil {
		status := model.CardStatus(*s)
		req.Status = &status
	}
	if p := formString(form, "priority"); p != nil {
		priority := model.Priority(*p)
		req.Priority = &priority
	}

	var tasks []usecase.TaskInput
	hasTasks, err := jsonField(c, "tasks", &tasks)
	if err != nil {
		return nil, err
	}
	if hasTasks {
		req.Tasks = &tasks
	}

	var members []usecase.CardMemberInput
	hasMembers, err := jsonField(c, "members", &members)
	if err != nil {
		return nil, err
	}
	if hasMembers {
		req.Members = &members
	}
	return req, c.Validate(req)
}

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	logger *zap.Logger
	cards  *usecase.CardUsecase
}

// NewCardHandler creates a new card handler instance
func NewCardHandler(logger *zap.Logger, cards *usecase.CardUsecase) *CardHandler {
	return &CardHandler{logger: logger, cards: cards}
}

// CreateCard handles POST /board/:board_id
func (h *CardHandler) CreateCard(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	req, err := bindCardRequest(c)
	if err != nil {
		return err
	}
	if req.Title == nil {
		return domainerrors.Validation("Validation failed", map[string]string{"title": "is required"})
	}

	cover, closeCover, err := formCover(c)
	if err != nil {
		return err
	}
	defer closeCover()

	in := usecase.CreateCardInput{
		Title: *req.Title,
		Cover: cover,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}
	if req.Tasks != nil {
		in.Tasks = *req.Tasks
	}
	if req.Members != nil {
		in.Members = *req.Members
	}

	card, err := h.cards.CreateCard(c.Request().Context(), userID, c.Param("board_id"), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Card created", card)
}

// GetCard handles GET /board/:board_id/card/:card_id
func (h *CardHandler) GetCard(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	card, err := h.cards.GetCard(c.Request().Context(), userID, c.Param("board_id"), c.Param("card_id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Card retrieved", card)
}

// UpdateCard handles PUT /board/:board_id/card/:card_id
func (h *CardHandler) UpdateCard(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	req, err := bindCardRequest(c)
	if err != nil {
		return err
	}

	cover, closeCover, err := formCover(c)
	if err != nil {
		return err
	}
	defer closeCover()

	card, err := h.cards.UpdateCard(c.Request().Context(), userID, c.Param("board_id"), c.Param("card_id"), usecase.UpdateCardInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Tasks:       req.Tasks,
		Members:     req.Members,
		Cover:       cover,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Card updated", card)
}

// DeleteCard handles DELETE /board/:board_id/card/:card_id
func (h *CardHandler) DeleteCard(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	if err := h.cards.DeleteCard(c.Request().Context(), userID, c.Param("board_id"), c.Param("card_id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Card deleted", nil)
}
