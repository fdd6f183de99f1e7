package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/board-server/internal/domain/errors"
	"github.com/wekeepgrowing/board-server/internal/middleware/auth"
	"github.com/wekeepgrowing/board-server/internal/usecase"
)

type CreateBoardRequest struct {
	Title string `json:"title" form:"title" validate:"required,max=100"`
}

// UpdateBoardRequest leaves the title untouched when it is absent.
type UpdateBoardRequest struct {
	Title *string `json:"title" validate:"omitempty,max=100"`
}

// BoardHandler handles board-related HTTP requests
type BoardHandler struct {
	logger *zap.Logger
	boards *usecase.BoardUsecase
}

// NewBoardHandler creates a new board handler instance
func NewBoardHandler(logger *zap.Logger, boards *usecase.BoardUsecase) *BoardHandler {
	return &BoardHandler{logger: logger, boards: boards}
}

// CreateBoard handles POST /board
func (h *BoardHandler) CreateBoard(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req CreateBoardRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.Validation("Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cover, closeCover, err := formCover(c)
	if err != nil {
		return err
	}
	defer closeCover()

	board, err := h.boards.CreateBoard(c.Request().Context(), userID, usecase.CreateBoardInput{
		Title: req.Title,
		Cover: cover,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Board created", board)
}

// ListBoards handles GET /board
func (h *BoardHandler) ListBoards(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var query entity.BoardQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return domainerrors.Validation("Invalid query parameters", nil)
	}

	boards, paging, err := h.boards.ListBoards(c.Request().Context(), userID, query)
	if err != nil {
		return err
	}
	return respondPage(c, "Boards retrieved", boards, paging)
}

// GetBoard handles GET /board/:board_id
func (h *BoardHandler) GetBoard(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	board, err := h.boards.GetBoard(c.Request().Context(), userID, c.Param("board_id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Board retrieved", board)
}

// UpdateBoard handles PUT /board/:board_id
func (h *BoardHandler) UpdateBoard(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req UpdateBoardRequest
	if isForm(c) {
		form, err := c.FormParams()
		if err != nil {
			return domainerrors.Validation("Invalid multipart form", nil)
		}
		req.Title = formString(form, "title")
	} else if err := c.Bind(&req); err != nil {
		return domainerrors.Validation("Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cover, closeCover, err := formCover(c)
	if err != nil {
		return err
	}
	defer closeCover()

	board, err := h.boards.UpdateBoard(c.Request().Context(), userID, c.Param("board_id"), usecase.UpdateBoardInput{
		Title: req.Title,
		Cover: cover,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Board updated", board)
}

// DeleteBoard handles DELETE /board/:board_id
func (h *BoardHandler) DeleteBoard(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	if err := h.boards.DeleteBoard(c.Request().Context(), userID, c.Param("board_id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Board deleted", nil)
}
