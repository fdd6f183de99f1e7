package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/board-server/internal/domain/errors"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/middleware/auth"
	"github.com/wekeepgrowing/board-server/internal/usecase"
)

type InviteRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

type ChangeRoleRequest struct {
	Role model.Role `json:"role" validate:"required"`
}

// LinkResponse carries a join URL.
type LinkResponse struct {
	Link string `json:"link"`
}

// MemberHandler handles team, invite link and membership requests
type MemberHandler struct {
	logger     *zap.Logger
	membership *usecase.MembershipUsecase
}

// NewMemberHandler creates a new member handler instance
func NewMemberHandler(logger *zap.Logger, membership *usecase.MembershipUsecase) *MemberHandler {
	return &MemberHandler{logger: logger, membership: membership}
}

// Invite handles POST /board/:board_id/member/invite
func (h *MemberHandler) Invite(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req InviteRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.Validation("Invalid request body", nil)
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return err
	}

	member, err := h.membership.InviteByUsername(c.Request().Context(), userID, c.Param("board_id"), req.Username)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Member invited", member)
}

// GetLink handles GET /board/:board_id/link
func (h *MemberHandler) GetLink(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	link, err := h.membership.GetLink(c.Request().Context(), userID, c.Param("board_id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Invite link retrieved", LinkResponse{Link: link})
}

// GenerateLink handles POST /board/:board_id/link/generate?permission=
func (h *MemberHandler) GenerateLink(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	permission := model.Permission(strings.ToUpper(c.QueryParam("permission")))
	link, err := h.membership.GenerateLink(c.Request().Context(), userID, c.Param("board_id"), permission)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Invite link generated", LinkResponse{Link: link})
}

// Join handles POST /board/:board_id/join/:hashed
func (h *MemberHandler) Join(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	member, err := h.membership.JoinByLink(c.Request().Context(), userID, c.Param("board_id"), c.Param("hashed"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Joined board", member)
}

// Leave handles DELETE /board/:board_id/member/leave
func (h *MemberHandler) Leave(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	if err := h.membership.Leave(c.Request().Context(), userID, c.Param("board_id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Left board", nil)
}

// Remove handles DELETE /board/:board_id/member/:team_id
func (h *MemberHandler) Remove(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	if err := h.membership.RemoveMember(c.Request().Context(), userID, c.Param("board_id"), c.Param("team_id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Member removed", nil)
}

// ChangeRole handles PATCH /board/:board_id/member/:team_id/role
func (h *MemberHandler) ChangeRole(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req ChangeRoleRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.Validation("Invalid request body", nil)
	}
	req.Role = model.Role(strings.ToUpper(string(req.Role)))
	if err := c.Validate(&req); err != nil {
		return err
	}

	member, err := h.membership.ChangeRole(c.Request().Context(), userID, c.Param("board_id"), c.Param("team_id"), req.Role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Role changed", member)
}

// TransferOwnership handles PATCH /board/:board_id/member/:team_id/transfer/ownership
func (h *MemberHandler) TransferOwnership(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	if err := h.membership.TransferOwnership(c.Request().Context(), userID, c.Param("board_id"), c.Param("team_id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Ownership transferred", nil)
}

// ListTeam handles GET /board/:board_id/team
func (h *MemberHandler) ListTeam(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var query entity.TeamQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return domainerrors.Validation("Invalid query parameters", nil)
	}

	members, paging, err := h.membership.ListTeam(c.Request().Context(), userID, c.Param("board_id"), query)
	if err != nil {
		return err
	}
	return respondPage(c, "Team retrieved", members, paging)
}

// ListActivity handles GET /board/:board_id/activity
func (h *MemberHandler) ListActivity(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var page entity.PaginationParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &page); err != nil {
		return domainerrors.Validation("Invalid query parameters", nil)
	}

	activities, paging, err := h.membership.ListActivity(c.Request().Context(), userID, c.Param("board_id"), page)
	if err != nil {
		return err
	}
	return respondPage(c, "Activity retrieved", activities, paging)
}
