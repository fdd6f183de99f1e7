package http

import "github.com/labstack/echo/v4"

// Handlers bundles the route handlers of the board API.
type Handlers struct {
	Boards  *BoardHandler
	Cards   *CardHandler
	Members *MemberHandler
}

// RegisterRoutes mounts the board API on g. Authentication is applied by the caller.
func RegisterRoutes(g *echo.Group, h Handlers) {
	boards := g.Group("/board")
	boards.POST("", h.Boards.CreateBoard)
	boards.GET("", h.Boards.ListBoards)
	boards.GET("/:board_id", h.Boards.GetBoard)
	boards.PUT("/:board_id", h.Boards.UpdateBoard)
	boards.DELETE("/:board_id", h.Boards.DeleteBoard)

	// Cards
	boards.POST("/:board_id", h.Cards.CreateCard)
	boards.GET("/:board_id/card/:card_id", h.Cards.GetCard)
	boards.PUT("/:board_id/card/:card_id", h.Cards.UpdateCard)
	boards.DELETE("/:board_id/card/:card_id", h.Cards.DeleteCard)

	// Team and invitations
	boards.GET("/:board_id/team", h.Members.ListTeam)
	boards.GET("/:board_id/activity", h.Members.ListActivity)
	boards.POST("/:board_id/member/invite", h.Members.Invite)
	boards.GET("/:board_id/link", h.Members.GetLink)
	boards.POST("/:board_id/link/generate", h.Members.GenerateLink)
	boards.POST("/:board_id/join/:hashed", h.Members.Join)
	boards.DELETE("/:board_id/member/leave", h.Members.Leave)
	boards.DELETE("/:board_id/member/:team_id", h.Members.Remove)
	boards.PATCH("/:board_id/member/:team_id/role", h.Members.ChangeRole)
	boards.PATCH("/:board_id/member/:team_id/transfer/ownership", h.Members.TransferOwnership)
}
