package dto

import (
	"time"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
)

// Member is a board membership as shown to clients.
type Member struct {
	TeamID     string           `json:"team_id"`
	UserID     string           `json:"user_id"`
	Username   string           `json:"username"`
	Name       string           `json:"name"`
	Avatar     *string          `json:"avatar"`
	Role       model.Role       `json:"role"`
	Permission model.Permission `json:"permission"`
	JoinedAt   time.Time        `json:"joined_at"`
}

// Board is the list representation of a board.
type Board struct {
	BoardID    string           `json:"board_id"`
	Title      string           `json:"title"`
	Cover      string           `json:"cover,omitempty"`
	CreatedBy  string           `json:"created_by"`
	Role       model.Role       `json:"role,omitempty"`
	Permission model.Permission `json:"permission,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// BoardDetail adds the roster and the cards.
type BoardDetail struct {
	Board
	Team  []Member `json:"team"`
	Cards []Card   `json:"cards"`
}

// Activity is one entry of the board's audit trail.
type Activity struct {
	ID        uint64                 `json:"id"`
	ActorID   string                 `json:"actor_id"`
	Action    string                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

// BoardEvent is published after a board mutation commits.
type BoardEvent struct {
	BoardID  string                 `json:"board_id"`
	ActorID  string                 `json:"actor_id"`
	Action   string                 `json:"action"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	At       time.Time              `json:"at"`
}

// NewMember maps a membership with its preloaded user.
func NewMember(m *model.Membership) Member {
	member := Member{
		TeamID:     m.ID,
		UserID:     m.UserID,
		Role:       m.Role,
		Permission: m.Permission,
		JoinedAt:   m.CreatedAt,
	}
	if m.User != nil {
		member.Username = m.User.Username
		member.Name = m.User.Name
		member.Avatar = m.User.Avatar
	}
	return member
}

func NewActivity(a *model.BoardActivity) Activity {
	return Activity{
		ID:        a.ID,
		ActorID:   a.ActorID,
		Action:    a.Action,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
}
