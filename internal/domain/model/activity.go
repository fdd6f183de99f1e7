package model

import (
	"time"

	"gorm.io/datatypes"
)

// Activity actions recorded on a board.
const (
	ActionBoardCreated         = "board.created"
	ActionBoardUpdated         = "board.updated"
	ActionBoardDeleted         = "board.deleted"
	ActionMemberInvited        = "member.invited"
	ActionMemberJoined         = "member.joined"
	ActionMemberLeft           = "member.left"
	ActionMemberRemoved        = "member.removed"
	ActionMemberRoleChanged    = "member.role_changed"
	ActionOwnershipTransferred = "board.ownership_transferred"
	ActionLinkGenerated        = "link.generated"
	ActionCardCreated          = "card.created"
	ActionCardUpdated          = "card.updated"
	ActionCardDeleted          = "card.deleted"
)

// BoardActivity is an append-only audit entry of a board.
type BoardActivity struct {
	ID        uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	BoardID   string            `gorm:"type:char(12);not null;index:idx_board_activities_board_created" json:"board_id"`
	ActorID   string            `gorm:"type:varchar(64);not null" json:"actor_id"`
	Action    string            `gorm:"type:varchar(50);not null" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index:idx_board_activities_board_created" json:"created_at"`
}

func (BoardActivity) TableName() string {
	return "board_activities"
}
