package model

import "time"

// Membership pairs a user with a board. Its ID is the board-scoped "team id".
// There is exactly one Membership per (board, user).
type Membership struct {
	ID         string     `gorm:"type:char(12);primaryKey" json:"team_id"`
	BoardID    string     `gorm:"type:char(12);not null;uniqueIndex:idx_board_members_board_user" json:"board_id"`
	UserID     string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_board_members_board_user;index" json:"user_id"`
	Role       Role       `gorm:"type:varchar(10);not null;default:'MEMBER'" json:"role"`
	Permission Permission `gorm:"type:varchar(10);not null;default:'VIEW'" json:"permission"`

	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Membership) TableName() string {
	return "board_members"
}

// IsOwner reports whether the membership holds the OWNER role.
func (m *Membership) IsOwner() bool {
	return m != nil && m.Role == RoleOwner
}
