package model

import "time"

// InviteLink grants join-by-link access to a board at a fixed permission.
type InviteLink struct {
	ID         string     `gorm:"type:char(12);primaryKey" json:"-"`
	BoardID    string     `gorm:"type:char(12);not null;uniqueIndex:idx_board_invite_links_board_code" json:"board_id"`
	Code       string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_board_invite_links_board_code" json:"-"`
	Hashed     string     `gorm:"type:varchar(128);not null" json:"-"`
	Permission Permission `gorm:"type:varchar(10);not null;default:'VIEW'" json:"permission"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (InviteLink) TableName() string {
	return "board_invite_links"
}
