package model

import "time"

// Board is a Kanban workspace. It exclusively owns its memberships, cards
// and invite links.
type Board struct {
	ID        string  `gorm:"type:char(12);primaryKey" json:"board_id"`
	Title     string  `gorm:"type:varchar(100);not null" json:"title"`
	Cover     *string `gorm:"type:varchar(255)" json:"cover,omitempty"`
	CreatedBy string  `gorm:"type:varchar(64);not null;index" json:"created_by"`

	Memberships []Membership `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	Cards       []Card       `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	InviteLinks []InviteLink `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Board) TableName() string {
	return "boards"
}

// BoardUpdate is used for partial updates on a board.
type BoardUpdate struct {
	Title *string
	Cover *string
}
