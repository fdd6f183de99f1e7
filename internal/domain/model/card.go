package model

import "time"

// Card belongs to exactly one board and owns its tasks and assignees.
type Card struct {
	ID          string     `gorm:"type:char(12);primaryKey" json:"card_id"`
	BoardID     string     `gorm:"type:char(12);not null;index" json:"board_id"`
	Title       string     `gorm:"type:varchar(100);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      CardStatus `gorm:"type:varchar(10);not null;default:'TODO'" json:"status"`
	Priority    Priority   `gorm:"type:varchar(10);not null;default:'LOW'" json:"priority"`
	Cover       *string    `gorm:"type:varchar(255)" json:"cover,omitempty"`
	CreatedBy   string     `gorm:"type:varchar(64);not null" json:"created_by"`

	Tasks   []Task       `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"tasks"`
	Members []CardMember `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"members"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Card) TableName() string {
	return "cards"
}

// Task is one checklist entry of a card's task list.
type Task struct {
	ID        string    `gorm:"type:char(12);primaryKey" json:"id"`
	CardID    string    `gorm:"type:char(12);not null;index" json:"card_id"`
	Task      string    `gorm:"type:varchar(255);not null" json:"task"`
	IsDone    bool      `gorm:"not null;default:false" json:"is_done"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string {
	return "card_tasks"
}

// CardMember assigns a board membership to a card.
type CardMember struct {
	ID        string    `gorm:"type:char(12);primaryKey" json:"id"`
	CardID    string    `gorm:"type:char(12);not null;uniqueIndex:idx_card_members_card_team" json:"card_id"`
	TeamID    string    `gorm:"type:char(12);not null;uniqueIndex:idx_card_members_card_team;index" json:"team_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Membership *Membership `gorm:"foreignKey:TeamID;references:ID;constraint:OnDelete:CASCADE" json:"membership,omitempty"`
}

func (CardMember) TableName() string {
	return "card_members"
}
