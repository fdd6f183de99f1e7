package dto

import (
	"time"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
)

type Task struct {
	ID     string `json:"id"`
	Task   string `json:"task"`
	IsDone bool   `json:"is_done"`
}

// CardMember is an assignee of a card.
type CardMember struct {
	ID string `json:"id"`
	Member
}

type Card struct {
	CardID      string           `json:"card_id"`
	BoardID     string           `json:"board_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      model.CardStatus `json:"status"`
	Priority    model.Priority   `json:"priority"`
	Cover       string           `json:"cover,omitempty"`
	CreatedBy   string           `json:"created_by"`
	Tasks       []Task           `json:"tasks"`
	Members     []CardMember     `json:"members"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewCard maps a card; coverURL is the resolved address of its cover.
func NewCard(c *model.Card, coverURL string) Card {
	card := Card{
		CardID:      c.ID,
		BoardID:     c.BoardID,
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Priority:    c.Priority,
		Cover:       coverURL,
		CreatedBy:   c.CreatedBy,
		Tasks:       make([]Task, 0, len(c.Tasks)),
		Members:     make([]CardMember, 0, len(c.Members)),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, t := range c.Tasks {
		card.Tasks = append(card.Tasks, Task{ID: t.ID, Task: t.Task, IsDone: t.IsDone})
	}
	for _, m := range c.Members {
		cm := CardMember{ID: m.ID, Member: Member{TeamID: m.TeamID}}
		if m.Membership != nil {
			cm.Member = NewMember(m.Membership)
		}
		card.Members = append(card.Members, cm)
	}
	return card
}
