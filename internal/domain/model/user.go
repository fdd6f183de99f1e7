package model

import "time"

// User is a local profile of an upstream-authenticated account.
type User struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	Avatar    *string   `gorm:"type:varchar(255)" json:"avatar,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
