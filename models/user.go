package models

import (
	"github.com/lib/pq"
	"time"
)

const (
	RoleAdministrator = "administrator"
	RoleParticipant   = "participant"
	RoleBlocked       = "blocked"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Login        string         `gorm:"uniqueIndex" json:"login"`
	DisplayName  string         `json:"display_name"`
	Email        string         `json:"-"`
	PasswordHash string         `json:"-"`
	Roles        pq.StringArray `gorm:"type:text" json:"roles"`
	LastSeen     time.Time      `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}

	return false
}
