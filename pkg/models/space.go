package models

import "time"

// Space is the tenant boundary: every user and every event belongs to exactly
// one space, and no cross-space reference ever exists. The space id doubles as
// the invite code.
type Space struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
