package models

import "time"

// ListItem is a shopping list entry shared by all members of a space
type ListItem struct {
	ID          string    `json:"id" db:"id"`
	Content     string    `json:"content" db:"content"`
	IsCompleted bool      `json:"isCompleted" db:"is_completed"`
	SpaceID     string    `json:"spaceId" db:"space_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// CreateListItemRequest represents the request payload for adding a list item
type CreateListItemRequest struct {
	Content string `json:"content" validate:"required"`
}
