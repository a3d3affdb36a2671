package models

import (
	"encoding/json"
	"time"
)

// Event is a scheduled activity within a space. DateEnd is optional: an event
// without an explicit end occupies one hour for overlap purposes (see
// pkg/scheduling).
type Event struct {
	ID        string        `json:"id" db:"id"`
	Title     string        `json:"title" db:"title"`
	DateStart time.Time     `json:"dateStart" db:"date_start"`
	DateEnd   *time.Time    `json:"dateEnd" db:"date_end"`
	SpaceID   string        `json:"spaceId" db:"space_id"`
	CreatedBy string        `json:"createdBy" db:"created_by"`
	Creator   *EventCreator `json:"creator,omitempty"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// EventCreator annotates an event with its creator's display name
type EventCreator struct {
	Name string `json:"name"`
}

// CreateEventRequest represents the request payload for event creation
type CreateEventRequest struct {
	Title     string     `json:"title" validate:"required"`
	DateStart *time.Time `json:"dateStart" validate:"required"`
	DateEnd   *time.Time `json:"dateEnd,omitempty"`
}

// UpdateEventRequest represents the request payload for event updates.
// DateEnd is kept raw so that an omitted field (keep the stored end) can be
// told apart from an explicit null (clear the end).
type UpdateEventRequest struct {
	Title     *string         `json:"title"`
	DateStart *time.Time      `json:"dateStart"`
	DateEnd   json.RawMessage `json:"dateEnd"`
}
