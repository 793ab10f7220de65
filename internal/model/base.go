package model

import "time"

// Record is an entity the console caches by ID.
type Record interface {
	RecordID() string
}

// Timestamps are set by the backend and never sent back.
type Timestamps struct {
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Option is an id/label pair for dropdowns.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
