package domain

import "time"

// Highlight es un fragmento resaltado en una página web.
type Highlight struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	Color     string    `json:"color,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
