package domain

import "time"

// VideoNote es una nota anclada a un timestamp de un video de YouTube.
type VideoNote struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	VideoID          string    `json:"video_id"`
	Title            string    `json:"title,omitempty"`
	TimestampSeconds int       `json:"timestamp_seconds"`
	Note             string    `json:"note"`
	CreatedAt        time.Time `json:"created_at"`
}
