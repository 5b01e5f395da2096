package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Word es una palabra guardada por el usuario con su definición generada.
type Word struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Term       string          `json:"term"`
	Definition string          `json:"definition"`
	Example    string          `json:"example,omitempty"`
	Embedding  pgvector.Vector `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}
