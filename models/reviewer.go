package models

import (
	"time"

	"github.com/google/uuid"
)

// Reviewer is a human who approves, rejects, or comments on compliance
// flags. Audit actions record the reviewer's name as the actor.
type Reviewer struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}
