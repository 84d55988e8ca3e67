package entity

import (
	"time"

	"github.com/google/uuid"
)

// Token is an issued access token. A token is only accepted while a row exists and has not expired.
type Token struct {
	Token     string    `db:"token" json:"token"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
