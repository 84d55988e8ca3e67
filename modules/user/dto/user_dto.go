package dto

import (
	"time"

	"github.com/google/uuid"
)

// ===== Request DTOs =====

// CreateUserInput carries a plain-text password; the service hashes it.
type CreateUserInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Role       string
	Phone      string
	Department string
}

// ===== Response DTOs =====

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Phone      *string   `json:"phone,omitempty"`
	Department *string   `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UserSummary is the compact user shape embedded in other responses.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role,omitempty"`
	Department *string   `json:"department,omitempty"`
}
