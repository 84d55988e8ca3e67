package dto

import (
	"time"

	userDto "appointment-scheduler/modules/user/dto"
)

// ===== Request DTOs =====

type RegisterRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ===== Response DTOs =====

type LoginResponse struct {
	User      *userDto.UserResponse `json:"user"`
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expiresAt"`
}
