package dto

import (
	"time"

	userDto "appointment-scheduler/modules/user/dto"

	"github.com/google/uuid"
)

// ===== Request DTOs =====

type BlockUserRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// ===== Response DTOs =====

type BlockResponse struct {
	BlockID     uuid.UUID           `json:"blockId"`
	BlockedUser userDto.UserSummary `json:"blockedUser"`
	Reason      *string             `json:"reason"`
	BlockedAt   time.Time           `json:"blockedAt"`
}

type UnblockResponse struct {
	UnblockedUser userDto.UserSummary `json:"unblockedUser"`
	UnblockedAt   time.Time           `json:"unblockedAt"`
}

type BlockListItemResponse struct {
	BlockID   uuid.UUID           `json:"blockId"`
	User      userDto.UserSummary `json:"user"`
	Reason    *string             `json:"reason"`
	BlockedAt time.Time           `json:"blockedAt"`
}

type BlockFlags struct {
	ByYou                  bool `json:"byYou"`
	ByThem                 bool `json:"byThem"`
	CanScheduleAppointment bool `json:"canScheduleAppointment"`
}

type BlockStatusResponse struct {
	User    userDto.UserSummary `json:"user"`
	Blocked BlockFlags          `json:"blocked"`
}

type BlockStatsResponse struct {
	UsersBlocked   int `json:"usersBlocked"`
	BlockedByUsers int `json:"blockedByUsers"`
}
