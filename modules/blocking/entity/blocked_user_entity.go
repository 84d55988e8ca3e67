package entity

import (
	"errors"
	"strings"
	"time"

	coreEntity "appointment-scheduler/core/entity"

	"github.com/google/uuid"
)

const MaxReasonLength = 500

var (
	ErrSelfBlock     = errors.New("you cannot block yourself")
	ErrReasonTooLong = errors.New("reason cannot exceed 500 characters")
)

// BlockedUser is a directed edge: Blocker does not want to be scheduled with Blocked.
type BlockedUser struct {
	BlockerID uuid.UUID `db:"blocker_id" json:"blocker_id"`
	BlockedID uuid.UUID `db:"blocked_id" json:"blocked_id"`
	Reason    *string   `db:"reason" json:"reason"`
	coreEntity.BaseEntity
}

// NewBlockedUser validates and builds a new edge.
func NewBlockedUser(blockerID, blockedID uuid.UUID, reason string) (*BlockedUser, error) {
	if blockerID == blockedID {
		return nil, ErrSelfBlock
	}

	edge := &BlockedUser{BlockerID: blockerID, BlockedID: blockedID}
	if reason = strings.TrimSpace(reason); reason != "" {
		if len([]rune(reason)) > MaxReasonLength {
			return nil, ErrReasonTooLong
		}
		edge.Reason = &reason
	}
	return edge, nil
}

// BlockListItem is an edge joined with the user on the other side.
type BlockListItem struct {
	BlockID    uuid.UUID `db:"block_id"`
	Reason     *string   `db:"reason"`
	BlockedAt  time.Time `db:"blocked_at"`
	UserID     uuid.UUID `db:"user_id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Email      string    `db:"email"`
	Role       string    `db:"role"`
	Department *string   `db:"department"`
}

type PaginatedBlockListEntity = coreEntity.Pagination[BlockListItem]

type BlockStats struct {
	UsersBlocked   int `db:"users_blocked"`
	BlockedByUsers int `db:"blocked_by_users"`
}
