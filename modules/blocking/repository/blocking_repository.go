package repository

import (
	"context"

	"appointment-scheduler/core/database"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/params"
	"appointment-scheduler/modules/blocking/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BlockingRepository struct {
	DB database.IDatabase
}

func NewBlockingRepository(db database.IDatabase) *BlockingRepository {
	return &BlockingRepository{DB: db}
}

type BlockingRepositoryInterface interface {
	Create(ctx context.Context, edge *entity.BlockedUser) (*entity.BlockedUser, error)
	Delete(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error)
	IsBlocked(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error)
	BlockedEitherWay(ctx context.Context, userID uuid.UUID, others []uuid.UUID) ([]uuid.UUID, error)
	ListBlockedBy(ctx context.Context, blockerID uuid.UUID, params params.QueryParams) (*entity.PaginatedBlockListEntity, error)
	ListBlockersOf(ctx context.Context, blockedID uuid.UUID, params params.QueryParams) (*entity.PaginatedBlockListEntity, error)
	Stats(ctx context.Context, userID uuid.UUID) (*entity.BlockStats, error)
	ClearAllForUser(ctx context.Context, userID uuid.UUID) error
}

func (r *BlockingRepository) Create(ctx context.Context, edge *entity.BlockedUser) (*entity.BlockedUser, error) {
	query := `
		INSERT INTO blocked_users (blocker_id, blocked_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, blocker_id, blocked_id, reason, created_at, updated_at
	`

	var created entity.BlockedUser
	if err := r.DB.GetContext(ctx, &created, query, edge.BlockerID, edge.BlockedID, edge.Reason); err != nil {
		logger.Error("BlockingRepository:Create", "error", err)
		return nil, err
	}
	return &created, nil
}

// Delete reports whether an edge was removed.
func (r *BlockingRepository) Delete(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error) {
	res, err := r.DB.SQLx().ExecContext(ctx,
		`DELETE FROM blocked_users WHERE blocker_id = $1 AND blocked_id = $2`, blockerID, blockedID)
	if err != nil {
		logger.Error("BlockingRepository:Delete", "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BlockingRepository) IsBlocked(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error) {
	var blocked bool
	query := `SELECT EXISTS(SELECT 1 FROM blocked_users WHERE blocker_id = $1 AND blocked_id = $2)`
	if err := r.DB.GetContext(ctx, &blocked, query, blockerID, blockedID); err != nil {
		logger.Error("BlockingRepository:IsBlocked", "error", err)
		return false, err
	}
	return blocked, nil
}

// BlockedEitherWay returns the ids among others that have a block edge with userID in either direction.
func (r *BlockingRepository) BlockedEitherWay(ctx context.Context, userID uuid.UUID, others []uuid.UUID) ([]uuid.UUID, error) {
	if len(others) == 0 {
		return []uuid.UUID{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT blocked_id AS other FROM blocked_users WHERE blocker_id = ? AND blocked_id IN (?)
		UNION
		SELECT blocker_id AS other FROM blocked_users WHERE blocked_id = ? AND blocker_id IN (?)
	`, userID, others, userID, others)
	if err != nil {
		return nil, err
	}
	query = r.DB.SQLx().Rebind(query)

	var ids []uuid.UUID
	if err := r.DB.SelectContext(ctx, &ids, query, args...); err != nil {
		logger.Error("BlockingRepository:BlockedEitherWay", "error", err)
		return nil, err
	}
	return ids, nil
}

func (r *BlockingRepository) ListBlockedBy(ctx context.Context, blockerID uuid.UUID, params params.QueryParams) (*entity.PaginatedBlockListEntity, error) {
	return r.list(ctx, "b.blocker_id", "b.blocked_id", blockerID, params)
}

func (r *BlockingRepository) ListBlockersOf(ctx context.Context, blockedID uuid.UUID, params params.QueryParams) (*entity.PaginatedBlockListEntity, error) {
	return r.list(ctx, "b.blocked_id", "b.blocker_id", blockedID, params)
}

// list pages edges matching ownerCol = id, joined with the user referenced by otherCol.
func (r *BlockingRepository) list(ctx context.Context, ownerCol, otherCol string, id uuid.UUID, params params.QueryParams) (*entity.PaginatedBlockListEntity, error) {
	var totalItems int
	countQuery := `SELECT COUNT(*) FROM blocked_users b WHERE ` + ownerCol + ` = $1`
	if err := r.DB.GetContext(ctx, &totalItems, countQuery, id); err != nil {
		logger.Error("BlockingRepository:List:Count", "error", err)
		return nil, err
	}

	query := `
		SELECT b.id AS block_id, b.reason, b.created_at AS blocked_at,
		       u.id AS user_id, u.first_name, u.last_name, u.email, u.role, u.department
		FROM blocked_users b
		JOIN users u ON u.id = ` + otherCol + `
		WHERE ` + ownerCol + ` = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`

	items := []entity.BlockListItem{}
	if err := r.DB.SelectContext(ctx, &items, query, id, params.PageSize, params.Offset()); err != nil {
		logger.Error("BlockingRepository:List:Select", "error", err)
		return nil, err
	}

	return &entity.PaginatedBlockListEntity{
		Items:      items,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *BlockingRepository) Stats(ctx context.Context, userID uuid.UUID) (*entity.BlockStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE blocker_id = $1) AS users_blocked,
			COUNT(*) FILTER (WHERE blocked_id = $1) AS blocked_by_users
		FROM blocked_users
		WHERE blocker_id = $1 OR blocked_id = $1
	`

	var stats entity.BlockStats
	if err := r.DB.GetContext(ctx, &stats, query, userID); err != nil {
		logger.Error("BlockingRepository:Stats", "error", err)
		return nil, err
	}
	return &stats, nil
}

func (r *BlockingRepository) ClearAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM blocked_users WHERE blocker_id = $1 OR blocked_id = $1`
	if err := r.DB.ExecContext(ctx, query, userID); err != nil {
		logger.Error("BlockingRepository:ClearAllForUser", "error", err)
		return err
	}
	return nil
}
