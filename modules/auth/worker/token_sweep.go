package worker

import (
	"context"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/logger"

	"github.com/hibiken/asynq"
)

const TypeTokenSweep = "auth:token-sweep"

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

func NewTokenSweepTask() *asynq.Task {
	return asynq.NewTask(TypeTokenSweep, nil, asynq.MaxRetry(0))
}

// NewTokenSweepHandler deletes expired token rows.
func NewTokenSweepHandler(purger TokenPurger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, _ *asynq.Task) error {
		ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
		defer cancel()

		n, err := purger.PurgeExpiredTokens(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("TokenSweep:Purged", "count", n)
		}
		return nil
	}
}
