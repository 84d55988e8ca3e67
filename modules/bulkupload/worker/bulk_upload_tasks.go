package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeProcessUpload = "bulkupload:process"
	TypeSweepStuck    = "bulkupload:sweep"
)

type processPayload struct {
	UploadID uuid.UUID `json:"upload_id"`
}

type Processor interface {
	Process(ctx context.Context, uploadID uuid.UUID) error
}

type Sweeper interface {
	SweepStuck(ctx context.Context) (int, error)
}

// NewProcessTask is never retried: rows created before a crash would be created twice.
func NewProcessTask(uploadID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(processPayload{UploadID: uploadID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProcessUpload, payload, asynq.MaxRetry(0), asynq.Timeout(constants.ImportTaskTimeout)), nil
}

func NewSweepTask() *asynq.Task {
	return asynq.NewTask(TypeSweepStuck, nil, asynq.MaxRetry(0))
}

func NewProcessHandler(p Processor) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload processPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("decode %s payload: %v: %w", TypeProcessUpload, err, asynq.SkipRetry)
		}
		return p.Process(ctx, payload.UploadID)
	}
}

func NewSweepHandler(s Sweeper) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, _ *asynq.Task) error {
		ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
		defer cancel()

		n, err := s.SweepStuck(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Warn("BulkUploadSweep:Failed", "count", n)
		}
		return nil
	}
}
