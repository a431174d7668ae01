package license

import (
	"context"
	"encoding/json"
	"fmt"

	"smallbiznis-paytopublish/pkg/errutil"
	"smallbiznis-paytopublish/pkg/messenger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task runs scheduled license lifecycle hooks on the worker.
type Task struct {
	service *Service
}

func NewTask(service *Service) *Task {
	return &Task{service: service}
}

func (t *Task) HandleGrantTask(ctx context.Context, task *asynq.Task) error {
	payload, err := decodePayload(task)
	if err != nil {
		return err
	}

	zapLog := zap.L().With(
		zap.String("task_type", task.Type()),
		zap.String("license_id", payload.LicenseID),
		zap.String("trace_id", payload.TraceID),
	)
	zapLog.Info("start license grant task")

	ctx, bag := messenger.WithBag(ctx)
	if _, err := t.service.Grant(ctx, payload.LicenseID); err != nil {
		zapLog.Error("license grant task failed", zap.Error(err), zap.Any("messages", bag.Messages()))
		return retryable(err)
	}

	zapLog.Info("license grant task done", zap.Any("messages", bag.Messages()))
	return nil
}

func (t *Task) HandleRevokeTask(ctx context.Context, task *asynq.Task) error {
	payload, err := decodePayload(task)
	if err != nil {
		return err
	}

	zapLog := zap.L().With(
		zap.String("task_type", task.Type()),
		zap.String("license_id", payload.LicenseID),
		zap.Bool("expired", payload.Expired),
		zap.String("trace_id", payload.TraceID),
	)
	zapLog.Info("start license revoke task")

	ctx, bag := messenger.WithBag(ctx)
	if _, err := t.service.Revoke(ctx, payload.LicenseID, payload.Expired); err != nil {
		zapLog.Error("license revoke task failed", zap.Error(err), zap.Any("messages", bag.Messages()))
		return retryable(err)
	}

	zapLog.Info("license revoke task done", zap.Any("messages", bag.Messages()))
	return nil
}

func decodePayload(task *asynq.Task) (LicensePayload, error) {
	var payload LicensePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.LicenseID == "" {
		return payload, fmt.Errorf("missing license_id: %w", asynq.SkipRetry)
	}
	return payload, nil
}

// retryable marks errors that another attempt cannot fix as final.
func retryable(err error) error {
	switch errutil.Code(err) {
	case errutil.StatusNotFound, errutil.StatusConflict, errutil.StatusUnprocessableEntity,
		errutil.StatusBadRequest, errutil.StatusValidationFailed:
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	default:
		return err
	}
}
