package license

import (
	"encoding/json"
	"time"

	"smallbiznis-paytopublish/pkg/task"

	"github.com/hibiken/asynq"
)

const (
	TaskLicenseGrant  = "license:grant"
	TaskLicenseRevoke = "license:revoke"
)

type LicensePayload struct {
	LicenseID string `json:"license_id"`
	Expired   bool   `json:"expired,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

func NewGrantTask(p LicensePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLicenseGrant, payload,
		asynq.MaxRetry(10),
		asynq.Timeout(30*time.Second),
		asynq.Queue(task.QueueCritical),
	), nil
}

func NewRevokeTask(p LicensePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLicenseRevoke, payload,
		asynq.MaxRetry(10),
		asynq.Timeout(30*time.Second),
		asynq.Queue(task.QueueCritical),
	), nil
}
