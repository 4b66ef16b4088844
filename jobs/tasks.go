package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskForecastRefreshAll recomputes every forecast line.
	TaskForecastRefreshAll = "forecast:refresh_all"
	// TaskForecastPopulate creates lines for all untracked stockable products.
	TaskForecastPopulate = "forecast:populate"
)

// ForecastTaskPayload carries enqueue metadata for forecast bulk jobs.
type ForecastTaskPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// NewForecastRefreshAllTask constructs the registry-wide refresh task.
func NewForecastRefreshAllTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ForecastTaskPayload{RequestedAt: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskForecastRefreshAll, body, asynq.Queue(QueueDefault)), nil
}

// NewForecastPopulateTask constructs the catalog-wide populate task.
func NewForecastPopulateTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ForecastTaskPayload{RequestedAt: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskForecastPopulate, body, asynq.Queue(QueueDefault)), nil
}
