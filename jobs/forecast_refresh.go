package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/vantage-erp/vantage-erp/internal/forecast"
	jobmetrics "github.com/vantage-erp/vantage-erp/internal/jobs"
)

const (
	refreshChunkSize   = 50
	refreshConcurrency = 4
)

// ForecastPort exposes the registry operations the bulk jobs drive.
type ForecastPort interface {
	List(ctx context.Context) ([]forecast.Line, error)
	RefreshLines(ctx context.Context, lineIDs []int64) (int, error)
	Populate(ctx context.Context) (int, error)
}

// ForecastHandlers processes forecast bulk tasks.
type ForecastHandlers struct {
	service ForecastPort
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewForecastHandlers constructs ForecastHandlers.
func NewForecastHandlers(service ForecastPort, logger *slog.Logger, metrics *jobmetrics.Metrics) *ForecastHandlers {
	return &ForecastHandlers{service: service, logger: logger, metrics: metrics}
}

// HandleRefreshAll recomputes the whole registry, fanning chunks of lines
// out to a bounded worker group.
func (h *ForecastHandlers) HandleRefreshAll(ctx context.Context, t *asynq.Task) error {
	var payload ForecastTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := h.metrics.Track("forecast_refresh_all")

	lines, err := h.service.List(ctx)
	if err != nil {
		return tracker.End(err)
	}
	lineIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}
	chunks := chunkIDs(lineIDs, refreshChunkSize)
	counts := make([]int, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			n, err := h.service.RefreshLines(ctx, chunk)
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return tracker.End(err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	h.logger.Info("forecast registry refreshed", slog.Int("lines", total))
	return tracker.End(nil)
}

// HandlePopulate creates forecast lines for every untracked stockable
// product.
func (h *ForecastHandlers) HandlePopulate(ctx context.Context, t *asynq.Task) error {
	var payload ForecastTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := h.metrics.Track("forecast_populate")

	created, err := h.service.Populate(ctx)
	if err != nil {
		return tracker.End(err)
	}
	h.logger.Info("forecast registry populated", slog.Int("created", created))
	return tracker.End(nil)
}

func chunkIDs(ids []int64, size int) [][]int64 {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	var chunks [][]int64
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
