package forecast

import "context"

// RefreshTrigger is the port the business-event modules (sales confirm,
// purchase confirm, receipt validation) use to refresh the lines of the
// products an event touched. *Service implements it.
type RefreshTrigger interface {
	Refresh(ctx context.Context, productIDs []int64) error
}
