package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// DefaultWarmupOrders is how many recent orders a run warms when the input leaves it unset.
const DefaultWarmupOrders = 50

// WarmupInput is the input for the warm-up workflow.
type WarmupInput struct {
	RecentOrders int
	Priorities   []string
}

// WarmupResult counts the recommendations a run computed.
type WarmupResult struct {
	Orders  int
	Warmed  int
	Skipped int
}

// WarmRecommendationsWorkflow precomputes recommendations of the most recent
// orders for every priority. One failing pair never fails the run.
func WarmRecommendationsWorkflow(ctx workflow.Context, input WarmupInput) (WarmupResult, error) {
	logger := workflow.GetLogger(ctx)

	limit := input.RecentOrders
	if limit <= 0 {
		limit = DefaultWarmupOrders
	}
	priorities := input.Priorities
	if len(priorities) == 0 {
		for _, p := range domain.Priorities {
			priorities = append(priorities, string(p))
		}
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var orderIDs []string
	if err := workflow.ExecuteActivity(ctx, "ListRecentOrders", limit).Get(ctx, &orderIDs); err != nil {
		return WarmupResult{}, err
	}
	logger.Info("Warming recommendations", "orders", len(orderIDs), "priorities", len(priorities))

	futures := make([]workflow.Future, 0, len(orderIDs)*len(priorities))
	for _, id := range orderIDs {
		for _, p := range priorities {
			futures = append(futures, workflow.ExecuteActivity(ctx, "WarmRecommendation", id, p))
		}
	}

	result := WarmupResult{Orders: len(orderIDs)}
	for _, f := range futures {
		if err := f.Get(ctx, nil); err != nil {
			result.Skipped++
			continue
		}
		result.Warmed++
	}

	logger.Info("Warm-up finished", "warmed", result.Warmed, "skipped", result.Skipped)
	return result, nil
}
