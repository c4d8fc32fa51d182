package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// OrderLister lists the most recent order IDs.
type OrderLister interface {
	ListRecentIDs(ctx context.Context, limit int) ([]string, error)
}

// Recommender computes (and caches) a recommendation.
type Recommender interface {
	Recommend(ctx context.Context, orderID string, priority domain.Priority) (*domain.RecommendationResult, error)
}

// RecommendationActivities holds the activity implementations for the warm-up workflow.
type RecommendationActivities struct {
	Orders      OrderLister
	Recommender Recommender
}

// ListRecentOrders returns up to limit order IDs, newest first.
func (a *RecommendationActivities) ListRecentOrders(ctx context.Context, limit int) ([]string, error) {
	ids, err := a.Orders.ListRecentIDs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	return ids, nil
}

// WarmRecommendation computes the recommendation of one order and priority so the
// result lands in the shared cache. Orders that cannot be served are not retried.
func (a *RecommendationActivities) WarmRecommendation(ctx context.Context, orderID, priority string) error {
	p, err := domain.ParsePriority(priority)
	if err != nil {
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeRejected, err)
	}

	if _, err := a.Recommender.Recommend(ctx, orderID, p); err != nil {
		if errors.Is(err, domain.ErrUnexpected) {
			return err
		}
		activity.GetLogger(ctx).Info("order not warmable", "orderId", orderID, "priority", p, "error", err)
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeRejected, err)
	}
	return nil
}

// errTypeRejected marks domain rejections (not found, invalid, infeasible).
const errTypeRejected = "RecommendationRejected"
