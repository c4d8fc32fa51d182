package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
	"github.com/samirrijal/shipquote/internal/pkg/telemetry"
)

// DefaultResultTTL is how long a ranked recommendation stays in the shared cache.
const DefaultResultTTL = 600

// CacheRecommendation labels result-cache statistics for recommendations.
const CacheRecommendation = "recommendation"

// RecommendationService runs the fetch, validate, simulate, score and rank pipeline.
type RecommendationService struct {
	orders     ports.OrderProvider
	warehouses ports.WarehouseProvider
	simulator  *Simulator
	results    resultCache
	publisher  ports.EventPublisher
	recorder   ports.MetricsRecorder
}

// NewRecommendationService creates a new RecommendationService. cache, publisher
// and recorder may be nil.
func NewRecommendationService(
	orders ports.OrderProvider,
	warehouses ports.WarehouseProvider,
	simulator *Simulator,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	recorder ports.MetricsRecorder,
) *RecommendationService {
	return &RecommendationService{
		orders:     orders,
		warehouses: warehouses,
		simulator:  simulator,
		results:    newResultCache(cache, recorder),
		publisher:  publisher,
		recorder:   recorder,
	}
}

// SetResultTTL overrides the result cache TTL in seconds.
func (s *RecommendationService) SetResultTTL(seconds int) {
	if seconds > 0 {
		s.results.ttl = seconds
	}
}

// Recommend returns the best candidate for orderID under priority, with the
// remaining candidates as alternatives. Errors are *domain.StageError values
// wrapping the domain error taxonomy.
func (s *RecommendationService) Recommend(ctx context.Context, orderID string, priority domain.Priority) (result *domain.RecommendationResult, err error) {
	// A disconnecting caller must not abort a simulation that can still warm the cache.
	ctx = context.WithoutCancel(ctx)

	ctx, span := telemetry.StartSpan(ctx, "recommendation.recommend",
		attribute.String("order_id", orderID),
		attribute.String("priority", string(priority)),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		mode := ""
		if err == nil && result != nil {
			mode = result.Recommended.TransportMode
		}
		if s.recorder != nil {
			s.recorder.Record(time.Since(start), mode, err == nil)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logFailure(ctx, orderID, priority, err)
		}
	}()

	if !priority.Valid() {
		return nil, domain.FailAt(domain.StageValidating,
			fmt.Errorf("%w: invalid priority %q", domain.ErrInvalidInput, priority))
	}

	res, hit, err := readThrough(ctx, s.results, CacheRecommendation, recommendationKey(orderID, priority),
		func() (domain.RecommendationResult, error) {
			return s.run(ctx, orderID, priority, start)
		})
	if err != nil {
		return nil, err
	}
	if hit {
		telemetry.AddEvent(ctx, telemetry.EventResultCacheHit)
	}
	return &res, nil
}

func (s *RecommendationService) run(ctx context.Context, orderID string, priority domain.Priority, start time.Time) (domain.RecommendationResult, error) {
	// Fetching
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.RecommendationResult{}, domain.FailAt(domain.StageFetching, fmt.Errorf("order %s: %w", orderID, err))
	}
	warehouses, err := s.warehouses.ListActive(ctx)
	if err != nil {
		return domain.RecommendationResult{}, domain.FailAt(domain.StageFetching, fmt.Errorf("list warehouses: %w", err))
	}

	// Validating
	if err := validateOrder(order); err != nil {
		return domain.RecommendationResult{}, domain.FailAt(domain.StageValidating, err)
	}
	active := activeOnly(warehouses)
	if len(active) == 0 {
		return domain.RecommendationResult{}, domain.FailAt(domain.StageValidating,
			fmt.Errorf("%w: no active warehouses available for fulfillment", domain.ErrInvalidInput))
	}

	// Simulating
	candidates, err := s.simulator.Simulate(ctx, order, active)
	if err != nil {
		return domain.RecommendationResult{}, domain.FailAt(domain.StageSimulating, err)
	}
	if len(candidates) == 0 {
		telemetry.AddEvent(ctx, telemetry.EventInfeasibleRequest)
		return domain.RecommendationResult{}, domain.FailAt(domain.StageSimulating, domain.ErrInfeasible)
	}

	// Scoring
	ScoreCandidates(candidates, priority)

	// Ranking
	ranked := RankCandidates(candidates)
	result := domain.RecommendationResult{
		Recommended:  ranked[0],
		Alternatives: append([]domain.CandidateOption{}, ranked[1:]...),
	}

	s.publish(ctx, order.ID, priority, &result, time.Since(start))
	telemetry.AddEvent(ctx, telemetry.EventRecommendationServed,
		attribute.String("transport_mode", result.Recommended.TransportMode),
		attribute.Int("candidates", len(ranked)),
	)
	return result, nil
}

// Invalidate drops cached recommendations of orderID for every priority.
func (s *RecommendationService) Invalidate(ctx context.Context, orderID string) error {
	if s.results.cache == nil {
		return nil
	}
	var errs []error
	for _, p := range domain.Priorities {
		if err := s.results.cache.Delete(ctx, recommendationKey(orderID, p)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *RecommendationService) publish(ctx context.Context, orderID string, priority domain.Priority, res *domain.RecommendationResult, latency time.Duration) {
	if s.publisher == nil {
		return
	}
	event := &domain.RecommendationEvent{
		EventID:       uuid.NewString(),
		OrderID:       orderID,
		Priority:      priority,
		Recommended:   res.Recommended,
		Alternatives:  len(res.Alternatives),
		LatencyMillis: latency.Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.publisher.PublishRecommendation(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("publish recommendation event failed", "order_id", orderID, "error", err)
	}
}

func (s *RecommendationService) logFailure(ctx context.Context, orderID string, priority domain.Priority, err error) {
	stage := ""
	var se *domain.StageError
	if errors.As(err, &se) {
		stage = string(se.Stage)
	}
	log := logging.FromContext(ctx)
	if errors.Is(err, domain.ErrUnexpected) {
		log.Error("recommendation failed", "order_id", orderID, "priority", priority, "stage", stage, "error", err)
		return
	}
	log.Info("recommendation rejected", "order_id", orderID, "priority", priority, "stage", stage, "error", err)
}

func validateOrder(order *domain.Order) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order %s has no items", domain.ErrInvalidInput, order.ID)
	}
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: order %s item %s has non-positive quantity", domain.ErrInvalidInput, order.ID, item.ProductID)
		}
	}
	if order.TotalWeightKg <= 0 {
		return fmt.Errorf("%w: order %s total weight must be positive", domain.ErrInvalidInput, order.ID)
	}
	if order.CustomerLocation == nil {
		return fmt.Errorf("%w: order %s has no customer location", domain.ErrInvalidInput, order.ID)
	}
	if err := order.CustomerLocation.Validate(); err != nil {
		return fmt.Errorf("customer location: %w", err)
	}
	return nil
}

func activeOnly(warehouses []domain.Warehouse) []domain.Warehouse {
	active := make([]domain.Warehouse, 0, len(warehouses))
	for _, w := range warehouses {
		if w.Active {
			active = append(active, w)
		}
	}
	return active
}

func recommendationKey(orderID string, priority domain.Priority) string {
	return fmt.Sprintf("reco:%s:%s", orderID, priority)
}
