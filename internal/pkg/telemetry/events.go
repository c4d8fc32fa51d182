package telemetry

// Business event names recorded on spans.
const (
	EventRecommendationServed = "business.recommendation_served"
	EventDistanceFallback     = "business.distance_fallback"
	EventInfeasibleRequest    = "business.infeasible_request"
	EventResultCacheHit       = "business.result_cache_hit"
)
