package http

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
)

// recommendationRequest is the body of POST /v1/logistics/recommendation and /simulate.
type recommendationRequest struct {
	OrderID  string `json:"orderId"`
	Priority string `json:"priority"`
}

// calculateRequest is the body of POST /v1/shipping-charge/calculate.
type calculateRequest struct {
	SellerID      string `json:"sellerId"`
	CustomerID    string `json:"customerId"`
	DeliverySpeed string `json:"deliverySpeed"`
}

// TransportModeView renders a catalog row. An unbounded tier has a null max.
type TransportModeView struct {
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	MinDistanceKm   float64  `json:"minDistanceKm"`
	MaxDistanceKm   *float64 `json:"maxDistanceKm"`
	RatePerKmPerKg  float64  `json:"ratePerKmPerKg"`
	AverageSpeedKmh float64  `json:"averageSpeedKmh"`
}

// DistanceHandler computes the distance between two coordinates.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		src, err := coordinateQuery(c, "sourceLat", "sourceLng")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		dst, err := coordinateQuery(c, "destLat", "destLng")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		mode, err := domain.ParseDistanceMode(c.Query("mode", deps.DistanceMode))
		if err != nil {
			return errFromDomain(c, err)
		}

		res, err := deps.Distance.Distance(c.UserContext(), src, dst, mode)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(res)
	}
}

// RecommendationHandler ranks every feasible (warehouse, mode) pair for an order.
func RecommendationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req recommendationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.OrderID) == "" {
			return errBadRequest(c, "orderId is required")
		}

		priority, err := domain.ParsePriority(req.Priority)
		if err != nil {
			return errFromDomain(c, err)
		}

		result, err := deps.Recommendations.Recommend(c.UserContext(), req.OrderID, priority)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(result)
	}
}

// InvalidateRecommendationHandler drops cached recommendations for an order and
// tells other replicas to do the same.
func InvalidateRecommendationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID := c.Params("orderId")
		ctx := c.UserContext()

		if err := deps.Recommendations.Invalidate(ctx, orderID); err != nil {
			return errFromDomain(c, err)
		}
		if deps.OrderEvents != nil {
			if err := deps.OrderEvents.PublishOrderUpdated(ctx, orderID); err != nil {
				logging.FromContext(ctx).Warn("order updated event not published",
					"order_id", orderID,
					"error", err,
				)
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SimulateHandler compares every transport mode from the seller's nearest warehouse.
func SimulateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req recommendationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.OrderID) == "" {
			return errBadRequest(c, "orderId is required")
		}

		objective, err := domain.ParseSimulationObjective(req.Priority)
		if err != nil {
			return errFromDomain(c, err)
		}

		result, err := deps.Simulations.Simulate(c.UserContext(), req.OrderID, objective)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(result)
	}
}

// NearestWarehouseHandler returns the active warehouse closest to a seller.
func NearestWarehouseHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nearest, err := deps.Warehouses.FindNearest(c.UserContext(), c.Query("sellerId"), c.Query("productId"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(nearest)
	}
}

// ShippingChargeHandler quotes shipping from a warehouse to a customer.
func ShippingChargeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		warehouseID := c.Query("warehouseId")
		customerID := c.Query("customerId")
		if warehouseID == "" || customerID == "" {
			return errBadRequest(c, "warehouseId and customerId are required")
		}

		quote, err := deps.Charges.Quote(c.UserContext(), warehouseID, customerID, c.Query("deliverySpeed"), c.Query("productId"))
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("Cache-Control", "private, max-age=60")
		return c.JSON(quote)
	}
}

// CalculateShippingChargeHandler quotes shipping from the seller's nearest warehouse.
func CalculateShippingChargeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req calculateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.SellerID == "" || req.CustomerID == "" {
			return errBadRequest(c, "sellerId and customerId are required")
		}

		quote, err := deps.Charges.Calculate(c.UserContext(), req.SellerID, req.CustomerID, req.DeliverySpeed)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(quote)
	}
}

// OrderShippingHandler estimates charge and delivery time for a stored order.
func OrderShippingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		est, err := deps.OrderShipping.Estimate(c.UserContext(), c.Params("id"), c.Query("deliverySpeed"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(est)
	}
}

// ShippingMetricsHandler returns the in-process shipping request counters.
func ShippingMetricsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Recorder == nil {
			return errInternal(c, "metrics recorder not available")
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(deps.Recorder.Snapshot())
	}
}

// TransportModesHandler lists the transport catalog.
func TransportModesHandler() fiber.Handler {
	views := transportModeViews()
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(views)
	}
}

func transportModeViews() []TransportModeView {
	views := make([]TransportModeView, 0, len(domain.TransportModes))
	for _, m := range domain.TransportModes {
		v := TransportModeView{
			Code:            m.Code,
			Name:            m.Name,
			MinDistanceKm:   m.MinDistanceKm,
			RatePerKmPerKg:  m.RatePerKmPerKg,
			AverageSpeedKmh: m.AverageSpeedKmh,
		}
		if !math.IsInf(m.MaxDistanceKm, 1) {
			limit := m.MaxDistanceKm
			v.MaxDistanceKm = &limit
		}
		views = append(views, v)
	}
	return views
}

// coordinateQuery reads a lat/lng pair from the query string. Range checks are
// left to the distance engine.
func coordinateQuery(c *fiber.Ctx, latKey, lngKey string) (domain.Coordinate, error) {
	rawLat, rawLng := c.Query(latKey), c.Query(lngKey)
	if rawLat == "" || rawLng == "" {
		return domain.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, latKey+" and "+lngKey+" are required")
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return domain.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, latKey+" must be a number")
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return domain.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, lngKey+" must be a number")
	}
	return domain.Coordinate{Lat: lat, Lng: lng}, nil
}
