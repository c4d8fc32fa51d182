package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

func TestSelectMode_Boundaries(t *testing.T) {
	tests := []struct {
		distance float64
		want     string
	}{
		{0, domain.ModeMiniVan},
		{99.9, domain.ModeMiniVan},
		{100.0, domain.ModeTruck},
		{499.99, domain.ModeTruck},
		{500, domain.ModeAeroplane},
		{12000, domain.ModeAeroplane},
	}
	for _, tt := range tests {
		if got := domain.SelectMode(tt.distance).Code; got != tt.want {
			t.Errorf("SelectMode(%v) = %s, want %s", tt.distance, got, tt.want)
		}
	}
}

func TestCatalog_ContiguousFromZero(t *testing.T) {
	modes := domain.TransportModes
	if modes[0].MinDistanceKm != 0 {
		t.Fatalf("first tier must start at 0, got %v", modes[0].MinDistanceKm)
	}
	for i := 1; i < len(modes); i++ {
		if modes[i].MinDistanceKm != modes[i-1].MaxDistanceKm {
			t.Errorf("gap between %s and %s", modes[i-1].Code, modes[i].Code)
		}
	}
	if !math.IsInf(modes[len(modes)-1].MaxDistanceKm, 1) {
		t.Error("last tier must be unbounded")
	}
}

func TestModeApplies(t *testing.T) {
	truck, _ := domain.LookupMode("truck")
	if domain.ModeApplies(truck, 99.99) {
		t.Error("truck must not apply below its minimum")
	}
	if !domain.ModeApplies(truck, 100) {
		t.Error("truck minimum is inclusive")
	}
	if domain.ModeApplies(truck, 500) {
		t.Error("truck maximum is exclusive")
	}
}

func TestShippingCostAndHours(t *testing.T) {
	van, err := domain.LookupMode(domain.ModeMiniVan)
	if err != nil {
		t.Fatal(err)
	}
	if got := domain.ShippingCost(van, 50, 10); got != 1500 {
		t.Errorf("expected cost 1500, got %v", got)
	}
	// 50 km at 40 km/h = 1.25h + 2h handling = 3.25 -> 3.3
	if got := domain.EstimateHours(van, 50); got != 3.3 {
		t.Errorf("expected 3.3 hours, got %v", got)
	}
}

func TestLookupMode_Unknown(t *testing.T) {
	_, err := domain.LookupMode("bicycle")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseDeliverySpeed(t *testing.T) {
	s, err := domain.ParseDeliverySpeed(" EXPRESS ")
	if err != nil {
		t.Fatal(err)
	}
	if s.Code != domain.SpeedExpress {
		t.Errorf("expected express, got %s", s.Code)
	}
	if got := domain.AdditionalCharge(s, 10); got != 22 {
		t.Errorf("expected 22, got %v", got)
	}

	s, err = domain.ParseDeliverySpeed("")
	if err != nil || s.Code != domain.SpeedStandard {
		t.Errorf("expected standard default, got %v, %v", s.Code, err)
	}

	if _, err := domain.ParseDeliverySpeed("overnight"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParsePriority(t *testing.T) {
	p, err := domain.ParsePriority("speed")
	if err != nil || p != domain.PrioritySpeed {
		t.Errorf("expected SPEED, got %v, %v", p, err)
	}
	p, err = domain.ParsePriority("")
	if err != nil || p != domain.PriorityBalanced {
		t.Errorf("expected BALANCED default, got %v, %v", p, err)
	}
	if _, err := domain.ParsePriority("cheapest"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWeightsSumToOne(t *testing.T) {
	for _, p := range domain.Priorities {
		w := domain.WeightsFor(p)
		if sum := w.Cost + w.Time + w.Distance; math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s weights sum to %v", p, sum)
		}
	}
}

func TestCoordinateValidate(t *testing.T) {
	if err := (domain.Coordinate{Lat: 12.97, Lng: 77.59}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := []domain.Coordinate{
		{Lat: math.NaN(), Lng: 0},
		{Lat: 91, Lng: 0},
		{Lat: 0, Lng: -181},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for %+v, got %v", c, err)
		}
	}
}

func TestFailAt_MarksUnexpected(t *testing.T) {
	err := domain.FailAt(domain.StageFetching, errors.New("conn reset"))
	if !errors.Is(err, domain.ErrUnexpected) {
		t.Errorf("expected ErrUnexpected, got %v", err)
	}
	var se *domain.StageError
	if !errors.As(err, &se) || se.Stage != domain.StageFetching {
		t.Errorf("expected fetching stage, got %v", err)
	}

	err = domain.FailAt(domain.StageSimulating, domain.ErrInfeasible)
	if !errors.Is(err, domain.ErrInfeasible) || errors.Is(err, domain.ErrUnexpected) {
		t.Errorf("expected infeasible only, got %v", err)
	}
}
