// README: Quote calculators for point-to-point journeys and hourly disposal hire.
package pricing

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/spf13/cast"

	"chauffeur/internal/config"
	"chauffeur/internal/logger"
	"chauffeur/internal/maps"
	"chauffeur/internal/types"
)

var (
	// ErrBelowMinimum means the rounded total fell under the minimum fare.
	ErrBelowMinimum = errors.New("quote below minimum fare")
	// ErrTooManyPassengers means the party exceeds the vehicle capacity.
	ErrTooManyPassengers = errors.New("passenger count exceeds vehicle capacity")
)

const (
	disposalMinHours = 8
	kmToMiles        = 0.621371
)

// congestionFlat is the flat disposal congestion surcharge in pence.
const congestionFlat = 1500

// Geo is the slice of the maps service the calculator needs.
type Geo interface {
	Geocode(ctx context.Context, address string) (maps.Place, error)
	Journey(ctx context.Context, pickupAddr, dropoffAddr string, pickupTime time.Time) (maps.Journey, error)
}

// Calculator turns quote requests into priced quotes. Stateless apart
// from its collaborators; safe for concurrent use.
type Calculator struct {
	geo       Geo
	rules     *RuleStore
	zones     *Detector
	settings  SettingsSource
	timeRules []TimeRule
	loc       *time.Location
	quote     config.QuoteConfig
	log       logger.ILogger
}

func NewCalculator(geo Geo, rules *RuleStore, zones *Detector, settings SettingsSource, loc *time.Location, quote config.QuoteConfig, log logger.ILogger) *Calculator {
	return &Calculator{
		geo:       geo,
		rules:     rules,
		zones:     zones,
		settings:  settings,
		timeRules: DefaultTimeRules(),
		loc:       loc,
		quote:     quote,
		log:       log,
	}
}

// CalculateQuote prices a point-to-point journey:
// base fare + distance charge + zone charges, scaled by the time-of-day
// multiplier, rounded to the configured increment.
func (c *Calculator) CalculateQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	start := time.Now()

	rule, err := c.rules.RuleFor(ctx, req.VehicleType)
	if err != nil {
		return nil, err
	}
	if req.Passengers > rule.MaxPassengers {
		return nil, ErrTooManyPassengers
	}

	journey, err := c.geo.Journey(ctx, req.PickupAddress, req.DropoffAddress, req.PickupTime)
	if err != nil {
		return nil, err
	}

	distanceCharge := rule.PerKmRate.MulFloat(journey.Leg.DistanceKm)
	zones := c.zones.Detect(ctx, journey.Pickup.Position, journey.Dropoff.Position)

	subtotal := rule.BaseFare.Add(distanceCharge).Add(zones.TotalCharge)
	multiplier, multiplierName := MultiplierFor(c.timeRules, req.PickupTime.In(c.loc))
	total := c.roundToIncrement(subtotal.MulFloat(multiplier))

	if err := c.checkBounds(total); err != nil {
		return nil, err
	}

	var zoneCharges []ZoneCharge
	for _, m := range zones.Zones {
		zoneCharges = append(zoneCharges, ZoneCharge{Name: m.Zone.Name, Kind: m.Zone.Kind, Charge: m.Zone.Charge})
	}

	displayDistance, unit := c.displayDistance(ctx, journey.Leg.DistanceKm)
	q := &Quote{
		BookingType:     BookingJourney,
		Pickup:          journey.Pickup,
		Dropoff:         journey.Dropoff,
		DistanceKm:      journey.Leg.DistanceKm,
		DisplayDistance: displayDistance,
		DistanceUnit:    unit,
		DurationMin:     journey.Leg.DurationMin,
		PickupTime:      req.PickupTime,
		VehicleClass:    rule.Class,
		Passengers:      req.Passengers,
		Pricing: Breakdown{
			BaseFare:           rule.BaseFare,
			DistanceCharge:     distanceCharge,
			ZoneCharges:        zoneCharges,
			ZoneTotal:          zones.TotalCharge,
			Subtotal:           subtotal,
			TimeMultiplier:     multiplier,
			TimeMultiplierName: multiplierName,
			Total:              total,
		},
		CalculatedAt:  time.Now(),
		CalculationMs: time.Since(start).Milliseconds(),
	}
	return q, nil
}

// CalculateDisposalQuote prices an hourly hire. Bookings shorter than
// the minimum are billed at the minimum rather than rejected.
func (c *Calculator) CalculateDisposalQuote(ctx context.Context, req DisposalRequest) (*Quote, error) {
	start := time.Now()

	rule, err := c.rules.RuleFor(ctx, req.VehicleType)
	if err != nil {
		return nil, err
	}
	if req.Passengers > rule.MaxPassengers {
		return nil, ErrTooManyPassengers
	}

	pickup, err := c.geo.Geocode(ctx, req.PickupAddress)
	if err != nil {
		return nil, err
	}

	hours := req.Hours
	if hours < disposalMinHours {
		hours = disposalMinHours
	}
	hourlyCharge := rule.HourlyRate.MulFloat(float64(hours))

	congestion := types.GBP(0)
	if req.IncludeCongestion {
		congestion = types.GBP(congestionFlat)
	}

	subtotal := hourlyCharge.Add(congestion)
	multiplier, multiplierName := MultiplierFor(c.timeRules, req.PickupTime.In(c.loc))
	total := c.roundToIncrement(subtotal.MulFloat(multiplier))

	if err := c.checkBounds(total); err != nil {
		return nil, err
	}

	q := &Quote{
		BookingType:  BookingDisposal,
		Pickup:       pickup,
		Hours:        hours,
		MinimumHours: disposalMinHours,
		PickupTime:   req.PickupTime,
		VehicleClass: rule.Class,
		Passengers:   req.Passengers,
		Pricing: Breakdown{
			HourlyRate:         rule.HourlyRate,
			HourlyCharge:       hourlyCharge,
			CongestionCharge:   congestion,
			Subtotal:           subtotal,
			TimeMultiplier:     multiplier,
			TimeMultiplierName: multiplierName,
			Total:              total,
		},
		CalculatedAt:  time.Now(),
		CalculationMs: time.Since(start).Milliseconds(),
	}
	return q, nil
}

// roundToIncrement rounds half-up to the configured increment so totals
// land on customer-friendly amounts.
func (c *Calculator) roundToIncrement(m types.Money) types.Money {
	inc := c.quote.RoundingIncrement
	if inc <= 0 {
		return m
	}
	units := int64(math.Floor(float64(m.Amount)/float64(inc) + 0.5))
	m.Amount = units * inc
	return m
}

func (c *Calculator) checkBounds(total types.Money) error {
	if total.Amount < c.quote.MinAmount {
		return ErrBelowMinimum
	}
	if total.Amount > c.quote.MaxAmount {
		c.log.Warning("quote exceeds maximum, flagging for review",
			logger.Int64("total_pence", total.Amount),
			logger.Int64("max_pence", c.quote.MaxAmount))
	}
	return nil
}

// displayDistance converts to miles when the settings document asks for
// it. Settings failures fall back to kilometres.
func (c *Calculator) displayDistance(ctx context.Context, km float64) (float64, string) {
	v, err := c.settings.Get(ctx, "quotes.distanceFormat")
	if err == nil && v != nil {
		if format, cerr := cast.ToStringE(v); cerr == nil && format == "miles" {
			return math.Round(km*kmToMiles*10) / 10, "miles"
		}
	}
	return math.Round(km*10) / 10, "km"
}
