// README: Pricing domain model: vehicle classes, rules, zones, time rules, quotes.
package pricing

import (
	"time"

	"chauffeur/internal/maps"
	"chauffeur/internal/types"
)

// VehicleClass is a canonical vehicle category key. All pricing rules
// are keyed by VehicleClass; raw input strings are normalised through
// the alias table first.
type VehicleClass string

const (
	ClassExecutiveSedan VehicleClass = "Executive Sedan"
	ClassLuxurySedan    VehicleClass = "Luxury Sedan"
	ClassMPVExecutive   VehicleClass = "MPV Executive"
	ClassLuxurySUV      VehicleClass = "Luxury SUV"
	ClassMinibus        VehicleClass = "Minibus"
)

// Rule is the per-class tariff. Immutable once fetched for a calculation.
type Rule struct {
	Class         VehicleClass
	BaseFare      types.Money
	PerKmRate     types.Money
	HourlyRate    types.Money
	MaxPassengers int
}

// ZoneKind classifies a surcharge region. Deduplication during journey
// detection happens per kind, not per zone identity.
type ZoneKind string

const (
	ZoneAirport    ZoneKind = "airport"
	ZoneCongestion ZoneKind = "congestion"
	ZoneULEZ       ZoneKind = "ulez"
	ZoneCustom     ZoneKind = "custom"
)

// ZoneSide says which journey endpoint a zone charge applies to.
type ZoneSide string

const (
	SidePickup  ZoneSide = "pickup"
	SideDropoff ZoneSide = "dropoff"
	SideBoth    ZoneSide = "both"
)

// Zone is a named geographic surcharge region. Exactly one of Polygon
// or Center should be set; zones with neither are skipped.
type Zone struct {
	ID        int64
	Name      string
	Kind      ZoneKind
	Charge    types.Money
	AppliesTo ZoneSide

	// Polygon is a closed ring of vertices for area zones.
	Polygon []types.Point
	// Center plus RadiusKm describe point zones (airport catchments).
	Center   *types.Point
	RadiusKm float64
}

// ZoneMatch is one zone detected at a journey endpoint.
type ZoneMatch struct {
	Zone       Zone     `json:"zone"`
	Side       ZoneSide `json:"side"`
	DistanceKm float64  `json:"distance_km,omitempty"`
}

// ZoneResult is the deduplicated outcome of journey zone detection.
type ZoneResult struct {
	Zones       []ZoneMatch `json:"zones"`
	TotalCharge types.Money `json:"total_charge"`
}

// TimeRule is one time-of-day multiplier band. Start and End are
// "HH:MM:SS"; Start > End means the band wraps past midnight.
type TimeRule struct {
	Name       string
	Multiplier float64
	Days       []time.Weekday
	Start      string
	End        string
	Priority   int
}

// BookingType distinguishes the two quote algorithms.
type BookingType string

const (
	BookingJourney  BookingType = "journey"
	BookingDisposal BookingType = "disposal"
)

// QuoteRequest is a point-to-point quote input.
type QuoteRequest struct {
	PickupAddress  string
	DropoffAddress string
	PickupTime     time.Time
	VehicleType    string
	Passengers     int
	Luggage        int
}

// DisposalRequest is an hourly-hire quote input. There is no dropoff.
type DisposalRequest struct {
	PickupAddress     string
	PickupTime        time.Time
	VehicleType       string
	Hours             int
	Passengers        int
	IncludeCongestion bool
}

// ZoneCharge is one line of the zone breakdown on a quote.
type ZoneCharge struct {
	Name   string      `json:"name"`
	Kind   ZoneKind    `json:"kind"`
	Charge types.Money `json:"charge"`
}

// Breakdown is the itemised pricing of a quote. Journey quotes populate
// the distance fields, disposal quotes the hourly fields.
type Breakdown struct {
	BaseFare       types.Money  `json:"base_fare,omitempty"`
	DistanceCharge types.Money  `json:"distance_charge,omitempty"`
	ZoneCharges    []ZoneCharge `json:"zone_charges,omitempty"`
	ZoneTotal      types.Money  `json:"zone_charge_total,omitempty"`

	HourlyRate       types.Money `json:"hourly_rate,omitempty"`
	HourlyCharge     types.Money `json:"hourly_charge,omitempty"`
	CongestionCharge types.Money `json:"congestion_charge,omitempty"`

	Subtotal           types.Money `json:"subtotal"`
	TimeMultiplier     float64     `json:"time_multiplier"`
	TimeMultiplierName string      `json:"time_multiplier_name"`
	Total              types.Money `json:"total_amount"`
}

// Quote is the computed result of one pricing run. Immutable once
// produced; recalculating yields a new Quote.
type Quote struct {
	BookingType BookingType `json:"booking_type"`

	Pickup  maps.Place `json:"pickup"`
	Dropoff maps.Place `json:"dropoff,omitempty"`

	DistanceKm      float64 `json:"distance_km,omitempty"`
	DisplayDistance float64 `json:"display_distance,omitempty"`
	DistanceUnit    string  `json:"distance_unit,omitempty"`
	DurationMin     int     `json:"duration_min,omitempty"`

	Hours        int `json:"hours,omitempty"`
	MinimumHours int `json:"minimum_hours,omitempty"`

	PickupTime   time.Time    `json:"pickup_datetime"`
	VehicleClass VehicleClass `json:"vehicle_type"`
	Passengers   int          `json:"passengers"`

	Pricing Breakdown `json:"pricing"`

	CalculatedAt  time.Time `json:"calculated_at"`
	CalculationMs int64     `json:"calculation_time_ms"`
}
