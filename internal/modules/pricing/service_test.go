package pricing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chauffeur/internal/config"
	"chauffeur/internal/logger"
	"chauffeur/internal/maps"
	"chauffeur/internal/types"
)

// Fixed coordinates: pickup in central London, dropoff well outside any
// test zone.
var (
	centralLondon = types.Point{Lat: 51.5074, Lng: -0.1278}
	cambridge     = types.Point{Lat: 52.2053, Lng: 0.1218}
)

type fakeGeo struct {
	distanceKm  float64
	durationMin int
	journeyErr  error
}

func (f *fakeGeo) Geocode(_ context.Context, address string) (maps.Place, error) {
	return maps.Place{Address: address, FormattedAddress: address + ", UK", Position: centralLondon}, nil
}

func (f *fakeGeo) Journey(_ context.Context, pickupAddr, dropoffAddr string, _ time.Time) (maps.Journey, error) {
	if f.journeyErr != nil {
		return maps.Journey{}, f.journeyErr
	}
	return maps.Journey{
		Pickup:  maps.Place{Address: pickupAddr, FormattedAddress: pickupAddr + ", UK", Position: centralLondon},
		Dropoff: maps.Place{Address: dropoffAddr, FormattedAddress: dropoffAddr + ", UK", Position: cambridge},
		Leg:     maps.Leg{DistanceKm: f.distanceKm, DurationMin: f.durationMin},
	}, nil
}

type fakeSettings struct {
	doc map[string]any
}

func (f *fakeSettings) Get(_ context.Context, path string) (any, error) {
	var v any = f.doc
	for _, key := range strings.Split(path, ".") {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, nil
		}
		v = m[key]
	}
	return v, nil
}

type errZoneSource struct{}

func (errZoneSource) ZonesFor(context.Context, ZoneSide) ([]Zone, error) {
	return nil, errors.New("zone db down")
}

// congestionZone is a polygon covering central London, applying to both
// journey sides.
func congestionZone() Zone {
	return Zone{
		ID: 1, Name: "Congestion Charge Zone", Kind: ZoneCongestion,
		Charge: types.GBP(1500), AppliesTo: SideBoth,
		Polygon: []types.Point{
			{Lat: 51.48, Lng: -0.16},
			{Lat: 51.48, Lng: -0.08},
			{Lat: 51.54, Lng: -0.08},
			{Lat: 51.54, Lng: -0.16},
		},
	}
}

func quoteConfig() config.QuoteConfig {
	return config.QuoteConfig{
		RoundingIncrement: 50,     // £0.50
		MinAmount:         3000,   // £30
		MaxAmount:         500000, // £5000
		ValidityHours:     48,
	}
}

func newTestCalculator(geo Geo, zones ZoneSource, doc map[string]any) *Calculator {
	log := logger.Nop()
	settings := &fakeSettings{doc: doc}
	rules := NewRuleStore(settings, log)
	detector := NewDetector(zones, log)
	return NewCalculator(geo, rules, detector, settings, time.UTC, quoteConfig(), log)
}

func TestCalculator_CalculateQuote(t *testing.T) {
	// Monday 2026-03-02: 12:00 Standard, 08:00 Peak Morning (1.3x).
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	peakTime := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		zones     ZoneSource
		req       QuoteRequest
		wantPence int64
		wantMult  float64
	}{
		{
			name:  "standard journey, no zones",
			zones: &StaticZoneSource{},
			req: QuoteRequest{
				PickupAddress:  "Mayfair",
				DropoffAddress: "Cambridge",
				PickupTime:     standardTime,
				VehicleType:    "executive-sedan",
				Passengers:     2,
			},
			// 6000 base + 25km * 250 = 12250
			wantPence: 12250,
			wantMult:  1.0,
		},
		{
			name:  "congestion zone on pickup",
			zones: &StaticZoneSource{Zones: []Zone{congestionZone()}},
			req: QuoteRequest{
				PickupAddress:  "Mayfair",
				DropoffAddress: "Cambridge",
				PickupTime:     standardTime,
				VehicleType:    "executive-sedan",
				Passengers:     2,
			},
			// 12250 + 1500 zone = 13750
			wantPence: 13750,
			wantMult:  1.0,
		},
		{
			name:  "peak morning multiplier with rounding",
			zones: &StaticZoneSource{Zones: []Zone{congestionZone()}},
			req: QuoteRequest{
				PickupAddress:  "Mayfair",
				DropoffAddress: "Cambridge",
				PickupTime:     peakTime,
				VehicleType:    "executive-sedan",
				Passengers:     2,
			},
			// 13750 * 1.3 = 17875, rounds half-up to 17900
			wantPence: 17900,
			wantMult:  1.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := newTestCalculator(&fakeGeo{distanceKm: 25, durationMin: 40}, tt.zones, nil)

			q, err := calc.CalculateQuote(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("CalculateQuote: %v", err)
			}
			if q.Pricing.Total.Amount != tt.wantPence {
				t.Errorf("total = %d pence, want %d", q.Pricing.Total.Amount, tt.wantPence)
			}
			if q.Pricing.TimeMultiplier != tt.wantMult {
				t.Errorf("multiplier = %v, want %v", q.Pricing.TimeMultiplier, tt.wantMult)
			}
			if q.VehicleClass != ClassExecutiveSedan {
				t.Errorf("vehicle class = %q, want %q", q.VehicleClass, ClassExecutiveSedan)
			}
			if q.BookingType != BookingJourney {
				t.Errorf("booking type = %q, want journey", q.BookingType)
			}
		})
	}
}

func TestCalculator_CalculateQuote_ZoneDedupe(t *testing.T) {
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	// Two congestion zones both covering the pickup: same kind, only the
	// first may charge.
	second := congestionZone()
	second.ID = 2
	second.Name = "Inner Ring"
	zones := &StaticZoneSource{Zones: []Zone{congestionZone(), second}}

	calc := newTestCalculator(&fakeGeo{distanceKm: 25, durationMin: 40}, zones, nil)
	q, err := calc.CalculateQuote(context.Background(), QuoteRequest{
		PickupAddress:  "Mayfair",
		DropoffAddress: "Cambridge",
		PickupTime:     standardTime,
		VehicleType:    "Executive Sedan",
		Passengers:     1,
	})
	if err != nil {
		t.Fatalf("CalculateQuote: %v", err)
	}
	if len(q.Pricing.ZoneCharges) != 1 {
		t.Fatalf("zone charges = %d, want 1", len(q.Pricing.ZoneCharges))
	}
	if q.Pricing.ZoneCharges[0].Name != "Congestion Charge Zone" {
		t.Errorf("kept zone = %q, want first declared", q.Pricing.ZoneCharges[0].Name)
	}
	// 12250 + one 1500 charge
	if q.Pricing.Total.Amount != 13750 {
		t.Errorf("total = %d pence, want 13750", q.Pricing.Total.Amount)
	}
}

func TestCalculator_CalculateQuote_ZoneStoreFailureDegrades(t *testing.T) {
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	calc := newTestCalculator(&fakeGeo{distanceKm: 25, durationMin: 40}, errZoneSource{}, nil)
	q, err := calc.CalculateQuote(context.Background(), QuoteRequest{
		PickupAddress:  "Mayfair",
		DropoffAddress: "Cambridge",
		PickupTime:     standardTime,
		VehicleType:    "executive-sedan",
		Passengers:     2,
	})
	if err != nil {
		t.Fatalf("CalculateQuote: %v", err)
	}
	// Priced without zone charges: 6000 + 6250 = 12250
	if q.Pricing.Total.Amount != 12250 {
		t.Errorf("total = %d pence, want 12250", q.Pricing.Total.Amount)
	}
	if len(q.Pricing.ZoneCharges) != 0 {
		t.Errorf("zone charges = %d, want 0", len(q.Pricing.ZoneCharges))
	}
}

func TestCalculator_CalculateQuote_BelowMinimum(t *testing.T) {
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	// Settings override drops the tariff low enough that a short hop
	// falls under the £30 floor.
	doc := map[string]any{
		"pricingRules": map[string]any{
			"executiveSedan": map[string]any{
				"baseFare": 10.0, "perKmRate": 0.5,
			},
		},
	}
	calc := newTestCalculator(&fakeGeo{distanceKm: 1, durationMin: 5}, &StaticZoneSource{}, doc)

	_, err := calc.CalculateQuote(context.Background(), QuoteRequest{
		PickupAddress:  "A",
		DropoffAddress: "B",
		PickupTime:     standardTime,
		VehicleType:    "executive-sedan",
		Passengers:     1,
	})
	if !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("err = %v, want ErrBelowMinimum", err)
	}
}

func TestCalculator_CalculateQuote_InputErrors(t *testing.T) {
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	calc := newTestCalculator(&fakeGeo{distanceKm: 25}, &StaticZoneSource{}, nil)

	_, err := calc.CalculateQuote(context.Background(), QuoteRequest{
		PickupAddress: "A", DropoffAddress: "B", PickupTime: standardTime,
		VehicleType: "hovercraft", Passengers: 1,
	})
	if !errors.Is(err, ErrUnknownVehicleType) {
		t.Errorf("unknown vehicle: err = %v, want ErrUnknownVehicleType", err)
	}

	// Executive Sedan seats 3.
	_, err = calc.CalculateQuote(context.Background(), QuoteRequest{
		PickupAddress: "A", DropoffAddress: "B", PickupTime: standardTime,
		VehicleType: "executive-sedan", Passengers: 4,
	})
	if !errors.Is(err, ErrTooManyPassengers) {
		t.Errorf("capacity: err = %v, want ErrTooManyPassengers", err)
	}
}

func TestCalculator_CalculateQuote_MilesDisplay(t *testing.T) {
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	doc := map[string]any{
		"quotes": map[string]any{"distanceFormat": "miles"},
	}
	calc := newTestCalculator(&fakeGeo{distanceKm: 25, durationMin: 40}, &StaticZoneSource{}, doc)

	q, err := calc.CalculateQuote(context.Background(), QuoteRequest{
		PickupAddress: "A", DropoffAddress: "B", PickupTime: standardTime,
		VehicleType: "executive-sedan", Passengers: 1,
	})
	if err != nil {
		t.Fatalf("CalculateQuote: %v", err)
	}
	if q.DistanceUnit != "miles" {
		t.Errorf("unit = %q, want miles", q.DistanceUnit)
	}
	// 25 km * 0.621371 = 15.534, displayed to one decimal
	if q.DisplayDistance != 15.5 {
		t.Errorf("display distance = %v, want 15.5", q.DisplayDistance)
	}
	if q.DistanceKm != 25 {
		t.Errorf("raw km = %v, want 25 regardless of display unit", q.DistanceKm)
	}
}

func TestCalculator_CalculateDisposalQuote(t *testing.T) {
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	calc := newTestCalculator(&fakeGeo{}, &StaticZoneSource{}, nil)

	// 4 requested hours are raised to the 8 hour minimum.
	q, err := calc.CalculateDisposalQuote(context.Background(), DisposalRequest{
		PickupAddress:     "The Savoy",
		PickupTime:        standardTime,
		VehicleType:       "executive-sedan",
		Hours:             4,
		Passengers:        2,
		IncludeCongestion: true,
	})
	if err != nil {
		t.Fatalf("CalculateDisposalQuote: %v", err)
	}
	if q.Hours != 8 {
		t.Errorf("hours = %d, want raised to 8", q.Hours)
	}
	// 8h * 5000 = 40000, + 1500 congestion = 41500
	if q.Pricing.Total.Amount != 41500 {
		t.Errorf("total = %d pence, want 41500", q.Pricing.Total.Amount)
	}
	if q.BookingType != BookingDisposal {
		t.Errorf("booking type = %q, want disposal", q.BookingType)
	}
}

func TestCalculator_CalculateDisposalQuote_NoCongestion(t *testing.T) {
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	calc := newTestCalculator(&fakeGeo{}, &StaticZoneSource{}, nil)

	q, err := calc.CalculateDisposalQuote(context.Background(), DisposalRequest{
		PickupAddress: "The Savoy",
		PickupTime:    standardTime,
		VehicleType:   "executive-sedan",
		Hours:         10,
		Passengers:    2,
	})
	if err != nil {
		t.Fatalf("CalculateDisposalQuote: %v", err)
	}
	// 10h * 5000 = 50000, no congestion
	if q.Pricing.Total.Amount != 50000 {
		t.Errorf("total = %d pence, want 50000", q.Pricing.Total.Amount)
	}
	if !q.Pricing.CongestionCharge.IsZero() {
		t.Errorf("congestion = %v, want zero", q.Pricing.CongestionCharge)
	}
}

func TestCalculator_JourneyErrorPropagates(t *testing.T) {
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	wantErr := errors.New("maps unavailable")
	calc := newTestCalculator(&fakeGeo{journeyErr: wantErr}, &StaticZoneSource{}, nil)

	_, err := calc.CalculateQuote(context.Background(), QuoteRequest{
		PickupAddress: "A", DropoffAddress: "B", PickupTime: standardTime,
		VehicleType: "executive-sedan", Passengers: 1,
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped maps error", err)
	}
}

func TestFormatQuoteForCustomer(t *testing.T) {
	standardTime := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	calc := newTestCalculator(&fakeGeo{distanceKm: 25, durationMin: 40}, &StaticZoneSource{Zones: []Zone{congestionZone()}}, nil)

	q, err := calc.CalculateQuote(context.Background(), QuoteRequest{
		PickupAddress: "Mayfair", DropoffAddress: "Cambridge", PickupTime: standardTime,
		VehicleType: "executive-sedan", Passengers: 2,
	})
	if err != nil {
		t.Fatalf("CalculateQuote: %v", err)
	}

	msg := FormatQuoteForCustomer(q, 48)
	for _, want := range []string{
		"Quote Ready",
		"From: Mayfair, UK",
		"To: Cambridge, UK",
		"Vehicle: Executive Sedan",
		"Congestion Charge Zone: £15.00",
		"TOTAL:            £137.50",
		"Valid for 48 hours",
		"Reply YES to confirm booking",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestCalculator_RoundToIncrement(t *testing.T) {
	calc := newTestCalculator(&fakeGeo{distanceKm: 10, durationMin: 20}, &StaticZoneSource{}, nil)

	// For a £0.50 increment half-up rounding moves an amount by at
	// most -24p..+25p, always lands on a multiple, and is idempotent.
	for pence := int64(0); pence <= 20000; pence += 7 {
		got := calc.roundToIncrement(types.GBP(pence))
		if got.Amount%50 != 0 {
			t.Fatalf("round(%d) = %d, not a multiple of 50", pence, got.Amount)
		}
		if diff := got.Amount - pence; diff < -24 || diff > 25 {
			t.Fatalf("round(%d) = %d, moved by %dp", pence, got.Amount, diff)
		}
		if again := calc.roundToIncrement(got); again.Amount != got.Amount {
			t.Fatalf("round(%d) = %d but rounding again gives %d", pence, got.Amount, again.Amount)
		}
	}

	// Exactly halfway between increments rounds up.
	if got := calc.roundToIncrement(types.GBP(12225)); got.Amount != 12250 {
		t.Errorf("round(12225) = %d, want 12250", got.Amount)
	}
	// A zero increment leaves amounts untouched.
	calc.quote.RoundingIncrement = 0
	if got := calc.roundToIncrement(types.GBP(12233)); got.Amount != 12233 {
		t.Errorf("round with increment 0 = %d, want 12233", got.Amount)
	}
}
