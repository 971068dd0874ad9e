// README: Google Maps geocoding and traffic-aware distance lookups.
package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"chauffeur/internal/types"
)

var (
	// ErrNoMatch means geocoding returned no usable result for the address.
	ErrNoMatch = errors.New("no geocoding match")
	// ErrNoRoute means no driving route exists between the two points.
	ErrNoRoute = errors.New("no route found")
)

// Place is a resolved journey endpoint.
type Place struct {
	Address          string      `json:"address"`
	FormattedAddress string      `json:"formatted_address"`
	Position         types.Point `json:"position"`
}

// Leg is the drivable distance and duration between two points.
type Leg struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
}

// Journey bundles both resolved endpoints with the leg between them.
type Journey struct {
	Pickup  Place `json:"pickup"`
	Dropoff Place `json:"dropoff"`
	Leg     Leg   `json:"leg"`
}

// GeoService handles interactions with the Google Maps API.
type GeoService struct {
	client *maps.Client
}

// NewGeoService creates a new GeoService with the given API key.
func NewGeoService(apiKey string) (*GeoService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeoService{client: client}, nil
}

// Geocode resolves a free-text address to coordinates, biased to the UK.
func (s *GeoService) Geocode(ctx context.Context, address string) (Place, error) {
	r := &maps.GeocodingRequest{
		Address: address,
		Region:  "uk",
	}
	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("geocode %q: %w", address, ErrNoMatch)
	}
	top := results[0]
	return Place{
		Address:          address,
		FormattedAddress: top.FormattedAddress,
		Position:         types.Point{Lat: top.Geometry.Location.Lat, Lng: top.Geometry.Location.Lng},
	}, nil
}

// Distance returns the driving distance and duration between two points.
// When departure is non-zero the result reflects predicted traffic at
// that time rather than current conditions.
func (s *GeoService) Distance(ctx context.Context, origin, dest types.Point, departure time.Time) (Leg, error) {
	r := &maps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", origin.Lat, origin.Lng)},
		Destinations: []string{fmt.Sprintf("%f,%f", dest.Lat, dest.Lng)},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	}
	if !departure.IsZero() && departure.After(time.Now()) {
		r.DepartureTime = fmt.Sprintf("%d", departure.Unix())
	}

	resp, err := s.client.DistanceMatrix(ctx, r)
	if err != nil {
		return Leg{}, fmt.Errorf("distance matrix: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return Leg{}, ErrNoRoute
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return Leg{}, fmt.Errorf("route status %s: %w", el.Status, ErrNoRoute)
	}

	dur := el.Duration
	if el.DurationInTraffic > 0 {
		dur = el.DurationInTraffic
	}
	return Leg{
		DistanceKm:  float64(el.Distance.Meters) / 1000,
		DurationMin: int((dur + time.Minute - 1) / time.Minute),
	}, nil
}

// Journey geocodes both addresses concurrently and then computes the
// driving leg between them using the pickup time for traffic prediction.
// Either geocode failure fails the whole journey.
func (s *GeoService) Journey(ctx context.Context, pickupAddr, dropoffAddr string, pickupTime time.Time) (Journey, error) {
	type geocodeResult struct {
		place Place
		err   error
	}
	pickupCh := make(chan geocodeResult, 1)
	dropoffCh := make(chan geocodeResult, 1)

	go func() {
		p, err := s.Geocode(ctx, pickupAddr)
		pickupCh <- geocodeResult{p, err}
	}()
	go func() {
		p, err := s.Geocode(ctx, dropoffAddr)
		dropoffCh <- geocodeResult{p, err}
	}()

	pickup := <-pickupCh
	dropoff := <-dropoffCh
	if pickup.err != nil {
		return Journey{}, pickup.err
	}
	if dropoff.err != nil {
		return Journey{}, dropoff.err
	}

	leg, err := s.Distance(ctx, pickup.place.Position, dropoff.place.Position, pickupTime)
	if err != nil {
		return Journey{}, err
	}

	return Journey{Pickup: pickup.place, Dropoff: dropoff.place, Leg: leg}, nil
}
