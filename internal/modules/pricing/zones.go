// README: Zone detection: matches journey endpoints against charge zones.
package pricing

import (
	"context"

	"chauffeur/internal/logger"
	"chauffeur/internal/types"
)

// ZoneSource loads the active zones that can apply to a given journey side.
type ZoneSource interface {
	ZonesFor(ctx context.Context, side ZoneSide) ([]Zone, error)
}

// Detector matches journey endpoints against configured charge zones.
// Zone detection is best-effort: a failing source degrades to no zone
// charges rather than failing the quote.
type Detector struct {
	zones ZoneSource
	log   logger.ILogger
}

func NewDetector(zones ZoneSource, log logger.ILogger) *Detector {
	return &Detector{zones: zones, log: log}
}

// Detect evaluates both endpoints concurrently and returns the matched
// zones with duplicates by kind removed, keeping the first match of each
// kind in pickup-then-dropoff order.
func (d *Detector) Detect(ctx context.Context, pickup, dropoff types.Point) ZoneResult {
	type sideResult struct {
		matches []ZoneMatch
		err     error
	}

	pickupCh := make(chan sideResult, 1)
	dropoffCh := make(chan sideResult, 1)

	go func() {
		m, err := d.detectSide(ctx, SidePickup, pickup)
		pickupCh <- sideResult{m, err}
	}()
	go func() {
		m, err := d.detectSide(ctx, SideDropoff, dropoff)
		dropoffCh <- sideResult{m, err}
	}()

	pr := <-pickupCh
	dr := <-dropoffCh

	var matches []ZoneMatch
	for _, r := range []sideResult{pr, dr} {
		if r.err != nil {
			d.log.Error("zone detection failed, continuing without zone charges", logger.Error(r.err))
			continue
		}
		matches = append(matches, r.matches...)
	}

	result := ZoneResult{Zones: dedupeByKind(matches), TotalCharge: types.GBP(0)}
	for _, m := range result.Zones {
		result.TotalCharge = result.TotalCharge.Add(m.Zone.Charge)
	}
	return result
}

func (d *Detector) detectSide(ctx context.Context, side ZoneSide, p types.Point) ([]ZoneMatch, error) {
	zones, err := d.zones.ZonesFor(ctx, side)
	if err != nil {
		return nil, err
	}
	var matches []ZoneMatch
	for _, z := range zones {
		if zoneContains(z, p) {
			matches = append(matches, ZoneMatch{Zone: z, Side: side})
		}
	}
	return matches, nil
}

// zoneContains checks polygon zones by ray casting and point-radius zones
// by haversine distance. A zone with neither geometry never matches.
func zoneContains(z Zone, p types.Point) bool {
	if len(z.Polygon) >= 3 {
		return pointInPolygon(p, z.Polygon)
	}
	if z.Center != nil {
		radius := z.RadiusKm
		if radius <= 0 {
			radius = defaultAirportRadiusKm
		}
		return haversineKm(*z.Center, p) <= radius
	}
	return false
}

const defaultAirportRadiusKm = 5.0

// dedupeByKind keeps the first match of each zone kind so a journey
// entering the same charge area twice is billed once.
func dedupeByKind(matches []ZoneMatch) []ZoneMatch {
	seen := make(map[ZoneKind]bool, len(matches))
	out := matches[:0]
	for _, m := range matches {
		if seen[m.Zone.Kind] {
			continue
		}
		seen[m.Zone.Kind] = true
		out = append(out, m)
	}
	return out
}
