// README: Zone store backed by PostgreSQL plus a static in-memory source.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chauffeur/internal/types"
)

type ZoneStore struct {
	db *pgxpool.Pool
}

func NewZoneStore(db *pgxpool.Pool) *ZoneStore {
	return &ZoneStore{db: db}
}

// ZonesFor loads active zones applying to the given side. Zones marked
// "both" always qualify.
func (s *ZoneStore) ZonesFor(ctx context.Context, side ZoneSide) ([]Zone, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, zone_type, charge_amount, applies_to, coordinates
        FROM zone_charges
        WHERE active = TRUE
          AND (applies_to = $1 OR applies_to = 'both')`,
		string(side),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []Zone
	for rows.Next() {
		var (
			z           Zone
			kind        string
			appliesTo   string
			chargePence int64
			coordinates []byte
		)
		if err := rows.Scan(&z.ID, &z.Name, &kind, &chargePence, &appliesTo, &coordinates); err != nil {
			return nil, err
		}
		z.Kind = ZoneKind(kind)
		z.AppliesTo = ZoneSide(appliesTo)
		z.Charge = types.GBP(chargePence)
		if err := decodeGeometry(&z, coordinates); err != nil {
			return nil, fmt.Errorf("zone %d %q: %w", z.ID, z.Name, err)
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// zoneGeometry is the JSON stored in zone_charges.coordinates. Polygon
// zones carry a vertex ring as [lng, lat] pairs; point zones carry a
// center and radius in km.
type zoneGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates,omitempty"`
	Center      []float64   `json:"center,omitempty"`
	RadiusKm    float64     `json:"radiusKm,omitempty"`
}

func decodeGeometry(z *Zone, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var g zoneGeometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return err
	}
	switch g.Type {
	case "polygon":
		for _, pair := range g.Coordinates {
			if len(pair) < 2 {
				return fmt.Errorf("polygon vertex needs [lng, lat], got %v", pair)
			}
			z.Polygon = append(z.Polygon, types.Point{Lng: pair[0], Lat: pair[1]})
		}
	case "point":
		if len(g.Center) < 2 {
			return fmt.Errorf("point zone needs [lng, lat] center, got %v", g.Center)
		}
		z.Center = &types.Point{Lng: g.Center[0], Lat: g.Center[1]}
		z.RadiusKm = g.RadiusKm
	default:
		return fmt.Errorf("unknown geometry type %q", g.Type)
	}
	return nil
}

// StaticZoneSource serves a fixed zone list. Used in tests and when
// running without a database.
type StaticZoneSource struct {
	Zones []Zone
}

func (s *StaticZoneSource) ZonesFor(_ context.Context, side ZoneSide) ([]Zone, error) {
	var out []Zone
	for _, z := range s.Zones {
		if z.AppliesTo == side || z.AppliesTo == SideBoth {
			out = append(out, z)
		}
	}
	return out, nil
}
