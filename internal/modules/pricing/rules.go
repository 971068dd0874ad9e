// README: Pricing rule store with settings overrides and cached defaults.
package pricing

import (
	"context"
	"sync"

	"github.com/spf13/cast"

	"chauffeur/internal/logger"
	"chauffeur/internal/types"
)

// defaultRules are the hard-coded tariffs used when the settings source
// is missing, unreachable, or has invalid fields. Amounts in pence.
var defaultRules = map[VehicleClass]Rule{
	ClassExecutiveSedan: {Class: ClassExecutiveSedan, BaseFare: types.GBP(6000), PerKmRate: types.GBP(250), HourlyRate: types.GBP(5000), MaxPassengers: 3},
	ClassLuxurySedan:    {Class: ClassLuxurySedan, BaseFare: types.GBP(8000), PerKmRate: types.GBP(300), HourlyRate: types.GBP(6000), MaxPassengers: 2},
	ClassMPVExecutive:   {Class: ClassMPVExecutive, BaseFare: types.GBP(10000), PerKmRate: types.GBP(350), HourlyRate: types.GBP(6000), MaxPassengers: 6},
	ClassLuxurySUV:      {Class: ClassLuxurySUV, BaseFare: types.GBP(9000), PerKmRate: types.GBP(320), HourlyRate: types.GBP(7000), MaxPassengers: 3},
	ClassMinibus:        {Class: ClassMinibus, BaseFare: types.GBP(12000), PerKmRate: types.GBP(400), HourlyRate: types.GBP(6000), MaxPassengers: 8},
}

// settingsRuleKeys maps each class to its key in the settings document's
// pricingRules section (camelCase keys set by the admin dashboard).
var settingsRuleKeys = map[VehicleClass]string{
	ClassExecutiveSedan: "executiveSedan",
	ClassLuxurySedan:    "luxurySedan",
	ClassMPVExecutive:   "mpvExecutive",
	ClassLuxurySUV:      "luxurySUV",
	ClassMinibus:        "minibus",
}

// SettingsSource is the slice of the settings service the rule store needs.
type SettingsSource interface {
	Get(ctx context.Context, path string) (any, error)
}

// RuleStore resolves pricing rules by vehicle class. Rules are loaded
// from settings once and cached; Invalidate forces a reload on the next
// lookup. Readers and invalidation may race; an in-flight calculation
// keeps the rule set it started with.
type RuleStore struct {
	settings SettingsSource
	log      logger.ILogger

	mu     sync.RWMutex
	cached map[VehicleClass]Rule
}

func NewRuleStore(settings SettingsSource, log logger.ILogger) *RuleStore {
	return &RuleStore{settings: settings, log: log}
}

// RuleFor returns the tariff for a raw vehicle-type string after alias
// normalisation. Returns ErrUnknownVehicleType for unmapped input.
func (s *RuleStore) RuleFor(ctx context.Context, vehicleType string) (Rule, error) {
	class, err := Canonicalize(vehicleType)
	if err != nil {
		return Rule{}, err
	}

	rules := s.active(ctx)
	rule, ok := rules[class]
	if !ok {
		// Alias table invariant: every canonical class has a rule.
		return Rule{}, ErrUnknownVehicleType
	}
	return rule, nil
}

// Invalidate drops the cached rule set; the next lookup reloads from settings.
func (s *RuleStore) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	s.log.Info("pricing rules cache cleared")
}

func (s *RuleStore) active(ctx context.Context) map[VehicleClass]Rule {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached
	}

	loaded := s.load(ctx)
	s.mu.Lock()
	s.cached = loaded
	s.mu.Unlock()
	return loaded
}

func (s *RuleStore) load(ctx context.Context) map[VehicleClass]Rule {
	rules := make(map[VehicleClass]Rule, len(defaultRules))
	for class, def := range defaultRules {
		rules[class] = def
	}

	raw, err := s.settings.Get(ctx, "pricingRules")
	if err != nil {
		s.log.Error("loading pricing rules from settings failed, using defaults", logger.Error(err))
		return rules
	}
	section, ok := raw.(map[string]any)
	if !ok {
		return rules
	}

	for class, key := range settingsRuleKeys {
		entry, ok := section[key].(map[string]any)
		if !ok {
			continue
		}
		rule := rules[class]
		rule.BaseFare = moneyField(entry, "baseFare", rule.BaseFare)
		rule.PerKmRate = moneyField(entry, "perKmRate", rule.PerKmRate)
		rule.HourlyRate = moneyField(entry, "hourlyRate", rule.HourlyRate)
		rules[class] = rule
	}
	return rules
}

// moneyField reads a pounds value from a settings entry, falling back
// per field when the value is missing or non-numeric.
func moneyField(entry map[string]any, key string, fallback types.Money) types.Money {
	v, ok := entry[key]
	if !ok || v == nil {
		return fallback
	}
	pounds, err := cast.ToFloat64E(v)
	if err != nil {
		return fallback
	}
	return types.FromPounds(pounds)
}
