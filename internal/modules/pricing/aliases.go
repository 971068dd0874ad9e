package pricing

import "errors"

// ErrUnknownVehicleType means the input string maps to no canonical class.
// Unknown types are an error, never a silent default.
var ErrUnknownVehicleType = errors.New("unknown vehicle type")

// vehicleAliases maps raw input strings (booking-form slugs, legacy
// names, casing variants) to a canonical class. Every target class must
// have a default rule in defaultRules.
var vehicleAliases = map[string]VehicleClass{
	// booking-form slugs
	"executive-sedan": ClassExecutiveSedan,
	"luxury-sedan":    ClassLuxurySedan,
	"mpv-executive":   ClassMPVExecutive,
	"luxury-suv":      ClassLuxurySUV,
	"minibus":         ClassMinibus,
	// legacy variants
	"saloon":            ClassExecutiveSedan,
	"Saloon":            ClassExecutiveSedan,
	"mpv":               ClassMPVExecutive,
	"MPV":               ClassMPVExecutive,
	"suv":               ClassLuxurySUV,
	"SUV":               ClassLuxurySUV,
	"Standard Sedan":    ClassExecutiveSedan,
	"Executive MPV":     ClassMPVExecutive,
	"Luxury MPV":        ClassMPVExecutive,
	"executive-eclass":  ClassExecutiveSedan,
	"luxury-sclass":     ClassLuxurySedan,
	"mpv-vclass":        ClassMPVExecutive,
	"Executive E-Class": ClassExecutiveSedan,
	"Luxury S-Class":    ClassLuxurySedan,
	"MPV V-Class":       ClassMPVExecutive,
	// canonical names pass through
	string(ClassExecutiveSedan): ClassExecutiveSedan,
	string(ClassLuxurySedan):    ClassLuxurySedan,
	string(ClassMPVExecutive):   ClassMPVExecutive,
	string(ClassLuxurySUV):      ClassLuxurySUV,
	string(ClassMinibus):        ClassMinibus,
}

// Canonicalize resolves a raw vehicle-type string to its canonical class.
func Canonicalize(vehicleType string) (VehicleClass, error) {
	if class, ok := vehicleAliases[vehicleType]; ok {
		return class, nil
	}
	return "", ErrUnknownVehicleType
}

// KnownAliases lists every accepted input string. Exposed for tests and
// for the booking-form options endpoint.
func KnownAliases() []string {
	out := make([]string, 0, len(vehicleAliases))
	for k := range vehicleAliases {
		out = append(out, k)
	}
	return out
}
