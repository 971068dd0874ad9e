package whatsapp

import "strings"

// addonCodes maps the shorthand codes pricing staff append to quotes to
// their customer-facing names. Order here is the order they appear in
// the expanded note.
var addonCodes = []struct {
	code string
	name string
}{
	{"+MG", "Meet & Greet"},
	{"+CS", "Child Seat"},
	{"+BS", "Booster Seat"},
	{"+WC", "Wheelchair Accessible"},
	{"+LG", "Extra Luggage"},
	{"+WF", "WiFi"},
	{"+WA", "Wait & Return"},
}

// ExpandAddons turns "+MG +CS" into "Includes: Meet & Greet, Child Seat".
// Notes without recognised codes pass through unchanged.
func ExpandAddons(notes string) string {
	if notes == "" {
		return ""
	}
	upper := strings.ToUpper(notes)
	var names []string
	for _, a := range addonCodes {
		if strings.Contains(upper, a.code) {
			names = append(names, a.name)
		}
	}
	if len(names) == 0 {
		return notes
	}
	return "Includes: " + strings.Join(names, ", ")
}
