// README: Time-of-day multiplier bands evaluated in the business timezone.
package pricing

import (
	"strconv"
	"strings"
	"time"
)

var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

var allDays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}

// DefaultTimeRules returns the standard multiplier bands. Declaration
// order breaks priority ties: the first declared band wins.
func DefaultTimeRules() []TimeRule {
	return []TimeRule{
		{Name: "Peak Morning", Multiplier: 1.3, Days: weekdays, Start: "07:00:00", End: "09:30:00", Priority: 10},
		{Name: "Peak Evening", Multiplier: 1.2, Days: weekdays, Start: "17:00:00", End: "19:30:00", Priority: 9},
		{Name: "Off-Peak Night", Multiplier: 0.9, Days: allDays, Start: "22:00:00", End: "06:00:00", Priority: 5},
		{Name: "Weekend Premium", Multiplier: 1.15, Days: []time.Weekday{time.Saturday, time.Sunday}, Start: "00:00:00", End: "23:59:59", Priority: 3},
	}
}

// MultiplierFor picks the highest-priority band covering t and returns
// its multiplier and name. Outside every band the multiplier is 1.0
// labelled Standard. Evaluate t in the business timezone before calling.
func MultiplierFor(rules []TimeRule, t time.Time) (float64, string) {
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	day := t.Weekday()

	best := TimeRule{Multiplier: 1.0, Name: "Standard", Priority: -1}
	for _, r := range rules {
		if !ruleCoversDay(r, day) || !ruleCoversTime(r, secs) {
			continue
		}
		if r.Priority > best.Priority {
			best = r
		}
	}
	return best.Multiplier, best.Name
}

func ruleCoversDay(r TimeRule, day time.Weekday) bool {
	for _, d := range r.Days {
		if d == day {
			return true
		}
	}
	return false
}

// ruleCoversTime handles bands that wrap past midnight (Start > End).
func ruleCoversTime(r TimeRule, secs int) bool {
	start := clockSeconds(r.Start)
	end := clockSeconds(r.End)
	if start <= end {
		return secs >= start && secs <= end
	}
	return secs >= start || secs <= end
}

// clockSeconds parses "HH:MM:SS" (or "HH:MM") into seconds since
// midnight. Malformed parts count as zero.
func clockSeconds(clock string) int {
	parts := strings.Split(clock, ":")
	total := 0
	unit := 3600
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err == nil {
			total += n * unit
		}
		unit /= 60
	}
	return total
}
