// README: Customer-facing WhatsApp rendering of quotes.
package pricing

import (
	"fmt"
	"strings"
)

const breakdownDivider = "   ─────────────────────────\n"

// FormatQuoteForCustomer renders a journey quote as the WhatsApp message
// sent to the customer.
func FormatQuoteForCustomer(q *Quote, validityHours int) string {
	var b strings.Builder

	b.WriteString("✅ Quote Ready\n\n")
	fmt.Fprintf(&b, "📍 From: %s\n", q.Pickup.FormattedAddress)
	fmt.Fprintf(&b, "📍 To: %s\n", q.Dropoff.FormattedAddress)
	fmt.Fprintf(&b, "📏 Distance: %.1f %s (~%d mins)\n", q.DisplayDistance, q.DistanceUnit, q.DurationMin)
	fmt.Fprintf(&b, "🚗 Vehicle: %s\n\n", q.VehicleClass)

	b.WriteString("💰 Quote Breakdown:\n")
	fmt.Fprintf(&b, "   Base Fare:         %s\n", q.Pricing.BaseFare)
	fmt.Fprintf(&b, "   Distance (%.1f%s): %s\n", q.DisplayDistance, q.DistanceUnit, q.Pricing.DistanceCharge)
	for _, zone := range q.Pricing.ZoneCharges {
		fmt.Fprintf(&b, "   %s: %s\n", zone.Name, zone.Charge)
	}

	b.WriteString(breakdownDivider)
	fmt.Fprintf(&b, "   Subtotal:          %s\n", q.Pricing.Subtotal)
	writeMultiplier(&b, q)
	b.WriteString(breakdownDivider)
	fmt.Fprintf(&b, "   TOTAL:            %s\n\n", q.Pricing.Total)

	writeFooter(&b, validityHours)
	return b.String()
}

// FormatDisposalQuoteForCustomer renders an hourly hire quote.
func FormatDisposalQuoteForCustomer(q *Quote, validityHours int) string {
	var b strings.Builder

	b.WriteString("✅ At Disposal Quote Ready\n\n")
	fmt.Fprintf(&b, "📍 Pickup: %s\n", q.Pickup.FormattedAddress)
	fmt.Fprintf(&b, "⏰ Duration: %d hours (minimum %d hours)\n", q.Hours, q.MinimumHours)
	fmt.Fprintf(&b, "🚗 Vehicle: %s\n\n", q.VehicleClass)

	b.WriteString("💰 Quote Breakdown:\n")
	fmt.Fprintf(&b, "   Hourly Rate (%s/hr): %s\n", q.Pricing.HourlyRate, q.Pricing.HourlyCharge)
	if !q.Pricing.CongestionCharge.IsZero() {
		fmt.Fprintf(&b, "   Congestion Charge:  %s\n", q.Pricing.CongestionCharge)
	}

	b.WriteString(breakdownDivider)
	fmt.Fprintf(&b, "   Subtotal:          %s\n", q.Pricing.Subtotal)
	writeMultiplier(&b, q)
	b.WriteString(breakdownDivider)
	fmt.Fprintf(&b, "   TOTAL:            %s\n\n", q.Pricing.Total)

	writeFooter(&b, validityHours)
	return b.String()
}

func writeMultiplier(b *strings.Builder, q *Quote) {
	if q.Pricing.TimeMultiplier != 1.0 {
		fmt.Fprintf(b, "   %s (%gx): Applied\n", q.Pricing.TimeMultiplierName, q.Pricing.TimeMultiplier)
	}
}

func writeFooter(b *strings.Builder, validityHours int) {
	fmt.Fprintf(b, "Valid for %d hours\n\n", validityHours)
	b.WriteString("Reply YES to confirm booking")
}
