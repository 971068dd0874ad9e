// README: Message templates for customer and pricing-team notifications.
package whatsapp

import (
	"fmt"
	"strings"

	"chauffeur/internal/modules/enquiry"
	"chauffeur/internal/types"
)

const validUntilLayout = "2 Jan 2006, 15:04"

func helpMessage(businessName string) string {
	return fmt.Sprintf(`🚗 %s - Help

I can help you book a chauffeur service!

Just tell me:
• Where you need to be picked up
• Where you're going
• Date and time
• Number of passengers

Example: "I need a ride from Heathrow to London tomorrow at 2pm for 2 passengers"

Or simply start chatting and I'll guide you through the booking process!`, businessName)
}

// customerQuoteMessage is the quote notification sent to the customer
// once a price is confirmed.
func customerQuoteMessage(e *enquiry.Enquiry, price types.Money, notes string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Quote Ready - %s\n\n", e.ReferenceNumber)
	fmt.Fprintf(&b, "Dear %s,\n\n", e.CustomerName)
	b.WriteString("Thank you for your enquiry. Here's your quote:\n\n")
	fmt.Fprintf(&b, "📍 From: %s\n", e.PickupLocation)
	fmt.Fprintf(&b, "📍 To: %s\n", e.DropoffLocation)
	fmt.Fprintf(&b, "📅 Date: %s at %s\n", e.PickupDate, e.PickupTime)
	fmt.Fprintf(&b, "🚗 Vehicle: %s\n", e.VehicleType)
	fmt.Fprintf(&b, "👥 Passengers: %d\n\n", e.Passengers)
	fmt.Fprintf(&b, "💰 Total Price: %s\n", price)
	if notes != "" {
		fmt.Fprintf(&b, "\n📝 %s\n", notes)
	}
	if e.QuoteValidUntil != nil {
		fmt.Fprintf(&b, "\nThis quote is valid until %s\n\n", e.QuoteValidUntil.Format(validUntilLayout))
	} else {
		b.WriteString("\n")
	}
	b.WriteString(`Reply "YES" to confirm your booking or contact us for any questions.`)
	return b.String()
}

func teamQuoteConfirmation(e *enquiry.Enquiry, price types.Money, notes string) string {
	var b strings.Builder
	b.WriteString("✅ Quote submitted successfully!\n\n")
	fmt.Fprintf(&b, "Ref: %s\n", e.ReferenceNumber)
	fmt.Fprintf(&b, "Customer: %s\n", e.CustomerName)
	fmt.Fprintf(&b, "Price: %s\n", price)
	if notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", notes)
	}
	b.WriteString("\nThe customer will receive the quote now.")
	return b.String()
}

func newEnquiryTeamNotice(e *enquiry.Enquiry) string {
	var b strings.Builder
	b.WriteString("🆕 New Booking Enquiry\n\n")
	fmt.Fprintf(&b, "Ref: %s\n", e.ReferenceNumber)
	fmt.Fprintf(&b, "Customer: %s\n", e.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", e.CustomerPhone)
	fmt.Fprintf(&b, "From: %s\n", e.PickupLocation)
	fmt.Fprintf(&b, "To: %s\n", e.DropoffLocation)
	fmt.Fprintf(&b, "Date: %s at %s\n", e.PickupDate, e.PickupTime)
	fmt.Fprintf(&b, "Passengers: %d\n", e.Passengers)
	fmt.Fprintf(&b, "Vehicle: %s\n", e.VehicleType)
	if e.SpecialRequests != "" {
		fmt.Fprintf(&b, "Notes: %s\n", e.SpecialRequests)
	}
	if e.Estimate != nil {
		fmt.Fprintf(&b, "\n🤖 Auto estimate: %s (reply %s OK to approve)\n",
			e.Estimate.Pricing.Total, e.JobNumber())
	}
	return b.String()
}

func quoteTemplate(e *enquiry.Enquiry) string {
	return fmt.Sprintf("📝 Copy this and add your price:\n\nQUOTE %s £", e.ReferenceNumber)
}

func bookingReceivedMessage(e *enquiry.Enquiry) string {
	return fmt.Sprintf(`✅ Your booking request has been received!

Reference: %s

Our team will review your request and send you a quote shortly. Thank you!`, e.ReferenceNumber)
}

func bookingConfirmedMessage(e *enquiry.Enquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Booking Confirmed - %s\n\n", e.ReferenceNumber)
	fmt.Fprintf(&b, "Dear %s,\n\n", e.CustomerName)
	b.WriteString("Your booking is confirmed. Your chauffeur details will be sent closer to the pickup time.\n\n")
	fmt.Fprintf(&b, "📍 From: %s\n", e.PickupLocation)
	fmt.Fprintf(&b, "📍 To: %s\n", e.DropoffLocation)
	fmt.Fprintf(&b, "📅 Date: %s at %s\n", e.PickupDate, e.PickupTime)
	if e.QuotedPrice != nil {
		fmt.Fprintf(&b, "💰 Price: %s\n", *e.QuotedPrice)
	}
	b.WriteString("\nThank you for choosing us!")
	return b.String()
}

const rejectionAckMessage = "Thank you for letting us know. If you have any questions or would like to discuss the quote, please feel free to contact us."

const noOpenQuoteMessage = "We couldn't find an active quote for your number. Reply with your journey details and we'll get you a new quote."

func multiplePendingApproveWarning(count int) string {
	return fmt.Sprintf("⚠️ Multiple pending enquiries (%d).\n\nPlease use: [JOB#] OK\nExample: 001 OK", count)
}

func multiplePendingPriceWarning(count int, price types.Money) string {
	return fmt.Sprintf("⚠️ Multiple pending enquiries (%d).\n\nPlease use: [JOB#] £[PRICE]\nExample: 001 %.0f", count, price.Pounds())
}

func jobNotFoundMessage(jobNumber string) string {
	return fmt.Sprintf("❌ Job %s not found.\n\nCheck the reference number and try again.", jobNumber)
}

func refNotFoundMessage(ref string) string {
	return fmt.Sprintf("❌ Error: Enquiry %s not found. Please check the reference number.", ref)
}

func alreadyQuotedMessage(e *enquiry.Enquiry) string {
	return fmt.Sprintf("⚠️ Warning: Enquiry %s already has status %q. Quote not updated.", e.ReferenceNumber, e.Status)
}

func noEstimateMessage(e *enquiry.Enquiry) string {
	return fmt.Sprintf("❌ No automatic estimate found for %s.\n\nPlease reply with:\n%s £[PRICE]", e.ReferenceNumber, e.JobNumber())
}

func noPendingMessage(price types.Money) string {
	if price.IsZero() {
		return "❌ No pending enquiries found to approve."
	}
	return fmt.Sprintf("❌ No pending enquiries found.\n\nPlease use the full format:\nQUOTE JT-2026-XXXXXX £%.0f", price.Pounds())
}

const processingErrorMessage = "Sorry, I encountered an error processing your message. Please try again or contact our support team."
