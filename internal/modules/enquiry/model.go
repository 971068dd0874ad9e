// README: Enquiry aggregate, status flow, and partner forwarding record.
package enquiry

import (
	"time"

	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/types"
)

type Status string

const (
	StatusPendingQuote Status = "pending_quote"
	StatusQuoted       Status = "quoted"
	StatusConfirmed    Status = "confirmed"
	StatusCancelled    Status = "cancelled"
)

// AllowedTransitions represents the enquiry state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPendingQuote: {StatusQuoted, StatusCancelled},
	StatusQuoted:       {StatusConfirmed, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// CanForward says whether an enquiry can still be handed to a partner
// operator. Closed enquiries cannot.
func CanForward(s Status) bool {
	return s == StatusPendingQuote || s == StatusQuoted
}

// PartnerForward records a handover to an external operator.
type PartnerForward struct {
	PartnerName      string    `json:"partnerName"`
	PartnerPhone     string    `json:"partnerPhone,omitempty"`
	CommissionRate   float64   `json:"commissionRate,omitempty"`
	BookingReference string    `json:"bookingReference,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	ForwardedBy      string    `json:"forwardedBy,omitempty"`
	ForwardedAt      time.Time `json:"forwardedAt"`
}

// ConversationEntry is one message of the customer's WhatsApp exchange
// kept alongside the enquiry for operator context.
type ConversationEntry struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Enquiry is a customer booking request moving through the quote flow.
// JSON field names match the admin dashboard payloads.
type Enquiry struct {
	ID              types.ID `json:"id"`
	ReferenceNumber string   `json:"referenceNumber"`

	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail,omitempty"`

	PickupLocation  string `json:"pickupLocation"`
	DropoffLocation string `json:"dropoffLocation"`
	PickupDate      string `json:"pickupDate"`
	PickupTime      string `json:"pickupTime"`

	Passengers      int    `json:"passengers"`
	VehicleType     string `json:"vehicleType"`
	SpecialRequests string `json:"specialRequests,omitempty"`

	Status Status `json:"status"`
	Source string `json:"source"`

	// Estimate is the automatic pricing run captured at creation.
	// Best effort: enquiries without one need an explicit quote.
	Estimate *pricing.Quote `json:"estimate,omitempty"`

	QuotedPrice     *types.Money `json:"quotedPrice,omitempty"`
	QuotedBy        string       `json:"quotedBy,omitempty"`
	QuoteNotes      string       `json:"quoteNotes,omitempty"`
	QuotedAt        *time.Time   `json:"quotedAt,omitempty"`
	QuoteValidUntil *time.Time   `json:"quoteValidUntil,omitempty"`

	Partner *PartnerForward `json:"partner,omitempty"`

	ConversationHistory []ConversationEntry `json:"conversationHistory,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobNumber is the short 3 digit handle pricing staff use in WhatsApp
// commands, taken from the tail of the reference number.
func (e *Enquiry) JobNumber() string {
	ref := e.ReferenceNumber
	if len(ref) < 3 {
		return ref
	}
	return ref[len(ref)-3:]
}

// QuoteExpired reports whether the quote's validity window has passed.
// Enquiries without a validity stamp never expire.
func (e *Enquiry) QuoteExpired(now time.Time) bool {
	return e.QuoteValidUntil != nil && now.After(*e.QuoteValidUntil)
}
