// README: Inbound message classification into pricing-team and customer intents.
package whatsapp

import (
	"regexp"
	"strconv"
	"strings"

	"chauffeur/internal/types"
)

type IntentKind string

const (
	// Pricing team intents.
	IntentFullQuote   IntentKind = "full_quote"   // QUOTE JT-2026-000123 £85 notes
	IntentJobApprove  IntentKind = "job_approve"  // 123 OK
	IntentJobQuote    IntentKind = "job_quote"    // 123 85 +MG
	IntentBareApprove IntentKind = "bare_approve" // OK
	IntentBarePrice   IntentKind = "bare_price"   // 85

	// Customer intents.
	IntentConfirm IntentKind = "confirm" // yes / confirm
	IntentReject  IntentKind = "reject"  // no / cancel
	IntentHelp    IntentKind = "help"

	// Everything else goes to the assistant.
	IntentChat IntentKind = "chat"
)

// Intent is a parsed inbound message. Fields are set per kind: Reference
// for full quotes, JobNumber for job commands, Price and Notes for any
// priced intent.
type Intent struct {
	Kind      IntentKind
	Reference string
	JobNumber string
	Price     types.Money
	Notes     string
}

var (
	reFullQuote  = regexp.MustCompile(`(?is)QUOTE\s+([A-Z]{1,4}-\d{4}-\d{6})\s+£?(\d+(?:\.\d{2})?)(?:\s+(.+))?`)
	reJobCommand = regexp.MustCompile(`(?is)^(\d{3})\s+(.+)$`)
	reApprove    = regexp.MustCompile(`(?i)^(OK|✓|✅|APPROVE|ACCEPT)$`)
	reApproveYes = regexp.MustCompile(`(?i)^(OK|✓|✅|APPROVE|ACCEPT|YES)$`)
	rePrice      = regexp.MustCompile(`(?s)^£?(\d+(?:\.\d{2})?)(?:\s+(.+))?$`)
)

// Classify parses one message. Pricing-team command forms are only
// recognised for the pricing team; customers typing "85" reach the
// assistant instead.
func Classify(text string, fromPricingTeam bool) Intent {
	text = strings.TrimSpace(text)

	if fromPricingTeam {
		if m := reFullQuote.FindStringSubmatch(text); m != nil {
			return Intent{
				Kind:      IntentFullQuote,
				Reference: strings.ToUpper(m[1]),
				Price:     parsePounds(m[2]),
				Notes:     strings.TrimSpace(m[3]),
			}
		}
		if m := reJobCommand.FindStringSubmatch(text); m != nil {
			action := strings.TrimSpace(m[2])
			if reApprove.MatchString(action) {
				return Intent{Kind: IntentJobApprove, JobNumber: m[1]}
			}
			if pm := rePrice.FindStringSubmatch(action); pm != nil {
				return Intent{
					Kind:      IntentJobQuote,
					JobNumber: m[1],
					Price:     parsePounds(pm[1]),
					Notes:     strings.TrimSpace(pm[2]),
				}
			}
			// Unrecognised action, fall through to the shared intents.
		}
		if reApproveYes.MatchString(text) {
			return Intent{Kind: IntentBareApprove}
		}
		if m := rePrice.FindStringSubmatch(text); m != nil {
			return Intent{
				Kind:  IntentBarePrice,
				Price: parsePounds(m[1]),
				Notes: strings.TrimSpace(m[2]),
			}
		}
	}

	switch strings.ToLower(text) {
	case "help":
		return Intent{Kind: IntentHelp}
	case "yes", "confirm":
		return Intent{Kind: IntentConfirm}
	case "no", "cancel":
		return Intent{Kind: IntentReject}
	}
	return Intent{Kind: IntentChat}
}

func parsePounds(s string) types.Money {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.GBP(0)
	}
	return types.FromPounds(v)
}
