// README: WhatsApp message handler: dispatches intents to the enquiry workflow.
package whatsapp

import (
	"context"
	"errors"
	"time"

	"chauffeur/internal/ai"
	"chauffeur/internal/config"
	"chauffeur/internal/logger"
	"chauffeur/internal/modules/enquiry"
	"chauffeur/internal/types"
)

// Settings is the slice of the settings service the handler consults.
type Settings interface {
	GetString(ctx context.Context, path, def string) string
}

// InboundMessage is one incoming WhatsApp text, already unwrapped from
// the webhook envelope.
type InboundMessage struct {
	Text       string
	Sender     string // "447..." or "447...@c.us"
	SenderName string
}

// Handler routes inbound messages: pricing-team commands mutate the
// quote workflow, customer keywords confirm or cancel, everything else
// goes to the assistant. All outbound sends are best effort.
type Handler struct {
	enquiries *enquiry.Service
	settings  Settings
	sender    Sender
	assistant ai.Assistant
	cfg       config.Config
	loc       *time.Location
	log       logger.ILogger
}

func NewHandler(enquiries *enquiry.Service, settings Settings, sender Sender, assistant ai.Assistant, cfg config.Config, loc *time.Location, log logger.ILogger) *Handler {
	return &Handler{
		enquiries: enquiries,
		settings:  settings,
		sender:    sender,
		assistant: assistant,
		cfg:       cfg,
		loc:       loc,
		log:       log,
	}
}

const quotedByPricingTeam = "pricing-team"

// Process handles one inbound message end to end.
func (h *Handler) Process(ctx context.Context, msg InboundMessage) {
	phone := NormalizePhone(msg.Sender)
	fromTeam := h.isPricingTeam(ctx, phone)

	intent := Classify(msg.Text, fromTeam)
	h.log.Info("whatsapp message received",
		logger.String("phone", phone),
		logger.String("intent", string(intent.Kind)))

	switch intent.Kind {
	case IntentFullQuote:
		h.handleFullQuote(ctx, phone, intent)
	case IntentJobApprove:
		h.handleJobApprove(ctx, phone, intent)
	case IntentJobQuote:
		h.handleJobQuote(ctx, phone, intent)
	case IntentBareApprove:
		h.handleBareApprove(ctx, phone)
	case IntentBarePrice:
		h.handleBarePrice(ctx, phone, intent)
	case IntentHelp:
		businessName := h.settings.GetString(ctx, "business.name", h.cfg.Business.Name)
		h.send(ctx, phone, helpMessage(businessName))
	case IntentConfirm:
		h.handleCustomerConfirm(ctx, phone)
	case IntentReject:
		h.handleCustomerReject(ctx, phone)
	default:
		h.handleChat(ctx, phone, msg)
	}
}

func (h *Handler) isPricingTeam(ctx context.Context, phone string) bool {
	teamPhone := h.settings.GetString(ctx, "pricingTeam.phone", h.cfg.PricingTeam.Phone)
	teamPhone = NormalizePhone(teamPhone)
	return teamPhone != "" && phone == teamPhone
}

// handleFullQuote handles "QUOTE JT-2026-000123 £85 notes".
func (h *Handler) handleFullQuote(ctx context.Context, teamPhone string, intent Intent) {
	e, err := h.enquiries.GetByReference(ctx, intent.Reference)
	if errors.Is(err, enquiry.ErrNotFound) {
		h.send(ctx, teamPhone, refNotFoundMessage(intent.Reference))
		return
	}
	if err != nil {
		h.sendError(ctx, teamPhone, err)
		return
	}
	h.submitQuote(ctx, teamPhone, e, intent.Price, intent.Notes)
}

// handleJobApprove handles "123 OK": quote at the stored estimate.
func (h *Handler) handleJobApprove(ctx context.Context, teamPhone string, intent Intent) {
	e, err := h.enquiries.GetByJobSuffix(ctx, intent.JobNumber)
	if errors.Is(err, enquiry.ErrNotFound) {
		h.send(ctx, teamPhone, jobNotFoundMessage(intent.JobNumber))
		return
	}
	if err != nil {
		h.sendError(ctx, teamPhone, err)
		return
	}
	h.approveEstimate(ctx, teamPhone, e)
}

// handleJobQuote handles "123 85 +MG".
func (h *Handler) handleJobQuote(ctx context.Context, teamPhone string, intent Intent) {
	e, err := h.enquiries.GetByJobSuffix(ctx, intent.JobNumber)
	if errors.Is(err, enquiry.ErrNotFound) {
		h.send(ctx, teamPhone, jobNotFoundMessage(intent.JobNumber))
		return
	}
	if err != nil {
		h.sendError(ctx, teamPhone, err)
		return
	}
	h.submitQuote(ctx, teamPhone, e, intent.Price, intent.Notes)
}

// handleBareApprove handles a bare "OK": only unambiguous with exactly
// one pending enquiry.
func (h *Handler) handleBareApprove(ctx context.Context, teamPhone string) {
	pending, err := h.enquiries.PendingQuotes(ctx)
	if err != nil {
		h.sendError(ctx, teamPhone, err)
		return
	}
	if len(pending) == 0 {
		h.send(ctx, teamPhone, noPendingMessage(types.GBP(0)))
		return
	}
	if len(pending) > 1 {
		h.send(ctx, teamPhone, multiplePendingApproveWarning(len(pending)))
		return
	}
	h.approveEstimate(ctx, teamPhone, pending[0])
}

// handleBarePrice handles a bare "85": only unambiguous with exactly
// one pending enquiry.
func (h *Handler) handleBarePrice(ctx context.Context, teamPhone string, intent Intent) {
	pending, err := h.enquiries.PendingQuotes(ctx)
	if err != nil {
		h.sendError(ctx, teamPhone, err)
		return
	}
	if len(pending) == 0 {
		h.send(ctx, teamPhone, noPendingMessage(intent.Price))
		return
	}
	if len(pending) > 1 {
		h.send(ctx, teamPhone, multiplePendingPriceWarning(len(pending), intent.Price))
		return
	}
	h.submitQuote(ctx, teamPhone, pending[0], intent.Price, intent.Notes)
}

func (h *Handler) submitQuote(ctx context.Context, teamPhone string, e *enquiry.Enquiry, price types.Money, notes string) {
	notes = ExpandAddons(notes)

	quoted, err := h.enquiries.SubmitQuote(ctx, enquiry.SubmitQuoteCommand{
		ID:       e.ID,
		Price:    price,
		Notes:    notes,
		QuotedBy: quotedByPricingTeam,
	})
	if errors.Is(err, enquiry.ErrInvalidState) {
		h.send(ctx, teamPhone, alreadyQuotedMessage(e))
		return
	}
	if err != nil {
		h.sendError(ctx, teamPhone, err)
		return
	}

	h.send(ctx, teamPhone, teamQuoteConfirmation(quoted, price, notes))
	h.send(ctx, quoted.CustomerPhone, customerQuoteMessage(quoted, price, notes))
}

// ResendQuote repeats the customer quote message for an already quoted
// enquiry. Used by the dashboard's resend action.
func (h *Handler) ResendQuote(ctx context.Context, e *enquiry.Enquiry) error {
	if e.Status != enquiry.StatusQuoted || e.QuotedPrice == nil {
		return enquiry.ErrInvalidState
	}
	return h.sender.Send(ctx, e.CustomerPhone, customerQuoteMessage(e, *e.QuotedPrice, e.QuoteNotes))
}

func (h *Handler) approveEstimate(ctx context.Context, teamPhone string, e *enquiry.Enquiry) {
	quoted, err := h.enquiries.ApproveEstimate(ctx, e.ID, quotedByPricingTeam)
	if errors.Is(err, enquiry.ErrNoEstimate) {
		h.send(ctx, teamPhone, noEstimateMessage(e))
		return
	}
	if errors.Is(err, enquiry.ErrInvalidState) {
		h.send(ctx, teamPhone, alreadyQuotedMessage(e))
		return
	}
	if err != nil {
		h.sendError(ctx, teamPhone, err)
		return
	}

	price := *quoted.QuotedPrice
	h.send(ctx, teamPhone, teamQuoteConfirmation(quoted, price, ""))
	h.send(ctx, quoted.CustomerPhone, customerQuoteMessage(quoted, price, ""))
}

// handleCustomerConfirm accepts the customer's newest open quote.
func (h *Handler) handleCustomerConfirm(ctx context.Context, phone string) {
	e, err := h.enquiries.LatestForPhone(ctx, phone, enquiry.StatusQuoted)
	if errors.Is(err, enquiry.ErrNotFound) {
		h.send(ctx, phone, noOpenQuoteMessage)
		return
	}
	if err != nil {
		h.sendError(ctx, phone, err)
		return
	}

	confirmed, err := h.enquiries.Accept(ctx, e.ID)
	if errors.Is(err, enquiry.ErrQuoteExpired) {
		h.send(ctx, phone, "Unfortunately this quote has expired. Reply with your journey details and we'll send you a fresh quote.")
		return
	}
	if err != nil {
		h.sendError(ctx, phone, err)
		return
	}

	h.send(ctx, phone, bookingConfirmedMessage(confirmed))
	if team := NormalizePhone(h.settings.GetString(ctx, "pricingTeam.phone", h.cfg.PricingTeam.Phone)); team != "" {
		h.send(ctx, team, "✅ Booking confirmed: "+confirmed.ReferenceNumber)
	}
}

// handleCustomerReject cancels the customer's newest open enquiry.
func (h *Handler) handleCustomerReject(ctx context.Context, phone string) {
	e, err := h.enquiries.LatestForPhone(ctx, phone, enquiry.StatusQuoted, enquiry.StatusPendingQuote)
	if errors.Is(err, enquiry.ErrNotFound) {
		h.send(ctx, phone, rejectionAckMessage)
		return
	}
	if err != nil {
		h.sendError(ctx, phone, err)
		return
	}

	if _, err := h.enquiries.Reject(ctx, e.ID); err != nil {
		h.sendError(ctx, phone, err)
		return
	}
	h.send(ctx, phone, rejectionAckMessage)
}

// handleChat runs the assistant and creates an enquiry when the
// conversation yields complete booking details.
func (h *Handler) handleChat(ctx context.Context, phone string, msg InboundMessage) {
	// The assistant resolves "today"/"tomorrow" against this timestamp,
	// so it must carry the business timezone.
	resp, err := h.assistant.ProcessMessage(ctx, msg.Text, ai.CustomerMeta{
		Name:  msg.SenderName,
		Phone: phone,
		Now:   time.Now().In(h.loc).Format("Monday, 2 January 2006 15:04 (MST)"),
	})
	if err != nil {
		h.log.Error("assistant failed", logger.Error(err))
		h.send(ctx, phone, processingErrorMessage)
		return
	}
	if resp.Message != "" {
		h.send(ctx, phone, resp.Message)
	}
	if !resp.CreateEnquiry || resp.Enquiry == nil {
		return
	}

	name := msg.SenderName
	if name == "" {
		name = "WhatsApp Customer"
	}

	d := resp.Enquiry
	e, err := h.enquiries.Create(ctx, enquiry.CreateCommand{
		CustomerName:    name,
		CustomerPhone:   phone,
		PickupLocation:  d.PickupLocation,
		DropoffLocation: d.DropoffLocation,
		PickupDate:      d.PickupDate,
		PickupTime:      d.PickupTime,
		Passengers:      d.Passengers,
		VehicleType:     d.VehicleType,
		SpecialRequests: d.SpecialRequests,
		Source:          "whatsapp",
	})
	if err != nil {
		h.log.Error("creating enquiry from chat failed", logger.Error(err))
		return
	}

	h.send(ctx, phone, bookingReceivedMessage(e))
	if team := NormalizePhone(h.settings.GetString(ctx, "pricingTeam.phone", h.cfg.PricingTeam.Phone)); team != "" {
		h.send(ctx, team, newEnquiryTeamNotice(e))
		h.send(ctx, team, quoteTemplate(e))
	}
}

// send delivers best effort; transport failures are logged, never
// propagated into the workflow.
func (h *Handler) send(ctx context.Context, phone, message string) {
	if err := h.sender.Send(ctx, phone, message); err != nil {
		h.log.Error("sending whatsapp message failed",
			logger.String("phone", phone),
			logger.Error(err))
	}
}

func (h *Handler) sendError(ctx context.Context, phone string, err error) {
	h.log.Error("whatsapp command failed", logger.Error(err))
	h.send(ctx, phone, processingErrorMessage)
}
