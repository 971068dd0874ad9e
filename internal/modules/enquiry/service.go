// README: Enquiry service implements the quote workflow state transitions.
package enquiry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"chauffeur/internal/config"
	"chauffeur/internal/logger"
	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/types"
)

var (
	ErrNotFound     = errors.New("enquiry not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrNoEstimate   = errors.New("enquiry has no automatic estimate")
	ErrQuoteExpired = errors.New("quote validity window has passed")
	ErrBadRequest   = errors.New("bad request")
)

// Estimator produces the best-effort automatic quote captured when an
// enquiry is created.
type Estimator interface {
	CalculateQuote(ctx context.Context, req pricing.QuoteRequest) (*pricing.Quote, error)
}

type Service struct {
	store     Store
	estimator Estimator
	quote     config.QuoteConfig
	loc       *time.Location
	log       logger.ILogger
}

func NewService(store Store, estimator Estimator, quote config.QuoteConfig, loc *time.Location, log logger.ILogger) *Service {
	return &Service{store: store, estimator: estimator, quote: quote, loc: loc, log: log}
}

type CreateCommand struct {
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	PickupLocation  string
	DropoffLocation string
	PickupDate      string
	PickupTime      string
	Passengers      int
	VehicleType     string
	SpecialRequests string
	Source          string
	Conversation    []ConversationEntry
}

type SubmitQuoteCommand struct {
	ID       types.ID
	Price    types.Money
	Notes    string
	QuotedBy string
}

type ForwardCommand struct {
	ID               types.ID
	PartnerName      string
	PartnerPhone     string
	CommissionRate   float64
	BookingReference string
	Notes            string
	ForwardedBy      string
}

// Create stores a new pending enquiry with a fresh reference number and,
// when pricing data allows, an automatic estimate. Estimate failures
// never block creation.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Enquiry, error) {
	if cmd.CustomerName == "" || cmd.CustomerPhone == "" ||
		cmd.PickupLocation == "" || cmd.DropoffLocation == "" {
		return nil, ErrBadRequest
	}

	now := time.Now()
	ref, err := s.store.NextReference(ctx, s.quote.RefPrefix, now)
	if err != nil {
		return nil, err
	}

	if cmd.Passengers <= 0 {
		cmd.Passengers = 1
	}
	if cmd.Source == "" {
		cmd.Source = "whatsapp"
	}

	e := &Enquiry{
		ID:                  types.ID(uuid.NewString()),
		ReferenceNumber:     ref,
		CustomerName:        cmd.CustomerName,
		CustomerPhone:       cmd.CustomerPhone,
		CustomerEmail:       cmd.CustomerEmail,
		PickupLocation:      cmd.PickupLocation,
		DropoffLocation:     cmd.DropoffLocation,
		PickupDate:          cmd.PickupDate,
		PickupTime:          cmd.PickupTime,
		Passengers:          cmd.Passengers,
		VehicleType:         cmd.VehicleType,
		SpecialRequests:     cmd.SpecialRequests,
		Status:              StatusPendingQuote,
		Source:              cmd.Source,
		ConversationHistory: cmd.Conversation,
		CreatedAt:           now,
	}

	e.Estimate = s.tryEstimate(ctx, e)

	if err := s.store.Save(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("enquiry created",
		logger.String("id", string(e.ID)),
		logger.String("reference", e.ReferenceNumber),
		logger.String("source", e.Source))
	return e, nil
}

func (s *Service) tryEstimate(ctx context.Context, e *Enquiry) *pricing.Quote {
	if s.estimator == nil || e.VehicleType == "" {
		return nil
	}
	pickupAt, err := s.parsePickupTime(e.PickupDate, e.PickupTime)
	if err != nil {
		return nil
	}
	q, err := s.estimator.CalculateQuote(ctx, pricing.QuoteRequest{
		PickupAddress:  e.PickupLocation,
		DropoffAddress: e.DropoffLocation,
		PickupTime:     pickupAt,
		VehicleType:    e.VehicleType,
		Passengers:     e.Passengers,
	})
	if err != nil {
		s.log.Warning("automatic estimate failed",
			logger.String("reference", e.ReferenceNumber),
			logger.Error(err))
		return nil
	}
	return q
}

func (s *Service) parsePickupTime(date, clock string) (time.Time, error) {
	if clock == "" {
		clock = "12:00"
	}
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, s.loc)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Enquiry, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) GetByReference(ctx context.Context, ref string) (*Enquiry, error) {
	return s.store.FindByReference(ctx, ref)
}

func (s *Service) GetByJobSuffix(ctx context.Context, suffix string) (*Enquiry, error) {
	return s.store.FindByJobSuffix(ctx, suffix)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Enquiry, error) {
	return s.store.List(ctx, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Enquiry, error) {
	return s.store.ListByStatus(ctx, status, limit, offset)
}

// SubmitQuote attaches a price to a pending enquiry. Quoting happens
// once; a quoted enquiry keeps its first price.
func (s *Service) SubmitQuote(ctx context.Context, cmd SubmitQuoteCommand) (*Enquiry, error) {
	if cmd.Price.Amount <= 0 {
		return nil, ErrBadRequest
	}
	e, err := s.store.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(e.Status, StatusQuoted) {
		return nil, ErrInvalidState
	}

	now := time.Now()
	validUntil := now.Add(time.Duration(s.quote.ValidityHours) * time.Hour)
	e.Status = StatusQuoted
	e.QuotedPrice = &cmd.Price
	e.QuotedBy = cmd.QuotedBy
	e.QuoteNotes = cmd.Notes
	e.QuotedAt = &now
	e.QuoteValidUntil = &validUntil

	if err := s.store.Save(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("quote submitted",
		logger.String("reference", e.ReferenceNumber),
		logger.Int64("price_pence", cmd.Price.Amount),
		logger.String("quoted_by", cmd.QuotedBy))
	return e, nil
}

// ApproveEstimate quotes the enquiry at its stored automatic estimate.
func (s *Service) ApproveEstimate(ctx context.Context, id types.ID, approvedBy string) (*Enquiry, error) {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Estimate == nil {
		return nil, ErrNoEstimate
	}
	return s.SubmitQuote(ctx, SubmitQuoteCommand{
		ID:       id,
		Price:    e.Estimate.Pricing.Total,
		QuotedBy: approvedBy,
	})
}

// Accept confirms a quoted enquiry on the customer's behalf. Expired
// quotes cannot be accepted.
func (s *Service) Accept(ctx context.Context, id types.ID) (*Enquiry, error) {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(e.Status, StatusConfirmed) {
		return nil, ErrInvalidState
	}
	if e.QuoteExpired(time.Now()) {
		return nil, ErrQuoteExpired
	}
	e.Status = StatusConfirmed
	if err := s.store.Save(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("booking confirmed", logger.String("reference", e.ReferenceNumber))
	return e, nil
}

// Reject cancels an open enquiry.
func (s *Service) Reject(ctx context.Context, id types.ID) (*Enquiry, error) {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(e.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}
	e.Status = StatusCancelled
	if err := s.store.Save(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("enquiry cancelled", logger.String("reference", e.ReferenceNumber))
	return e, nil
}

// ForwardToPartner records a handover to an external operator. The
// enquiry keeps flowing through its normal states afterwards.
func (s *Service) ForwardToPartner(ctx context.Context, cmd ForwardCommand) (*Enquiry, error) {
	if cmd.PartnerName == "" {
		return nil, ErrBadRequest
	}
	if cmd.CommissionRate < 0 || cmd.CommissionRate > 100 {
		return nil, ErrBadRequest
	}
	e, err := s.store.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if !CanForward(e.Status) {
		return nil, ErrInvalidState
	}
	e.Partner = &PartnerForward{
		PartnerName:      cmd.PartnerName,
		PartnerPhone:     cmd.PartnerPhone,
		CommissionRate:   cmd.CommissionRate,
		BookingReference: cmd.BookingReference,
		Notes:            cmd.Notes,
		ForwardedBy:      cmd.ForwardedBy,
		ForwardedAt:      time.Now(),
	}
	if err := s.store.Save(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("enquiry forwarded to partner",
		logger.String("reference", e.ReferenceNumber),
		logger.String("partner", cmd.PartnerName))
	return e, nil
}

// Delete removes an enquiry and its indexes.
func (s *Service) Delete(ctx context.Context, id types.ID) error {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, e)
}

// PendingQuotes lists enquiries still waiting for a price, used to
// resolve bare approvals from the pricing team.
func (s *Service) PendingQuotes(ctx context.Context) ([]*Enquiry, error) {
	return s.store.ListByStatus(ctx, StatusPendingQuote, 0, 0)
}

// LatestForPhone returns the newest enquiry in any of the given states
// belonging to the customer phone, or ErrNotFound.
func (s *Service) LatestForPhone(ctx context.Context, phone string, statuses ...Status) (*Enquiry, error) {
	var latest *Enquiry
	for _, st := range statuses {
		list, err := s.store.ListByStatus(ctx, st, 0, 0)
		if err != nil {
			return nil, err
		}
		for _, e := range list {
			if e.CustomerPhone != phone {
				continue
			}
			if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
				latest = e
			}
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}
