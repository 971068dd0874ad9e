// README: Enquiry handlers: CRUD plus the quote lifecycle actions.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"chauffeur/internal/http/middleware"
	"chauffeur/internal/modules/enquiry"
	"chauffeur/internal/types"
)

// QuoteNotifier resends the customer-facing quote message over WhatsApp.
type QuoteNotifier interface {
	ResendQuote(ctx context.Context, e *enquiry.Enquiry) error
}

type EnquiryHandler struct {
	enquiries *enquiry.Service
	notifier  QuoteNotifier
}

func NewEnquiryHandler(svc *enquiry.Service, notifier QuoteNotifier) *EnquiryHandler {
	return &EnquiryHandler{enquiries: svc, notifier: notifier}
}

type createEnquiryReq struct {
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	CustomerEmail   string `json:"customerEmail"`
	PickupLocation  string `json:"pickupLocation"`
	DropoffLocation string `json:"dropoffLocation"`
	PickupDate      string `json:"pickupDate"`
	PickupTime      string `json:"pickupTime"`
	Passengers      int    `json:"passengers"`
	VehicleType     string `json:"vehicleType"`
	SpecialRequests string `json:"specialRequests"`
	Source          string `json:"source"`
}

// Create handles POST /api/enquiries.
func (h *EnquiryHandler) Create(c *gin.Context) {
	var req createEnquiryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	e, err := h.enquiries.Create(c.Request.Context(), enquiry.CreateCommand{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		PickupDate:      req.PickupDate,
		PickupTime:      req.PickupTime,
		Passengers:      req.Passengers,
		VehicleType:     req.VehicleType,
		SpecialRequests: req.SpecialRequests,
		Source:          nonEmpty(req.Source, "dashboard"),
	})
	if err != nil {
		writeEnquiryError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, e)
}

// List handles GET /api/enquiries with optional status, limit and offset.
func (h *EnquiryHandler) List(c *gin.Context) {
	limit := cast.ToInt(c.Query("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset := cast.ToInt(c.Query("offset"))

	var (
		list []*enquiry.Enquiry
		err  error
	)
	if status := c.Query("status"); status != "" {
		list, err = h.enquiries.ListByStatus(c.Request.Context(), enquiry.Status(status), limit, offset)
	} else {
		list, err = h.enquiries.List(c.Request.Context(), limit, offset)
	}
	if err != nil {
		writeEnquiryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"enquiries": list, "count": len(list)})
}

// Get handles GET /api/enquiries/:id. Reference numbers work too, so
// the dashboard can deep-link from WhatsApp messages.
func (h *EnquiryHandler) Get(c *gin.Context) {
	id := c.Param("id")

	e, err := h.enquiries.Get(c.Request.Context(), types.ID(id))
	if err == enquiry.ErrNotFound {
		e, err = h.enquiries.GetByReference(c.Request.Context(), id)
	}
	if err != nil {
		writeEnquiryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, e)
}

type submitQuoteReq struct {
	// Price is in pounds.
	Price float64 `json:"price"`
	Notes string  `json:"notes"`
}

// SubmitQuote handles PUT /api/enquiries/:id/quote.
func (h *EnquiryHandler) SubmitQuote(c *gin.Context) {
	var req submitQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	e, err := h.enquiries.SubmitQuote(c.Request.Context(), enquiry.SubmitQuoteCommand{
		ID:       types.ID(c.Param("id")),
		Price:    types.FromPounds(req.Price),
		Notes:    req.Notes,
		QuotedBy: nonEmpty(middleware.CallerSubject(c), "dashboard"),
	})
	if err != nil {
		writeEnquiryError(c, err)
		return
	}

	if h.notifier != nil {
		if nerr := h.notifier.ResendQuote(c.Request.Context(), e); nerr != nil {
			writeJSON(c, http.StatusOK, map[string]any{"enquiry": e, "warning": "quote saved but customer message failed"})
			return
		}
	}
	writeJSON(c, http.StatusOK, e)
}

// Accept handles PUT /api/enquiries/:id/accept.
func (h *EnquiryHandler) Accept(c *gin.Context) {
	e, err := h.enquiries.Accept(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeEnquiryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, e)
}

// Reject handles PUT /api/enquiries/:id/reject.
func (h *EnquiryHandler) Reject(c *gin.Context) {
	e, err := h.enquiries.Reject(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeEnquiryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, e)
}

type forwardReq struct {
	PartnerName      string  `json:"partnerName"`
	PartnerPhone     string  `json:"partnerPhone"`
	CommissionRate   float64 `json:"commissionRate"`
	BookingReference string  `json:"bookingReference"`
	Notes            string  `json:"notes"`
}

// ForwardToPartner handles PUT /api/enquiries/:id/forward-to-partner.
func (h *EnquiryHandler) ForwardToPartner(c *gin.Context) {
	var req forwardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	e, err := h.enquiries.ForwardToPartner(c.Request.Context(), enquiry.ForwardCommand{
		ID:               types.ID(c.Param("id")),
		PartnerName:      req.PartnerName,
		PartnerPhone:     req.PartnerPhone,
		CommissionRate:   req.CommissionRate,
		BookingReference: req.BookingReference,
		Notes:            req.Notes,
		ForwardedBy:      nonEmpty(middleware.CallerSubject(c), "dashboard"),
	})
	if err != nil {
		writeEnquiryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, e)
}

// ResendQuote handles POST /api/enquiries/:id/resend-quote.
func (h *EnquiryHandler) ResendQuote(c *gin.Context) {
	e, err := h.enquiries.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeEnquiryError(c, err)
		return
	}
	if h.notifier == nil {
		writeError(c, http.StatusServiceUnavailable, "messaging not configured")
		return
	}
	if err := h.notifier.ResendQuote(c.Request.Context(), e); err != nil {
		writeEnquiryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"resent": true, "reference": e.ReferenceNumber})
}

// Delete handles DELETE /api/enquiries/:id.
func (h *EnquiryHandler) Delete(c *gin.Context) {
	if err := h.enquiries.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeEnquiryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"deleted": true})
}

func nonEmpty(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
