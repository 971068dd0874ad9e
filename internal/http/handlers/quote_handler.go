// README: Quote calculation handlers (journey and disposal, no persistence).
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/modules/pricing"
)

type QuoteHandler struct {
	calc *pricing.Calculator
	loc  *time.Location
}

func NewQuoteHandler(calc *pricing.Calculator, loc *time.Location) *QuoteHandler {
	return &QuoteHandler{calc: calc, loc: loc}
}

type calculateQuoteReq struct {
	PickupAddress  string `json:"pickupAddress"`
	DropoffAddress string `json:"dropoffAddress"`
	PickupDatetime string `json:"pickupDatetime"`
	VehicleType    string `json:"vehicleType"`
	Passengers     int    `json:"passengers"`
	Luggage        int    `json:"luggage"`
}

// Calculate handles POST /api/quotes/calculate.
func (h *QuoteHandler) Calculate(c *gin.Context) {
	var req calculateQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.PickupAddress == "" || req.DropoffAddress == "" {
		writeError(c, http.StatusBadRequest, "missing pickup or dropoff address")
		return
	}
	pickupTime, err := h.parseDatetime(req.PickupDatetime)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid pickupDatetime")
		return
	}

	quote, err := h.calc.CalculateQuote(c.Request.Context(), pricing.QuoteRequest{
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		PickupTime:     pickupTime,
		VehicleType:    req.VehicleType,
		Passengers:     req.Passengers,
		Luggage:        req.Luggage,
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"quote": quote})
}

type calculateDisposalReq struct {
	PickupAddress     string `json:"pickupAddress"`
	PickupDatetime    string `json:"pickupDatetime"`
	VehicleType       string `json:"vehicleType"`
	Hours             int    `json:"hours"`
	Passengers        int    `json:"passengers"`
	IncludeCongestion bool   `json:"includeCongestion"`
}

// CalculateDisposal handles POST /api/quotes/calculate-disposal.
func (h *QuoteHandler) CalculateDisposal(c *gin.Context) {
	var req calculateDisposalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.PickupAddress == "" {
		writeError(c, http.StatusBadRequest, "missing pickup address")
		return
	}
	pickupTime, err := h.parseDatetime(req.PickupDatetime)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid pickupDatetime")
		return
	}

	quote, err := h.calc.CalculateDisposalQuote(c.Request.Context(), pricing.DisposalRequest{
		PickupAddress:     req.PickupAddress,
		PickupTime:        pickupTime,
		VehicleType:       req.VehicleType,
		Hours:             req.Hours,
		Passengers:        req.Passengers,
		IncludeCongestion: req.IncludeCongestion,
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"quote": quote})
}

// parseDatetime accepts RFC3339 or local "2006-01-02 15:04"; empty
// means now.
func (h *QuoteHandler) parseDatetime(v string) (time.Time, error) {
	if v == "" {
		return time.Now().In(h.loc), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04", v, h.loc)
}
