// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/maps"
	"chauffeur/internal/modules/enquiry"
	"chauffeur/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeEnquiryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, enquiry.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, enquiry.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, enquiry.ErrInvalidState),
		errors.Is(err, enquiry.ErrNoEstimate),
		errors.Is(err, enquiry.ErrQuoteExpired):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeQuoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrUnknownVehicleType):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrTooManyPassengers),
		errors.Is(err, pricing.ErrBelowMinimum),
		errors.Is(err, maps.ErrNoMatch),
		errors.Is(err, maps.ErrNoRoute):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
