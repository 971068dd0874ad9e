// README: Settings handlers backing the admin dashboard.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/modules/settings"
)

// RuleInvalidator drops cached pricing rules after a settings write.
type RuleInvalidator interface {
	Invalidate()
}

type SettingsHandler struct {
	settings *settings.Service
	rules    RuleInvalidator
}

func NewSettingsHandler(svc *settings.Service, rules RuleInvalidator) *SettingsHandler {
	return &SettingsHandler{settings: svc, rules: rules}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.settings.All(c.Request.Context()))
}

// Update handles PUT /api/settings. Pricing rule caches are dropped so
// tariff edits take effect on the next quote.
func (h *SettingsHandler) Update(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	doc, err := h.settings.Update(c.Request.Context(), updates)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if h.rules != nil {
		h.rules.Invalidate()
	}
	writeJSON(c, http.StatusOK, doc)
}
