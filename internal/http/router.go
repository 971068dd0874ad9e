// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/config"
	"chauffeur/internal/http/handlers"
	"chauffeur/internal/http/middleware"
	"chauffeur/internal/logger"
	"chauffeur/internal/modules/enquiry"
	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/modules/settings"
	"chauffeur/internal/modules/whatsapp"
)

func NewRouter(
	cfg config.Config,
	enquiryService *enquiry.Service,
	calculator *pricing.Calculator,
	rules *pricing.RuleStore,
	settingsService *settings.Service,
	messages *whatsapp.Handler,
	loc *time.Location,
	log logger.ILogger,
) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	authHandler := handlers.NewAuthHandler(cfg)
	r.POST("/api/auth/login", authHandler.Login)

	webhookHandler := handlers.NewWebhookHandler(messages, log)
	r.POST("/api/webhooks/whatsapp", webhookHandler.Receive)

	api := r.Group("/api", middleware.Auth(cfg.Auth.JWTSecret))

	enquiryHandler := handlers.NewEnquiryHandler(enquiryService, messages)
	api.POST("/enquiries", enquiryHandler.Create)
	api.GET("/enquiries", enquiryHandler.List)
	api.GET("/enquiries/:id", enquiryHandler.Get)
	api.PUT("/enquiries/:id/quote", enquiryHandler.SubmitQuote)
	api.PUT("/enquiries/:id/accept", enquiryHandler.Accept)
	api.PUT("/enquiries/:id/reject", enquiryHandler.Reject)
	api.PUT("/enquiries/:id/forward-to-partner", enquiryHandler.ForwardToPartner)
	api.POST("/enquiries/:id/resend-quote", enquiryHandler.ResendQuote)
	api.DELETE("/enquiries/:id", enquiryHandler.Delete)

	quoteHandler := handlers.NewQuoteHandler(calculator, loc)
	api.POST("/quotes/calculate", quoteHandler.Calculate)
	api.POST("/quotes/calculate-disposal", quoteHandler.CalculateDisposal)

	settingsHandler := handlers.NewSettingsHandler(settingsService, rules)
	api.GET("/settings", settingsHandler.Get)
	api.PUT("/settings", settingsHandler.Update)

	return r
}
