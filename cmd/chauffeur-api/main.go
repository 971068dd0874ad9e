// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chauffeur/internal/ai"
	"chauffeur/internal/config"
	httptransport "chauffeur/internal/http"
	"chauffeur/internal/infra"
	"chauffeur/internal/logger"
	"chauffeur/internal/maps"
	"chauffeur/internal/modules/enquiry"
	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/modules/settings"
	"chauffeur/internal/modules/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLog := logger.New("chauffeur")

	loc, err := time.LoadLocation(cfg.Business.TimeZone)
	if err != nil {
		log.Fatalf("load timezone %q: %v", cfg.Business.TimeZone, err)
	}

	if cfg.Maps.APIKey == "" {
		log.Fatal("GOOGLE_MAPS_API_KEY is required")
	}
	geo, err := maps.NewGeoService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr, cfg.Redis.Password)

	settingsSvc := settings.NewService(redisClient, cfg, logger.New("settings"))

	ruleStore := pricing.NewRuleStore(settingsSvc, logger.New("pricing"))
	zoneDetector := pricing.NewDetector(pricing.NewZoneStore(dbPool), logger.New("pricing"))
	calculator := pricing.NewCalculator(geo, ruleStore, zoneDetector, settingsSvc, loc, cfg.Quote, logger.New("pricing"))

	enquiryStore := enquiry.NewRedisStore(redisClient)
	enquirySvc := enquiry.NewService(enquiryStore, calculator, cfg.Quote, loc, logger.New("enquiry"))

	var sender whatsapp.Sender
	if cfg.WhatsApp.InstanceID != "" && cfg.WhatsApp.Token != "" {
		sender = whatsapp.NewClient(cfg.WhatsApp.BaseURL, cfg.WhatsApp.InstanceID, cfg.WhatsApp.Token, logger.New("whatsapp"))
	} else {
		sender = whatsapp.NewDisabledSender(logger.New("whatsapp"))
	}

	assistant := ai.NewDisabled()
	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiAssistant(ctx, cfg.AI.GeminiKey)
		if err != nil {
			appLog.Error("gemini init failed, assistant disabled", logger.Error(err))
		} else {
			assistant = gemini
		}
	}

	messageHandler := whatsapp.NewHandler(enquirySvc, settingsSvc, sender, assistant, cfg, loc, logger.New("whatsapp"))

	handler := httptransport.NewRouter(cfg, enquirySvc, calculator, ruleStore, settingsSvc, messageHandler, loc, logger.New("http"))
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	appLog.Info("server starting", logger.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
