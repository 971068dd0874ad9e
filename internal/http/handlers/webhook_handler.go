// README: Green API webhook handler. Acks immediately, processes async.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/logger"
	"chauffeur/internal/modules/whatsapp"
)

const processTimeout = 30 * time.Second

type WebhookHandler struct {
	messages *whatsapp.Handler
	log      logger.ILogger
}

func NewWebhookHandler(messages *whatsapp.Handler, log logger.ILogger) *WebhookHandler {
	return &WebhookHandler{messages: messages, log: log}
}

// webhookEnvelope mirrors the Green API notification payload; only the
// fields the message pipeline needs are bound.
type webhookEnvelope struct {
	TypeWebhook string `json:"typeWebhook"`
	SenderData  struct {
		Sender     string `json:"sender"`
		SenderName string `json:"senderName"`
	} `json:"senderData"`
	MessageData struct {
		TypeMessage     string `json:"typeMessage"`
		TextMessageData struct {
			TextMessage string `json:"textMessage"`
		} `json:"textMessageData"`
		ExtendedTextMessageData struct {
			Text string `json:"text"`
		} `json:"extendedTextMessageData"`
	} `json:"messageData"`
}

// Receive handles POST /api/webhooks/whatsapp. Green API retries on
// non-200 responses, so malformed payloads are still acknowledged.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var envelope webhookEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.log.Warning("webhook payload unreadable", logger.Error(err))
		writeJSON(c, http.StatusOK, map[string]any{"success": false})
		return
	}

	writeJSON(c, http.StatusOK, map[string]any{"success": true})

	if envelope.TypeWebhook != "incomingMessageReceived" {
		return
	}
	text := envelope.MessageData.TextMessageData.TextMessage
	if text == "" {
		text = envelope.MessageData.ExtendedTextMessageData.Text
	}
	if text == "" || envelope.SenderData.Sender == "" {
		return
	}

	msg := whatsapp.InboundMessage{
		Text:       text,
		Sender:     envelope.SenderData.Sender,
		SenderName: envelope.SenderData.SenderName,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		h.messages.Process(ctx, msg)
	}()
}
