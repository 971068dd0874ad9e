// README: Green API client for sending WhatsApp messages.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chauffeur/internal/logger"
)

// Sender delivers one WhatsApp message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// Client sends messages through the Green API gateway.
type Client struct {
	baseURL    string
	instanceID string
	token      string
	http       *http.Client
	log        logger.ILogger
}

func NewClient(baseURL, instanceID, token string, log logger.ILogger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		instanceID: instanceID,
		token:      token,
		http:       &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

func (c *Client) Send(ctx context.Context, phone, message string) error {
	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", c.baseURL, c.instanceID, c.token)
	body, err := json.Marshal(sendMessageRequest{
		ChatID:  NormalizePhone(phone) + "@c.us",
		Message: message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("green api send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("green api send: status %d: %s", resp.StatusCode, detail)
	}
	c.log.Info("whatsapp message sent", logger.String("phone", phone))
	return nil
}

// NormalizePhone strips the chat suffix and formatting so numbers
// compare as bare digits.
func NormalizePhone(phone string) string {
	phone = strings.TrimSuffix(phone, "@c.us")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, " ", "")
	return phone
}

// disabledSender is used when Green API credentials are missing; sends
// are logged and dropped.
type disabledSender struct {
	log logger.ILogger
}

func NewDisabledSender(log logger.ILogger) Sender {
	return disabledSender{log: log}
}

func (d disabledSender) Send(_ context.Context, phone, _ string) error {
	d.log.Warning("whatsapp not configured, skipping message send", logger.String("phone", phone))
	return nil
}
