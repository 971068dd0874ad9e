package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiAssistant implements Assistant using Google's Gemini models.
type GeminiAssistant struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiAssistant initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiAssistant(ctx context.Context, apiKey string) (*GeminiAssistant, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Flash keeps per-message latency and cost low for chat traffic.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.7)

	return &GeminiAssistant{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (a *GeminiAssistant) Close() {
	a.client.Close()
}

// ProcessMessage analyzes a customer message and extracts booking details when complete.
func (a *GeminiAssistant) ProcessMessage(ctx context.Context, userMessage string, meta CustomerMeta) (*Response, error) {
	fullPrompt := fmt.Sprintf("%s\n\nCustomer (%s): %s", buildSystemPrompt(meta), meta.Name, userMessage)

	resp, err := a.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	// JSON mode should already return bare JSON; strip markdown fences just in case.
	cleanJSON := cleanJSONString(responseText.String())

	var result Response
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}

	return &result, nil
}

func buildSystemPrompt(meta CustomerMeta) string {
	now := meta.Now
	if now == "" {
		now = "UNKNOWN_TIME"
	}

	return fmt.Sprintf(`You are a helpful AI assistant for JT Chauffeur Services, a luxury chauffeur booking service.
Current time: %s

Your role is to:
1. Help customers book chauffeur services by collecting necessary information
2. Be friendly, professional, and concise
3. Extract booking details from natural language

Required booking information:
- Pickup location
- Dropoff location
- Pickup date
- Pickup time
- Number of passengers
- Vehicle type (Executive Sedan, Luxury Sedan, MPV Executive, Luxury SUV, Minibus)
- Special requests (optional)

Relative dates ("today", "tomorrow") must be resolved against the current time above.

When you have ALL required information, respond with a JSON object in this format:
{
  "message": "Your response to the customer",
  "createEnquiry": true,
  "enquiryData": {
    "pickupLocation": "...",
    "dropoffLocation": "...",
    "pickupDate": "YYYY-MM-DD",
    "pickupTime": "HH:MM",
    "passengers": number,
    "vehicleType": "...",
    "specialRequests": "..."
  }
}

If you don't have all information yet, just respond with:
{
  "message": "Your question to gather more information",
  "createEnquiry": false
}

Be conversational and natural. Don't ask for all information at once.`, now)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
