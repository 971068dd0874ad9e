package ai

import (
	"context"
)

// Assistant defines the contract for the conversational booking assistant.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.) in the future.
type Assistant interface {
	// ProcessMessage analyzes a customer's free-form message and either asks a
	// follow-up question or extracts a complete set of booking fields.
	// meta carries dynamic information like the customer's name and phone.
	ProcessMessage(ctx context.Context, userMessage string, meta CustomerMeta) (*Response, error)
}
