package ai

import "context"

// disabledAssistant is used when no Gemini key is configured. It never
// creates enquiries; customers get a canned acknowledgement instead.
type disabledAssistant struct{}

func NewDisabled() Assistant {
	return disabledAssistant{}
}

func (disabledAssistant) ProcessMessage(ctx context.Context, userMessage string, meta CustomerMeta) (*Response, error) {
	return &Response{
		Message:       "Thank you for your message. Our team will get back to you shortly.",
		CreateEnquiry: false,
	}, nil
}
