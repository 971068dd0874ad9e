package ai

// CustomerMeta is dynamic context injected into the assistant prompt.
type CustomerMeta struct {
	Name  string
	Phone string
	Now   string
}

// BookingDetails are the structured fields the assistant must collect
// before an enquiry can be created.
type BookingDetails struct {
	PickupLocation  string `json:"pickupLocation"`
	DropoffLocation string `json:"dropoffLocation"`

	// PickupDate is YYYY-MM-DD, PickupTime is HH:MM (24h).
	PickupDate string `json:"pickupDate"`
	PickupTime string `json:"pickupTime"`

	Passengers      int    `json:"passengers"`
	VehicleType     string `json:"vehicleType"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

// Response captures the structured output from the AI model.
type Response struct {
	// Message is the reply to send back to the customer.
	Message string `json:"message"`

	// CreateEnquiry is true only when every required booking field was
	// extracted; Enquiry then holds the fields.
	CreateEnquiry bool            `json:"createEnquiry"`
	Enquiry       *BookingDetails `json:"enquiryData,omitempty"`
}
