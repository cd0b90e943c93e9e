package entities

import "fmt"

// SubmitRequest carries the participant data entered on the wizard's final
// step. BasePrice is the turnus price the line items are applied on top of.
type SubmitRequest struct {
	CampID          int     `json:"camp_id"`
	PropertyID      int     `json:"property_id"`
	ParticipantName string  `json:"participant_name"`
	GuardianName    string  `json:"guardian_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	BasePrice       float64 `json:"base_price"`
	Language        string  `json:"language"`
}

type SubmitResponse struct {
	Code        string  `json:"code"`
	Total       float64 `json:"total"`
	CheckoutURL string  `json:"checkout_url"`
}

// ValidationError reports the first wizard section whose validator failed.
type ValidationError struct {
	Section string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("section %q failed validation", e.Section)
}
