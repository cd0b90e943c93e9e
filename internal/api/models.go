package api

import (
	"obozy/internal/draft"
	"obozy/internal/reservation"
)

// Wizard session
type CreateSessionRequest struct {
	CampID     string `json:"camp_id"`
	PropertyID string `json:"property_id"`
}

type SessionResponse struct {
	SessionID string                 `json:"session_id"`
	Items     []reservation.LineItem `json:"items"`
	Total     float64                `json:"total"`
	Draft     draft.State            `json:"draft"`
}

type SelectionRequest struct {
	SelectedIDs []string `json:"selected_ids"`
}

type PromotionRequest struct {
	PromotionID   string                 `json:"promotion_id"`
	Justification map[string]interface{} `json:"justification,omitempty"`
}

type TransportRequest struct {
	DepartureType string `json:"departure_type"`
	DepartureCity string `json:"departure_city"`
	ReturnType    string `json:"return_type"`
	ReturnCity    string `json:"return_city"`
}

type TransportResponse struct {
	RequiresConfirmation bool                   `json:"requires_confirmation"`
	Items                []reservation.LineItem `json:"items"`
	Total                float64                `json:"total"`
}

type SourceRequest struct {
	Source   string `json:"source"`
	InneText string `json:"inne_text,omitempty"`
}

type ValidateResponse struct {
	Valid         bool   `json:"valid"`
	FailedSection string `json:"failed_section,omitempty"`
}

// Signing
type RequestCodeRequest struct {
	ReservationID string                 `json:"reservation_id"`
	DocumentType  string                 `json:"document_type"`
	Phone         string                 `json:"phone"`
	Payload       map[string]interface{} `json:"payload"`
}

type RequestCodeResponse struct {
	DocumentID int    `json:"document_id"`
	Status     string `json:"status"`
}

type VerifyCodeRequest struct {
	DocumentID int    `json:"document_id"`
	Code       string `json:"code"`
}

type ResendCodeRequest struct {
	DocumentID int `json:"document_id"`
}
