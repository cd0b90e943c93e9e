package db

import "time"

type Camp struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CampProperty is one scheduled instance of a camp (a turnus/edition): dates,
// city, capacity, base price.
type CampProperty struct {
	ID        int       `json:"id"`
	CampID    int       `json:"camp_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	City      string    `json:"city"`
	Capacity  int       `json:"capacity"`
	BasePrice float64   `json:"base_price"`
}

type Diet struct {
	ID         int     `json:"id"`
	PropertyID int     `json:"property_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	IconURL    string  `json:"iconUrl"`
}

// TransportCity is a collection city assigned to a camp property with its
// per-leg price.
type TransportCity struct {
	ID         int     `json:"id"`
	PropertyID int     `json:"property_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Active     bool    `json:"active"`
}

type Addon struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	Active      bool    `json:"active"`
}

type Protection struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Active      bool    `json:"active"`
}

type Promotion struct {
	ID                    int     `json:"id"`
	Name                  string  `json:"name"`
	Price                 float64 `json:"price"`
	RequiresJustification bool    `json:"requiresJustification"`
	Active                bool    `json:"active"`
}

type DocumentTemplate struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Reservation struct {
	ID              int       `json:"id"`
	Code            string    `json:"code"`
	SessionID       string    `json:"session_id"`
	CampID          int       `json:"camp_id"`
	PropertyID      int       `json:"property_id"`
	ParticipantName string    `json:"participant_name"`
	GuardianName    string    `json:"guardian_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	TotalPrice      float64   `json:"total_price"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	StripeSessionID string    `json:"-"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
