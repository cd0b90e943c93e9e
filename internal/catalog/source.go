package catalog

import (
	"context"
	"encoding/json"
	"fmt"
)

// Catalog entities are read-only reference data owned by the booking backend.
// The wizard never mutates them locally.

// FlexID tolerates both id encodings the backend has shipped: JSON strings
// and bare numbers (database rows serialize their integer primary keys). It
// always presents as a string.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

type Addon struct {
	ID    FlexID  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Icon  string  `json:"icon,omitempty"`
}

type Protection struct {
	ID          FlexID  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// Promotion prices are negative: they are discounts applied as line items.
type Promotion struct {
	ID                    FlexID  `json:"id"`
	Name                  string  `json:"name"`
	Price                 float64 `json:"price"`
	RequiresJustification bool    `json:"requiresJustification,omitempty"`
}

type Diet struct {
	ID      FlexID  `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	IconURL string  `json:"iconUrl,omitempty"`
}

// TransportCity is the canonical city shape. The backend historically returned
// either a plain city name or an object with a price; HTTPSource normalizes
// both into this.
type TransportCity struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Active bool    `json:"active"`
}

type Document struct {
	ID      FlexID `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// Source provides the per-section catalogs. Implementations return an error on
// fetch failure; sections degrade to an empty catalog and log rather than
// blocking the wizard.
type Source interface {
	Addons(ctx context.Context) ([]Addon, error)
	Protections(ctx context.Context) ([]Protection, error)
	Promotions(ctx context.Context) ([]Promotion, error)
	Diets(ctx context.Context, campID, propertyID string) ([]Diet, error)
	TransportCities(ctx context.Context, campID, propertyID string) ([]TransportCity, error)
	Documents(ctx context.Context) ([]Document, error)
}
