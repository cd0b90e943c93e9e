package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSource consumes the booking backend's public catalog endpoints. Requests
// carry the caller's context so a fetch for an abandoned session is cancelled
// instead of clobbering newer state later.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("catalog: build request %s: %w", path, err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return nil
}

func (s *HTTPSource) Addons(ctx context.Context) ([]Addon, error) {
	var out []Addon
	if err := s.getJSON(ctx, "/api/addons/public", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPSource) Protections(ctx context.Context) ([]Protection, error) {
	var out []Protection
	if err := s.getJSON(ctx, "/api/protections/public", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPSource) Promotions(ctx context.Context) ([]Promotion, error) {
	var out []Promotion
	if err := s.getJSON(ctx, "/api/promotions/public", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPSource) Diets(ctx context.Context, campID, propertyID string) ([]Diet, error) {
	var out []Diet
	path := fmt.Sprintf("/api/camps/%s/properties/%s/diets", campID, propertyID)
	if err := s.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TransportCities normalizes the two response shapes the backend has shipped
// over time: a bare city name (legacy) and a {name, price, active} object.
// Callers only ever see the canonical TransportCity.
func (s *HTTPSource) TransportCities(ctx context.Context, campID, propertyID string) ([]TransportCity, error) {
	var raw []json.RawMessage
	path := fmt.Sprintf("/api/camps/%s/properties/%s/transport/cities", campID, propertyID)
	if err := s.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	cities := make([]TransportCity, 0, len(raw))
	for _, entry := range raw {
		city, err := normalizeCity(entry)
		if err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", path, err)
		}
		cities = append(cities, city)
	}
	return cities, nil
}

func normalizeCity(entry json.RawMessage) (TransportCity, error) {
	var name string
	if err := json.Unmarshal(entry, &name); err == nil {
		// Legacy shape: price unknown until the backend is asked again, so 0.
		return TransportCity{Name: name, Active: true}, nil
	}
	var city struct {
		Name   string   `json:"name"`
		City   string   `json:"city"`
		Price  *float64 `json:"price"`
		Active *bool    `json:"active"`
	}
	if err := json.Unmarshal(entry, &city); err != nil {
		return TransportCity{}, fmt.Errorf("unrecognized city shape: %w", err)
	}
	out := TransportCity{Name: city.Name, Active: true}
	if out.Name == "" {
		out.Name = city.City
	}
	if city.Price != nil {
		out.Price = *city.Price
	}
	if city.Active != nil {
		out.Active = *city.Active
	}
	return out, nil
}

func (s *HTTPSource) Documents(ctx context.Context) ([]Document, error) {
	var out []Document
	if err := s.getJSON(ctx, "/api/documents/public", &out); err != nil {
		return nil, err
	}
	return out, nil
}
