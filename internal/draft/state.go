package draft

import "encoding/json"

// TransportData holds the transport section's slice of the wizard draft.
// Departure and return legs are configured independently; DifferentCities is
// derived (both legs collective, different collection cities) and drives the
// one-time confirmation modal on the client.
type TransportData struct {
	DepartureType   string `json:"departureType"`
	DepartureCity   string `json:"departureCity"`
	ReturnType      string `json:"returnType"`
	ReturnCity      string `json:"returnCity"`
	DifferentCities bool   `json:"differentCities"`
}

// State is the whole wizard draft, persisted as one JSON blob per session.
// Field names mirror the blob the legacy client wrote so old sessions keep
// loading. SelectedProtection is the legacy shape (scalar or array of display
// names); SelectedProtectionIDs is the current shape. Both are written on save.
type State struct {
	CampID                  string                 `json:"campId,omitempty"`
	PropertyID              string                 `json:"propertyId,omitempty"`
	SelectedDiets           []string               `json:"selectedDiets"`
	SelectedAddons          []string               `json:"selectedAddons"`
	SelectedProtection      FlexStrings            `json:"selectedProtection"`
	SelectedProtectionIDs   []string               `json:"selectedProtectionIds"`
	SelectedPromotion       string                 `json:"selectedPromotion"`
	PromotionJustification  map[string]interface{} `json:"promotionJustification,omitempty"`
	Transport               TransportData          `json:"transportData"`
	TransportModalConfirmed bool                   `json:"transportModalConfirmed"`
	SelectedSource          string                 `json:"selectedSource"`
	InneText                string                 `json:"inneText"`
}

// FlexStrings tolerates the legacy scalar shape: older drafts stored a single
// protection name as a plain string, newer ones an array.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*f = nil
		} else {
			*f = FlexStrings{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*f = FlexStrings(many)
	return nil
}
