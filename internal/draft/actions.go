package draft

// Action is a section-scoped mutation of the draft. Each section dispatches
// its own action type through Store.Apply, so a section can never clobber a
// sibling section's keys: the action touches only the fields it owns.
type Action interface {
	apply(s *State)
}

// InitAction materializes the blob when a wizard session is first created and
// pins the camp edition the session books against.
type InitAction struct {
	CampID     string
	PropertyID string
}

func (a InitAction) apply(s *State) {
	if a.CampID != "" {
		s.CampID = a.CampID
	}
	if a.PropertyID != "" {
		s.PropertyID = a.PropertyID
	}
}

type DietsAction struct {
	SelectedDiets []string
}

func (a DietsAction) apply(s *State) {
	s.SelectedDiets = a.SelectedDiets
}

type AddonsAction struct {
	SelectedAddons []string
}

func (a AddonsAction) apply(s *State) {
	s.SelectedAddons = a.SelectedAddons
}

// ProtectionAction writes both the current ID-based shape and the legacy
// name-based one, keeping old readers working mid-migration.
type ProtectionAction struct {
	SelectedIDs   []string
	SelectedNames []string
}

func (a ProtectionAction) apply(s *State) {
	s.SelectedProtectionIDs = a.SelectedIDs
	s.SelectedProtection = FlexStrings(a.SelectedNames)
}

type PromotionAction struct {
	SelectedPromotion string
	Justification     map[string]interface{}
}

func (a PromotionAction) apply(s *State) {
	s.SelectedPromotion = a.SelectedPromotion
	s.PromotionJustification = a.Justification
}

type TransportAction struct {
	Data           TransportData
	ModalConfirmed bool
}

func (a TransportAction) apply(s *State) {
	s.Transport = a.Data
	s.TransportModalConfirmed = a.ModalConfirmed
}

type SourceAction struct {
	SelectedSource string
	InneText       string
}

func (a SourceAction) apply(s *State) {
	s.SelectedSource = a.SelectedSource
	s.InneText = a.InneText
}
