package wizard

import (
	"context"
	"fmt"
	"log"
	"sync"

	"obozy/internal/catalog"
	"obozy/internal/draft"
	"obozy/internal/reservation"
)

const (
	TransportCollective = "collective"
	TransportOwn        = "own"

	SourceOther = "inne"
)

// Session is one wizard session: the ledger of priced line items, the section
// states reconciling against it, and the validators gating step progression.
// It is rebuilt from the persisted draft plus freshly fetched catalogs after a
// server restart or when the client resumes, mirroring how the wizard survives
// a page reload.
type Session struct {
	ID         string
	CampID     string
	PropertyID string

	mu         sync.Mutex
	store      draft.Store
	src        catalog.Source
	ledger     *reservation.Ledger
	validators *ValidatorRegistry

	addons     *multiSelect
	diets      *multiSelect
	protection *multiSelect

	addonCat      map[string]catalogItem
	dietCat       map[string]catalogItem
	protectionCat map[string]catalogItem
	promotions    map[string]catalog.Promotion
	cities        map[string]catalog.TransportCity

	promotion     string
	justification map[string]interface{}

	transport          draft.TransportData
	transportConfirmed bool

	source   string
	inneText string
}

// NewSession hydrates section state from the persisted draft, fetches each
// section's catalog (independently; a failed fetch degrades that section to an
// empty catalog), and replays previously-selected items into the ledger.
func NewSession(ctx context.Context, id string, store draft.Store, src catalog.Source) (*Session, error) {
	st, err := store.Load(ctx, id)
	if err != nil {
		log.Printf("wizard: session %s: loading draft failed, starting from defaults: %v", id, err)
	}
	if st == nil {
		st = &draft.State{}
	}

	s := &Session{
		ID:         id,
		CampID:     st.CampID,
		PropertyID: st.PropertyID,
		store:      store,
		src:        src,
		ledger:     reservation.NewLedger(),
		validators: NewValidatorRegistry(),
		addons:     newMultiSelect(reservation.TypeAddon),
		diets:      newMultiSelect(reservation.TypeDiet),
		protection: newMultiSelect(reservation.TypeProtection),
	}

	s.fetchCatalogs(ctx)

	s.addons.hydrate(st.SelectedAddons)
	s.diets.hydrate(st.SelectedDiets)
	s.protection.hydrate(s.protectionIDsFromDraft(st))
	s.promotion = st.SelectedPromotion
	s.justification = st.PromotionJustification
	s.transport = st.Transport
	s.transportConfirmed = st.TransportModalConfirmed
	s.source = st.SelectedSource
	s.inneText = st.InneText

	s.addons.replay(s.ledger, s.addonCat)
	s.diets.replay(s.ledger, s.dietCat)
	s.protection.replay(s.ledger, s.protectionCat)
	s.replayPromotion()
	s.reconcileTransport(s.transport)

	s.validators.Register("transport", s.transportValid)
	s.validators.Register("source", s.sourceValid)

	return s, nil
}

func (s *Session) fetchCatalogs(ctx context.Context) {
	addons, err := s.src.Addons(ctx)
	if err != nil {
		log.Printf("wizard: session %s: addons catalog unavailable: %v", s.ID, err)
	}
	s.addonCat = make(map[string]catalogItem, len(addons))
	for _, a := range addons {
		s.addonCat[a.ID.String()] = catalogItem{ID: a.ID.String(), Name: a.Name, Price: a.Price}
	}

	protections, err := s.src.Protections(ctx)
	if err != nil {
		log.Printf("wizard: session %s: protections catalog unavailable: %v", s.ID, err)
	}
	s.protectionCat = make(map[string]catalogItem, len(protections))
	for _, p := range protections {
		s.protectionCat[p.ID.String()] = catalogItem{ID: p.ID.String(), Name: p.Name, Price: p.Price}
	}

	promotions, err := s.src.Promotions(ctx)
	if err != nil {
		log.Printf("wizard: session %s: promotions catalog unavailable: %v", s.ID, err)
	}
	s.promotions = make(map[string]catalog.Promotion, len(promotions))
	for _, p := range promotions {
		s.promotions[p.ID.String()] = p
	}

	diets, err := s.src.Diets(ctx, s.CampID, s.PropertyID)
	if err != nil {
		log.Printf("wizard: session %s: diets catalog unavailable: %v", s.ID, err)
	}
	s.dietCat = make(map[string]catalogItem, len(diets))
	for _, d := range diets {
		s.dietCat[d.ID.String()] = catalogItem{ID: d.ID.String(), Name: d.Name, Price: d.Price}
	}

	cities, err := s.src.TransportCities(ctx, s.CampID, s.PropertyID)
	if err != nil {
		log.Printf("wizard: session %s: transport cities unavailable: %v", s.ID, err)
	}
	s.cities = make(map[string]catalog.TransportCity, len(cities))
	for _, c := range cities {
		if c.Active {
			s.cities[c.Name] = c
		}
	}
}

// protectionIDsFromDraft prefers the ID-based shape; older drafts carried only
// display names, which are matched against the freshly fetched catalog.
func (s *Session) protectionIDsFromDraft(st *draft.State) []string {
	if len(st.SelectedProtectionIDs) > 0 {
		return st.SelectedProtectionIDs
	}
	var ids []string
	for _, name := range st.SelectedProtection {
		for _, ci := range s.protectionCat {
			if ci.Name == name {
				ids = append(ids, ci.ID)
				break
			}
		}
	}
	return ids
}

func (s *Session) replayPromotion() {
	if s.promotion == "" {
		return
	}
	itemID := deterministicItemID(reservation.TypePromotion, s.promotion)
	if _, exists := s.ledger.ItemByID(itemID); exists {
		return
	}
	promo, inCatalog := s.promotions[s.promotion]
	if !inCatalog {
		return
	}
	if _, found := s.ledger.FindByTypeAndName(reservation.TypePromotion, promo.Name); found {
		return
	}
	s.ledger.AddItem(reservation.LineItem{
		Name:  promo.Name,
		Price: promo.Price,
		Type:  reservation.TypePromotion,
	}, itemID)
}

// persist dispatches a section action to the draft store. Persistence failure
// degrades to "nothing saved this tick": the in-memory state stays
// authoritative and the error is only logged.
func (s *Session) persist(ctx context.Context, action draft.Action) {
	if _, err := s.store.Apply(ctx, s.ID, action); err != nil {
		log.Printf("wizard: session %s: persisting draft failed: %v", s.ID, err)
	}
}

func (s *Session) SetAddons(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addons.set(s.ledger, s.addonCat, ids)
	s.persist(ctx, draft.AddonsAction{SelectedAddons: s.addons.selected})
	return nil
}

func (s *Session) SetDiets(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diets.set(s.ledger, s.dietCat, ids)
	s.persist(ctx, draft.DietsAction{SelectedDiets: s.diets.selected})
	return nil
}

func (s *Session) SetProtections(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protection.set(s.ledger, s.protectionCat, ids)
	names := make([]string, 0, len(s.protection.selected))
	for _, id := range s.protection.selected {
		if ci, ok := s.protectionCat[id]; ok {
			names = append(names, ci.Name)
		}
	}
	s.persist(ctx, draft.ProtectionAction{SelectedIDs: s.protection.selected, SelectedNames: names})
	return nil
}

// SetPromotion swaps the single promotion line item. Selecting the already
// selected promotion is a no-op; selecting "" clears it.
func (s *Session) SetPromotion(ctx context.Context, id string, justification map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.promotion {
		if justification != nil {
			s.justification = justification
			s.persist(ctx, draft.PromotionAction{SelectedPromotion: id, Justification: justification})
		}
		return nil
	}
	var promo catalog.Promotion
	if id != "" {
		var inCatalog bool
		promo, inCatalog = s.promotions[id]
		if !inCatalog {
			return fmt.Errorf("wizard: unknown promotion %q", id)
		}
	}
	s.ledger.RemoveItemsByType(reservation.TypePromotion)
	if id != "" {
		s.ledger.AddItem(reservation.LineItem{
			Name:  promo.Name,
			Price: promo.Price,
			Type:  reservation.TypePromotion,
		}, deterministicItemID(reservation.TypePromotion, id))
	}
	s.promotion = id
	s.justification = justification
	s.persist(ctx, draft.PromotionAction{SelectedPromotion: id, Justification: justification})
	return nil
}

// SetTransport reconciles the transport selection. When either leg uses
// collective transport the single billed line item is priced at the higher of
// the two legs, a deliberate business rule. The returned flag asks the client
// to raise the city-mismatch confirmation once per selection.
func (s *Session) SetTransport(ctx context.Context, data draft.TransportData) (requiresConfirmation bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data.DepartureType != "" && data.DepartureType != TransportCollective && data.DepartureType != TransportOwn {
		return false, fmt.Errorf("wizard: unknown departure type %q", data.DepartureType)
	}
	if data.ReturnType != "" && data.ReturnType != TransportCollective && data.ReturnType != TransportOwn {
		return false, fmt.Errorf("wizard: unknown return type %q", data.ReturnType)
	}

	incoming := data
	incoming.DifferentCities = false
	current := s.transport
	current.DifferentCities = false
	if incoming != current {
		// New selection, the earlier modal dismissal no longer applies.
		s.transportConfirmed = false
	}
	mismatch := s.reconcileTransport(data)
	data.DifferentCities = mismatch
	s.transport = data
	s.persist(ctx, draft.TransportAction{Data: s.transport, ModalConfirmed: s.transportConfirmed})
	return mismatch && !s.transportConfirmed, nil
}

// reconcileTransport rebuilds the single transport line item from the given
// selection and reports whether the collection cities differ. Also used during
// replay, where prices come from the freshly fetched catalog.
func (s *Session) reconcileTransport(data draft.TransportData) bool {
	s.ledger.RemoveItemsByType(reservation.TypeTransport)

	var departurePrice, returnPrice float64
	var billedCity string
	collective := false

	if data.DepartureType == TransportCollective && data.DepartureCity != "" {
		collective = true
		if city, ok := s.cities[data.DepartureCity]; ok {
			departurePrice = city.Price
		}
		billedCity = data.DepartureCity
	}
	if data.ReturnType == TransportCollective && data.ReturnCity != "" {
		collective = true
		if city, ok := s.cities[data.ReturnCity]; ok {
			returnPrice = city.Price
		}
		// The pricier leg names the item.
		if returnPrice > departurePrice || billedCity == "" {
			billedCity = data.ReturnCity
		}
	}
	if !collective {
		return false
	}

	// Bill the higher of the two legs, not their sum.
	price := departurePrice
	if returnPrice > price {
		price = returnPrice
	}
	s.ledger.AddItem(reservation.LineItem{
		Name:  fmt.Sprintf("Transport zbiorowy (%s)", billedCity),
		Price: price,
		Type:  reservation.TypeTransport,
	}, deterministicItemID(reservation.TypeTransport, billedCity))

	return data.DepartureType == TransportCollective &&
		data.ReturnType == TransportCollective &&
		data.DepartureCity != "" && data.ReturnCity != "" &&
		data.DepartureCity != data.ReturnCity
}

// ConfirmTransportCities latches the one-time city-mismatch confirmation so
// the modal does not reappear for the same selection.
func (s *Session) ConfirmTransportCities(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transportConfirmed = true
	s.persist(ctx, draft.TransportAction{Data: s.transport, ModalConfirmed: true})
}

func (s *Session) SetSource(ctx context.Context, source, inneText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
	if source != SourceOther {
		inneText = ""
	}
	s.inneText = inneText
	s.persist(ctx, draft.SourceAction{SelectedSource: source, InneText: inneText})
	return nil
}

func (s *Session) transportValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.transport
	if d.DepartureType == "" || d.ReturnType == "" {
		return false
	}
	if d.DepartureType == TransportCollective && d.DepartureCity == "" {
		return false
	}
	if d.ReturnType == TransportCollective && d.ReturnCity == "" {
		return false
	}
	if d.DifferentCities && !s.transportConfirmed {
		return false
	}
	return true
}

func (s *Session) sourceValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == "" {
		return false
	}
	if s.source == SourceOther && s.inneText == "" {
		return false
	}
	return true
}

// Validate runs all registered section validators, short-circuiting on the
// first failure.
func (s *Session) Validate() (ok bool, failedSection string) {
	return s.validators.ValidateAll()
}

func (s *Session) Validators() *ValidatorRegistry {
	return s.validators
}

func (s *Session) Items() []reservation.LineItem {
	return s.ledger.Items()
}

func (s *Session) Total() float64 {
	return s.ledger.Total()
}

func (s *Session) Ledger() *reservation.Ledger {
	return s.ledger
}

// Draft assembles the current section state in the persisted-blob shape, for
// clients that render from it.
func (s *Session) Draft() draft.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.protection.selected))
	for _, id := range s.protection.selected {
		if ci, ok := s.protectionCat[id]; ok {
			names = append(names, ci.Name)
		}
	}
	return draft.State{
		CampID:                  s.CampID,
		PropertyID:              s.PropertyID,
		SelectedDiets:           append([]string(nil), s.diets.selected...),
		SelectedAddons:          append([]string(nil), s.addons.selected...),
		SelectedProtection:      draft.FlexStrings(names),
		SelectedProtectionIDs:   append([]string(nil), s.protection.selected...),
		SelectedPromotion:       s.promotion,
		PromotionJustification:  s.justification,
		Transport:               s.transport,
		TransportModalConfirmed: s.transportConfirmed,
		SelectedSource:          s.source,
		InneText:                s.inneText,
	}
}
