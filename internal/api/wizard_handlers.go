package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"obozy/internal/draft"
	"obozy/internal/entities"
	"obozy/internal/service"
	"obozy/internal/wizard"
)

type WizardHandler struct {
	Manager *wizard.Manager
	Service *service.ReservationService
}

func NewWizardHandler(manager *wizard.Manager, svc *service.ReservationService) *WizardHandler {
	return &WizardHandler{Manager: manager, Service: svc}
}

func (h *WizardHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	session, err := h.Manager.Create(r.Context(), req.CampID, req.PropertyID)
	if err != nil {
		http.Error(w, "Could not create session", http.StatusInternalServerError)
		return
	}
	writeSession(w, session)
}

func (h *WizardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeSession(w, session)
}

func (h *WizardHandler) UpdateAddons(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := session.SetAddons(r.Context(), req.SelectedIDs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeSession(w, session)
}

func (h *WizardHandler) UpdateDiets(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := session.SetDiets(r.Context(), req.SelectedIDs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeSession(w, session)
}

func (h *WizardHandler) UpdateProtections(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := session.SetProtections(r.Context(), req.SelectedIDs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeSession(w, session)
}

func (h *WizardHandler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req PromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := session.SetPromotion(r.Context(), req.PromotionID, req.Justification); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeSession(w, session)
}

func (h *WizardHandler) UpdateTransport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req TransportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	requiresConfirmation, err := session.SetTransport(r.Context(), draft.TransportData{
		DepartureType: req.DepartureType,
		DepartureCity: req.DepartureCity,
		ReturnType:    req.ReturnType,
		ReturnCity:    req.ReturnCity,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TransportResponse{
		RequiresConfirmation: requiresConfirmation,
		Items:                session.Items(),
		Total:                session.Total(),
	})
}

func (h *WizardHandler) ConfirmTransport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.ConfirmTransportCities(r.Context())
	writeSession(w, session)
}

func (h *WizardHandler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := session.SetSource(r.Context(), req.Source, req.InneText); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeSession(w, session)
}

func (h *WizardHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	valid, failed := session.Validate()
	status := http.StatusOK
	if !valid {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ValidateResponse{Valid: valid, FailedSection: failed})
}

func (h *WizardHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req entities.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.SubmitWizard(session, &req)
	if err != nil {
		var validationErr *entities.ValidationError
		if errors.As(err, &validationErr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(ValidateResponse{Valid: false, FailedSection: validationErr.Section})
			return
		}
		http.Error(w, "Could not submit reservation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp)
}

func (h *WizardHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	res, err := h.Service.GetReservationByCode(code)
	if err != nil || res == nil {
		http.Error(w, "Reservation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, res)
}

func (h *WizardHandler) session(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	id := mux.Vars(r)["id"]
	session, err := h.Manager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, wizard.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
		} else {
			http.Error(w, "Could not load session", http.StatusInternalServerError)
		}
		return nil, false
	}
	return session, true
}

func writeSession(w http.ResponseWriter, session *wizard.Session) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SessionResponse{
		SessionID: session.ID,
		Items:     session.Items(),
		Total:     session.Total(),
		Draft:     session.Draft(),
	})
}
