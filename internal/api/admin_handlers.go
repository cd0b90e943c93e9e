package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"obozy/internal/db"
	"obozy/internal/service"
)

type AdminHandler struct {
	Camps        *service.CampService
	Reservations *service.ReservationService
}

func NewAdminHandler(camps *service.CampService, reservations *service.ReservationService) *AdminHandler {
	return &AdminHandler{Camps: camps, Reservations: reservations}
}

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	campID := r.URL.Query().Get("camp_id")
	status := r.URL.Query().Get("status")
	date := r.URL.Query().Get("date")
	reservations, err := h.Reservations.ListReservations(campID, status, date)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, reservations)
}

func (h *AdminHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	reservation, err := h.Reservations.GetReservationByID(id)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if reservation == nil {
		http.Error(w, "Reservation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, reservation)
}

// DeleteReservation is intentionally not wired to a real delete: the admin
// panel shows the confirmation dialog but removal is still to be implemented.
func (h *AdminHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Reservation deletion is not implemented", http.StatusNotImplemented)
}

func (h *AdminHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := h.Reservations.CancelReservation(id); err != nil {
		http.Error(w, "Could not cancel reservation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "Reservation cancelled"})
}

func (h *AdminHandler) CreateCamp(w http.ResponseWriter, r *http.Request) {
	var camp db.Camp
	if err := json.NewDecoder(r.Body).Decode(&camp); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Camps.CreateCamp(&camp); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, camp)
}

func (h *AdminHandler) UpdateCamp(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid camp ID", http.StatusBadRequest)
		return
	}
	var camp db.Camp
	if err := json.NewDecoder(r.Body).Decode(&camp); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	camp.ID = id
	if err := h.Camps.UpdateCamp(&camp); err != nil {
		http.Error(w, "Could not update camp", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "Camp updated"})
}

func (h *AdminHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	campID, propID, ok := propertyVars(w, r)
	if !ok {
		return
	}
	var property db.CampProperty
	if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	property.ID = propID
	property.CampID = campID
	if err := h.Camps.UpdateProperty(&property); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"message": "Property updated"})
}

func (h *AdminHandler) CreateDiet(w http.ResponseWriter, r *http.Request) {
	_, propID, ok := propertyVars(w, r)
	if !ok {
		return
	}
	var diet db.Diet
	if err := json.NewDecoder(r.Body).Decode(&diet); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	diet.PropertyID = propID
	if err := h.Camps.CreateDiet(&diet); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, diet)
}

func (h *AdminHandler) UpdateDiet(w http.ResponseWriter, r *http.Request) {
	_, propID, ok := propertyVars(w, r)
	if !ok {
		return
	}
	dietID, err := strconv.Atoi(mux.Vars(r)["dietId"])
	if err != nil {
		http.Error(w, "Invalid diet ID", http.StatusBadRequest)
		return
	}
	var diet db.Diet
	if err := json.NewDecoder(r.Body).Decode(&diet); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	diet.ID = dietID
	diet.PropertyID = propID
	if err := h.Camps.UpdateDiet(&diet); err != nil {
		http.Error(w, "Could not update diet", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "Diet updated"})
}

func (h *AdminHandler) DeleteDiet(w http.ResponseWriter, r *http.Request) {
	_, propID, ok := propertyVars(w, r)
	if !ok {
		return
	}
	dietID, err := strconv.Atoi(mux.Vars(r)["dietId"])
	if err != nil {
		http.Error(w, "Invalid diet ID", http.StatusBadRequest)
		return
	}
	if err := h.Camps.DeleteDiet(propID, dietID); err != nil {
		http.Error(w, "Could not delete diet", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "Diet deleted"})
}

func (h *AdminHandler) ReplaceTransport(w http.ResponseWriter, r *http.Request) {
	_, propID, ok := propertyVars(w, r)
	if !ok {
		return
	}
	var cities []db.TransportCity
	if err := json.NewDecoder(r.Body).Decode(&cities); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Camps.ReplaceTransportCities(propID, cities); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"message": "Transport cities updated"})
}

func (h *AdminHandler) DeleteTransport(w http.ResponseWriter, r *http.Request) {
	_, propID, ok := propertyVars(w, r)
	if !ok {
		return
	}
	if err := h.Camps.DeleteTransportCities(propID); err != nil {
		http.Error(w, "Could not delete transport assignment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "Transport assignment deleted"})
}

func (h *AdminHandler) ListAvailableTransport(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Camps.ListAvailableTransportCities()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, cities)
}
