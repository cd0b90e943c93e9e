package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	httperrors "obozy/internal/errors"
	"obozy/internal/signing"
)

type SigningHandler struct {
	Service *signing.Service
}

func NewSigningHandler(svc *signing.Service) *SigningHandler {
	return &SigningHandler{Service: svc}
}

func (h *SigningHandler) RequestSMSCode(w http.ResponseWriter, r *http.Request) {
	var req RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.ReservationID == "" || req.DocumentType == "" || req.Phone == "" {
		http.Error(w, "reservation_id, document_type and phone are required", http.StatusBadRequest)
		return
	}
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	doc, err := h.Service.RequestCode(r.Context(), req.ReservationID, req.DocumentType, payload, req.Phone)
	if err != nil {
		writeSigningError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RequestCodeResponse{DocumentID: doc.ID, Status: string(doc.Status)})
}

func (h *SigningHandler) VerifySMSCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	doc, err := h.Service.VerifyCode(r.Context(), req.DocumentID, req.Code)
	if err != nil {
		writeSigningError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (h *SigningHandler) ResendSMSCode(w http.ResponseWriter, r *http.Request) {
	var req ResendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Service.ResendCode(r.Context(), req.DocumentID); err != nil {
		writeSigningError(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Code resent"})
}

func (h *SigningHandler) ListForReservation(w http.ResponseWriter, r *http.Request) {
	reservationID := mux.Vars(r)["id"]
	docs, err := h.Service.DocumentsForReservation(r.Context(), reservationID)
	if err != nil {
		http.Error(w, "Could not list documents", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs)
}

// writeSigningError maps the signing flow's sentinel errors to HTTP statuses.
func writeSigningError(w http.ResponseWriter, err error) {
	var httpErr *httperrors.HTTPError
	switch {
	case errors.Is(err, signing.ErrSigningBlocked):
		httpErr = httperrors.NewHTTPError(http.StatusConflict, "Document already signed or under verification")
	case errors.Is(err, signing.ErrResendCooldown):
		httpErr = httperrors.NewHTTPError(http.StatusTooManyRequests, "Please wait before requesting another code")
	case errors.Is(err, signing.ErrMalformedCode):
		httpErr = httperrors.NewHTTPError(http.StatusBadRequest, "Code must be exactly 4 digits")
	case errors.Is(err, signing.ErrCodeMismatch):
		httpErr = httperrors.NewHTTPError(http.StatusUnprocessableEntity, "Incorrect code")
	case errors.Is(err, signing.ErrNotRequested):
		httpErr = httperrors.NewHTTPError(http.StatusConflict, "No pending code for this document")
	case errors.Is(err, signing.ErrNotFound):
		httpErr = httperrors.NewHTTPError(http.StatusNotFound, "Document not found")
	default:
		httpErr = httperrors.NewHTTPError(http.StatusInternalServerError, "Signing operation failed")
	}
	http.Error(w, httpErr.Message, httpErr.Code)
}
