package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"obozy/internal/service"
)

// CatalogHandler serves the public read-only catalogs the wizard sections
// fetch: addons, protections, promotions, per-turnus diets and transport
// cities, and document templates.
type CatalogHandler struct {
	Service *service.CampService
}

func NewCatalogHandler(svc *service.CampService) *CatalogHandler {
	return &CatalogHandler{Service: svc}
}

func (h *CatalogHandler) ListCamps(w http.ResponseWriter, r *http.Request) {
	camps, err := h.Service.ListCamps(true)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, camps)
}

func (h *CatalogHandler) GetCamp(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid camp ID", http.StatusBadRequest)
		return
	}
	camp, err := h.Service.GetCamp(id)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if camp == nil {
		http.Error(w, "Camp not found", http.StatusNotFound)
		return
	}
	writeJSON(w, camp)
}

func (h *CatalogHandler) ListEditions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid camp ID", http.StatusBadRequest)
		return
	}
	editions, err := h.Service.ListEditions(id)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, editions)
}

func (h *CatalogHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	campID, propID, ok := propertyVars(w, r)
	if !ok {
		return
	}
	property, err := h.Service.GetProperty(campID, propID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if property == nil {
		http.Error(w, "Property not found", http.StatusNotFound)
		return
	}
	writeJSON(w, property)
}

func (h *CatalogHandler) ListDiets(w http.ResponseWriter, r *http.Request) {
	_, propID, ok := propertyVars(w, r)
	if !ok {
		return
	}
	diets, err := h.Service.ListDiets(propID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, diets)
}

func (h *CatalogHandler) ListTransportCities(w http.ResponseWriter, r *http.Request) {
	_, propID, ok := propertyVars(w, r)
	if !ok {
		return
	}
	cities, err := h.Service.ListTransportCities(propID, true)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, cities)
}

func (h *CatalogHandler) ListAddons(w http.ResponseWriter, r *http.Request) {
	addons, err := h.Service.ListPublicAddons()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, addons)
}

func (h *CatalogHandler) ListAddonDescriptions(w http.ResponseWriter, r *http.Request) {
	addons, err := h.Service.ListAddonDescriptions(r.URL.Query().Get("addon_id"))
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, addons)
}

func (h *CatalogHandler) ListProtections(w http.ResponseWriter, r *http.Request) {
	protections, err := h.Service.ListPublicProtections()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, protections)
}

func (h *CatalogHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.Service.ListPublicPromotions()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, promotions)
}

func (h *CatalogHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Service.ListPublicDocuments()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, docs)
}

// UploadDietIcon accepts a multipart icon upload and returns the URL the icon
// is served under.
func (h *CatalogHandler) UploadDietIcon(w http.ResponseWriter, r *http.Request) {
	const maxUploadBytes = 2 << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "File too large or malformed upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("icon")
	if err != nil {
		http.Error(w, "Missing icon file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".svg", ".webp":
	default:
		http.Error(w, "Unsupported icon format", http.StatusBadRequest)
		return
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		http.Error(w, "Could not store icon", http.StatusInternalServerError)
		return
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(uploadDir, name))
	if err != nil {
		http.Error(w, "Could not store icon", http.StatusInternalServerError)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		http.Error(w, "Could not store icon", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"url": fmt.Sprintf("/uploads/%s", name)})
}

func propertyVars(w http.ResponseWriter, r *http.Request) (campID, propID int, ok bool) {
	vars := mux.Vars(r)
	campID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "Invalid camp ID", http.StatusBadRequest)
		return 0, 0, false
	}
	propID, err = strconv.Atoi(vars["propId"])
	if err != nil {
		http.Error(w, "Invalid property ID", http.StatusBadRequest)
		return 0, 0, false
	}
	return campID, propID, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
