package http

import (
	"encoding/json"
	"net/http"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/service"

	"github.com/gorilla/mux"
)

type SettingsHandlers struct {
	settings service.SettingsService
	calendar service.CalendarService
}

func NewSettingsHandlers(settings service.SettingsService, calendar service.CalendarService) *SettingsHandlers {
	return &SettingsHandlers{settings: settings, calendar: calendar}
}

func (h *SettingsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandlers) Update(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "no settings provided")
		return
	}
	if err := h.settings.UpdateMultipleSettings(r.Context(), updates, auth.Actor); err != nil {
		writeDomainError(w, err)
		return
	}
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandlers) ListClosedDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.calendar.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dates)
}

func (h *SettingsHandlers) AddClosedDate(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	var body struct {
		Date      time.Time `json:"date"`
		Reason    string    `json:"reason"`
		Recurring bool      `json:"recurring"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := h.calendar.Add(r.Context(), body.Date, body.Reason, body.Recurring, auth.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, date)
}

func (h *SettingsHandlers) RemoveClosedDate(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	if err := h.calendar.Remove(r.Context(), mux.Vars(r)["id"], auth.Actor); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *SettingsHandlers) ListCategoryLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := h.settings.ListCategoryLimits(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, limits)
}

func (h *SettingsHandlers) SetCategoryLimit(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	var body struct {
		CategoryID   string `json:"categoryId"`
		CategoryName string `json:"categoryName"`
		Limit        int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.settings.SetCategoryLimit(r.Context(), body.CategoryID, body.CategoryName, body.Limit, auth.Actor); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *SettingsHandlers) RemoveCategoryLimit(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	if err := h.settings.RemoveCategoryLimit(r.Context(), mux.Vars(r)["categoryId"], auth.Actor); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *SettingsHandlers) Export(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	includeSensitive := r.URL.Query().Get("includeSensitive") == "true"
	export, err := h.settings.ExportSettings(r.Context(), includeSensitive, auth.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=settings-export.json")
	writeJSON(w, http.StatusOK, export)
}

func (h *SettingsHandlers) Import(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	var export domain.SettingsExport
	if err := json.NewDecoder(r.Body).Decode(&export); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	stats, err := h.settings.ImportSettings(r.Context(), &export, auth.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *SettingsHandlers) Backup(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	backup, err := h.settings.CreateBackup(r.Context(), auth.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, backup)
}
