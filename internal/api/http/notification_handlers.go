package http

import (
	"encoding/json"
	"net/http"

	"equipshare-backend/internal/service"

	"github.com/gorilla/mux"
)

type NotificationHandlers struct {
	notifications service.NotificationService
}

func NewNotificationHandlers(notifications service.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notifications: notifications}
}

func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	page, pageSize := pagination(r)
	items, total, err := h.notifications.ListForUser(r.Context(), auth.Actor.ID, page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	if err := h.notifications.MarkRead(r.Context(), mux.Vars(r)["id"], auth.Actor.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *NotificationHandlers) Respond(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	var body struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.notifications.Respond(r.Context(), mux.Vars(r)["id"], auth.Actor.ID, body.Response); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
