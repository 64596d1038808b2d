package http

import (
	"net/http"

	"equipshare-backend/internal/metrics"
	"equipshare-backend/internal/security"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Loans         *LoanHandlers
	Settings      *SettingsHandlers
	Notifications *NotificationHandlers
}

// NewRouter wires all routes with auth and rate limiting applied to the
// API surface. Health and metrics stay outside both.
func NewRouter(h Handlers, tokens security.TokenManager, limiter *RateLimiter) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(limiter.Handler)
	api.Use(NewAuthMiddleware(tokens).Handler)
	api.Use(countRequests)

	// Loan lifecycle.
	api.HandleFunc("/loans", h.Loans.Create).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.Loans.List).Methods(http.MethodGet)
	api.HandleFunc("/loans/limit-check", h.Loans.CheckLimit).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", h.Loans.Get).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/approve", staffOnly(h.Loans.Approve)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/reject", staffOnly(h.Loans.Reject)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/pickup", staffOnly(h.Loans.MarkPickedUp)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/return", staffOnly(h.Loans.MarkReturned)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/cancel", h.Loans.Cancel).Methods(http.MethodPost)

	// Settings governance.
	api.HandleFunc("/settings", adminOnly(h.Settings.Get)).Methods(http.MethodGet)
	api.HandleFunc("/settings", adminOnly(h.Settings.Update)).Methods(http.MethodPut)
	api.HandleFunc("/settings/export", adminOnly(h.Settings.Export)).Methods(http.MethodGet)
	api.HandleFunc("/settings/import", adminOnly(h.Settings.Import)).Methods(http.MethodPost)
	api.HandleFunc("/settings/backup", adminOnly(h.Settings.Backup)).Methods(http.MethodPost)
	api.HandleFunc("/settings/closed-dates", h.Settings.ListClosedDates).Methods(http.MethodGet)
	api.HandleFunc("/settings/closed-dates", adminOnly(h.Settings.AddClosedDate)).Methods(http.MethodPost)
	api.HandleFunc("/settings/closed-dates/{id}", adminOnly(h.Settings.RemoveClosedDate)).Methods(http.MethodDelete)
	api.HandleFunc("/settings/category-limits", h.Settings.ListCategoryLimits).Methods(http.MethodGet)
	api.HandleFunc("/settings/category-limits", adminOnly(h.Settings.SetCategoryLimit)).Methods(http.MethodPut)
	api.HandleFunc("/settings/category-limits/{categoryId}", adminOnly(h.Settings.RemoveCategoryLimit)).Methods(http.MethodDelete)

	// Notifications.
	api.HandleFunc("/notifications", h.Notifications.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", h.Notifications.MarkRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id}/respond", h.Notifications.Respond).Methods(http.MethodPost)

	return r
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}
		metrics.IncHTTP(endpoint)
		next.ServeHTTP(w, r)
	})
}
