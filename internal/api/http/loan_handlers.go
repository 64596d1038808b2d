package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/service"

	"github.com/gorilla/mux"
)

type LoanHandlers struct {
	loans  service.LoanService
	limits service.CategoryLimitService
}

func NewLoanHandlers(loans service.LoanService, limits service.CategoryLimitService) *LoanHandlers {
	return &LoanHandlers{loans: loans, limits: limits}
}

func pagination(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}

func (h *LoanHandlers) Create(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	var input service.CreateLoanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	loan, err := h.loans.Create(r.Context(), input, auth.Actor.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *LoanHandlers) Get(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	loan, err := h.loans.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// Members only see their own requests.
	if !auth.Role.CanManageLoans() && loan.RequesterID != auth.Actor.ID {
		writeError(w, http.StatusForbidden, "not your loan request")
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoanHandlers) List(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	page, pageSize := pagination(r)
	status := r.URL.Query().Get("status")

	var (
		loans []domain.LoanRequest
		total int32
		err   error
	)
	if auth.Role.CanManageLoans() {
		loans, total, err = h.loans.List(r.Context(), status, page, pageSize)
	} else {
		loans, total, err = h.loans.ListByRequester(r.Context(), auth.Actor.ID, status, page, pageSize)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: loans, Total: total, Page: page, PageSize: pageSize})
}

func (h *LoanHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	loan, err := h.loans.Approve(r.Context(), mux.Vars(r)["id"], auth.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoanHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	loan, err := h.loans.Reject(r.Context(), mux.Vars(r)["id"], body.Reason, auth.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoanHandlers) MarkPickedUp(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	loan, err := h.loans.MarkPickedUp(r.Context(), mux.Vars(r)["id"], auth.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoanHandlers) MarkReturned(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	var body struct {
		Condition domain.ReturnCondition `json:"condition"`
		Notes     string                 `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	loan, err := h.loans.MarkReturned(r.Context(), mux.Vars(r)["id"], auth.Actor, body.Condition, body.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoanHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	if err := h.loans.Cancel(r.Context(), mux.Vars(r)["id"], auth.Actor.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// CheckLimit lets the UI preview whether a borrow would pass the category
// limit before submitting a request.
func (h *LoanHandlers) CheckLimit(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	category := r.URL.Query().Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	result, err := h.limits.Check(r.Context(), auth.Actor.ID, category)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
