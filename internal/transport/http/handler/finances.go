package handler

import (
	"net/http"

	"github.com/go-auth-nosql/internal/application/finance"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-chi/chi/v5"
)

// FinanceHandler handles category and transaction endpoints.
type FinanceHandler struct {
	svc finance.Service
}

func NewFinanceHandler(svc finance.Service) *FinanceHandler { return &FinanceHandler{svc: svc} }

func (h *FinanceHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in domain.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), in)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "category created", c)
}

func (h *FinanceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.ListCategories(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	if cs == nil {
		cs = []domain.Category{}
	}
	writeOK(w, http.StatusOK, "categories", cs)
}

func (h *FinanceHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "category", c)
}

func (h *FinanceHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in domain.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "category updated", c)
}

func (h *FinanceHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "category deleted", nil)
}

func (h *FinanceHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in domain.TransactionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.svc.CreateTransaction(r.Context(), in)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "transaction created", t)
}

func (h *FinanceHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.ListTransactions(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	writeOK(w, http.StatusOK, "transactions", txs)
}

func (h *FinanceHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "transaction", t)
}

func (h *FinanceHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "transaction deleted", nil)
}
