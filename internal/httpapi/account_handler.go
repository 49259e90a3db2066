package httpapi

import (
	"net/http"
	"strconv"

	"marketcart-be/internal/checkout"
	"marketcart-be/internal/mapper"
	"marketcart-be/internal/user"

	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	checkout checkout.Service
}

func NewCheckoutHandler(svc checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc}
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.checkout.Checkout(r.Context(), currentUser(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, mapper.MapReceipt(receipt))
}

type AccountHandler struct {
	users user.Service
}

func NewAccountHandler(users user.Service) *AccountHandler {
	return &AccountHandler{users: users}
}

func (h *AccountHandler) DeleteOwnAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteAccount(r.Context(), currentUser(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id == 0 {
		respondError(w, r, invalidRequest("userID must be a positive integer"))
		return
	}

	if err := h.users.DeleteAccount(r.Context(), uint(id)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
