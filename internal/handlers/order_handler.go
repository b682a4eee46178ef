package handlers

import (
	"net/http"

	"ngomaBack/internal/models"
	"ngomaBack/internal/services"
)

type OrderHandler struct {
	Ledger *services.LedgerService
}

func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	buyer, ok := buyerFromContext(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.Ledger.OrdersForBuyer(r.Context(), buyer)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}
