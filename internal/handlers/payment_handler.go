package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ngomaBack/internal/models"
	"ngomaBack/internal/services"
)

type PaymentHandler struct {
	Ledger *services.LedgerService
}

type checkoutRequest struct {
	SongID      string `json:"songId"`
	AlbumID     string `json:"albumId"`
	PhoneNumber string `json:"phoneNumber"`
}

type verifyRequest struct {
	TransactionID string `json:"transactionId"`
	SongID        string `json:"songId"`
	AlbumID       string `json:"albumId"`
}

func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	buyer, ok := buyerFromContext(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Ledger.InitiateCheckout(r.Context(), buyer, req.SongID, req.AlbumID, req.PhoneNumber)
	if err != nil {
		errorJSON(w, paymentErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	buyer, ok := buyerFromContext(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Ledger.VerifyAndSettle(r.Context(), buyer, req.TransactionID, req.SongID, req.AlbumID)
	if err != nil {
		errorJSON(w, paymentErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func paymentErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrMissingPhoneNumber),
		errors.Is(err, models.ErrMissingItem),
		errors.Is(err, models.ErrAmbiguousItem),
		errors.Is(err, models.ErrMissingTransactionID):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForeignTransaction):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
