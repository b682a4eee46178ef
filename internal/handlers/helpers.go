package handlers

import (
	"encoding/json"
	"net/http"

	"ngomaBack/internal/models"
)

// Context keys set by the authentication middleware.
const (
	ContextKeyBuyerUID   = "buyer_uid"
	ContextKeyBuyerEmail = "buyer_email"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func buyerFromContext(r *http.Request) (models.Buyer, bool) {
	uid, _ := r.Context().Value(ContextKeyBuyerUID).(string)
	if uid == "" {
		return models.Buyer{}, false
	}
	email, _ := r.Context().Value(ContextKeyBuyerEmail).(string)
	return models.Buyer{UID: uid, Email: email}, true
}
