package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ngomaBack/internal/services"
)

type MediaHandler struct {
	Signer services.ObjectSigner
}

type signedURLRequest struct {
	Path             string `json:"path"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// SignedURL mints a time-bounded retrieval URL for public media paths
// (covers, previews and such). Purchased media goes through /download.
func (h *MediaHandler) SignedURL(w http.ResponseWriter, r *http.Request) {
	var req signedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		errorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Path == "" {
		errorJSON(w, http.StatusBadRequest, "Missing path")
		return
	}
	if !services.AllowedMediaPath(req.Path) {
		errorJSON(w, http.StatusBadRequest, "Path not allowed")
		return
	}

	url, err := h.Signer.SignedGetURL(req.Path, services.ClampSignedURLTTL(req.ExpiresInSeconds))
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
