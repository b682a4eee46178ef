package handlers

import (
	"errors"
	"net/http"

	"ngomaBack/internal/models"
	"ngomaBack/internal/services"
)

type DownloadHandler struct {
	Downloads *services.DownloadService
}

func (h *DownloadHandler) DownloadSong(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, r.URL.Query().Get(":songId"), models.ItemKindSong)
}

func (h *DownloadHandler) DownloadAlbum(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, r.URL.Query().Get(":albumId"), models.ItemKindAlbum)
}

func (h *DownloadHandler) resolve(w http.ResponseWriter, r *http.Request, itemID string, kind models.ItemKind) {
	token := r.URL.Query().Get(":token")
	if token == "" || itemID == "" {
		errorJSON(w, http.StatusBadRequest, "Missing token or item id")
		return
	}

	url, err := h.Downloads.ResolveDownload(r.Context(), token, itemID, kind)
	if err != nil {
		h.deny(w, err, kind)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

func (h *DownloadHandler) deny(w http.ResponseWriter, err error, kind models.ItemKind) {
	noun := "Song"
	if kind == models.ItemKindAlbum {
		noun = "Album"
	}

	switch {
	case errors.Is(err, models.ErrInvalidToken):
		errorJSON(w, http.StatusNotFound, "Invalid download token")
	case errors.Is(err, models.ErrLinkExpired):
		errorJSON(w, http.StatusGone, "Download link has expired")
	case errors.Is(err, models.ErrItemNotInOrder):
		errorJSON(w, http.StatusForbidden, noun+" not found in order")
	case errors.Is(err, models.ErrMediaUnavailable):
		errorJSON(w, http.StatusNotFound, noun+" not found or has no media file")
	default:
		errorJSON(w, http.StatusInternalServerError, err.Error())
	}
}
