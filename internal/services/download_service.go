package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"ngomaBack/internal/models"
)

// Signed retrieval URLs handed out on download are short-lived; the
// grant itself lives as long as the order's expiry.
const downloadURLTTL = time.Hour

type ObjectSigner interface {
	SignedGetURL(key string, expiresIn time.Duration) (string, error)
}

// DownloadService validates a download token against its order and
// resolves the media file behind a purchased item.
type DownloadService struct {
	Catalog CatalogStore
	Orders  OrderStore
	Signer  ObjectSigner
}

// ResolveDownload returns the URL the client should be redirected to.
// Check order is fixed: token, expiry, item membership, media presence.
func (s *DownloadService) ResolveDownload(ctx context.Context, token, itemID string, kind models.ItemKind) (string, error) {
	order, err := s.Orders.FindByDownloadToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			return "", models.ErrInvalidToken
		}
		return "", err
	}

	if order.DownloadExpiresAt.IsZero() || !time.Now().Before(order.DownloadExpiresAt) {
		return "", models.ErrLinkExpired
	}

	if !order.HasItem(itemID) {
		return "", models.ErrItemNotInOrder
	}

	item, err := s.Catalog.ItemByID(ctx, itemID, kind)
	if err != nil {
		if errors.Is(err, models.ErrItemNotFound) {
			return "", models.ErrMediaUnavailable
		}
		return "", err
	}
	if item.MediaKey == "" {
		return "", models.ErrMediaUnavailable
	}

	// Keys migrated from older catalogs may already be absolute URLs.
	if strings.HasPrefix(item.MediaKey, "http") {
		return item.MediaKey, nil
	}
	return s.Signer.SignedGetURL(item.MediaKey, downloadURLTTL)
}
