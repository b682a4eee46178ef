package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ngomaBack/internal/models"
)

type fakeSigner struct {
	lastKey    string
	lastExpiry time.Duration
	calls      int
}

func (f *fakeSigner) SignedGetURL(key string, expiresIn time.Duration) (string, error) {
	f.calls++
	f.lastKey = key
	f.lastExpiry = expiresIn
	return "https://signed.example/" + key, nil
}

func testDownloads(order models.Order) (*DownloadService, *fakeSigner) {
	catalog := &fakeCatalog{items: map[string]models.CatalogItem{
		"song/s1": {
			ID: "s1", Kind: models.ItemKindSong, PriceCents: 500,
			Title: "Mwana", Artist: "Chanda", MediaKey: "songs/s1.mp3",
		},
		"song/s2": {
			ID: "s2", Kind: models.ItemKindSong, PriceCents: 500,
			Title: "Hosted", Artist: "Chanda", MediaKey: "https://cdn.example/s2.mp3",
		},
		"song/s3": {
			ID: "s3", Kind: models.ItemKindSong, PriceCents: 500,
			Title: "Broken", Artist: "Chanda",
		},
	}}
	signer := &fakeSigner{}
	return &DownloadService{
		Catalog: catalog,
		Orders:  &fakeOrders{orders: []models.Order{order}},
		Signer:  signer,
	}, signer
}

func grantedOrder(items ...string) models.Order {
	order := models.Order{
		ID:                "o1",
		BuyerUID:          "u1",
		Status:            models.OrderStatusCompleted,
		DownloadToken:     "tok-1",
		DownloadExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt:         time.Now(),
	}
	for _, id := range items {
		order.Items = append(order.Items, models.OrderItem{ID: id, Kind: "song"})
	}
	return order
}

func TestResolveDownloadSignsRelativeKey(t *testing.T) {
	svc, signer := testDownloads(grantedOrder("s1"))

	url, err := svc.ResolveDownload(context.Background(), "tok-1", "s1", models.ItemKindSong)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://signed.example/songs/s1.mp3" {
		t.Errorf("url mismatch: %q", url)
	}
	if signer.lastKey != "songs/s1.mp3" {
		t.Errorf("key mismatch: %q", signer.lastKey)
	}
	if signer.lastExpiry != time.Hour {
		t.Errorf("expiry mismatch: %s", signer.lastExpiry)
	}
}

func TestResolveDownloadReturnsAbsoluteURLVerbatim(t *testing.T) {
	svc, signer := testDownloads(grantedOrder("s2"))

	url, err := svc.ResolveDownload(context.Background(), "tok-1", "s2", models.ItemKindSong)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.example/s2.mp3" {
		t.Errorf("url mismatch: %q", url)
	}
	if signer.calls != 0 {
		t.Errorf("signer must not be called for absolute urls")
	}
}

func TestResolveDownloadUnknownToken(t *testing.T) {
	svc, _ := testDownloads(grantedOrder("s1"))

	_, err := svc.ResolveDownload(context.Background(), "no-such-token", "s1", models.ItemKindSong)
	if !errors.Is(err, models.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestResolveDownloadExpiredGrant(t *testing.T) {
	order := grantedOrder("s1")
	order.DownloadExpiresAt = time.Now().Add(-time.Minute)
	svc, _ := testDownloads(order)

	_, err := svc.ResolveDownload(context.Background(), "tok-1", "s1", models.ItemKindSong)
	if !errors.Is(err, models.ErrLinkExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestResolveDownloadMissingExpiryCountsAsExpired(t *testing.T) {
	order := grantedOrder("s1")
	order.DownloadExpiresAt = time.Time{}
	svc, _ := testDownloads(order)

	_, err := svc.ResolveDownload(context.Background(), "tok-1", "s1", models.ItemKindSong)
	if !errors.Is(err, models.ErrLinkExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestResolveDownloadItemOutsideGrant(t *testing.T) {
	// Valid unexpired token, but the requested item was never purchased.
	svc, _ := testDownloads(grantedOrder("s1"))

	_, err := svc.ResolveDownload(context.Background(), "tok-1", "s2", models.ItemKindSong)
	if !errors.Is(err, models.ErrItemNotInOrder) {
		t.Fatalf("expected item-not-in-order error, got %v", err)
	}
}

func TestResolveDownloadMediaUnavailable(t *testing.T) {
	svc, _ := testDownloads(grantedOrder("s3", "gone"))

	if _, err := svc.ResolveDownload(context.Background(), "tok-1", "s3", models.ItemKindSong); !errors.Is(err, models.ErrMediaUnavailable) {
		t.Errorf("missing media key: got %v", err)
	}
	if _, err := svc.ResolveDownload(context.Background(), "tok-1", "gone", models.ItemKindSong); !errors.Is(err, models.ErrMediaUnavailable) {
		t.Errorf("missing catalog item: got %v", err)
	}
}
