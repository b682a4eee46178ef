package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ngomaBack/internal/models"
)

const (
	songsCollection  = "songs"
	albumsCollection = "albums"

	defaultCatalogCacheTTL = 5 * time.Minute
)

// CatalogRepository reads purchasable items from the songs/albums
// collections. When Cache is set, reads go through Redis with a short
// TTL so repeated checkout/verify/download lookups skip Firestore.
type CatalogRepository struct {
	Client   *firestore.Client
	Cache    *redis.Client
	CacheTTL time.Duration
}

type songDoc struct {
	PriceCents int64  `firestore:"price_cents"`
	Title      string `firestore:"title"`
	Artist     string `firestore:"artist"`
	CoverURL   string `firestore:"cover_url"`
	AudioURL   string `firestore:"audio_url"`
}

type albumDoc struct {
	PriceCents int64  `firestore:"price_cents"`
	Title      string `firestore:"title"`
	Artist     string `firestore:"artist"`
	CoverURL   string `firestore:"cover_url"`
	ZipURL     string `firestore:"zip_url"`
}

func (r *CatalogRepository) ItemByID(ctx context.Context, id string, kind models.ItemKind) (models.CatalogItem, error) {
	key := fmt.Sprintf("catalog:%s:%s", kind, id)
	if r.Cache != nil {
		if data, err := r.Cache.Get(ctx, key).Bytes(); err == nil {
			var item models.CatalogItem
			if err := json.Unmarshal(data, &item); err == nil {
				return item, nil
			}
		}
	}

	item, err := r.readItem(ctx, id, kind)
	if err != nil {
		return models.CatalogItem{}, err
	}

	if r.Cache != nil {
		ttl := r.CacheTTL
		if ttl <= 0 {
			ttl = defaultCatalogCacheTTL
		}
		if data, err := json.Marshal(item); err == nil {
			r.Cache.Set(ctx, key, data, ttl)
		}
	}
	return item, nil
}

func (r *CatalogRepository) readItem(ctx context.Context, id string, kind models.ItemKind) (models.CatalogItem, error) {
	collection := songsCollection
	if kind == models.ItemKindAlbum {
		collection = albumsCollection
	}

	snap, err := r.Client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.CatalogItem{}, models.ErrItemNotFound
		}
		return models.CatalogItem{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}

	item := models.CatalogItem{ID: snap.Ref.ID, Kind: kind}
	if kind == models.ItemKindAlbum {
		var doc albumDoc
		if err := snap.DataTo(&doc); err != nil {
			return models.CatalogItem{}, fmt.Errorf("decode album %s: %w", id, err)
		}
		item.PriceCents = doc.PriceCents
		item.Title = doc.Title
		item.Artist = doc.Artist
		item.CoverURL = doc.CoverURL
		item.MediaKey = doc.ZipURL
		return item, nil
	}

	var doc songDoc
	if err := snap.DataTo(&doc); err != nil {
		return models.CatalogItem{}, fmt.Errorf("decode song %s: %w", id, err)
	}
	item.PriceCents = doc.PriceCents
	item.Title = doc.Title
	item.Artist = doc.Artist
	item.CoverURL = doc.CoverURL
	item.MediaKey = doc.AudioURL
	return item, nil
}
