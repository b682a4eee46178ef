package models

// ItemKind tells which catalog collection an item lives in.
type ItemKind string

const (
	ItemKindSong  ItemKind = "song"
	ItemKindAlbum ItemKind = "album"
)

// CatalogItem is a read-only snapshot of a purchasable song or album.
// The media key is either a storage object key or an already absolute URL.
type CatalogItem struct {
	ID         string   `json:"id"`
	Kind       ItemKind `json:"kind"`
	PriceCents int64    `json:"price_cents"`
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	CoverURL   string   `json:"cover_url"`
	MediaKey   string   `json:"-"`
}
