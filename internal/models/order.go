package models

import (
	"encoding/json"
	"time"
)

const OrderStatusCompleted = "completed"

// Buyer is the authenticated account a request acts on behalf of.
type Buyer struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// OrderItem is the catalog snapshot frozen into an order at settlement
// time. Prices here come from the catalog, never from the client.
type OrderItem struct {
	ID         string `firestore:"id" json:"id"`
	Kind       string `firestore:"type" json:"type"`
	PriceCents int64  `firestore:"price_cents" json:"price_cents"`
	Title      string `firestore:"title" json:"title"`
	Artist     string `firestore:"artist" json:"artist"`
	CoverURL   string `firestore:"cover_url" json:"cover_url"`
}

// Order is the durable record of one completed purchase. Orders are
// written exactly once and never mutated.
type Order struct {
	ID                string      `firestore:"-" json:"id"`
	BuyerUID          string      `firestore:"buyer_uid" json:"buyer_uid"`
	BuyerEmail        string      `firestore:"buyer_email" json:"buyer_email,omitempty"`
	AmountCents       int64       `firestore:"amount_cents" json:"amount_cents"`
	Status            string      `firestore:"status" json:"status"`
	DownloadToken     string      `firestore:"download_token" json:"download_token"`
	DownloadExpiresAt time.Time   `firestore:"download_expires_at" json:"download_expires_at"`
	CreatedAt         time.Time   `firestore:"created_at" json:"created_at"`
	TransactionID     string      `firestore:"transaction_id" json:"transaction_id"`
	Items             []OrderItem `firestore:"items" json:"items"`
}

// HasItem reports whether the given catalog item id is covered by the
// order's download grant.
func (o Order) HasItem(itemID string) bool {
	for _, it := range o.Items {
		if it.ID == itemID {
			return true
		}
	}
	return false
}

// CheckoutResult is returned from a checkout call. Nothing is persisted
// at this point; the transaction id is the handle for later verification.
type CheckoutResult struct {
	TransactionID string          `json:"transactionId"`
	Provider      json.RawMessage `json:"provider"`
	Buyer         Buyer           `json:"buyer"`
}

// SettlementResult is the outcome of verify-and-settle. Verified false
// with no error means the provider has not (yet) confirmed the payment.
type SettlementResult struct {
	Verified          bool            `json:"verified"`
	OrderID           string          `json:"orderId,omitempty"`
	DownloadToken     string          `json:"downloadToken,omitempty"`
	DownloadExpiresAt *time.Time      `json:"downloadExpiresAt,omitempty"`
	Provider          json.RawMessage `json:"provider,omitempty"`
}
