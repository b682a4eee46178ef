package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"ngomaBack/internal/models"
)

// How long a freshly minted download grant stays valid.
const downloadGrantTTL = 7 * 24 * time.Hour

// The only provider status that settles an order.
const statusSuccessful = "successful"

type CatalogStore interface {
	ItemByID(ctx context.Context, id string, kind models.ItemKind) (models.CatalogItem, error)
}

type OrderStore interface {
	FindByTransactionID(ctx context.Context, transactionID string) (models.Order, error)
	FindByDownloadToken(ctx context.Context, token string) (models.Order, error)
	ListCompletedByBuyer(ctx context.Context, buyerUID string) ([]models.Order, error)
	CreateIfAbsent(ctx context.Context, order models.Order) (models.Order, bool, error)
}

type PaymentGateway interface {
	RequestPayment(ctx context.Context, amount decimal.Decimal, fromPayer string) (*MoneyUnifyResponse, error)
	VerifyPayment(ctx context.Context, transactionID string) (*MoneyUnifyResponse, error)
}

// LedgerService is the reconciliation core: it turns a verified provider
// transaction into exactly one immutable order with a download grant.
type LedgerService struct {
	Catalog CatalogStore
	Orders  OrderStore
	Gateway PaymentGateway
}

// InitiateCheckout resolves the item's current price and asks the
// gateway to collect it from the payer's phone. Nothing is persisted;
// the order only comes into existence at verification.
func (s *LedgerService) InitiateCheckout(ctx context.Context, buyer models.Buyer, songID, albumID, phoneNumber string) (models.CheckoutResult, error) {
	if strings.TrimSpace(phoneNumber) == "" {
		return models.CheckoutResult{}, models.ErrMissingPhoneNumber
	}
	itemID, kind, err := resolveItemRef(songID, albumID)
	if err != nil {
		return models.CheckoutResult{}, err
	}

	item, err := s.Catalog.ItemByID(ctx, itemID, kind)
	if err != nil {
		return models.CheckoutResult{}, err
	}

	amount := decimal.NewFromInt(item.PriceCents).Div(decimal.NewFromInt(100))
	provider, err := s.Gateway.RequestPayment(ctx, amount, phoneNumber)
	if err != nil {
		return models.CheckoutResult{}, err
	}

	return models.CheckoutResult{
		TransactionID: provider.Data.TransactionID,
		Provider:      provider.Raw,
		Buyer:         buyer,
	}, nil
}

// VerifyAndSettle is idempotent: an already settled transaction replays
// the existing order for its owner, a transaction settled under another
// account is refused, and only a provider-confirmed payment creates an
// order. Prices are re-read from the catalog at settlement time.
func (s *LedgerService) VerifyAndSettle(ctx context.Context, buyer models.Buyer, transactionID, songID, albumID string) (models.SettlementResult, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return models.SettlementResult{}, models.ErrMissingTransactionID
	}
	itemID, kind, err := resolveItemRef(songID, albumID)
	if err != nil {
		return models.SettlementResult{}, err
	}

	existing, err := s.Orders.FindByTransactionID(ctx, transactionID)
	if err == nil {
		return s.replaySettlement(existing, buyer, nil)
	}
	if !errors.Is(err, models.ErrOrderNotFound) {
		return models.SettlementResult{}, err
	}

	provider, err := s.Gateway.VerifyPayment(ctx, transactionID)
	if err != nil {
		return models.SettlementResult{}, err
	}
	if provider.Data.Status != statusSuccessful {
		return models.SettlementResult{Verified: false, Provider: provider.Raw}, nil
	}

	item, err := s.Catalog.ItemByID(ctx, itemID, kind)
	if err != nil {
		return models.SettlementResult{}, err
	}

	now := time.Now().UTC()
	order := models.Order{
		BuyerUID:          buyer.UID,
		BuyerEmail:        buyer.Email,
		AmountCents:       item.PriceCents,
		Status:            models.OrderStatusCompleted,
		DownloadToken:     uuid.New().String(),
		DownloadExpiresAt: now.Add(downloadGrantTTL),
		CreatedAt:         now,
		TransactionID:     transactionID,
		Items: []models.OrderItem{{
			ID:         item.ID,
			Kind:       string(item.Kind),
			PriceCents: item.PriceCents,
			Title:      item.Title,
			Artist:     item.Artist,
			CoverURL:   item.CoverURL,
		}},
	}

	saved, created, err := s.Orders.CreateIfAbsent(ctx, order)
	if err != nil {
		return models.SettlementResult{}, err
	}
	if !created {
		// A concurrent settlement of the same transaction won the race.
		return s.replaySettlement(saved, buyer, provider.Raw)
	}

	expiresAt := saved.DownloadExpiresAt
	return models.SettlementResult{
		Verified:          true,
		OrderID:           saved.ID,
		DownloadToken:     saved.DownloadToken,
		DownloadExpiresAt: &expiresAt,
		Provider:          provider.Raw,
	}, nil
}

// OrdersForBuyer lists the buyer's completed orders, most recent first.
// Orders with a missing created timestamp sort as oldest.
func (s *LedgerService) OrdersForBuyer(ctx context.Context, buyer models.Buyer) ([]models.Order, error) {
	orders, err := s.Orders.ListCompletedByBuyer(ctx, buyer.UID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(orders, func(a, b models.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return orders, nil
}

func (s *LedgerService) replaySettlement(order models.Order, buyer models.Buyer, provider []byte) (models.SettlementResult, error) {
	if !orderBelongsTo(order, buyer) {
		return models.SettlementResult{}, models.ErrForeignTransaction
	}
	expiresAt := order.DownloadExpiresAt
	return models.SettlementResult{
		Verified:          true,
		OrderID:           order.ID,
		DownloadToken:     order.DownloadToken,
		DownloadExpiresAt: &expiresAt,
		Provider:          provider,
	}, nil
}

func orderBelongsTo(order models.Order, buyer models.Buyer) bool {
	if order.BuyerUID == buyer.UID {
		return true
	}
	return buyer.Email != "" && order.BuyerEmail == buyer.Email
}

func resolveItemRef(songID, albumID string) (string, models.ItemKind, error) {
	songID = strings.TrimSpace(songID)
	albumID = strings.TrimSpace(albumID)
	switch {
	case songID == "" && albumID == "":
		return "", "", models.ErrMissingItem
	case songID != "" && albumID != "":
		return "", "", models.ErrAmbiguousItem
	case songID != "":
		return songID, models.ItemKindSong, nil
	default:
		return albumID, models.ItemKindAlbum, nil
	}
}
