package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ngomaBack/internal/models"
)

type fakeCatalog struct {
	items map[string]models.CatalogItem
}

func (f *fakeCatalog) ItemByID(_ context.Context, id string, kind models.ItemKind) (models.CatalogItem, error) {
	item, ok := f.items[string(kind)+"/"+id]
	if !ok {
		return models.CatalogItem{}, models.ErrItemNotFound
	}
	return item, nil
}

type fakeOrders struct {
	orders []models.Order
	nextID int
}

func (f *fakeOrders) FindByTransactionID(_ context.Context, transactionID string) (models.Order, error) {
	for _, o := range f.orders {
		if o.TransactionID == transactionID {
			return o, nil
		}
	}
	return models.Order{}, models.ErrOrderNotFound
}

func (f *fakeOrders) FindByDownloadToken(_ context.Context, token string) (models.Order, error) {
	for _, o := range f.orders {
		if o.DownloadToken == token && o.Status == models.OrderStatusCompleted {
			return o, nil
		}
	}
	return models.Order{}, models.ErrOrderNotFound
}

func (f *fakeOrders) ListCompletedByBuyer(_ context.Context, buyerUID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.BuyerUID == buyerUID && o.Status == models.OrderStatusCompleted {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) CreateIfAbsent(_ context.Context, order models.Order) (models.Order, bool, error) {
	for _, o := range f.orders {
		if o.TransactionID == order.TransactionID {
			return o, false, nil
		}
	}
	f.nextID++
	order.ID = fmt.Sprintf("order-%d", f.nextID)
	f.orders = append(f.orders, order)
	return order, true, nil
}

type fakeGateway struct {
	requestResp *MoneyUnifyResponse
	verifyResp  *MoneyUnifyResponse
	requestErr  error
	verifyErr   error

	requestCalls int
	verifyCalls  int
	lastAmount   decimal.Decimal
	lastPayer    string
}

func (f *fakeGateway) RequestPayment(_ context.Context, amount decimal.Decimal, fromPayer string) (*MoneyUnifyResponse, error) {
	f.requestCalls++
	f.lastAmount = amount
	f.lastPayer = fromPayer
	return f.requestResp, f.requestErr
}

func (f *fakeGateway) VerifyPayment(_ context.Context, _ string) (*MoneyUnifyResponse, error) {
	f.verifyCalls++
	return f.verifyResp, f.verifyErr
}

func gatewayResponse(transactionID, status string) *MoneyUnifyResponse {
	resp := &MoneyUnifyResponse{
		Raw: []byte(fmt.Sprintf(`{"data":{"transaction_id":%q,"status":%q}}`, transactionID, status)),
	}
	resp.Data.TransactionID = transactionID
	resp.Data.Status = status
	return resp
}

func testLedger() (*LedgerService, *fakeCatalog, *fakeOrders, *fakeGateway) {
	catalog := &fakeCatalog{items: map[string]models.CatalogItem{
		"song/s1": {
			ID: "s1", Kind: models.ItemKindSong, PriceCents: 500,
			Title: "Mwana", Artist: "Chanda", CoverURL: "covers/s1.jpg", MediaKey: "songs/s1.mp3",
		},
		"album/a1": {
			ID: "a1", Kind: models.ItemKindAlbum, PriceCents: 2500,
			Title: "Zuba", Artist: "Chanda", CoverURL: "covers/a1.jpg", MediaKey: "albums/a1.zip",
		},
	}}
	orders := &fakeOrders{}
	gateway := &fakeGateway{
		requestResp: gatewayResponse("tx1", "pending"),
		verifyResp:  gatewayResponse("tx1", statusSuccessful),
	}
	return &LedgerService{Catalog: catalog, Orders: orders, Gateway: gateway}, catalog, orders, gateway
}

func TestInitiateCheckoutCreatesNoOrder(t *testing.T) {
	ledger, _, orders, gateway := testLedger()
	buyer := models.Buyer{UID: "u1", Email: "u1@example.com"}

	result, err := ledger.InitiateCheckout(context.Background(), buyer, "s1", "", "0977000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TransactionID != "tx1" {
		t.Errorf("transaction id mismatch: %q", result.TransactionID)
	}
	if result.Buyer.UID != "u1" {
		t.Errorf("buyer mismatch: %+v", result.Buyer)
	}
	if len(orders.orders) != 0 {
		t.Errorf("checkout must not create orders, got %d", len(orders.orders))
	}
	if gateway.lastPayer != "0977000000" {
		t.Errorf("payer mismatch: %q", gateway.lastPayer)
	}
	if gateway.lastAmount.String() != "5" {
		t.Errorf("amount mismatch: %s", gateway.lastAmount)
	}
}

func TestInitiateCheckoutValidation(t *testing.T) {
	ledger, _, _, gateway := testLedger()
	buyer := models.Buyer{UID: "u1"}
	ctx := context.Background()

	if _, err := ledger.InitiateCheckout(ctx, buyer, "s1", "", ""); !errors.Is(err, models.ErrMissingPhoneNumber) {
		t.Errorf("missing phone: got %v", err)
	}
	if _, err := ledger.InitiateCheckout(ctx, buyer, "", "", "0977000000"); !errors.Is(err, models.ErrMissingItem) {
		t.Errorf("missing item: got %v", err)
	}
	if _, err := ledger.InitiateCheckout(ctx, buyer, "s1", "a1", "0977000000"); !errors.Is(err, models.ErrAmbiguousItem) {
		t.Errorf("ambiguous item: got %v", err)
	}
	if _, err := ledger.InitiateCheckout(ctx, buyer, "missing", "", "0977000000"); !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("unknown item: got %v", err)
	}
	if gateway.requestCalls != 0 {
		t.Errorf("gateway must not be called on validation failure, got %d calls", gateway.requestCalls)
	}
}

func TestVerifyAndSettleCreatesOrderOnce(t *testing.T) {
	ledger, _, orders, gateway := testLedger()
	buyer := models.Buyer{UID: "u1", Email: "u1@example.com"}
	ctx := context.Background()

	first, err := ledger.VerifyAndSettle(ctx, buyer, "tx1", "s1", "")
	if err != nil {
		t.Fatalf("first settle: %v", err)
	}
	if !first.Verified {
		t.Fatalf("expected verified settlement")
	}
	if len(orders.orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders.orders))
	}

	order := orders.orders[0]
	if order.AmountCents != 500 {
		t.Errorf("amount mismatch: %d", order.AmountCents)
	}
	if order.Status != models.OrderStatusCompleted {
		t.Errorf("status mismatch: %q", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].ID != "s1" || order.Items[0].Kind != "song" {
		t.Errorf("items mismatch: %+v", order.Items)
	}
	if order.DownloadToken == "" {
		t.Errorf("download token not minted")
	}
	if got := order.DownloadExpiresAt.Sub(order.CreatedAt); got != 7*24*time.Hour {
		t.Errorf("expiry window mismatch: %s", got)
	}

	second, err := ledger.VerifyAndSettle(ctx, buyer, "tx1", "s1", "")
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if second.OrderID != first.OrderID || second.DownloadToken != first.DownloadToken {
		t.Errorf("replay mismatch: first %+v second %+v", first, second)
	}
	if len(orders.orders) != 1 {
		t.Errorf("replay created an order, got %d", len(orders.orders))
	}
	if gateway.verifyCalls != 1 {
		t.Errorf("replay must not re-verify with gateway, got %d calls", gateway.verifyCalls)
	}
}

func TestVerifyAndSettleForeignTransaction(t *testing.T) {
	ledger, _, orders, _ := testLedger()
	ctx := context.Background()

	if _, err := ledger.VerifyAndSettle(ctx, models.Buyer{UID: "u1"}, "tx1", "s1", ""); err != nil {
		t.Fatalf("settle as owner: %v", err)
	}

	_, err := ledger.VerifyAndSettle(ctx, models.Buyer{UID: "u2", Email: "u2@example.com"}, "tx1", "s1", "")
	if !errors.Is(err, models.ErrForeignTransaction) {
		t.Fatalf("expected foreign transaction error, got %v", err)
	}
	if len(orders.orders) != 1 {
		t.Errorf("foreign settle created an order, got %d", len(orders.orders))
	}
}

func TestVerifyAndSettleMatchesOwnerByEmail(t *testing.T) {
	ledger, _, _, _ := testLedger()
	ctx := context.Background()

	if _, err := ledger.VerifyAndSettle(ctx, models.Buyer{UID: "u1", Email: "shared@example.com"}, "tx1", "s1", ""); err != nil {
		t.Fatalf("settle: %v", err)
	}

	// Same email, different uid (re-provisioned account) still owns it.
	result, err := ledger.VerifyAndSettle(ctx, models.Buyer{UID: "u1-new", Email: "shared@example.com"}, "tx1", "s1", "")
	if err != nil {
		t.Fatalf("replay by email: %v", err)
	}
	if !result.Verified {
		t.Errorf("expected verified replay")
	}
}

func TestVerifyAndSettlePendingPaymentIsNotAnError(t *testing.T) {
	ledger, _, orders, gateway := testLedger()
	gateway.verifyResp = gatewayResponse("tx1", "pending")

	result, err := ledger.VerifyAndSettle(context.Background(), models.Buyer{UID: "u1"}, "tx1", "s1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verified {
		t.Errorf("pending payment must not verify")
	}
	if len(result.Provider) == 0 {
		t.Errorf("provider payload not passed through")
	}
	if len(orders.orders) != 0 {
		t.Errorf("pending payment created an order, got %d", len(orders.orders))
	}
}

func TestVerifyAndSettleUsesCatalogPrice(t *testing.T) {
	// A client can fabricate prices in its request body, but the
	// committed amount must come from the catalog read at settlement.
	ledger, catalog, orders, _ := testLedger()
	item := catalog.items["song/s1"]
	item.PriceCents = 700
	catalog.items["song/s1"] = item

	if _, err := ledger.VerifyAndSettle(context.Background(), models.Buyer{UID: "u1"}, "tx1", "s1", ""); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if orders.orders[0].AmountCents != 700 {
		t.Errorf("amount mismatch: %d", orders.orders[0].AmountCents)
	}
	if orders.orders[0].Items[0].PriceCents != 700 {
		t.Errorf("item snapshot price mismatch: %d", orders.orders[0].Items[0].PriceCents)
	}
}

func TestVerifyAndSettleValidation(t *testing.T) {
	ledger, _, _, _ := testLedger()
	ctx := context.Background()
	buyer := models.Buyer{UID: "u1"}

	if _, err := ledger.VerifyAndSettle(ctx, buyer, "", "s1", ""); !errors.Is(err, models.ErrMissingTransactionID) {
		t.Errorf("missing transaction id: got %v", err)
	}
	if _, err := ledger.VerifyAndSettle(ctx, buyer, "tx1", "", ""); !errors.Is(err, models.ErrMissingItem) {
		t.Errorf("missing item: got %v", err)
	}
}

func TestOrdersForBuyerSortsNewestFirst(t *testing.T) {
	ledger, _, orders, _ := testLedger()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orders.orders = []models.Order{
		{ID: "o1", BuyerUID: "u1", Status: models.OrderStatusCompleted, CreatedAt: base},
		{ID: "o2", BuyerUID: "u1", Status: models.OrderStatusCompleted}, // missing created_at
		{ID: "o3", BuyerUID: "u1", Status: models.OrderStatusCompleted, CreatedAt: base.Add(time.Hour)},
		{ID: "o4", BuyerUID: "someone-else", Status: models.OrderStatusCompleted, CreatedAt: base},
	}

	got, err := ledger.OrdersForBuyer(context.Background(), models.Buyer{UID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(got))
	}
	if got[0].ID != "o3" || got[1].ID != "o1" || got[2].ID != "o2" {
		t.Errorf("sort order mismatch: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}
