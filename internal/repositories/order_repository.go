package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"ngomaBack/internal/models"
)

const ordersCollection = "orders"

// OrderRepository persists completed purchases. Orders are append-only:
// there is no update or delete path.
type OrderRepository struct {
	Client *firestore.Client
}

func (r *OrderRepository) FindByTransactionID(ctx context.Context, transactionID string) (models.Order, error) {
	q := r.Client.Collection(ordersCollection).
		Where("transaction_id", "==", transactionID).
		Limit(1)
	return r.firstMatch(ctx, q)
}

func (r *OrderRepository) FindByDownloadToken(ctx context.Context, token string) (models.Order, error) {
	q := r.Client.Collection(ordersCollection).
		Where("download_token", "==", token).
		Where("status", "==", models.OrderStatusCompleted).
		Limit(1)
	return r.firstMatch(ctx, q)
}

func (r *OrderRepository) ListCompletedByBuyer(ctx context.Context, buyerUID string) ([]models.Order, error) {
	iter := r.Client.Collection(ordersCollection).
		Where("buyer_uid", "==", buyerUID).
		Where("status", "==", models.OrderStatusCompleted).
		Documents(ctx)
	defer iter.Stop()

	var orders []models.Order
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list orders for %s: %w", buyerUID, err)
		}
		order, err := orderFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// CreateIfAbsent writes the order unless one already exists for its
// transaction id. The existence check and the insert run in a single
// Firestore transaction, so two concurrent settlements of the same
// transaction converge on one order. The returned flag reports whether
// this call created the order.
func (r *OrderRepository) CreateIfAbsent(ctx context.Context, order models.Order) (models.Order, bool, error) {
	var (
		result  models.Order
		created bool
	)
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		q := r.Client.Collection(ordersCollection).
			Where("transaction_id", "==", order.TransactionID).
			Limit(1)
		snaps, err := tx.Documents(q).GetAll()
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			existing, err := orderFromSnapshot(snaps[0])
			if err != nil {
				return err
			}
			result, created = existing, false
			return nil
		}

		ref := r.Client.Collection(ordersCollection).NewDoc()
		if err := tx.Create(ref, order); err != nil {
			return err
		}
		order.ID = ref.ID
		result, created = order, true
		return nil
	})
	if err != nil {
		return models.Order{}, false, fmt.Errorf("create order for transaction %s: %w", order.TransactionID, err)
	}
	return result, created, nil
}

func (r *OrderRepository) firstMatch(ctx context.Context, q firestore.Query) (models.Order, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return models.Order{}, models.ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("query orders: %w", err)
	}
	return orderFromSnapshot(snap)
}

func orderFromSnapshot(snap *firestore.DocumentSnapshot) (models.Order, error) {
	var order models.Order
	if err := snap.DataTo(&order); err != nil {
		return models.Order{}, fmt.Errorf("decode order %s: %w", snap.Ref.ID, err)
	}
	order.ID = snap.Ref.ID
	return order, nil
}
