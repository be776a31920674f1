// internal/adapters/out/db/order_archive_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	orderdom "farmlink/internal/domain/order"
)

// OrderArchivePG mirrors committed orders into Postgres for reporting
// queries that Firestore handles poorly (joins, aggregates over time).
// The Firestore doc stays the source of truth; this table is a
// write-behind copy. Implements usecase.OrderArchive.
type OrderArchivePG struct {
	DB *sql.DB
}

func NewOrderArchivePG(db *sql.DB) *OrderArchivePG {
	return &OrderArchivePG{DB: db}
}

const orderArchiveDDL = `
CREATE TABLE IF NOT EXISTS order_archive (
    id           TEXT PRIMARY KEY,
    buyer_id     TEXT NOT NULL,
    buyer_email  TEXT NOT NULL,
    farmer_id    TEXT NOT NULL,
    farmer_email TEXT NOT NULL,
    items        JSONB NOT NULL,
    total_amount NUMERIC(12,2) NOT NULL,
    delivery     JSONB NOT NULL,
    status       TEXT NOT NULL,
    payment      TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_archive_buyer  ON order_archive (buyer_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_order_archive_farmer ON order_archive (farmer_id, created_at DESC);
`

// EnsureSchema creates the archive table if missing. Called once at
// boot; cheap no-op afterwards.
func (r *OrderArchivePG) EnsureSchema(ctx context.Context) error {
	if r == nil || r.DB == nil {
		return errors.New("order_archive_pg: db is nil")
	}
	_, err := r.DB.ExecContext(ctx, orderArchiveDDL)
	return err
}

// Archive upserts the given orders. Re-archiving after a status change
// overwrites the row, so the mirror converges on the latest state.
func (r *OrderArchivePG) Archive(ctx context.Context, orders []orderdom.Order) error {
	if r == nil || r.DB == nil {
		return errors.New("order_archive_pg: db is nil")
	}
	if len(orders) == 0 {
		return nil
	}

	const q = `
INSERT INTO order_archive
    (id, buyer_id, buyer_email, farmer_id, farmer_email, items, total_amount, delivery, status, payment, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
    items        = EXCLUDED.items,
    total_amount = EXCLUDED.total_amount,
    delivery     = EXCLUDED.delivery,
    status       = EXCLUDED.status,
    payment      = EXCLUDED.payment,
    updated_at   = EXCLUDED.updated_at`

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, o := range orders {
		items, err := json.Marshal(o.Items)
		if err != nil {
			return err
		}
		delivery, err := json.Marshal(o.DeliveryInfo)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q,
			o.ID,
			o.BuyerID, o.BuyerEmail,
			o.FarmerID, o.FarmerEmail,
			items,
			o.TotalAmount,
			delivery,
			string(o.Status),
			string(o.PaymentStatus),
			o.CreatedAt,
			o.UpdatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}
