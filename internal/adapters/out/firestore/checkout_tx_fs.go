// internal/adapters/out/firestore/checkout_tx_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"farmlink/internal/application/usecase"
	orderdom "farmlink/internal/domain/order"
	productdom "farmlink/internal/domain/product"
	"farmlink/internal/domain/stock"
)

// CheckoutTxFS implements usecase.CheckoutTx on a single Firestore
// transaction. Per seller group it creates one order doc, flips the
// group's cart item docs to ordered and applies the sale to each
// product doc. Firestore requires all reads before any write, so the
// product docs are read and validated up front; the optimistic
// concurrency of RunTransaction retries the whole function when a read
// doc changed underneath, which keeps stock decrements exact under
// concurrent checkouts.
type CheckoutTxFS struct {
	Client *firestore.Client
}

func NewCheckoutTxFS(client *firestore.Client) *CheckoutTxFS {
	return &CheckoutTxFS{Client: client}
}

func (t *CheckoutTxFS) Execute(ctx context.Context, plan usecase.CheckoutPlan) ([]orderdom.Order, error) {
	if t == nil || t.Client == nil {
		return nil, errors.New("checkout_tx_fs: firestore client is nil")
	}
	if len(plan.Groups) == 0 {
		return nil, errors.New("checkout_tx_fs: plan has no groups")
	}

	products := t.Client.Collection("products")
	cartItems := t.Client.Collection("cartItems")
	orders := t.Client.Collection("orders")

	var created []orderdom.Order

	err := t.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = created[:0]

		// Phase 1: read every product referenced by the plan and check
		// the requested quantities against live state. These reads are
		// the authoritative ones; the cart snapshots are only hints.
		type productState struct {
			ref *firestore.DocumentRef
			p   productdom.Product
		}
		states := map[string]*productState{}

		for _, g := range plan.Groups {
			for _, it := range g.Items {
				if _, ok := states[it.ProductID]; ok {
					continue
				}
				ref := products.Doc(it.ProductID)
				snap, err := tx.Get(ref)
				if err != nil {
					if status.Code(err) == codes.NotFound {
						return fmt.Errorf("checkout_tx_fs: product %s: %w", it.ProductID, productdom.ErrNotFound)
					}
					return err
				}
				p, err := docToProduct(snap)
				if err != nil {
					return err
				}
				states[it.ProductID] = &productState{ref: ref, p: p}
			}
		}

		for _, g := range plan.Groups {
			for _, it := range g.Items {
				st := states[it.ProductID]
				if !st.p.Active() {
					return fmt.Errorf("checkout_tx_fs: product %s is inactive: %w", it.ProductID, productdom.ErrNotFound)
				}
				if err := stock.Validate(it.Quantity, st.p.Quantity); err != nil {
					return fmt.Errorf("product %s: %w", it.ProductID, err)
				}
			}
		}

		// Phase 2: all checks passed, write everything.
		for _, g := range plan.Groups {
			orderRef := orders.NewDoc()
			o, err := orderdom.New(
				orderRef.ID,
				plan.Buyer.UID, plan.Buyer.Email,
				g.FarmerID, g.FarmerEmail,
				usecase.SnapshotItems(g.Items),
				plan.Delivery,
				plan.Now,
			)
			if err != nil {
				return err
			}
			if err := tx.Create(orderRef, orderToDoc(o)); err != nil {
				return err
			}
			created = append(created, o)

			for _, it := range g.Items {
				item := it
				if err := item.MarkOrdered(plan.Now); err != nil {
					return err
				}
				if err := tx.Set(cartItems.Doc(item.ID), lineItemToDoc(item)); err != nil {
					return err
				}

				st := states[item.ProductID]
				st.p.RecordSale(item.Quantity, plan.Now)
			}
		}

		for _, st := range states {
			if err := tx.Set(st.ref, productToDoc(st.p)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
