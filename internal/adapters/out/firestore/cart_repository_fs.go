// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "farmlink/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: cartItems
// - docId: line item id (docId is the source of truth)
// - one doc per buyer+product line; checkout flips status in place so
//   ordered items stay behind as history.
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("cartItems")
}

func (r *CartRepositoryFS) NextID() string {
	return r.col().NewDoc().ID
}

func (r *CartRepositoryFS) GetByID(ctx context.Context, id string) (cartdom.LineItem, error) {
	if r == nil || r.Client == nil {
		return cartdom.LineItem{}, errors.New("cart_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return cartdom.LineItem{}, cartdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return cartdom.LineItem{}, cartdom.ErrNotFound
	}
	if err != nil {
		return cartdom.LineItem{}, err
	}
	return docToLineItem(snap)
}

func (r *CartRepositoryFS) FindPendingByProduct(ctx context.Context, buyerID, productID string) (cartdom.LineItem, error) {
	if r == nil || r.Client == nil {
		return cartdom.LineItem{}, errors.New("cart_repository_fs: firestore client is nil")
	}
	bid := strings.TrimSpace(buyerID)
	pid := strings.TrimSpace(productID)
	if bid == "" || pid == "" {
		return cartdom.LineItem{}, cartdom.ErrNotFound
	}

	it := r.col().
		Where("buyerId", "==", bid).
		Where("productId", "==", pid).
		Where("status", "==", string(cartdom.StatusPending)).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return cartdom.LineItem{}, cartdom.ErrNotFound
	}
	if err != nil {
		return cartdom.LineItem{}, err
	}
	return docToLineItem(doc)
}

func (r *CartRepositoryFS) ListPending(ctx context.Context, buyerID string) ([]cartdom.LineItem, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	bid := strings.TrimSpace(buyerID)
	if bid == "" {
		return nil, errors.New("cart_repository_fs: buyerID is empty")
	}

	// No OrderBy here: buyerId+status+addedAt would need a composite
	// index and a cart holds at most a handful of lines. Sort in memory.
	it := r.col().
		Where("buyerId", "==", bid).
		Where("status", "==", string(cartdom.StatusPending)).
		Documents(ctx)
	defer it.Stop()

	var items []cartdom.LineItem
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		li, err := docToLineItem(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, li)
	}

	sortNewestFirst(items)
	return items, nil
}

func (r *CartRepositoryFS) Create(ctx context.Context, li cartdom.LineItem) (cartdom.LineItem, error) {
	if r == nil || r.Client == nil {
		return cartdom.LineItem{}, errors.New("cart_repository_fs: firestore client is nil")
	}
	if err := li.Validate(); err != nil {
		return cartdom.LineItem{}, err
	}
	if _, err := r.col().Doc(li.ID).Create(ctx, lineItemToDoc(li)); err != nil {
		return cartdom.LineItem{}, err
	}
	return li, nil
}

func (r *CartRepositoryFS) Save(ctx context.Context, li cartdom.LineItem) (cartdom.LineItem, error) {
	if r == nil || r.Client == nil {
		return cartdom.LineItem{}, errors.New("cart_repository_fs: firestore client is nil")
	}
	if err := li.Validate(); err != nil {
		return cartdom.LineItem{}, err
	}
	if _, err := r.col().Doc(li.ID).Set(ctx, lineItemToDoc(li)); err != nil {
		return cartdom.LineItem{}, err
	}
	return li, nil
}

func (r *CartRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return cartdom.ErrNotFound
	}
	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

// WatchPending streams the buyer's pending items off a Firestore query
// snapshot listener. Each snapshot replaces the previous view; slow
// consumers drop intermediate states rather than block the listener.
func (r *CartRepositoryFS) WatchPending(ctx context.Context, buyerID string) (*cartdom.Subscription, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	bid := strings.TrimSpace(buyerID)
	if bid == "" {
		return nil, errors.New("cart_repository_fs: buyerID is empty")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	snaps := r.col().
		Where("buyerId", "==", bid).
		Where("status", "==", string(cartdom.StatusPending)).
		Snapshots(watchCtx)

	updates := make(chan []cartdom.LineItem, 1)

	go func() {
		defer close(updates)
		defer snaps.Stop()

		for {
			qs, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("[cart_fs] watch stopped buyerId=%s err=%v", bid, err)
				}
				return
			}

			items, err := collectLineItems(qs.Documents)
			if err != nil {
				log.Printf("[cart_fs] WARN: watch decode failed buyerId=%s err=%v", bid, err)
				continue
			}
			sortNewestFirst(items)

			// Keep only the latest state in the buffer.
			select {
			case updates <- items:
			default:
				select {
				case <-updates:
				default:
				}
				updates <- items
			}
		}
	}()

	return &cartdom.Subscription{Updates: updates, Stop: cancel}, nil
}

func collectLineItems(it *firestore.DocumentIterator) ([]cartdom.LineItem, error) {
	defer it.Stop()

	var items []cartdom.LineItem
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		li, err := docToLineItem(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, li)
	}
}

func sortNewestFirst(items []cartdom.LineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AddedAt.After(items[j].AddedAt)
	})
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type lineItemDoc struct {
	BuyerID    string `firestore:"buyerId"`
	BuyerEmail string `firestore:"buyerEmail"`

	ProductID       string  `firestore:"productId"`
	ProductName     string  `firestore:"productName"`
	ProductPrice    float64 `firestore:"productPrice"`
	ProductUnit     string  `firestore:"productUnit"`
	ProductImage    string  `firestore:"productImage"`
	ProductQuantity int     `firestore:"productQuantity"`
	FarmerID        string  `firestore:"farmerId"`
	FarmerEmail     string  `firestore:"farmerEmail"`

	Quantity   int     `firestore:"quantity"`
	TotalPrice float64 `firestore:"totalPrice"`
	Status     string  `firestore:"status"`

	AddedAt   time.Time  `firestore:"addedAt"`
	UpdatedAt time.Time  `firestore:"updatedAt"`
	OrderedAt *time.Time `firestore:"orderedAt"`
}

func lineItemToDoc(li cartdom.LineItem) lineItemDoc {
	return lineItemDoc{
		BuyerID:    li.BuyerID,
		BuyerEmail: li.BuyerEmail,

		ProductID:       li.ProductID,
		ProductName:     li.ProductName,
		ProductPrice:    li.ProductPrice,
		ProductUnit:     li.ProductUnit,
		ProductImage:    li.ProductImage,
		ProductQuantity: li.ProductQuantity,
		FarmerID:        li.FarmerID,
		FarmerEmail:     li.FarmerEmail,

		Quantity:   li.Quantity,
		TotalPrice: li.TotalPrice,
		Status:     string(li.Status),

		AddedAt:   li.AddedAt,
		UpdatedAt: li.UpdatedAt,
		OrderedAt: li.OrderedAt,
	}
}

func docToLineItem(snap *firestore.DocumentSnapshot) (cartdom.LineItem, error) {
	if snap == nil {
		return cartdom.LineItem{}, errors.New("cart_repository_fs: snapshot is nil")
	}
	var d lineItemDoc
	if err := snap.DataTo(&d); err != nil {
		return cartdom.LineItem{}, err
	}
	return cartdom.LineItem{
		// docId is the source of truth
		ID:         snap.Ref.ID,
		BuyerID:    d.BuyerID,
		BuyerEmail: d.BuyerEmail,

		ProductID:       d.ProductID,
		ProductName:     d.ProductName,
		ProductPrice:    d.ProductPrice,
		ProductUnit:     d.ProductUnit,
		ProductImage:    d.ProductImage,
		ProductQuantity: d.ProductQuantity,
		FarmerID:        d.FarmerID,
		FarmerEmail:     d.FarmerEmail,

		Quantity:   d.Quantity,
		TotalPrice: d.TotalPrice,
		Status:     cartdom.Status(d.Status),

		AddedAt:   d.AddedAt,
		UpdatedAt: d.UpdatedAt,
		OrderedAt: d.OrderedAt,
	}, nil
}
