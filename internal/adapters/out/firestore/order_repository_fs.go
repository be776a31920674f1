// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	orderdom "farmlink/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository using Firestore.
//
// Collection design:
// - collection: orders
// - docId: orderId (docId is the source of truth)
//
// Creation happens only inside CheckoutTxFS; this repository reads and
// updates existing docs.
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	if err != nil {
		return orderdom.Order{}, err
	}
	return docToOrder(snap)
}

func (r *OrderRepositoryFS) ListByBuyer(ctx context.Context, buyerID string) ([]orderdom.Order, error) {
	return r.listBy(ctx, "buyerId", buyerID)
}

func (r *OrderRepositoryFS) ListByFarmer(ctx context.Context, farmerID string) ([]orderdom.Order, error) {
	return r.listBy(ctx, "farmerId", farmerID)
}

func (r *OrderRepositoryFS) listBy(ctx context.Context, field, id string) ([]orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("order_repository_fs: " + field + " is empty")
	}

	it := r.col().Where(field, "==", id).Documents(ctx)
	defer it.Stop()

	var orders []orderdom.Order
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		o, err := docToOrder(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *OrderRepositoryFS) Save(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: firestore client is nil")
	}
	if err := o.Validate(); err != nil {
		return orderdom.Order{}, err
	}
	if _, err := r.col().Doc(o.ID).Set(ctx, orderToDoc(o)); err != nil {
		return orderdom.Order{}, err
	}
	return o, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type orderDoc struct {
	BuyerID     string `firestore:"buyerId"`
	BuyerEmail  string `firestore:"buyerEmail"`
	FarmerID    string `firestore:"farmerId"`
	FarmerEmail string `firestore:"farmerEmail"`

	Items       []orderItemDoc `firestore:"items"`
	TotalAmount float64        `firestore:"totalAmount"`

	Delivery deliveryDoc `firestore:"deliveryInfo"`

	Status        string `firestore:"status"`
	PaymentStatus string `firestore:"paymentStatus"`

	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type orderItemDoc struct {
	ProductID    string  `firestore:"productId"`
	ProductName  string  `firestore:"productName"`
	ProductPrice float64 `firestore:"productPrice"`
	ProductUnit  string  `firestore:"productUnit"`
	Quantity     int     `firestore:"quantity"`
	TotalPrice   float64 `firestore:"totalPrice"`
}

type deliveryDoc struct {
	FullName string `firestore:"fullName"`
	Phone    string `firestore:"phone"`
	Address  string `firestore:"address"`
	City     string `firestore:"city"`
	Notes    string `firestore:"notes"`
}

func orderToDoc(o orderdom.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDoc{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			ProductUnit:  it.ProductUnit,
			Quantity:     it.Quantity,
			TotalPrice:   it.TotalPrice,
		})
	}
	return orderDoc{
		BuyerID:     o.BuyerID,
		BuyerEmail:  o.BuyerEmail,
		FarmerID:    o.FarmerID,
		FarmerEmail: o.FarmerEmail,

		Items:       items,
		TotalAmount: o.TotalAmount,

		Delivery: deliveryDoc{
			FullName: o.DeliveryInfo.FullName,
			Phone:    o.DeliveryInfo.Phone,
			Address:  o.DeliveryInfo.Address,
			City:     o.DeliveryInfo.City,
			Notes:    o.DeliveryInfo.Notes,
		},

		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),

		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func docToOrder(snap *firestore.DocumentSnapshot) (orderdom.Order, error) {
	if snap == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: snapshot is nil")
	}
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return orderdom.Order{}, err
	}

	items := make([]orderdom.ItemSnapshot, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, orderdom.ItemSnapshot{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			ProductUnit:  it.ProductUnit,
			Quantity:     it.Quantity,
			TotalPrice:   it.TotalPrice,
		})
	}

	return orderdom.Order{
		// docId is the source of truth
		ID:          snap.Ref.ID,
		BuyerID:     d.BuyerID,
		BuyerEmail:  d.BuyerEmail,
		FarmerID:    d.FarmerID,
		FarmerEmail: d.FarmerEmail,

		Items:       items,
		TotalAmount: d.TotalAmount,

		DeliveryInfo: orderdom.DeliveryInfo{
			FullName: d.Delivery.FullName,
			Phone:    d.Delivery.Phone,
			Address:  d.Delivery.Address,
			City:     d.Delivery.City,
			Notes:    d.Delivery.Notes,
		},

		Status:        orderdom.Status(d.Status),
		PaymentStatus: orderdom.PaymentStatus(d.PaymentStatus),

		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}
