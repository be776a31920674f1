// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	orderdom "farmlink/internal/domain/order"
	"farmlink/internal/domain/session"
)

var ErrOrderInvalidArgument = errors.New("order_usecase: invalid argument")

// OrderUsecase serves order history and lets sellers move their orders
// through the fulfillment pipeline. Orders are only ever created by the
// checkout transaction, never here.
type OrderUsecase struct {
	orders orderdom.Repository
	clock  Clock
}

func NewOrderUsecase(orders orderdom.Repository) *OrderUsecase {
	return &OrderUsecase{orders: orders, clock: systemClock{}}
}

func (uc *OrderUsecase) WithClock(c Clock) *OrderUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// Get returns one order, visible only to its buyer or its farmer.
func (uc *OrderUsecase) Get(ctx context.Context, sess session.Session, orderID string) (orderdom.Order, error) {
	if !sess.Authenticated() {
		return orderdom.Order{}, session.ErrNotAuthenticated
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return orderdom.Order{}, ErrOrderInvalidArgument
	}
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return orderdom.Order{}, err
	}
	if o.BuyerID != sess.UID && o.FarmerID != sess.UID {
		return orderdom.Order{}, session.ErrNotAuthorized
	}
	return o, nil
}

// ListMine returns the caller's orders, buyer side or farmer side
// depending on their role, newest first.
func (uc *OrderUsecase) ListMine(ctx context.Context, sess session.Session) ([]orderdom.Order, error) {
	if !sess.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if sess.Role == session.RoleFarmer {
		return uc.orders.ListByFarmer(ctx, sess.UID)
	}
	return uc.orders.ListByBuyer(ctx, sess.UID)
}

// Advance moves one of the farmer's orders to the next fulfillment
// status. Transitions only go forward; anything else is rejected by
// the entity.
func (uc *OrderUsecase) Advance(ctx context.Context, sess session.Session, orderID string, next orderdom.Status) (orderdom.Order, error) {
	if err := sess.RequireFarmer(); err != nil {
		return orderdom.Order{}, err
	}
	o, err := uc.orders.GetByID(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return orderdom.Order{}, err
	}
	if o.FarmerID != sess.UID {
		return orderdom.Order{}, session.ErrNotAuthorized
	}
	if err := o.Advance(next, uc.clock.Now()); err != nil {
		return orderdom.Order{}, err
	}
	saved, err := uc.orders.Save(ctx, o)
	if err != nil {
		return orderdom.Order{}, err
	}
	log.Printf("[order_uc] OK: order advanced orderId=%s status=%s farmerId=%s", saved.ID, saved.Status, sess.UID)
	return saved, nil
}
