// internal/application/usecase/checkout_usecase_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "farmlink/internal/domain/cart"
	orderdom "farmlink/internal/domain/order"
	productdom "farmlink/internal/domain/product"
	"farmlink/internal/domain/session"
	"farmlink/internal/domain/stock"
)

func testDelivery() orderdom.DeliveryInfo {
	return orderdom.DeliveryInfo{
		FullName: "Jordan Avery",
		Phone:    "+1 555 010 2233",
		Address:  "12 Orchard Lane",
		City:     "Springfield",
	}
}

// seedCart puts a pending line item for sess into the repo, snapshotting
// the given product.
func seedCart(t *testing.T, carts *memCartRepo, sess session.Session, p productdom.Product, qty int, at time.Time) cartdom.LineItem {
	t.Helper()
	it, err := cartdom.New(carts.NextID(), sess.UID, sess.Email, p, qty, at)
	require.NoError(t, err)
	carts.put(it)
	return it
}

func seedFarmerProduct(t *testing.T, products *memProductRepo, id, farmerID string, price float64, qty int) productdom.Product {
	t.Helper()
	p, err := productdom.New(id, farmerID, farmerID+"@example.com", productdom.Attrs{
		Name:     "Produce " + id,
		Price:    price,
		Unit:     "kg",
		Quantity: qty,
	}, testNow)
	require.NoError(t, err)
	products.put(p)
	return p
}

func TestCheckoutCreatesOneOrderPerSeller(t *testing.T) {
	carts := newMemCartRepo()
	products := newMemProductRepo()
	orders := newMemOrderRepo()
	sess := buyerSession()

	pa := seedFarmerProduct(t, products, "prod-a", "farmer-a", 4.0, 10)
	pb := seedFarmerProduct(t, products, "prod-b", "farmer-b", 6.0, 5)
	pc := seedFarmerProduct(t, products, "prod-c", "farmer-a", 2.5, 8)

	// newest first: prod-c, prod-b, prod-a
	seedCart(t, carts, sess, pa, 2, testNow)
	seedCart(t, carts, sess, pb, 1, testNow.Add(time.Minute))
	seedCart(t, carts, sess, pc, 4, testNow.Add(2*time.Minute))

	tx := &fakeCheckoutTx{carts: carts, products: products, orders: orders}
	uc := NewCheckoutUsecase(carts, tx).WithClock(fixedClock{testNow.Add(time.Hour)})

	created, err := uc.Checkout(context.Background(), sess, testDelivery())
	require.NoError(t, err)
	require.Len(t, created, 2)

	// groups follow first appearance in the (newest first) item list
	assert.Equal(t, "farmer-a", created[0].FarmerID)
	assert.Equal(t, "farmer-b", created[1].FarmerID)

	assert.InDelta(t, 4*2.5+2*4.0, created[0].TotalAmount, 1e-9)
	assert.InDelta(t, 6.0, created[1].TotalAmount, 1e-9)
	assert.Len(t, created[0].Items, 2)
	assert.Len(t, created[1].Items, 1)

	// delivery info copied into every order
	for _, o := range created {
		assert.Equal(t, "Jordan Avery", o.DeliveryInfo.FullName)
		assert.Equal(t, orderdom.StatusPending, o.Status)
	}

	// cart drained, stock moved, sold counters bumped
	pending, err := carts.ListPending(context.Background(), sess.UID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	pa2, _ := products.GetByID(context.Background(), "prod-a")
	assert.Equal(t, 8, pa2.Quantity)
	assert.Equal(t, 2, pa2.Sold)
	pc2, _ := products.GetByID(context.Background(), "prod-c")
	assert.Equal(t, 4, pc2.Quantity)
	assert.Equal(t, 4, pc2.Sold)
}

func TestCheckoutValidatesDeliveryBeforeStore(t *testing.T) {
	carts := newMemCartRepo()
	carts.listErr = errors.New("store must not be reached")

	uc := NewCheckoutUsecase(carts, &fakeCheckoutTx{}).WithClock(fixedClock{testNow})

	d := testDelivery()
	d.Phone = ""
	_, err := uc.Checkout(context.Background(), buyerSession(), d)

	var ve *orderdom.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "phone", ve.Field)
}

func TestCheckoutEmptyCart(t *testing.T) {
	uc := NewCheckoutUsecase(newMemCartRepo(), &fakeCheckoutTx{}).WithClock(fixedClock{testNow})

	_, err := uc.Checkout(context.Background(), buyerSession(), testDelivery())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckoutRequiresBuyer(t *testing.T) {
	uc := NewCheckoutUsecase(newMemCartRepo(), &fakeCheckoutTx{}).WithClock(fixedClock{testNow})

	_, err := uc.Checkout(context.Background(), farmerSession(), testDelivery())
	assert.ErrorIs(t, err, session.ErrNotAuthorized)
}

func TestCheckoutTxFailureLeavesCartPending(t *testing.T) {
	carts := newMemCartRepo()
	products := newMemProductRepo()
	sess := buyerSession()

	p := seedFarmerProduct(t, products, "prod-a", "farmer-a", 4.0, 10)
	seedCart(t, carts, sess, p, 2, testNow)

	tx := &fakeCheckoutTx{err: errors.New("contention")}
	uc := NewCheckoutUsecase(carts, tx).WithClock(fixedClock{testNow})

	_, err := uc.Checkout(context.Background(), sess, testDelivery())
	assert.ErrorIs(t, err, ErrCheckoutAborted)

	// nothing moved: item still pending, stock untouched
	pending, _ := carts.ListPending(context.Background(), sess.UID)
	assert.Len(t, pending, 1)
	p2, _ := products.GetByID(context.Background(), "prod-a")
	assert.Equal(t, 10, p2.Quantity)
	assert.Equal(t, 0, p2.Sold)
}

func TestCheckoutRejectsWhenStockShrinksAfterAdd(t *testing.T) {
	carts := newMemCartRepo()
	products := newMemProductRepo()
	orders := newMemOrderRepo()
	sess := buyerSession()

	p := seedFarmerProduct(t, products, "prod-a", "farmer-a", 4.0, 10)
	seedCart(t, carts, sess, p, 5, testNow)

	// another buyer's committed checkout drained the stock in between
	p.RecordSale(7, testNow)
	products.put(p)

	tx := &fakeCheckoutTx{carts: carts, products: products, orders: orders}
	uc := NewCheckoutUsecase(carts, tx).WithClock(fixedClock{testNow})

	_, err := uc.Checkout(context.Background(), sess, testDelivery())

	// the transaction-time read is authoritative: 5 requested, 3 left
	var ise *stock.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 3, ise.Available)

	// nothing moved: item still pending, no order, stock untouched
	pending, _ := carts.ListPending(context.Background(), sess.UID)
	require.Len(t, pending, 1)
	assert.Equal(t, 5, pending[0].Quantity)
	mine, _ := orders.ListByBuyer(context.Background(), sess.UID)
	assert.Empty(t, mine)
	p2, _ := products.GetByID(context.Background(), "prod-a")
	assert.Equal(t, 3, p2.Quantity)
	assert.Equal(t, 7, p2.Sold)
}

func TestCheckoutRejectsDeactivatedProduct(t *testing.T) {
	carts := newMemCartRepo()
	products := newMemProductRepo()
	sess := buyerSession()

	p := seedFarmerProduct(t, products, "prod-a", "farmer-a", 4.0, 10)
	seedCart(t, carts, sess, p, 2, testNow)

	// listing retired while the item sat in the cart
	p.Deactivate(testNow)
	products.put(p)

	tx := &fakeCheckoutTx{carts: carts, products: products}
	uc := NewCheckoutUsecase(carts, tx).WithClock(fixedClock{testNow})

	_, err := uc.Checkout(context.Background(), sess, testDelivery())
	assert.ErrorIs(t, err, ErrCheckoutAborted)

	pending, _ := carts.ListPending(context.Background(), sess.UID)
	assert.Len(t, pending, 1)
}

func TestCheckoutInsufficientStockPassesThrough(t *testing.T) {
	carts := newMemCartRepo()
	products := newMemProductRepo()
	sess := buyerSession()

	p := seedFarmerProduct(t, products, "prod-a", "farmer-a", 4.0, 10)
	seedCart(t, carts, sess, p, 2, testNow)

	tx := &fakeCheckoutTx{err: &stock.InsufficientStockError{Available: 1}}
	uc := NewCheckoutUsecase(carts, tx).WithClock(fixedClock{testNow})

	_, err := uc.Checkout(context.Background(), sess, testDelivery())

	// the stock payload survives, it is not wrapped as an abort
	var ise *stock.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 1, ise.Available)
	assert.NotErrorIs(t, err, ErrCheckoutAborted)
}

func TestCheckoutPlanCarriesClockAndBuyer(t *testing.T) {
	carts := newMemCartRepo()
	products := newMemProductRepo()
	sess := buyerSession()

	p := seedFarmerProduct(t, products, "prod-a", "farmer-a", 4.0, 10)
	seedCart(t, carts, sess, p, 2, testNow)

	at := testNow.Add(3 * time.Hour)
	tx := &fakeCheckoutTx{carts: carts, products: products}
	uc := NewCheckoutUsecase(carts, tx).WithClock(fixedClock{at})

	_, err := uc.Checkout(context.Background(), sess, testDelivery())
	require.NoError(t, err)

	require.NotNil(t, tx.plan)
	assert.Equal(t, sess, tx.plan.Buyer)
	assert.Equal(t, at, tx.plan.Now)
	require.Len(t, tx.plan.Groups, 1)
	assert.Equal(t, "farmer-a", tx.plan.Groups[0].FarmerID)
}

func TestCheckoutSideEffectsBestEffort(t *testing.T) {
	carts := newMemCartRepo()
	products := newMemProductRepo()
	sess := buyerSession()

	p := seedFarmerProduct(t, products, "prod-a", "farmer-a", 4.0, 10)
	seedCart(t, carts, sess, p, 2, testNow)

	mailer := &fakeMailer{err: errors.New("smtp down")}
	archive := &fakeArchive{err: errors.New("db down")}
	tx := &fakeCheckoutTx{carts: carts, products: products}
	uc := NewCheckoutUsecase(carts, tx).
		WithMailer(mailer).
		WithArchive(archive).
		WithClock(fixedClock{testNow})

	created, err := uc.Checkout(context.Background(), sess, testDelivery())
	require.NoError(t, err)
	require.Len(t, created, 1)

	// both were attempted, neither failure surfaced
	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, sess.Email, mailer.to)
	assert.Equal(t, 1, mailer.orders)
	assert.Equal(t, 1, archive.calls)
}

func TestGroupBySeller(t *testing.T) {
	items := []cartdom.LineItem{
		{FarmerID: "f1", FarmerEmail: "f1@example.com", TotalPrice: 10},
		{FarmerID: "f2", FarmerEmail: "f2@example.com", TotalPrice: 5},
		{FarmerID: "f1", FarmerEmail: "f1@example.com", TotalPrice: 2.5},
	}

	groups := GroupBySeller(items)
	require.Len(t, groups, 2)

	assert.Equal(t, "f1", groups[0].FarmerID)
	assert.Len(t, groups[0].Items, 2)
	assert.InDelta(t, 12.5, groups[0].Total, 1e-9)

	assert.Equal(t, "f2", groups[1].FarmerID)
	assert.Len(t, groups[1].Items, 1)
	assert.InDelta(t, 5.0, groups[1].Total, 1e-9)

	assert.Empty(t, GroupBySeller(nil))
}

func TestSnapshotItems(t *testing.T) {
	items := []cartdom.LineItem{
		{ProductID: "p1", ProductName: "Tomatoes", ProductPrice: 4.5, ProductUnit: "kg", Quantity: 2, TotalPrice: 9.0},
	}

	snaps := SnapshotItems(items)
	require.Len(t, snaps, 1)
	assert.Equal(t, orderdom.ItemSnapshot{
		ProductID:    "p1",
		ProductName:  "Tomatoes",
		ProductPrice: 4.5,
		ProductUnit:  "kg",
		Quantity:     2,
		TotalPrice:   9.0,
	}, snaps[0])
}
