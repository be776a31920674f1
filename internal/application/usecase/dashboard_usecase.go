// internal/application/usecase/dashboard_usecase.go
package usecase

import (
	"context"
	"math"
	"time"

	orderdom "farmlink/internal/domain/order"
	productdom "farmlink/internal/domain/product"
	"farmlink/internal/domain/session"
)

// estimated savings vs market price for buyers
const savingsRate = 0.15

// FarmerStats summarizes a farmer's listings and sales.
type FarmerStats struct {
	TotalProducts int     `json:"totalProducts"`
	TotalSold     int     `json:"totalSold"`
	TotalRevenue  float64 `json:"totalRevenue"`
	MonthlyGrowth float64 `json:"monthlyGrowth"` // listing count growth, percent
}

// BuyerStats summarizes a buyer's purchase history.
type BuyerStats struct {
	TotalOrders int     `json:"totalOrders"`
	TotalSpent  float64 `json:"totalSpent"`
	SavedAmount float64 `json:"savedAmount"`
}

type DashboardUsecase struct {
	products productdom.Repository
	orders   orderdom.Repository
	clock    Clock
}

func NewDashboardUsecase(products productdom.Repository, orders orderdom.Repository) *DashboardUsecase {
	return &DashboardUsecase{products: products, orders: orders, clock: systemClock{}}
}

func (uc *DashboardUsecase) WithClock(c Clock) *DashboardUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// FarmerDashboard aggregates over the farmer's listings. Revenue is
// derived from the cumulative sold counters, so it tracks committed
// checkouts without scanning orders.
func (uc *DashboardUsecase) FarmerDashboard(ctx context.Context, sess session.Session) (FarmerStats, error) {
	if err := sess.RequireFarmer(); err != nil {
		return FarmerStats{}, err
	}
	products, err := uc.products.ListByFarmer(ctx, sess.UID)
	if err != nil {
		return FarmerStats{}, err
	}

	var s FarmerStats
	s.TotalProducts = len(products)
	for _, p := range products {
		s.TotalSold += p.Sold
		s.TotalRevenue += float64(p.Sold) * p.Price
	}
	s.MonthlyGrowth = listingGrowth(products, uc.clock.Now())
	return s, nil
}

// BuyerDashboard aggregates over the buyer's order history. SavedAmount
// is an estimate against retail pricing, rounded to whole currency.
func (uc *DashboardUsecase) BuyerDashboard(ctx context.Context, sess session.Session) (BuyerStats, error) {
	if err := sess.RequireBuyer(); err != nil {
		return BuyerStats{}, err
	}
	orders, err := uc.orders.ListByBuyer(ctx, sess.UID)
	if err != nil {
		return BuyerStats{}, err
	}

	var s BuyerStats
	s.TotalOrders = len(orders)
	for _, o := range orders {
		s.TotalSpent += o.TotalAmount
	}
	s.SavedAmount = math.Round(s.TotalSpent * savingsRate)
	return s, nil
}

// listingGrowth compares listings created this calendar month against
// the earlier ones, as a percentage. Zero when there is no baseline.
func listingGrowth(products []productdom.Product, now time.Time) float64 {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var before, during int
	for _, p := range products {
		if p.CreatedAt.IsZero() {
			continue
		}
		if p.CreatedAt.Before(monthStart) {
			before++
		} else {
			during++
		}
	}
	if before == 0 {
		return 0
	}
	growth := float64(during-before) / float64(before) * 100
	return math.Round(growth*100) / 100
}
