// internal/adapters/out/firestore/product_repository_fs.go
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

	productdom "farmlink/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
// Collection design:
// - collection: products
// - docId: productId (docId is the source of truth)
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

func (r *ProductRepositoryFS) NextID() string {
	return r.col().NewDoc().ID
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errors.New("product_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return productdom.Product{}, productdom.ErrNotFound
	}
	if err != nil {
		return productdom.Product{}, err
	}
	return docToProduct(snap)
}

// List loads candidates with equality filters pushed to Firestore and
// applies search / sort / paging in memory. The catalog is small enough
// that composite indexes for every sort column are not worth it yet.
func (r *ProductRepositoryFS) List(ctx context.Context, filter productdom.Filter, st productdom.Sort, page productdom.Page) (productdom.PageResult, error) {
	if r == nil || r.Client == nil {
		return productdom.PageResult{}, errors.New("product_repository_fs: firestore client is nil")
	}

	q := r.col().Query
	if fid := strings.TrimSpace(filter.FarmerID); fid != "" {
		q = q.Where("farmerId", "==", fid)
	}
	if cat := strings.TrimSpace(filter.Category); cat != "" {
		q = q.Where("category", "==", cat)
	}
	if filter.OrganicOnly {
		q = q.Where("organic", "==", true)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	var items []productdom.Product
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return productdom.PageResult{}, err
		}
		p, err := docToProduct(doc)
		if err != nil {
			return productdom.PageResult{}, err
		}
		if !matchProduct(p, filter) {
			continue
		}
		items = append(items, p)
	}

	sortProducts(items, st)
	return pageProducts(items, page), nil
}

func (r *ProductRepositoryFS) ListByFarmer(ctx context.Context, farmerID string) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}
	fid := strings.TrimSpace(farmerID)
	if fid == "" {
		return nil, errors.New("product_repository_fs: farmerID is empty")
	}

	it := r.col().Where("farmerId", "==", fid).Documents(ctx)
	defer it.Stop()

	var items []productdom.Product
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		p, err := docToProduct(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}

	sortProducts(items, productdom.Sort{Column: productdom.SortByCreatedAt, Order: productdom.SortDesc})
	return items, nil
}

func (r *ProductRepositoryFS) Create(ctx context.Context, p productdom.Product) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.col().Doc(p.ID).Create(ctx, productToDoc(p))
	return err
}

func (r *ProductRepositoryFS) Save(ctx context.Context, p productdom.Product) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.col().Doc(p.ID).Set(ctx, productToDoc(p))
	return err
}

func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.ErrNotFound
	}
	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

// IncrementViews uses a server-side increment so concurrent views never
// clobber each other or the listing fields.
func (r *ProductRepositoryFS) IncrementViews(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.ErrNotFound
	}
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if status.Code(err) == codes.NotFound {
		return productdom.ErrNotFound
	}
	return err
}

func matchProduct(p productdom.Product, f productdom.Filter) bool {
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if p.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.SearchQuery)); q != "" {
		name := strings.ToLower(p.Name)
		desc := strings.ToLower(p.Description)
		if !strings.Contains(name, q) && !strings.Contains(desc, q) {
			return false
		}
	}
	return true
}

func sortProducts(items []productdom.Product, st productdom.Sort) {
	col := st.Column
	if col == "" {
		col = productdom.SortByCreatedAt
	}
	desc := st.Order == productdom.SortDesc || st.Order == ""

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var less bool
		switch col {
		case productdom.SortByPrice:
			less = a.Price < b.Price
		case productdom.SortByName:
			less = a.Name < b.Name
		case productdom.SortBySold:
			less = a.Sold < b.Sold
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if desc {
			return !less && !equalOn(col, a, b)
		}
		return less
	})
}

func equalOn(col string, a, b productdom.Product) bool {
	switch col {
	case productdom.SortByPrice:
		return a.Price == b.Price
	case productdom.SortByName:
		return a.Name == b.Name
	case productdom.SortBySold:
		return a.Sold == b.Sold
	default:
		return a.CreatedAt.Equal(b.CreatedAt)
	}
}

func pageProducts(items []productdom.Product, page productdom.Page) productdom.PageResult {
	per := page.PerPage
	if per <= 0 {
		per = 20
	}
	num := page.Number
	if num <= 0 {
		num = 1
	}

	total := len(items)
	pages := (total + per - 1) / per
	if pages == 0 {
		pages = 1
	}

	start := (num - 1) * per
	if start > total {
		start = total
	}
	end := start + per
	if end > total {
		end = total
	}

	return productdom.PageResult{
		Items:      items[start:end],
		TotalCount: total,
		TotalPages: pages,
		Page:       num,
		PerPage:    per,
	}
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type productDoc struct {
	FarmerID    string    `firestore:"farmerId"`
	FarmerEmail string    `firestore:"farmerEmail"`
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	Price       float64   `firestore:"price"`
	Unit        string    `firestore:"unit"`
	Quantity    int       `firestore:"quantity"`
	Category    string    `firestore:"category"`
	Location    string    `firestore:"location"`
	HarvestDate string    `firestore:"harvestDate"`
	ExpiryDate  string    `firestore:"expiryDate"`
	Organic     bool      `firestore:"organic"`
	ImageURL    string    `firestore:"imageUrl"`
	Status      string    `firestore:"status"`
	Sold        int       `firestore:"sold"`
	Views       int       `firestore:"views"`
	Rating      float64   `firestore:"rating"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func productToDoc(p productdom.Product) productDoc {
	return productDoc{
		FarmerID:    p.FarmerID,
		FarmerEmail: p.FarmerEmail,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Unit:        p.Unit,
		Quantity:    p.Quantity,
		Category:    p.Category,
		Location:    p.Location,
		HarvestDate: p.HarvestDate,
		ExpiryDate:  p.ExpiryDate,
		Organic:     p.Organic,
		ImageURL:    p.ImageURL,
		Status:      string(p.Status),
		Sold:        p.Sold,
		Views:       p.Views,
		Rating:      p.Rating,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func docToProduct(snap *firestore.DocumentSnapshot) (productdom.Product, error) {
	if snap == nil {
		return productdom.Product{}, errors.New("product_repository_fs: snapshot is nil")
	}
	var d productDoc
	if err := snap.DataTo(&d); err != nil {
		return productdom.Product{}, err
	}
	return productdom.Product{
		// docId is the source of truth
		ID:          snap.Ref.ID,
		FarmerID:    d.FarmerID,
		FarmerEmail: d.FarmerEmail,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Unit:        d.Unit,
		Quantity:    d.Quantity,
		Category:    d.Category,
		Location:    d.Location,
		HarvestDate: d.HarvestDate,
		ExpiryDate:  d.ExpiryDate,
		Organic:     d.Organic,
		ImageURL:    d.ImageURL,
		Status:      productdom.Status(d.Status),
		Sold:        d.Sold,
		Views:       d.Views,
		Rating:      d.Rating,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}
