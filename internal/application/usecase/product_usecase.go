// internal/application/usecase/product_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"farmlink/internal/domain/common"
	productdom "farmlink/internal/domain/product"
	"farmlink/internal/domain/session"
)

var ErrProductInvalidArgument = errors.New("product_usecase: invalid argument")

// ImageStore persists product images and returns a public URL.
type ImageStore interface {
	UploadProductImage(ctx context.Context, farmerID, filename, contentType string, data []byte) (string, error)
	// DeleteProductImage removes the object behind a previously
	// returned URL. Missing objects are not an error.
	DeleteProductImage(ctx context.Context, imageURL string) error
}

type ProductUsecase struct {
	products productdom.Repository
	images   ImageStore // optional
	clock    Clock
}

func NewProductUsecase(products productdom.Repository) *ProductUsecase {
	return &ProductUsecase{products: products, clock: systemClock{}}
}

func (uc *ProductUsecase) WithImages(s ImageStore) *ProductUsecase {
	uc.images = s
	return uc
}

func (uc *ProductUsecase) WithClock(c Clock) *ProductUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// CreateInput carries the listing form. Image is optional; when set it
// is uploaded first and the resulting URL stored on the product.
type CreateInput struct {
	Name        string
	Description string
	Price       float64
	Unit        string
	Quantity    int
	Category    string
	Location    string
	HarvestDate string
	ExpiryDate  string
	Organic     bool

	ImageName        string
	ImageContentType string
	ImageData        []byte
}

func (uc *ProductUsecase) Create(ctx context.Context, sess session.Session, in CreateInput) (productdom.Product, error) {
	if err := sess.RequireFarmer(); err != nil {
		return productdom.Product{}, err
	}

	imageURL := ""
	if len(in.ImageData) > 0 {
		if uc.images == nil {
			return productdom.Product{}, errors.New("product_usecase: image store is not configured")
		}
		url, err := uc.images.UploadProductImage(ctx, sess.UID, in.ImageName, in.ImageContentType, in.ImageData)
		if err != nil {
			return productdom.Product{}, err
		}
		imageURL = url
	}

	p, err := productdom.New(uc.products.NextID(), sess.UID, sess.Email, productdom.Attrs{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Unit:        in.Unit,
		Quantity:    in.Quantity,
		Category:    in.Category,
		Location:    in.Location,
		HarvestDate: in.HarvestDate,
		ExpiryDate:  in.ExpiryDate,
		Organic:     in.Organic,
		ImageURL:    imageURL,
	}, uc.clock.Now())
	if err != nil {
		return productdom.Product{}, err
	}

	if err := uc.products.Create(ctx, p); err != nil {
		return productdom.Product{}, err
	}
	log.Printf("[product_uc] OK: product created productId=%s farmerId=%s", p.ID, sess.UID)
	return p, nil
}

// UpdateInput holds the editable listing fields. Nil pointers mean
// "leave unchanged".
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *float64
	Unit        *string
	Quantity    *int
	Category    *string
	Location    *string
	HarvestDate *string
	ExpiryDate  *string
	Organic     *bool
}

func (uc *ProductUsecase) Update(ctx context.Context, sess session.Session, productID string, in UpdateInput) (productdom.Product, error) {
	if err := sess.RequireFarmer(); err != nil {
		return productdom.Product{}, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return productdom.Product{}, ErrProductInvalidArgument
	}

	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return productdom.Product{}, err
	}
	if p.FarmerID != sess.UID {
		return productdom.Product{}, session.ErrNotAuthorized
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Unit != nil {
		p.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.HarvestDate != nil {
		p.HarvestDate = strings.TrimSpace(*in.HarvestDate)
	}
	if in.ExpiryDate != nil {
		p.ExpiryDate = strings.TrimSpace(*in.ExpiryDate)
	}
	if in.Organic != nil {
		p.Organic = *in.Organic
	}
	p.UpdatedAt = uc.clock.Now()

	if err := p.Validate(); err != nil {
		return productdom.Product{}, err
	}
	if err := uc.products.Save(ctx, p); err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

// Deactivate takes a listing off the marketplace without deleting its
// history. Pending cart lines referencing it fail at checkout time.
func (uc *ProductUsecase) Deactivate(ctx context.Context, sess session.Session, productID string) error {
	if err := sess.RequireFarmer(); err != nil {
		return err
	}
	p, err := uc.products.GetByID(ctx, strings.TrimSpace(productID))
	if err != nil {
		return err
	}
	if p.FarmerID != sess.UID {
		return session.ErrNotAuthorized
	}
	p.Deactivate(uc.clock.Now())
	return uc.products.Save(ctx, p)
}

func (uc *ProductUsecase) Delete(ctx context.Context, sess session.Session, productID string) error {
	if err := sess.RequireFarmer(); err != nil {
		return err
	}
	p, err := uc.products.GetByID(ctx, strings.TrimSpace(productID))
	if err != nil {
		return err
	}
	if p.FarmerID != sess.UID {
		return session.ErrNotAuthorized
	}
	if err := uc.products.Delete(ctx, p.ID); err != nil {
		return err
	}
	// Image cleanup is best-effort; an orphaned object never blocks
	// the delete.
	if uc.images != nil && p.ImageURL != "" {
		if err := uc.images.DeleteProductImage(ctx, p.ImageURL); err != nil {
			log.Printf("[product_uc] WARN: image cleanup failed productId=%s err=%v", p.ID, err)
		}
	}
	return nil
}

// Get returns one product and counts the view. The view bump is
// best-effort and does not touch the returned copy.
func (uc *ProductUsecase) Get(ctx context.Context, productID string) (productdom.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return productdom.Product{}, ErrProductInvalidArgument
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return productdom.Product{}, err
	}
	if err := uc.products.IncrementViews(ctx, p.ID); err != nil {
		log.Printf("[product_uc] WARN: view increment failed productId=%s err=%v", p.ID, err)
	}
	return p, nil
}

// List returns active products matching the filter. Browsing never
// requires a session.
func (uc *ProductUsecase) List(ctx context.Context, f productdom.Filter, sort common.Sort, page common.Page) (common.PageResult[productdom.Product], error) {
	if len(f.Statuses) == 0 {
		f.Statuses = []productdom.Status{productdom.StatusActive}
	}
	return uc.products.List(ctx, f, sort, page)
}

// ListMine returns the farmer's own listings regardless of status.
func (uc *ProductUsecase) ListMine(ctx context.Context, sess session.Session) ([]productdom.Product, error) {
	if err := sess.RequireFarmer(); err != nil {
		return nil, err
	}
	return uc.products.ListByFarmer(ctx, sess.UID)
}
