// internal/application/usecase/product_usecase_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmlink/internal/domain/common"
	productdom "farmlink/internal/domain/product"
	"farmlink/internal/domain/session"
)

type fakeImageStore struct {
	err       error
	deleteErr error

	farmerID string
	filename string
	url      string
	deleted  []string
}

func (s *fakeImageStore) UploadProductImage(_ context.Context, farmerID, filename, _ string, _ []byte) (string, error) {
	s.farmerID = farmerID
	s.filename = filename
	if s.err != nil {
		return "", s.err
	}
	s.url = "https://storage.example.com/" + farmerID + "/" + filename
	return s.url, nil
}

func (s *fakeImageStore) DeleteProductImage(_ context.Context, imageURL string) error {
	s.deleted = append(s.deleted, imageURL)
	return s.deleteErr
}

func validCreateInput() CreateInput {
	return CreateInput{
		Name:     "Raw Honey",
		Price:    12.0,
		Unit:     "jar",
		Quantity: 6,
		Category: "pantry",
		Organic:  true,
	}
}

func TestProductCreate(t *testing.T) {
	products := newMemProductRepo()
	uc := NewProductUsecase(products).WithClock(fixedClock{testNow})

	p, err := uc.Create(context.Background(), farmerSession(), validCreateInput())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "farmer-1", p.FarmerID)
	assert.Equal(t, productdom.StatusActive, p.Status)
	assert.Empty(t, p.ImageURL)

	stored, err := products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, stored)
}

func TestProductCreateWithImage(t *testing.T) {
	products := newMemProductRepo()
	images := &fakeImageStore{}
	uc := NewProductUsecase(products).WithImages(images).WithClock(fixedClock{testNow})

	in := validCreateInput()
	in.ImageName = "honey.jpg"
	in.ImageContentType = "image/jpeg"
	in.ImageData = []byte{0xff, 0xd8}

	p, err := uc.Create(context.Background(), farmerSession(), in)
	require.NoError(t, err)

	assert.Equal(t, "farmer-1", images.farmerID)
	assert.Equal(t, "honey.jpg", images.filename)
	assert.Equal(t, images.url, p.ImageURL)
}

func TestProductCreateImageUploadFailure(t *testing.T) {
	products := newMemProductRepo()
	images := &fakeImageStore{err: errors.New("bucket unavailable")}
	uc := NewProductUsecase(products).WithImages(images).WithClock(fixedClock{testNow})

	in := validCreateInput()
	in.ImageData = []byte{0xff}

	_, err := uc.Create(context.Background(), farmerSession(), in)
	require.Error(t, err)

	// nothing persisted when the upload fails
	res, err := products.List(context.Background(), productdom.Filter{}, common.Sort{}, common.Page{})
	require.NoError(t, err)
	assert.Zero(t, res.TotalCount)
}

func TestProductCreateRequiresFarmer(t *testing.T) {
	uc := NewProductUsecase(newMemProductRepo()).WithClock(fixedClock{testNow})

	_, err := uc.Create(context.Background(), buyerSession(), validCreateInput())
	assert.ErrorIs(t, err, session.ErrNotAuthorized)
}

func TestProductUpdatePartial(t *testing.T) {
	products := newMemProductRepo()
	uc := NewProductUsecase(products).WithClock(fixedClock{testNow})

	p, err := uc.Create(context.Background(), farmerSession(), validCreateInput())
	require.NoError(t, err)

	price := 14.5
	qty := 3
	updated, err := uc.Update(context.Background(), farmerSession(), p.ID, UpdateInput{
		Price:    &price,
		Quantity: &qty,
	})
	require.NoError(t, err)

	assert.Equal(t, 14.5, updated.Price)
	assert.Equal(t, 3, updated.Quantity)
	// untouched fields survive
	assert.Equal(t, "Raw Honey", updated.Name)
	assert.Equal(t, "pantry", updated.Category)
	assert.True(t, updated.Organic)
}

func TestProductUpdateValidation(t *testing.T) {
	products := newMemProductRepo()
	uc := NewProductUsecase(products).WithClock(fixedClock{testNow})

	p, err := uc.Create(context.Background(), farmerSession(), validCreateInput())
	require.NoError(t, err)

	bad := -1.0
	_, err = uc.Update(context.Background(), farmerSession(), p.ID, UpdateInput{Price: &bad})
	assert.ErrorIs(t, err, productdom.ErrInvalidPrice)

	// rejected update never persisted
	stored, err := products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, stored.Price)
}

func TestProductUpdateOwnership(t *testing.T) {
	products := newMemProductRepo()
	uc := NewProductUsecase(products).WithClock(fixedClock{testNow})

	p, err := uc.Create(context.Background(), farmerSession(), validCreateInput())
	require.NoError(t, err)

	other := session.Session{UID: "farmer-2", Email: "f2@example.com", Role: session.RoleFarmer}
	name := "Hijacked"
	_, err = uc.Update(context.Background(), other, p.ID, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, session.ErrNotAuthorized)

	assert.ErrorIs(t, uc.Deactivate(context.Background(), other, p.ID), session.ErrNotAuthorized)
	assert.ErrorIs(t, uc.Delete(context.Background(), other, p.ID), session.ErrNotAuthorized)
}

func TestProductDeactivate(t *testing.T) {
	products := newMemProductRepo()
	uc := NewProductUsecase(products).WithClock(fixedClock{testNow})

	p, err := uc.Create(context.Background(), farmerSession(), validCreateInput())
	require.NoError(t, err)

	require.NoError(t, uc.Deactivate(context.Background(), farmerSession(), p.ID))

	stored, err := products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, productdom.StatusInactive, stored.Status)

	// deactivated listings drop out of the default browse view
	res, err := uc.List(context.Background(), productdom.Filter{}, common.Sort{}, common.Page{})
	require.NoError(t, err)
	assert.Zero(t, res.TotalCount)

	// but the farmer still sees them
	mine, err := uc.ListMine(context.Background(), farmerSession())
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestProductDeleteCleansUpImage(t *testing.T) {
	products := newMemProductRepo()
	images := &fakeImageStore{}
	uc := NewProductUsecase(products).WithImages(images).WithClock(fixedClock{testNow})

	in := validCreateInput()
	in.ImageName = "honey.jpg"
	in.ImageData = []byte{0xff, 0xd8}

	p, err := uc.Create(context.Background(), farmerSession(), in)
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), farmerSession(), p.ID))

	_, err = products.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, productdom.ErrNotFound)
	require.Len(t, images.deleted, 1)
	assert.Equal(t, p.ImageURL, images.deleted[0])
}

func TestProductDeleteImageCleanupBestEffort(t *testing.T) {
	products := newMemProductRepo()
	images := &fakeImageStore{deleteErr: errors.New("object locked")}
	uc := NewProductUsecase(products).WithImages(images).WithClock(fixedClock{testNow})

	in := validCreateInput()
	in.ImageData = []byte{0xff}

	p, err := uc.Create(context.Background(), farmerSession(), in)
	require.NoError(t, err)

	// a failing image delete never fails the product delete
	require.NoError(t, uc.Delete(context.Background(), farmerSession(), p.ID))
	assert.Len(t, images.deleted, 1)

	// no image, no cleanup call
	p2, err := uc.Create(context.Background(), farmerSession(), validCreateInput())
	require.NoError(t, err)
	require.NoError(t, uc.Delete(context.Background(), farmerSession(), p2.ID))
	assert.Len(t, images.deleted, 1)
}

func TestProductGetCountsView(t *testing.T) {
	products := newMemProductRepo()
	uc := NewProductUsecase(products).WithClock(fixedClock{testNow})

	p, err := uc.Create(context.Background(), farmerSession(), validCreateInput())
	require.NoError(t, err)

	got, err := uc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 1, products.views[p.ID])

	// a failing bump never fails the read
	products.viewErr = errors.New("update contention")
	_, err = uc.Get(context.Background(), p.ID)
	assert.NoError(t, err)
}

func TestProductListFilterSortPage(t *testing.T) {
	products := newMemProductRepo()
	sess := farmerSession()

	mk := func(name string, price float64, organic bool, at time.Time) {
		uc := NewProductUsecase(products).WithClock(fixedClock{at})
		in := validCreateInput()
		in.Name = name
		in.Price = price
		in.Organic = organic
		_, err := uc.Create(context.Background(), sess, in)
		require.NoError(t, err)
	}
	mk("Apples", 3.0, false, testNow)
	mk("Beets", 2.0, true, testNow.Add(time.Minute))
	mk("Carrots", 5.0, true, testNow.Add(2*time.Minute))

	uc := NewProductUsecase(products)

	res, err := uc.List(context.Background(),
		productdom.Filter{OrganicOnly: true},
		common.Sort{Column: productdom.SortByPrice, Order: productdom.SortAsc},
		common.Page{Number: 1, PerPage: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Beets", res.Items[0].Name)

	// substring search
	res, err = uc.List(context.Background(),
		productdom.Filter{SearchQuery: "carr"}, common.Sort{}, common.Page{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Carrots", res.Items[0].Name)

	// empty sort defaults to newest first
	res, err = uc.List(context.Background(), productdom.Filter{}, common.Sort{}, common.Page{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "Carrots", res.Items[0].Name)
	assert.Equal(t, "Apples", res.Items[2].Name)
}
