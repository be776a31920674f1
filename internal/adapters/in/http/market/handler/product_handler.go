// internal/adapters/in/http/market/handler/product_handler.go
package marketHandler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	usecase "farmlink/internal/application/usecase"
	"farmlink/internal/adapters/in/http/middleware"
	"farmlink/internal/domain/common"
	productdom "farmlink/internal/domain/product"
)

// 8 MiB, matches typical listing photos
const maxImageBytes = 8 << 20

// ProductHandler serves the product catalog.
//
//	GET    /market/products            browse (public)
//	GET    /market/products/{id}       detail + view count (public)
//	POST   /market/products            create listing (farmer, multipart or json)
//	PUT    /market/products/{id}       update listing (owner)
//	DELETE /market/products/{id}       delete listing (owner)
//	POST   /market/products/{id}/deactivate  retire listing (owner)
//	GET    /market/me/products         farmer's own listings
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewProductHandler(uc *usecase.ProductUsecase) http.Handler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "product handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/me/products"):
		h.handleListMine(w, r)
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/products"):
		h.handleList(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/products"):
		h.handleCreate(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/deactivate"):
		h.handleDeactivate(w, r, lastSegment(strings.TrimSuffix(path, "/deactivate")))
	case r.Method == http.MethodGet:
		h.handleGet(w, r, lastSegment(path))
	case r.Method == http.MethodPut:
		h.handleUpdate(w, r, lastSegment(path))
	case r.Method == http.MethodDelete:
		h.handleDelete(w, r, lastSegment(path))
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := productdom.Filter{
		Category:    strings.TrimSpace(q.Get("category")),
		SearchQuery: strings.TrimSpace(q.Get("q")),
		OrganicOnly: q.Get("organic") == "true",
	}

	st := common.Sort{
		Column: strings.TrimSpace(q.Get("sortBy")),
		Order:  common.SortOrder(strings.TrimSpace(q.Get("order"))),
	}

	page := common.Page{
		Number:  atoiDefault(q.Get("page"), 1),
		PerPage: atoiDefault(q.Get("perPage"), 20),
	}

	res, err := h.uc.List(r.Context(), filter, st, page)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if res.Items == nil {
		res.Items = []productdom.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":      res.Items,
		"totalCount": res.TotalCount,
		"totalPages": res.TotalPages,
		"page":       res.Page,
		"perPage":    res.PerPage,
	})
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	items, err := h.uc.ListMine(r.Context(), sess)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if items == nil {
		items = []productdom.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleCreate accepts multipart/form-data (image + "product" JSON
// part) or a bare JSON body without image.
func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())

	var in usecase.CreateInput

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		var form productForm
		if err := json.Unmarshal([]byte(r.FormValue("product")), &form); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid product json part")
			return
		}
		in = form.toCreateInput()
		file, header, err := r.FormFile("image")
		if err == nil {
			defer func() { _ = file.Close() }()
			data, rerr := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
			if rerr != nil || len(data) > maxImageBytes {
				writeErr(w, http.StatusBadRequest, "image too large")
				return
			}
			in.ImageName = header.Filename
			in.ImageContentType = header.Header.Get("Content-Type")
			in.ImageData = data
		}
	} else {
		var form productForm
		if err := decodeBody(r, &form); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json body")
			return
		}
		in = form.toCreateInput()
	}

	p, err := h.uc.Create(r.Context(), sess, in)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var form productPatch
	if err := decodeBody(r, &form); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	sess := middleware.SessionFrom(r.Context())
	p, err := h.uc.Update(r.Context(), sess, id, form.toUpdateInput())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleDeactivate(w http.ResponseWriter, r *http.Request, id string) {
	sess := middleware.SessionFrom(r.Context())
	if err := h.uc.Deactivate(r.Context(), sess, id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	sess := middleware.SessionFrom(r.Context())
	if err := h.uc.Delete(r.Context(), sess, id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// productForm / productPatch carry the wire field names so the usecase
// inputs stay free of json tags.

type productForm struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Quantity    int     `json:"quantity"`
	Category    string  `json:"category"`
	Location    string  `json:"location"`
	HarvestDate string  `json:"harvestDate"`
	ExpiryDate  string  `json:"expiryDate"`
	Organic     bool    `json:"organic"`
}

func (f productForm) toCreateInput() usecase.CreateInput {
	return usecase.CreateInput{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Unit:        f.Unit,
		Quantity:    f.Quantity,
		Category:    f.Category,
		Location:    f.Location,
		HarvestDate: f.HarvestDate,
		ExpiryDate:  f.ExpiryDate,
		Organic:     f.Organic,
	}
}

type productPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Unit        *string  `json:"unit"`
	Quantity    *int     `json:"quantity"`
	Category    *string  `json:"category"`
	Location    *string  `json:"location"`
	HarvestDate *string  `json:"harvestDate"`
	ExpiryDate  *string  `json:"expiryDate"`
	Organic     *bool    `json:"organic"`
}

func (f productPatch) toUpdateInput() usecase.UpdateInput {
	return usecase.UpdateInput{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Unit:        f.Unit,
		Quantity:    f.Quantity,
		Category:    f.Category,
		Location:    f.Location,
		HarvestDate: f.HarvestDate,
		ExpiryDate:  f.ExpiryDate,
		Organic:     f.Organic,
	}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
