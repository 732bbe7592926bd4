package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxewear/storefront/internal/domain/catalog"
)

// productJSON is the wire shape of a catalog product.
type productJSON struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	ImageURL       string           `json:"imageUrl"`
	ImageURLs      []string         `json:"imageUrls,omitempty"`
	Category       string           `json:"category"`
	Subcategory    string           `json:"subcategory,omitempty"`
	Colors         []string         `json:"colors"`
	Sizes          []string         `json:"sizes"`
	Rating         float64          `json:"rating"`
	ReviewCount    int              `json:"reviewCount"`
	Featured       bool             `json:"featured"`
	Trending       bool             `json:"trending"`
	NewArrival     bool             `json:"newArrival"`
	InStock        bool             `json:"inStock"`
	CreatedAt      time.Time        `json:"createdAt"`
}

func (h *Handler) toProductJSON(p catalog.Product) productJSON {
	out := productJSON{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		ImageURL:       h.imageBaseURL + p.ImageURL,
		Category:       p.Category,
		Subcategory:    p.Subcategory,
		Colors:         p.Colors,
		Sizes:          p.Sizes,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		Featured:       p.Featured,
		Trending:       p.Trending,
		NewArrival:     p.NewArrival,
		InStock:        p.InStock,
		CreatedAt:      p.CreatedAt,
	}
	for _, u := range p.ImageURLs {
		out.ImageURLs = append(out.ImageURLs, h.imageBaseURL+u)
	}
	return out
}

func (pj productJSON) toDomain() catalog.Product {
	return catalog.Product{
		ID:             pj.ID,
		Name:           pj.Name,
		Description:    pj.Description,
		Price:          pj.Price,
		CompareAtPrice: pj.CompareAtPrice,
		ImageURL:       pj.ImageURL,
		ImageURLs:      pj.ImageURLs,
		Category:       pj.Category,
		Subcategory:    pj.Subcategory,
		Colors:         pj.Colors,
		Sizes:          pj.Sizes,
		Rating:         pj.Rating,
		ReviewCount:    pj.ReviewCount,
		Featured:       pj.Featured,
		Trending:       pj.Trending,
		NewArrival:     pj.NewArrival,
		InStock:        pj.InStock,
		CreatedAt:      pj.CreatedAt,
	}
}

// catalogResponse is the filtered product listing plus the distinct facet
// values of the result set, which the UI renders as filter options.
type catalogResponse struct {
	Products []productJSON `json:"products"`
	Total    int           `json:"total"`
	Facets   facetValues   `json:"facets"`
}

type facetValues struct {
	Categories []string `json:"categories"`
	Colors     []string `json:"colors"`
	Sizes      []string `json:"sizes"`
}

// parseFacets builds catalog facets from query parameters. Invalid price
// bounds are a client error.
func parseFacets(q url.Values) (catalog.Facets, error) {
	f := catalog.Facets{
		Categories: q["category"],
		Colors:     q["color"],
		Sizes:      q["size"],
		Featured:   q.Get("featured") == "true",
		Trending:   q.Get("trending") == "true",
		NewArrival: q.Get("new") == "true",
	}

	if raw := q.Get("minPrice"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return catalog.Facets{}, errors.Errorf("invalid minPrice %q", raw)
		}
		f.MinPrice = &min
	}
	if raw := q.Get("maxPrice"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return catalog.Facets{}, errors.Errorf("invalid maxPrice %q", raw)
		}
		f.MaxPrice = &max
	}
	return f, nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	facets, err := parseFacets(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serveCatalog(w, r, facets)
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	h.serveCatalog(w, r, catalog.Facets{Query: r.URL.Query().Get("q")})
}

func (h *Handler) serveCatalog(w http.ResponseWriter, r *http.Request, facets catalog.Facets) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondInternal(w, r, errors.Wrap(err, "list products"))
		return
	}

	key := catalog.ParseSortKey(r.URL.Query().Get("sort"))
	matched := catalog.FilterAndSort(products, facets, key)

	resp := catalogResponse{
		Products: make([]productJSON, len(matched)),
		Total:    len(matched),
		Facets: facetValues{
			Categories: catalog.Categories(matched),
			Colors:     catalog.Colors(matched),
			Sizes:      catalog.Sizes(matched),
		},
	}
	for i, p := range matched {
		resp.Products[i] = h.toProductJSON(p)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, errors.Wrap(err, "get product"))
		return
	}
	respondJSON(w, http.StatusOK, h.toProductJSON(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var body productJSON
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" || body.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "name is required and price must be non-negative")
		return
	}

	p := body.toDomain()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	if err := h.products.Create(r.Context(), &p); err != nil {
		respondInternal(w, r, errors.Wrap(err, "create product"))
		return
	}
	respondJSON(w, http.StatusCreated, h.toProductJSON(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var body productJSON
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := body.toDomain()
	p.ID = r.PathValue("id")

	if err := h.products.Update(r.Context(), &p); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, errors.Wrap(err, "update product"))
		return
	}
	respondJSON(w, http.StatusOK, h.toProductJSON(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, errors.Wrap(err, "delete product"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
