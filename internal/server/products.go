package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nazeru/storefront-orders-go/internal/board"
	catalog "github.com/nazeru/storefront-orders-go/internal/catalog/domain"
	"github.com/nazeru/storefront-orders-go/internal/listing"
	"github.com/nazeru/storefront-orders-go/pkg/apierr"
	"github.com/nazeru/storefront-orders-go/pkg/query"
)

type productCard struct {
	catalog.Product
	DiscountPercent int  `json:"discount_percent"`
	Available       bool `json:"in_stock"`
}

func newProductCard(p catalog.Product) productCard {
	return productCard{Product: p, DiscountPercent: p.DiscountPercent(), Available: p.InStock()}
}

type priceBounds struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

type productList struct {
	Products   []productCard `json:"products"`
	Matched    int           `json:"matched"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	Pages      []int         `json:"pages"`
	Categories []string      `json:"categories"`
	Prices     *priceBounds  `json:"price_bounds,omitempty"`
}

func (s *Server) storeProducts(w http.ResponseWriter, r *http.Request) {
	spec, err := query.SpecFromValues(r.URL.Query(), "category", s.pageSize)
	if err != nil {
		apierr.WriteProblem(w, apierr.Validation("store_products", err.Error()))
		return
	}
	products, err := s.api.StoreProducts(r.Context(), r.PathValue("id"))
	if err != nil {
		apierr.WriteProblem(w, err)
		return
	}

	res := board.View(products, spec, listing.Products)
	out := productList{
		Products:   make([]productCard, 0, len(res.Items)),
		Matched:    res.Matched,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
		Pages:      query.PageWindow(res.Page, res.TotalPages, pageWindow),
		Categories: catalog.Categories(products),
	}
	for _, p := range res.Items {
		out.Products = append(out.Products, newProductCard(p))
	}
	if lo, hi, ok := catalog.PriceBounds(products); ok {
		out.Prices = &priceBounds{Min: lo, Max: hi}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) product(w http.ResponseWriter, r *http.Request) {
	p, err := s.api.GetProduct(r.Context(), catalog.ProductID(r.PathValue("id")))
	if err != nil {
		apierr.WriteProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProductCard(p))
}
