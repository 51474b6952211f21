package storeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	catalog "github.com/nazeru/storefront-orders-go/internal/catalog/domain"
	"github.com/nazeru/storefront-orders-go/pkg/apierr"
)

// StoreProducts lists the catalog of one store. The endpoint is public.
func (c *Client) StoreProducts(ctx context.Context, storeID string) ([]catalog.Product, error) {
	const op = "store_products"
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodGet, "/products/store/"+url.PathEscape(storeID)+"/", nil, "", nil, &raw); err != nil {
		return nil, err
	}
	products, err := decodeList[catalog.Product](raw, "products", "results")
	if err != nil {
		return nil, apierr.Wrap(apierr.KindTransient, op, fmt.Errorf("decode products: %w", err))
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id catalog.ProductID) (catalog.Product, error) {
	var p catalog.Product
	err := c.do(ctx, "get_product", http.MethodGet, "/products/"+url.PathEscape(string(id))+"/", nil, "", nil, &p)
	return p, err
}
