package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/nazeru/storefront-orders-go/internal/auth"
	"github.com/nazeru/storefront-orders-go/internal/order/domain"
	"github.com/nazeru/storefront-orders-go/pkg/apierr"
	"github.com/nazeru/storefront-orders-go/pkg/contracts"
	"github.com/nazeru/storefront-orders-go/pkg/idempotency"
)

func orderPath(id domain.OrderID, suffix string) string {
	return "/orders/" + url.PathEscape(string(id)) + "/" + suffix
}

func (c *Client) GetOrder(ctx context.Context, cred auth.Credential, id domain.OrderID) (domain.Order, error) {
	const op = "get_order"
	var o domain.Order
	if err := c.do(ctx, op, http.MethodGet, orderPath(id, ""), &cred, "", nil, &o); err != nil {
		return domain.Order{}, err
	}
	if err := o.Validate(); err != nil {
		return domain.Order{}, apierr.Wrap(apierr.KindTransient, op, fmt.Errorf("order %s: %w", id, err))
	}
	return o, nil
}

// CustomerOrders lists the caller's own orders. A 404 means none yet.
func (c *Client) CustomerOrders(ctx context.Context, cred auth.Credential) ([]domain.Order, error) {
	orders, err := c.listOrders(ctx, "customer_orders", "/orders/my-orders/", cred)
	if errors.Is(err, apierr.ErrNotFound) {
		return []domain.Order{}, nil
	}
	return orders, err
}

func (c *Client) StoreOrders(ctx context.Context, cred auth.Credential) ([]domain.Order, error) {
	return c.listOrders(ctx, "store_orders", "/orders/store-orders/", cred)
}

func (c *Client) listOrders(ctx context.Context, op, path string, cred auth.Credential) ([]domain.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodGet, path, &cred, "", nil, &raw); err != nil {
		return nil, err
	}
	orders, err := decodeList[domain.Order](raw, "results", "orders")
	if err != nil {
		return nil, apierr.Wrap(apierr.KindTransient, op, fmt.Errorf("decode orders: %w", err))
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, apierr.Wrap(apierr.KindTransient, op, fmt.Errorf("order %s: %w", o.ID, err))
		}
	}
	return orders, nil
}

func (c *Client) UpdateStatus(ctx context.Context, cred auth.Credential, id domain.OrderID, status domain.Status) error {
	key := idempotency.ForAction(string(id), contracts.ActionUpdateStatus, string(status))
	body := map[string]any{"status": status}
	return c.do(ctx, contracts.ActionUpdateStatus, http.MethodPost, orderPath(id, "update-status/"), &cred, key, body, nil)
}

func (c *Client) AddTracking(ctx context.Context, cred auth.Credential, id domain.OrderID, trackingNumber string) error {
	key := idempotency.ForAction(string(id), contracts.ActionAddTracking, trackingNumber)
	body := map[string]any{"tracking_number": trackingNumber}
	return c.do(ctx, contracts.ActionAddTracking, http.MethodPost, orderPath(id, "add-tracking/"), &cred, key, body, nil)
}

func (c *Client) AddNote(ctx context.Context, cred auth.Credential, id domain.OrderID, note string) error {
	key := idempotency.ForAction(string(id), contracts.ActionAddNote, note)
	body := map[string]any{"note": note}
	return c.do(ctx, contracts.ActionAddNote, http.MethodPost, orderPath(id, "add-note/"), &cred, key, body, nil)
}

// Invoice returns the invoice document bytes and their content type
// exactly as the API serves them.
func (c *Client) Invoice(ctx context.Context, cred auth.Credential, id domain.OrderID) ([]byte, string, error) {
	const op = "invoice"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+orderPath(id, "invoice/"), nil)
	if err != nil {
		return nil, "", apierr.Wrap(apierr.KindTransient, op, err)
	}
	req.Header.Set("Authorization", cred.Header())
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", apierr.Wrap(apierr.KindTransient, op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", classify(op, resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apierr.Wrap(apierr.KindTransient, op, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
