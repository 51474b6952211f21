// Package storeapi is the HTTP client for the storefront REST API.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nazeru/storefront-orders-go/internal/auth"
	"github.com/nazeru/storefront-orders-go/pkg/apierr"
	"github.com/nazeru/storefront-orders-go/pkg/idempotency"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// do sends one request and decodes a 2xx JSON body into out (if non-nil).
// Non-2xx answers are classified into the apierr taxonomy.
func (c *Client) do(ctx context.Context, op, method, path string, cred *auth.Credential, idemKey string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apierr.Wrap(apierr.KindValidation, op, err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return apierr.Wrap(apierr.KindTransient, op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred != nil && cred.Token != "" {
		req.Header.Set("Authorization", cred.Header())
	}
	if idemKey != "" {
		req.Header.Set(idempotency.Header, idemKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apierr.Wrap(apierr.KindTransient, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierr.Wrap(apierr.KindTransient, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func classify(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	_ = json.Unmarshal(data, &body)
	msg := body.Detail
	if msg == "" {
		msg = body.Error
	}

	kind := apierr.KindTransient
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = apierr.KindValidation
	case http.StatusUnauthorized:
		kind = apierr.KindAuth
	case http.StatusForbidden:
		kind = apierr.KindForbidden
	case http.StatusNotFound:
		kind = apierr.KindNotFound
	case http.StatusConflict:
		kind = apierr.KindConflict
	}
	return &apierr.Error{Kind: kind, Op: op, Message: msg, Err: fmt.Errorf("status %d", resp.StatusCode)}
}

// decodeList accepts a bare JSON array or an envelope keyed by one of keys.
func decodeList[T any](raw json.RawMessage, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	if raw[0] == '[' {
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if v, ok := env[k]; ok {
			var out []T
			if err := json.Unmarshal(v, &out); err != nil {
				return nil, err
			}
			if out == nil {
				out = []T{}
			}
			return out, nil
		}
	}
	return []T{}, nil
}
