// Package flashsale provides live flash sale sources: a REST client, a polling
// snapshot of active sales and a Redis cache for membership checks.
package flashsale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/grocery-cart/internal/apperr"
	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/nikolayk812/grocery-cart/internal/port"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
)

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

var _ port.FlashSaleSource = (*Client)(nil)

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient talks to a service exposing /api/flash-sales. baseURL is the service root,
// e.g. http://flash-sales:8080.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("baseURL scheme[%s] is not supported", u.Scheme)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Active(ctx context.Context, _ time.Time) ([]domain.FlashSale, error) {
	const op = "flashsale.Active"

	var dtos []SaleDTO
	if err := c.get(ctx, op, "/api/flash-sales/active", &dtos); err != nil {
		return nil, err
	}

	sales := make([]domain.FlashSale, 0, len(dtos))
	for _, dto := range dtos {
		sale, err := dto.ToDomain()
		if err != nil {
			return nil, apperr.Wrap(op, apperr.CategoryServer, err)
		}
		sales = append(sales, sale)
	}

	return sales, nil
}

func (c *Client) Membership(ctx context.Context, productID uuid.UUID) (domain.FlashSaleMembership, error) {
	const op = "flashsale.Membership"

	var dto MembershipDTO
	if err := c.get(ctx, op, "/api/flash-sales/products/"+productID.String()+"/check", &dto); err != nil {
		return domain.FlashSaleMembership{}, err
	}

	m, err := dto.ToDomain()
	if err != nil {
		return domain.FlashSaleMembership{}, apperr.Wrap(op, apperr.CategoryServer, err)
	}

	return m, nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	u := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apperr.Wrap(op, apperr.CategoryClient, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperr.Wrap(op, apperr.CategoryNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return apperr.Wrap(op, apperr.CategoryNetwork, err)
	}

	var env Envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := apperr.New(op, apperr.FromStatus(resp.StatusCode), fmt.Sprintf("status %d", resp.StatusCode))
		if decodeErr == nil {
			if env.Message != "" {
				appErr.Message = env.Message
			}
			appErr.Fields = env.Errors
		}
		return appErr
	}

	if decodeErr != nil {
		return apperr.Wrap(op, apperr.CategoryServer, fmt.Errorf("json.Unmarshal: %w", decodeErr))
	}
	if !env.Success {
		return apperr.New(op, apperr.CategoryUnknown, env.Message)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperr.Wrap(op, apperr.CategoryServer, fmt.Errorf("json.Unmarshal data: %w", err))
	}

	return nil
}
