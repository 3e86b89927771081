// Package httpapi implements gateway.Gateway against the remote catalog REST
// API. Foreign keys travel as "aliadoId" on the wire.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/aliados/internal/domain"
	"github.com/vbonduro/aliados/internal/gateway"
)

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 4 << 10

type wirePartner struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Image      string            `json:"image"`
	Categories []wireCategory    `json:"categories,omitempty"`
	Products   []wireProduct     `json:"products,omitempty"`
	Orders     []json.RawMessage `json:"orders,omitempty"`
}

type wireCategory struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	AliadoID int64  `json:"aliadoId"`
}

type wireProduct struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	CategoryID  int64           `json:"categoryId"`
	AliadoID    int64           `json:"aliadoId"`
	Category    *wireCategory   `json:"category,omitempty"`
}

type partnerBody struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type categoryBody struct {
	Name     string `json:"name"`
	AliadoID int64  `json:"aliadoId"`
}

type productBody struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	CategoryID  int64    `json:"categoryId"`
	AliadoID    int64    `json:"aliadoId"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

var _ gateway.Gateway = (*Client)(nil)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient returns a client for the API rooted at baseURL. token, when
// non-empty, is sent as a bearer token.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) ListPartners(ctx context.Context) ([]domain.Partner, error) {
	var wire []wirePartner
	if err := c.list(ctx, "/aliados", "aliados", &wire); err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	out := make([]domain.Partner, 0, len(wire))
	for _, p := range wire {
		out = append(out, p.toDomain())
	}
	return out, nil
}

func (c *Client) CreatePartner(ctx context.Context, in domain.PartnerInput) (*domain.Partner, error) {
	var wire wirePartner
	if err := c.do(ctx, http.MethodPost, "/aliados", partnerBody(in), &wire); err != nil {
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}
	p := wire.toDomain()
	return &p, nil
}

func (c *Client) UpdatePartner(ctx context.Context, id int64, in domain.PartnerInput) (*domain.Partner, error) {
	var wire wirePartner
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/aliados/%d", id), partnerBody(in), &wire); err != nil {
		return nil, fmt.Errorf("failed to update partner %d: %w", id, err)
	}
	p := wire.toDomain()
	return &p, nil
}

func (c *Client) DeletePartner(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/aliados/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete partner %d: %w", id, err)
	}
	return nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var wire []wireCategory
	if err := c.list(ctx, "/categories", "categories", &wire); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	out := make([]domain.Category, 0, len(wire))
	for _, cat := range wire {
		out = append(out, cat.toDomain())
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	var wire wireCategory
	body := categoryBody{Name: in.Name, AliadoID: in.PartnerID}
	if err := c.do(ctx, http.MethodPost, "/categories", body, &wire); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	cat := wire.toDomain()
	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	var wire wireCategory
	body := categoryBody{Name: in.Name, AliadoID: in.PartnerID}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), body, &wire); err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	cat := wire.toDomain()
	return &cat, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return nil
}

func (c *Client) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	var wire wireProduct
	if err := c.do(ctx, http.MethodPost, "/products", newProductBody(in), &wire); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	p := wire.toDomain()
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	var wire wireProduct
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), newProductBody(in), &wire); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	p := wire.toDomain()
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

// list fetches a collection. The API has answered with a bare array, with
// {"<key>": [...]} and with {"data": [...]}; all three are accepted.
func (c *Client) list(ctx context.Context, path, key string, out any) error {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		inner, ok := envelope[key]
		if !ok {
			inner, ok = envelope["data"]
		}
		if !ok {
			return fmt.Errorf("unexpected response shape for %s", path)
		}
		raw = inner
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do sends body as JSON and decodes a 2xx response into out. Failures are
// mapped onto the domain error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close gateway response body", "error", err)
		}
	}()
	c.logger.Debug("gateway call", "method", method, "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := strings.TrimSpace(string(data))
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		if eb.Message != "" {
			message = eb.Message
		} else if eb.Error != "" {
			message = eb.Error
		}
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &domain.ValidationError{Message: message}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, message)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", domain.ErrNetwork, resp.StatusCode, message)
	default:
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, message)
	}
}

func newProductBody(in domain.ProductInput) productBody {
	return productBody{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price.InexactFloat64(),
		Images:      in.Images,
		CategoryID:  in.CategoryID,
		AliadoID:    in.PartnerID,
	}
}

func (w wireCategory) toDomain() domain.Category {
	return domain.Category{ID: w.ID, Name: w.Name, PartnerID: w.AliadoID}
}

func (w wireProduct) toDomain() domain.Product {
	p := domain.Product{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Price:       w.Price,
		Images:      w.Images,
		CategoryID:  w.CategoryID,
		PartnerID:   w.AliadoID,
	}
	if w.Category != nil {
		p.Category = &domain.CategoryRef{ID: w.Category.ID, Name: w.Category.Name, PartnerID: w.Category.AliadoID}
	}
	return p
}

func (w wirePartner) toDomain() domain.Partner {
	p := domain.Partner{ID: w.ID, Name: w.Name, Image: w.Image, Orders: w.Orders}
	for _, c := range w.Categories {
		p.Categories = append(p.Categories, c.toDomain())
	}
	for _, pr := range w.Products {
		p.Products = append(p.Products, pr.toDomain())
	}
	return p
}
