package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// REST API のクライアント。トークンは WithToken で渡す
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// サーバーが返したエラー
type APIError struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"error"`
	Field     string `json:"field,omitempty"`
	ProductID int64  `json:"productId,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// err が code の APIError か
func IsCode(err error, code string) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == code
}

type CartLine struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Available bool            `json:"available"`
}

type Cart struct {
	Items       []CartLine      `json:"items"`
	TotalItems  int64           `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type AddItem struct {
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

type WishlistEntry struct {
	ProductID int64     `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
}

type OrderItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Image     string          `json:"image"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	Status          string          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type OrderList struct {
	Items []Order `json:"items"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

type PlaceOrder struct {
	ShippingAddress string `json:"shippingAddress,omitempty"`
	AddressID       int64  `json:"addressId,omitempty"`
	PaymentMethod   string `json:"paymentMethod"`
}

func (c *Client) GetCart(ctx context.Context) (Cart, error) {
	var out Cart
	err := c.do(ctx, http.MethodGet, "/api/cart", nil, nil, &out)
	return out, err
}

func (c *Client) AddToCart(ctx context.Context, in AddItem) (Cart, error) {
	var out Cart
	err := c.do(ctx, http.MethodPost, "/api/cart/items", in, nil, &out)
	return out, err
}

// qty <= 0 はサーバー側で削除になる
func (c *Client) UpdateQuantity(ctx context.Context, itemID, qty int64) (Cart, error) {
	var out Cart
	err := c.do(ctx, http.MethodPatch, "/api/cart/items/"+id(itemID), map[string]int64{"quantity": qty}, nil, &out)
	return out, err
}

func (c *Client) RemoveLine(ctx context.Context, itemID int64) (Cart, error) {
	var out Cart
	err := c.do(ctx, http.MethodDelete, "/api/cart/items/"+id(itemID), nil, nil, &out)
	return out, err
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart", nil, nil, nil)
}

func (c *Client) Wishlist(ctx context.Context) ([]WishlistEntry, error) {
	var out struct {
		Items []WishlistEntry `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "/api/wishlist", nil, nil, &out)
	return out.Items, err
}

func (c *Client) AddToWishlist(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodPost, "/api/wishlist/"+id(productID), nil, nil, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/wishlist/"+id(productID), nil, nil, nil)
}

// idempotencyKey が同じなら同じ注文が返る
func (c *Client) PlaceOrder(ctx context.Context, in PlaceOrder, idempotencyKey string) (Order, error) {
	var hdr http.Header
	if idempotencyKey != "" {
		hdr = http.Header{"X-Idempotency-Key": []string{idempotencyKey}}
	}
	var out Order
	err := c.do(ctx, http.MethodPost, "/api/orders", in, hdr, &out)
	return out, err
}

func (c *Client) Orders(ctx context.Context, page, limit int) (OrderList, error) {
	var out OrderList
	path := fmt.Sprintf("/api/orders?page=%d&limit=%d", page, limit)
	err := c.do(ctx, http.MethodGet, path, nil, nil, &out)
	return out, err
}

func (c *Client) Order(ctx context.Context, orderID int64) (Order, error) {
	var out Order
	err := c.do(ctx, http.MethodGet, "/api/orders/"+id(orderID), nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, hdr http.Header, out interface{}) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: res.StatusCode}
		if err := json.NewDecoder(res.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		return apiErr
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
