package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const genericRejection = "order could not be created"

// Client talks to the remote pizza-shop backend API. The backend owns all
// persistence; this client is the only piece of the codebase that knows its
// wire format.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL, e.g.
// "http://localhost:8080/api". The timeout applies to every call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListItems fetches the full menu.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var dtos []itemDTO
	if err := c.getJSON(ctx, "/items", "list items", &dtos); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, d.toItem())
	}
	return items, nil
}

// CreateItem adds a new menu item.
func (c *Client) CreateItem(ctx context.Context, it Item) error {
	return c.send(ctx, http.MethodPost, "/items", toItemDTO(it))
}

// UpdateItem replaces the menu item with id it.ID.
func (c *Client) UpdateItem(ctx context.Context, it Item) error {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/items/%d", it.ID), toItemDTO(it))
}

// DeleteItem removes a menu item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/items/%d", id), nil)
}

// ListOrders fetches all recorded orders, in the backend's own order.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var dtos []orderDTO
	if err := c.getJSON(ctx, "/orders", "list orders", &dtos); err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, d.toOrder())
	}
	return orders, nil
}

// CreateOrder submits an order and returns the backend-assigned order id.
// Any failure is a *SubmissionError; the caller's cart must stay intact so
// the user can retry.
func (c *Client) CreateOrder(ctx context.Context, sub OrderSubmission) (int64, error) {
	body, err := json.Marshal(toSubmissionDTO(sub))
	if err != nil {
		return 0, &SubmissionError{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return 0, &SubmissionError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &SubmissionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &SubmissionError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.Body),
		}
	}

	var result struct {
		OrderID int64 `json:"order_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, &SubmissionError{Status: resp.StatusCode, Message: genericRejection}
	}
	return result.OrderID, nil
}

// getJSON performs a GET and decodes the response. Every failure mode is a
// *FetchError so read paths can fall back to their stale snapshot.
func (c *Client) getJSON(ctx context.Context, path, op string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// send performs a write with an optional JSON body. Non-success responses
// become *SubmissionError carrying the backend's message.
func (c *Client) send(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &SubmissionError{Message: err.Error()}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &SubmissionError{Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &SubmissionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SubmissionError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.Body),
		}
	}
	return nil
}

// errorMessage extracts the backend's error body. The backend writes plain
// text via http.Error; cap the read in case it sends something else.
func errorMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	msg := strings.TrimSpace(string(b))
	if err != nil || msg == "" {
		return genericRejection
	}
	return msg
}
