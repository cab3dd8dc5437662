package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

const paymentsPath = "/api/payments"

// OrderItem is one purchased license line.
type OrderItem struct {
	Product    string  `json:"product"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	LicenseKey string  `json:"licenseKey,omitempty"`
}

// Order is a completed or pending purchase.
type Order struct {
	ID          string      `json:"_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Status      string      `json:"status"`
	PaymentID   string      `json:"paymentId,omitempty"`
	CreatedAt   string      `json:"createdAt,omitempty"`
}

// Orders wraps /api/payments.
type Orders struct {
	client *Client
}

// List returns the caller's orders, or every order for an admin token.
func (orders *Orders) List(ctx context.Context) ([]Order, error) {
	var result []Order
	if err := orders.client.do(ctx, http.MethodGet, paymentsPath+"/orders", nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns order id.
func (orders *Orders) Get(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := orders.client.do(ctx, http.MethodGet, paymentsPath+"/orders/"+url.PathEscape(id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete removes order id.
func (orders *Orders) Delete(ctx context.Context, id string) error {
	return orders.client.do(ctx, http.MethodDelete, paymentsPath+"/orders/"+url.PathEscape(id), nil, nil, nil)
}

// Refund asks the backend to refund order id.
func (orders *Orders) Refund(ctx context.Context, id string) (*Acknowledgement, error) {
	var acknowledgement Acknowledgement
	if err := orders.client.do(ctx, http.MethodPost, paymentsPath+"/refund/"+url.PathEscape(id), nil, nil, &acknowledgement); err != nil {
		return nil, err
	}
	return &acknowledgement, nil
}
