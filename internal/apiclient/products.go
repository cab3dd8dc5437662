package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const productsPath = "/api/products"

// ProductInput holds the editable product fields.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Company     string  `json:"company"`
	Image       string  `json:"image,omitempty"`
	Stock       int     `json:"stock"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
}

// Product is a software license offered for sale.
type Product struct {
	ID string `json:"_id"`
	ProductInput
}

// ProductQuery filters and pages the product list.
type ProductQuery struct {
	Page     int
	Limit    int
	Category string
	Company  string
	Search   string
}

func (query ProductQuery) values() url.Values {
	values := url.Values{}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		values.Set("category", category)
	}
	if company := strings.TrimSpace(query.Company); company != "" {
		values.Set("company", company)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		values.Set("search", search)
	}
	return values
}

// ProductPage is one page of the product list.
type ProductPage struct {
	Products    []Product `json:"products"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
	Total       int       `json:"total"`
}

// Products wraps /api/products.
type Products struct {
	client *Client
}

// List returns one page of products matching query.
func (products *Products) List(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	var page ProductPage
	if err := products.client.do(ctx, http.MethodGet, productsPath, query.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns the product with id.
func (products *Products) Get(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := products.client.do(ctx, http.MethodGet, productsPath+"/"+url.PathEscape(id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Create adds a product. Requires an admin token on the backend.
func (products *Products) Create(ctx context.Context, input ProductInput) (*Product, error) {
	var product Product
	if err := products.client.do(ctx, http.MethodPost, productsPath, nil, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update replaces the editable fields of product id.
func (products *Products) Update(ctx context.Context, id string, input ProductInput) (*Product, error) {
	var product Product
	if err := products.client.do(ctx, http.MethodPut, productsPath+"/"+url.PathEscape(id), nil, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes product id.
func (products *Products) Delete(ctx context.Context, id string) error {
	return products.client.do(ctx, http.MethodDelete, productsPath+"/"+url.PathEscape(id), nil, nil, nil)
}

// Categories lists the distinct product categories.
func (products *Products) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := products.client.do(ctx, http.MethodGet, productsPath+"/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Companies lists the distinct vendors.
func (products *Products) Companies(ctx context.Context) ([]string, error) {
	var companies []string
	if err := products.client.do(ctx, http.MethodGet, productsPath+"/companies", nil, nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}
