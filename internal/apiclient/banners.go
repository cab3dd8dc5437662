package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

const bannersPath = "/api/banners"

// BannerInput holds the editable banner fields.
type BannerInput struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    string `json:"image"`
	Link     string `json:"link,omitempty"`
	Active   bool   `json:"active"`
	Position int    `json:"position"`
}

// Banner is a promotional slide on the home page.
type Banner struct {
	ID string `json:"_id"`
	BannerInput
}

// Banners wraps /api/banners.
type Banners struct {
	client *Client
}

// List returns every banner.
func (banners *Banners) List(ctx context.Context) ([]Banner, error) {
	var result []Banner
	if err := banners.client.do(ctx, http.MethodGet, bannersPath, nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Create adds a banner.
func (banners *Banners) Create(ctx context.Context, input BannerInput) (*Banner, error) {
	var banner Banner
	if err := banners.client.do(ctx, http.MethodPost, bannersPath, nil, input, &banner); err != nil {
		return nil, err
	}
	return &banner, nil
}

// Update replaces banner id.
func (banners *Banners) Update(ctx context.Context, id string, input BannerInput) (*Banner, error) {
	var banner Banner
	if err := banners.client.do(ctx, http.MethodPut, bannersPath+"/"+url.PathEscape(id), nil, input, &banner); err != nil {
		return nil, err
	}
	return &banner, nil
}

// Delete removes banner id.
func (banners *Banners) Delete(ctx context.Context, id string) error {
	return banners.client.do(ctx, http.MethodDelete, bannersPath+"/"+url.PathEscape(id), nil, nil, nil)
}
