// internal/services/catalog_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kivoa/catalog-backend/internal/config"
)

// Listing is the storefront projection of a live product, keyed by SKU.
type Listing struct {
	SKU               string
	Title             string
	Description       string
	Price             float64
	InventoryQuantity int
	Weight            float64
	Tags              string
	Images            []string
}

// RemoteProduct identifies an existing Shopify product found by SKU.
type RemoteProduct struct {
	ID     int64
	Handle string
}

// DraftOrderRequest describes a manual order placed against the storefront.
type DraftOrderRequest struct {
	SKU             string
	Title           string
	Quantity        int
	PerUnitPrice    float64
	ShippingCharges float64
	CustomerName    string
	CustomerPhone   string
	Address1        string
	City            string
	Province        string
	Country         string
	Zip             string
}

// ShopifyService talks to the Shopify admin REST API. The base URL and
// HTTP client are injectable so tests can point it at a local server.
type ShopifyService struct {
	baseURL     string
	accessToken string
	apiVersion  string
	vendor      string
	httpClient  *http.Client
}

func NewShopifyService(cfg config.ShopifyConfig) *ShopifyService {
	storeURL := cfg.StoreURL
	if storeURL != "" && !strings.HasPrefix(storeURL, "http://") && !strings.HasPrefix(storeURL, "https://") {
		storeURL = "https://" + storeURL
	}

	return &ShopifyService{
		baseURL:     strings.TrimRight(storeURL, "/"),
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		vendor:      cfg.Vendor,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetHTTPClient overrides the HTTP client, used by tests.
func (s *ShopifyService) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

type shopifyVariant struct {
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
	Grams             int    `json:"grams,omitempty"`
}

type shopifyImage struct {
	Src string `json:"src"`
}

type shopifyProduct struct {
	ID       int64            `json:"id,omitempty"`
	Title    string           `json:"title"`
	BodyHTML string           `json:"body_html"`
	Vendor   string           `json:"vendor,omitempty"`
	Handle   string           `json:"handle,omitempty"`
	Tags     string           `json:"tags,omitempty"`
	Variants []shopifyVariant `json:"variants"`
	Images   []shopifyImage   `json:"images,omitempty"`
}

// FindBySKU pages through the store's products looking for a variant with
// the given SKU. Returns nil when no listing exists yet.
func (s *ShopifyService) FindBySKU(ctx context.Context, sku string) (*RemoteProduct, error) {
	sinceID := int64(0)
	for {
		endpoint := fmt.Sprintf("products.json?fields=id,handle,variants&limit=250&since_id=%d", sinceID)

		var page struct {
			Products []shopifyProduct `json:"products"`
		}
		if err := s.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}
		if len(page.Products) == 0 {
			return nil, nil
		}

		for _, p := range page.Products {
			for _, v := range p.Variants {
				if v.SKU == sku {
					return &RemoteProduct{ID: p.ID, Handle: p.Handle}, nil
				}
			}
			if p.ID > sinceID {
				sinceID = p.ID
			}
		}
	}
}

// Create publishes a new listing and returns its remote product id.
func (s *ShopifyService) Create(ctx context.Context, listing Listing) (int64, error) {
	payload := map[string]shopifyProduct{
		"product": s.toShopifyProduct(listing),
	}

	var out struct {
		Product shopifyProduct `json:"product"`
	}
	if err := s.do(ctx, http.MethodPost, "products.json", payload, &out); err != nil {
		return 0, err
	}
	return out.Product.ID, nil
}

// Update replaces the mutable fields and image set of an existing listing.
// Repeating the call with unchanged data produces no remote diff.
func (s *ShopifyService) Update(ctx context.Context, remoteID int64, listing Listing) error {
	product := s.toShopifyProduct(listing)
	product.ID = remoteID
	payload := map[string]shopifyProduct{"product": product}

	endpoint := fmt.Sprintf("products/%d.json", remoteID)
	return s.do(ctx, http.MethodPut, endpoint, payload, nil)
}

// CreateDraftOrder creates and immediately completes a draft order.
func (s *ShopifyService) CreateDraftOrder(ctx context.Context, req DraftOrderRequest) (int64, error) {
	first, last := splitName(req.CustomerName)
	payload := map[string]interface{}{
		"draft_order": map[string]interface{}{
			"line_items": []map[string]interface{}{
				{
					"title":    req.Title,
					"sku":      req.SKU,
					"quantity": req.Quantity,
					"price":    fmt.Sprintf("%.2f", req.PerUnitPrice),
				},
			},
			"customer": map[string]interface{}{
				"first_name": first,
				"last_name":  last,
				"phone":      req.CustomerPhone,
			},
			"shipping_address": map[string]interface{}{
				"first_name": first,
				"last_name":  last,
				"address1":   req.Address1,
				"city":       req.City,
				"province":   req.Province,
				"country":    req.Country,
				"zip":        req.Zip,
				"phone":      req.CustomerPhone,
			},
			"shipping_line": map[string]interface{}{
				"title": "Standard Shipping",
				"price": fmt.Sprintf("%.2f", req.ShippingCharges),
			},
			"use_customer_default_address": false,
		},
	}

	var out struct {
		DraftOrder struct {
			ID int64 `json:"id"`
		} `json:"draft_order"`
	}
	if err := s.do(ctx, http.MethodPost, "draft_orders.json", payload, &out); err != nil {
		return 0, err
	}

	endpoint := fmt.Sprintf("draft_orders/%d/complete.json", out.DraftOrder.ID)
	if err := s.do(ctx, http.MethodPut, endpoint, map[string]interface{}{}, nil); err != nil {
		return 0, fmt.Errorf("failed to complete draft order %d: %w", out.DraftOrder.ID, err)
	}

	return out.DraftOrder.ID, nil
}

func (s *ShopifyService) toShopifyProduct(listing Listing) shopifyProduct {
	images := make([]shopifyImage, 0, len(listing.Images))
	for _, src := range listing.Images {
		images = append(images, shopifyImage{Src: src})
	}

	return shopifyProduct{
		Title:    listing.Title,
		BodyHTML: listing.Description,
		Vendor:   s.vendor,
		Tags:     listing.Tags,
		Variants: []shopifyVariant{
			{
				SKU:               listing.SKU,
				Price:             fmt.Sprintf("%.2f", listing.Price),
				InventoryQuantity: listing.InventoryQuantity,
				Grams:             int(listing.Weight * 1000),
			},
		},
		Images: images,
	}
}

func (s *ShopifyService) do(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	if s.baseURL == "" || s.accessToken == "" {
		return fmt.Errorf("shopify configuration is missing")
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode shopify payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := fmt.Sprintf("%s/admin/api/%s/%s", s.baseURL, s.apiVersion, endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build shopify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shopify API error: %d - %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode shopify response: %w", err)
		}
	}
	return nil
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
