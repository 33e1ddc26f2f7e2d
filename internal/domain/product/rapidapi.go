package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
)

const productDataPath = "/Amazon-Product-Data"

// RapidAPIClient looks products up on the scout-amazon-data RapidAPI endpoint
type RapidAPIClient struct {
	http    *http.Client
	baseURL string
	host    string
	key     string
	region  string
	log     *logrus.Logger
}

// NewRapidAPIClient creates a catalog backed by the product data API
func NewRapidAPIClient(cfg *config.Config, log *logrus.Logger) *RapidAPIClient {
	return &RapidAPIClient{
		http:    &http.Client{Timeout: cfg.Catalog.Timeout},
		baseURL: strings.TrimRight(cfg.Catalog.BaseURL, "/"),
		host:    cfg.Catalog.RapidAPIHost,
		key:     cfg.Catalog.RapidAPIKey,
		region:  cfg.Catalog.Region,
		log:     log,
	}
}

// upstreamProduct mirrors the loosely typed API payload
type upstreamProduct struct {
	ASIN            string      `json:"asin"`
	ProductName     string      `json:"product_name"`
	ProductImage    string      `json:"product_image"`
	ThumbnailImages []string    `json:"thumbnail_images"`
	PriceInfo       struct {
		Price looseString `json:"Price"`
	} `json:"price_info"`
	StarRating          looseString `json:"star_rating"`
	NumRatings          looseString `json:"num_ratings"`
	AboutThisItem       []string    `json:"about_this_item"`
	IsPrime             bool        `json:"is_prime"`
	ProductAvailability string      `json:"product_availability"`
	Category            string      `json:"category"`
}

// looseString accepts either a JSON string or a JSON number
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(data)
	return nil
}

// GetProduct fetches and converts a single product by ASIN
func (c *RapidAPIClient) GetProduct(ctx context.Context, sku string) (*Product, error) {
	q := url.Values{}
	q.Set("asin", sku)
	q.Set("region", c.region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+productDataPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build product request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.key)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product api request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"sku":      sku,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Product API lookup")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFound(sku)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("product api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw upstreamProduct
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", sku, err)
	}
	if raw.ProductName == "" {
		return nil, notFound(sku)
	}

	p, err := raw.toProduct(sku)
	if err != nil {
		c.log.WithError(err).WithField("sku", sku).Warn("Rejected malformed product record")
		return nil, notFound(sku)
	}
	return p, nil
}

func (u *upstreamProduct) toProduct(sku string) (*Product, error) {
	price, err := ParsePrice(string(u.PriceInfo.Price))
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", sku, err)
	}

	p := &Product{
		SKU:          sku,
		Title:        strings.TrimSpace(u.ProductName),
		Price:        price,
		ImageURL:     u.ProductImage,
		IsPrime:      u.IsPrime,
		Availability: u.ProductAvailability,
		About:        u.AboutThisItem,
		Category:     u.Category,
	}
	if u.ProductImage != "" {
		p.Images = append(p.Images, u.ProductImage)
	}
	for _, img := range u.ThumbnailImages {
		if img != "" && img != u.ProductImage {
			p.Images = append(p.Images, img)
		}
	}
	if r, err := strconv.ParseFloat(strings.TrimSpace(string(u.StarRating)), 64); err == nil {
		p.Rating = r
	}
	if n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(string(u.NumRatings)), ",", "")); err == nil {
		p.NumRatings = n
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
