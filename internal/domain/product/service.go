// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Service handles product browsing
type Service struct {
	catalog Catalog
	index   Index
	log     *logrus.Logger
}

// NewService creates a new product service. Lookups go through catalog,
// listings and categories through index.
func NewService(catalog Catalog, index Index, log *logrus.Logger) *Service {
	return &Service{
		catalog: catalog,
		index:   index,
		log:     log,
	}
}

// Sort orders accepted by List
const (
	SortFeatured  = "featured"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortName      = "name"
)

// ListRequest represents product list query parameters
type ListRequest struct {
	Page       int      `form:"page,default=1"`
	Limit      int      `form:"limit,default=20"`
	Search     string   `form:"search"`
	Categories []string `form:"category"`
	SortBy     string   `form:"sort_by,default=featured"`
}

// ListResponse represents product list response with pagination
type ListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Get retrieves a single product by sku
func (s *Service) Get(ctx context.Context, sku string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, notFound(sku)
	}
	return s.catalog.GetProduct(ctx, sku)
}

// List filters, sorts and paginates the browsable catalog
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	all, err := s.index.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	filtered := filterProducts(all, req.Search, req.Categories)
	sortProducts(filtered, req.SortBy)

	total := int64(len(filtered))
	// pages past the end are empty; compared before multiplying
	offset := len(filtered)
	if req.Page-1 <= len(filtered)/req.Limit {
		offset = min((req.Page-1)*req.Limit, len(filtered))
	}
	end := min(offset+req.Limit, len(filtered))

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Products: filtered[offset:end],
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// Categories returns every category with its product count, by name
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	all, err := s.index.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	counts := make(map[string]int)
	for _, p := range all {
		if p.Category != "" {
			counts[p.Category]++
		}
	}

	categories := make([]Category, 0, len(counts))
	for name, n := range counts {
		categories = append(categories, Category{Name: name, ProductCount: n})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func filterProducts(products []Product, search string, categories []string) []Product {
	search = strings.ToLower(strings.TrimSpace(search))

	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			wanted[strings.ToLower(c)] = true
		}
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if len(wanted) > 0 && !wanted[strings.ToLower(p.Category)] {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p Product, search string) bool {
	if strings.Contains(strings.ToLower(p.Title), search) ||
		strings.Contains(strings.ToLower(p.Category), search) {
		return true
	}
	for _, line := range p.About {
		if strings.Contains(strings.ToLower(line), search) {
			return true
		}
	}
	return false
}

// sortProducts orders in place; ties keep catalog order
func sortProducts(products []Product, sortBy string) {
	var less func(a, b Product) bool
	switch sortBy {
	case SortPriceAsc:
		less = func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	case SortName:
		less = func(a, b Product) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		less = func(a, b Product) bool { return a.Featured && !b.Featured }
	}
	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}
