package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shopvoice/function-gateway/internal/domain/function"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
)

// Function names exposed to the voice assistant.
const (
	GetProductsName    = "get_products"
	SearchProductsName = "search_products"
)

const productsQuery = `query CatalogProducts($first: Int!, $query: String) {
  shop { currencyCode }
  products(first: $first, query: $query) {
    edges {
      node {
        title
        handle
        variants(first: 10) {
          edges { node { title price availableForSale } }
        }
      }
    }
  }
}`

// Querier runs one GraphQL operation against a tenant's storefront.
type Querier interface {
	Query(ctx context.Context, tenantDomain, accessToken, query string, variables map[string]any) (json.RawMessage, error)
}

// Options bounds the number of products a call may return.
type Options struct {
	DefaultLimit int
	MaxLimit     int
}

// Catalog implements the product functions on top of a storefront Querier.
type Catalog struct {
	client       Querier
	defaultLimit int
	maxLimit     int
}

// New creates a catalog; zero limits fall back to 5 and 25.
func New(client Querier, opts Options) *Catalog {
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 25
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = min(5, opts.MaxLimit)
	}
	return &Catalog{client: client, defaultLimit: opts.DefaultLimit, maxLimit: opts.MaxLimit}
}

// Register adds get_products and search_products to registry.
func (c *Catalog) Register(registry *function.Registry) error {
	defs := []function.Definition{
		{
			Name:        GetProductsName,
			Description: "List products from the store catalog with price and availability.",
			Parameters:  GetProductsParams{},
			Handler:     c.GetProducts,
		},
		{
			Name:        SearchProductsName,
			Description: "Search the store catalog by keyword and return matching products with price and availability.",
			Parameters:  SearchProductsParams{},
			Handler:     c.SearchProducts,
		},
	}
	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) GetProducts(ctx context.Context, params map[string]any, cred tenant.Credential) (any, error) {
	p, err := function.Bind[GetProductsParams](params)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, cred, c.limit(p.Limit), "status:active", "")
}

func (c *Catalog) SearchProducts(ctx context.Context, params map[string]any, cred tenant.Credential) (any, error) {
	p, err := function.Bind[SearchProductsParams](params)
	if err != nil {
		return nil, err
	}
	q := strings.TrimSpace(p.Query)
	if q == "" {
		return nil, function.ValidationError("parameter query is required", map[string]any{
			"fields": map[string]any{"query": "required"},
		})
	}
	terms := searchTerms(q)
	if terms == "" {
		return nil, function.ValidationError("parameter query has no searchable words", nil)
	}
	return c.fetch(ctx, cred, c.limit(p.Limit), "status:active "+terms, q)
}

func (c *Catalog) limit(requested *int) int {
	if requested == nil {
		return c.defaultLimit
	}
	return min(*requested, c.maxLimit)
}

func (c *Catalog) fetch(ctx context.Context, cred tenant.Credential, limit int, search, echo string) (*ProductList, error) {
	data, err := c.client.Query(ctx, cred.TenantDomain, cred.AccessToken, productsQuery, map[string]any{
		"first": limit,
		"query": search,
	})
	if err != nil {
		return nil, function.DownstreamError("unable to load products right now", err)
	}

	var resp productsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, function.DownstreamError("unable to load products right now", fmt.Errorf("decode products: %w", err))
	}

	products := make([]Product, 0, len(resp.Products.Edges))
	for _, edge := range resp.Products.Edges {
		products = append(products, toProduct(edge.Node, resp.Shop.CurrencyCode))
	}
	return &ProductList{Products: products, Count: len(products), Query: echo}, nil
}

func toProduct(node productNode, currency string) Product {
	p := Product{
		Title:    node.Title,
		Handle:   node.Handle,
		Currency: currency,
		Variants: make([]Variant, 0, len(node.Variants.Edges)),
	}

	var lowest *decimal.Decimal
	for _, edge := range node.Variants.Edges {
		v := edge.Node
		price, err := decimal.NewFromString(v.Price)
		if err != nil {
			price = decimal.Zero
		}
		if lowest == nil || price.LessThan(*lowest) {
			lowest = &price
		}
		p.Available = p.Available || v.AvailableForSale
		p.Variants = append(p.Variants, Variant{
			Title:     v.Title,
			Price:     price.StringFixed(2),
			Available: v.AvailableForSale,
		})
	}
	if lowest == nil {
		p.Price = decimal.Zero.StringFixed(2)
	} else {
		p.Price = lowest.StringFixed(2)
	}
	return p
}

// searchTerms strips storefront search syntax so a caller's words are matched
// as plain text.
func searchTerms(q string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '(', ')', '"', '\\', '*', '\'':
			return ' '
		}
		return r
	}, q)

	words := strings.Fields(cleaned)
	kept := words[:0]
	for _, w := range words {
		switch strings.ToUpper(w) {
		case "AND", "OR", "NOT":
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
