// Package catalog loads the shop products from the public demo API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"duka/internal/cache"
	"duka/internal/core"
)

// DefaultURL is the demo product API.
const DefaultURL = "https://fakestoreapi.com/products"

const (
	cacheKey     = "products"
	maxStock     = 20
	maxBodyBytes = 4 << 20
)

// Options configure a Client.
type Options struct {
	URL        string
	Timeout    time.Duration
	CacheTTL   time.Duration
	Seed       uint64
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client fetches the catalog. Concurrent calls share one upstream request
// and successful results are cached for CacheTTL.
type Client struct {
	url     string
	timeout time.Duration
	seed    uint64
	http    *http.Client
	logger  *slog.Logger
	group   singleflight.Group
	cache   *cache.LRUCache[[]core.Product]
}

// apiProduct is the wire shape of the demo API.
type apiProduct struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}

func NewClient(opts Options) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		url:     opts.URL,
		timeout: opts.Timeout,
		seed:    opts.Seed,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
		cache:   cache.NewLRUCache[[]core.Product](1, opts.CacheTTL),
	}
}

// Cache exposes the product cache so a cache.Manager can sweep it.
func (c *Client) Cache() *cache.LRUCache[[]core.Product] {
	return c.cache
}

// FetchProducts implements ports.ProductFetcher.
func (c *Client) FetchProducts(ctx context.Context) ([]core.Product, error) {
	if products, ok := c.cache.Get(cacheKey); ok {
		return cloneProducts(products), nil
	}

	v, err, shared := c.group.Do(cacheKey, func() (any, error) {
		products, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Set(cacheKey, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "Catalog fetch shared with concurrent caller")
	}
	return cloneProducts(v.([]core.Product)), nil
}

func (c *Client) fetch(ctx context.Context) ([]core.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: upstream returned %d", core.ErrCatalogUnavailable, resp.StatusCode)
	}

	var raw []apiProduct
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", core.ErrCatalogUnavailable, err)
	}

	products := make([]core.Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, c.toProduct(p))
	}

	c.logger.InfoContext(ctx, "Catalog fetched",
		"count", len(products),
		"duration_ms", time.Since(start).Milliseconds())
	return products, nil
}

func (c *Client) toProduct(p apiProduct) core.Product {
	return core.Product{
		ID:          p.ID,
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Price:       core.MoneyFromFloat(p.Price),
		Category:    strings.ToLower(strings.TrimSpace(p.Category)),
		Image:       p.Image,
		Stock:       StockFor(c.seed, p.ID),
	}
}

// StockFor returns the simulated stock level (0-19) of product id. The same
// seed and id always give the same level.
func StockFor(seed uint64, id int64) int {
	rng := rand.New(rand.NewPCG(seed, uint64(id)))
	return rng.IntN(maxStock)
}

func cloneProducts(p []core.Product) []core.Product {
	return append([]core.Product(nil), p...)
}
