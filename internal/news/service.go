package news

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-forecast-dashboard/internal/interfaces"
	"crypto-forecast-dashboard/internal/logger"
	"crypto-forecast-dashboard/internal/store"
	"crypto-forecast-dashboard/internal/trace"
	"crypto-forecast-dashboard/internal/types"
)

// Service provides symbol news with caching. The backend news endpoint is
// the primary source; when it is missing or failing the service falls back
// to scraping public finance pages.
type Service struct {
	source  interfaces.NewsSource
	scraper *Scraper
	cache   *newsCache
	scrape  scrapeFunc
	cfg     *ServiceConfig
}

type scrapeFunc func(ctx context.Context, symbol string, maxArticles int) ([]types.NewsArticle, error)

// ServiceConfig configures the news service
type ServiceConfig struct {
	MaxArticles    int           // Maximum articles to return per symbol
	CacheDuration  time.Duration // How long to cache news per symbol
	ScraperTimeout time.Duration // Timeout for scraping operations
	ScrapeFallback bool          // Whether to scrape when the endpoint fails
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxArticles:    10,
		CacheDuration:  15 * time.Minute,
		ScraperTimeout: 20 * time.Second,
		ScrapeFallback: true,
	}
}

// ServiceConfigFrom builds service settings from the application config
func ServiceConfigFrom(cfg *store.Config) *ServiceConfig {
	serviceCfg := DefaultServiceConfig()
	if cfg == nil {
		return serviceCfg
	}

	if cfg.News.MaxArticles > 0 {
		serviceCfg.MaxArticles = cfg.News.MaxArticles
	}
	if cfg.News.CacheMinutes > 0 {
		serviceCfg.CacheDuration = time.Duration(cfg.News.CacheMinutes) * time.Minute
	}
	serviceCfg.ScrapeFallback = cfg.News.ScrapeFallback

	return serviceCfg
}

// newsCache stores per-symbol news temporarily
type newsCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	response  types.NewsResponse
	timestamp time.Time
}

// newNewsCache creates a new cache
func newNewsCache(ttl time.Duration) *newsCache {
	cache := &newsCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}

	// Start cleanup goroutine
	go cache.cleanupLoop()

	return cache
}

// get retrieves cached news if still valid
func (c *newsCache) get(symbol string) (types.NewsResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[symbol]
	if !exists {
		return types.NewsResponse{}, false
	}

	// Check if expired
	if time.Since(entry.timestamp) > c.ttl {
		return types.NewsResponse{}, false
	}

	return entry.response, true
}

// set stores news in cache
func (c *newsCache) set(symbol string, response types.NewsResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[symbol] = &cacheEntry{
		response:  response,
		timestamp: time.Now(),
	}
}

// cleanupLoop periodically removes expired entries
func (c *newsCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes expired entries
func (c *newsCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for symbol, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, symbol)
		}
	}
}

// NewService creates a news service. The source may be nil when the active
// provider has no news endpoint; the scraper then carries every request.
func NewService(source interfaces.NewsSource, serviceCfg *ServiceConfig) *Service {
	if serviceCfg == nil {
		serviceCfg = DefaultServiceConfig()
	}

	svc := &Service{
		source:  source,
		scraper: NewScraper(serviceCfg.ScraperTimeout),
		cache:   newNewsCache(serviceCfg.CacheDuration),
		cfg:     serviceCfg,
	}
	svc.scrape = svc.scrapeHeadlines

	return svc
}

// GetNews retrieves news for a symbol (cached or fresh)
func (s *Service) GetNews(ctx context.Context, symbol string) (types.NewsResponse, error) {
	// Check cache first
	if cached, ok := s.cache.get(symbol); ok {
		logger.Info(ctx, "Using cached news", "symbol", symbol, "articles", len(cached.Articles))
		return cached, nil
	}

	ctx, span := trace.StartSpan(ctx, "fetch-news", trace.Attr("symbol", symbol))
	defer span.End()

	logger.Info(ctx, "Fetching fresh news", "symbol", symbol)
	response, err := s.fetchFresh(ctx, symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch news", err, "symbol", symbol)
		return types.NewsResponse{}, err
	}

	// Cache the result
	s.cache.set(symbol, response)

	return response, nil
}

// fetchFresh asks the backend endpoint first and scrapes on failure
func (s *Service) fetchFresh(ctx context.Context, symbol string) (types.NewsResponse, error) {
	if s.source != nil {
		response, err := s.source.News(ctx, symbol)
		if err == nil {
			return response, nil
		}
		if !s.cfg.ScrapeFallback {
			return types.NewsResponse{}, err
		}
		logger.Warn(ctx, "News endpoint unavailable, scraping instead", "symbol", symbol, "error", err)
	} else if !s.cfg.ScrapeFallback {
		return types.NewsResponse{}, fmt.Errorf("no news source configured for %s", symbol)
	}

	articles, err := s.scrape(ctx, symbol, s.cfg.MaxArticles)
	if err != nil {
		return types.NewsResponse{}, fmt.Errorf("scrape news for %s: %w", symbol, err)
	}
	if len(articles) == 0 {
		return types.NewsResponse{}, fmt.Errorf("no news found for %s", symbol)
	}
	if len(articles) > s.cfg.MaxArticles {
		articles = articles[:s.cfg.MaxArticles]
	}

	return BuildResponse(symbol, articles), nil
}

// scrapeHeadlines runs the scraper chain: configured pages first, then
// Google News when they come back empty
func (s *Service) scrapeHeadlines(ctx context.Context, symbol string, maxArticles int) ([]types.NewsArticle, error) {
	articles, err := s.scraper.Headlines(ctx, symbol, maxArticles)
	if err != nil {
		logger.ErrorWithErr(ctx, "Headline scraping failed", err, "symbol", symbol)
	}

	if len(articles) == 0 {
		logger.Info(ctx, "No articles from primary sources, trying Google News", "symbol", symbol)
		articles, err = s.scraper.GoogleNews(ctx, symbol, maxArticles)
		if err != nil {
			return nil, err
		}
	}

	return articles, nil
}

// Refresh forces a fresh fetch for a symbol (bypasses cache)
func (s *Service) Refresh(ctx context.Context, symbol string) (types.NewsResponse, error) {
	response, err := s.fetchFresh(ctx, symbol)
	if err != nil {
		return types.NewsResponse{}, err
	}

	s.cache.set(symbol, response)
	return response, nil
}

// ClearCache removes all cached news
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// CachedSymbols returns the symbols with cached news
func (s *Service) CachedSymbols() []string {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()

	symbols := make([]string, 0, len(s.cache.data))
	for symbol := range s.cache.data {
		symbols = append(symbols, symbol)
	}
	return symbols
}
