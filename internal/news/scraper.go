package news

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"crypto-forecast-dashboard/internal/api"
	"crypto-forecast-dashboard/internal/logger"
	"crypto-forecast-dashboard/internal/types"
)

// Scraper collects crypto headlines directly from finance pages when the
// backend news endpoint is unavailable.
type Scraper struct {
	sources []headlineSource
	http    *api.Client
	timeout time.Duration
}

// headlineSource describes one symbol-addressable news page
type headlineSource struct {
	Name      string
	BaseURL   string
	PagePath  string // "{symbol}" is replaced with Slug(symbol)
	Slug      func(symbol string) string
	Selectors articleSelectors
	RateLimit time.Duration
}

// articleSelectors defines CSS selectors for extracting article data
type articleSelectors struct {
	Container string
	Title     string
	Link      string
	Summary   string
}

// NewScraper creates a scraper with the default crypto news sources
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: getDefaultSources(),
		http:    api.NewClient(api.WithTimeout(timeout)),
		timeout: timeout,
	}
}

// getDefaultSources returns the news pages that can be addressed by ticker
// symbol. Most crypto outlets key pages by asset name rather than symbol,
// so the list is short and Google News covers the rest.
func getDefaultSources() []headlineSource {
	return []headlineSource{
		{
			Name:     "YahooFinance",
			BaseURL:  "https://finance.yahoo.com",
			PagePath: "/quote/{symbol}/news",
			Slug:     strings.ToUpper,
			Selectors: articleSelectors{
				Container: "li.stream-item",
				Title:     "h3",
				Link:      "a",
				Summary:   "p",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:     "MarketWatch",
			BaseURL:  "https://www.marketwatch.com",
			PagePath: "/investing/cryptocurrency/{symbol}",
			Slug: func(symbol string) string {
				return strings.ToLower(strings.ReplaceAll(symbol, "-", ""))
			},
			Selectors: articleSelectors{
				Container: "div.article__content",
				Title:     "a.link",
				Link:      "a.link",
				Summary:   "p.article__summary",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// Headlines fetches news articles for a symbol from all configured sources
func (s *Scraper) Headlines(ctx context.Context, symbol string, maxArticles int) ([]types.NewsArticle, error) {
	logger.Info(ctx, "Starting news scraping", "symbol", symbol, "sources", len(s.sources))

	allArticles := []types.NewsArticle{}
	articlesPerSource := maxArticles / len(s.sources)
	if articlesPerSource < 1 {
		articlesPerSource = 1
	}

	for _, source := range s.sources {
		articles, err := s.scrapeSource(ctx, source, symbol, articlesPerSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "symbol", symbol)
			continue
		}
		allArticles = append(allArticles, articles...)

		// Rate limiting between sources
		time.Sleep(source.RateLimit)
	}

	allArticles = s.enrichSummaries(ctx, allArticles)

	logger.Info(ctx, "News scraping completed", "symbol", symbol, "articles", len(allArticles))
	return allArticles, nil
}

// scrapeSource scrapes headlines from a single news page
func (s *Scraper) scrapeSource(ctx context.Context, source headlineSource, symbol string, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)

	c.SetRequestTimeout(s.timeout)

	// Set user agent to avoid being blocked
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", api.BrowserHeaders()["User-Agent"])
	})

	c.OnHTML(source.Selectors.Container, func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}

		articleURL := e.ChildAttr(source.Selectors.Link, "href")
		if articleURL == "" {
			return
		}

		// Make URL absolute
		if !strings.HasPrefix(articleURL, "http") {
			articleURL = source.BaseURL + articleURL
		}

		summary := strings.TrimSpace(e.ChildText(source.Selectors.Summary))

		articles = append(articles, types.NewsArticle{
			Title:   title,
			URL:     articleURL,
			Source:  source.Name,
			Summary: summary,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	pageURL := source.BaseURL + strings.ReplaceAll(source.PagePath, "{symbol}", source.Slug(symbol))

	err := c.Visit(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}

	c.Wait()

	return articles, nil
}

// maxSummaryFetches bounds how many article pages one scrape will open
const maxSummaryFetches = 5

// enrichSummaries fetches a short summary for articles the listing page
// did not provide one for
func (s *Scraper) enrichSummaries(ctx context.Context, articles []types.NewsArticle) []types.NewsArticle {
	enriched := make([]types.NewsArticle, len(articles))
	copy(enriched, articles)

	fetched := 0
	for i := range enriched {
		if enriched[i].Summary != "" || fetched >= maxSummaryFetches {
			continue
		}

		summary := s.fetchSummary(ctx, enriched[i].URL)
		if summary != "" {
			enriched[i].Summary = summary
		}
		fetched++

		// Rate limiting between article fetches
		time.Sleep(300 * time.Millisecond)
	}

	return enriched
}

// fetchSummary pulls the description meta tag or the first substantial
// paragraph from an article page
func (s *Scraper) fetchSummary(ctx context.Context, articleURL string) string {
	// Yahoo serves a consent interstitial without its referer
	headers := api.BrowserHeaders()
	if strings.Contains(getDomain(articleURL), "yahoo.com") {
		headers = api.YahooFinanceHeaders()
	}

	resp, err := s.http.GET(ctx, articleURL, headers)
	if err != nil {
		logger.Debug(ctx, "Article fetch failed", "url", articleURL, "error", err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		logger.Debug(ctx, "Article parse failed", "url", articleURL, "error", err)
		return ""
	}

	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if trimmed := strings.TrimSpace(desc); trimmed != "" {
			return trimmed
		}
	}

	var summary string
	doc.Find("article p, div.caas-body p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 60 {
			summary = text
			return false
		}
		return true
	})

	return summary
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// GoogleNews searches Google News for crypto headlines (fallback method)
func (s *Scraper) GoogleNews(ctx context.Context, symbol string, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
	)

	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", api.BrowserHeaders()["User-Agent"])
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		title := e.ChildText("h3, h4")
		link := e.ChildAttr("a", "href")

		if title != "" && link != "" {
			// Clean up Google News redirect URL
			if strings.HasPrefix(link, "./articles/") {
				link = "https://news.google.com" + link[1:]
			}

			articles = append(articles, types.NewsArticle{
				Title:  title,
				URL:    link,
				Source: "GoogleNews",
			})
		}
	})

	searchQuery := url.QueryEscape(symbol + " crypto news")
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en", searchQuery)

	err := c.Visit(searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}

	c.Wait()

	logger.Info(ctx, "Google News scraping completed", "symbol", symbol, "articles", len(articles))
	return articles, nil
}
