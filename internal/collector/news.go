package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
	"TickerLens/internal/sentiment"
)

const newsAPIBase = "https://newsapi.org"

// ErrNewsUnavailable is returned when no news source is configured.
var ErrNewsUnavailable = errors.New("news source not configured")

// NewsFetcher returns the latest headlines matching a free-text query.
type NewsFetcher interface {
	FetchHeadlines(ctx context.Context, query string) ([]model.Article, error)
	Name() string
}

// NewsAPIFetcher implements NewsFetcher against the newsapi.org
// /v2/everything endpoint.
type NewsAPIFetcher struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Language string
	http     *httpClient
}

// NewNewsAPIFetcher creates a news fetcher. An empty baseURL selects
// newsapi.org.
func NewNewsAPIFetcher(baseURL, apiKey string, pageSize int, opts HTTPOptions, m *metrics.Metrics) *NewsAPIFetcher {
	if baseURL == "" {
		baseURL = newsAPIBase
	}
	if pageSize <= 0 {
		pageSize = 5
	}
	return &NewsAPIFetcher{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		PageSize: pageSize,
		Language: "en",
		http:     newHTTPClient(opts, m),
	}
}

func (f *NewsAPIFetcher) Name() string { return "newsapi" }

// FetchHeadlines returns up to PageSize of the newest articles for query.
// The key travels in a header so it never shows up in logged URLs.
func (f *NewsAPIFetcher) FetchHeadlines(ctx context.Context, query string) ([]model.Article, error) {
	if f.APIKey == "" {
		return nil, ErrNewsUnavailable
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("language", f.Language)
	q.Set("pageSize", strconv.Itoa(f.PageSize))
	q.Set("sortBy", "publishedAt")

	body, err := f.http.get(ctx, f.BaseURL+"/v2/everything?"+q.Encode(), http.Header{"X-Api-Key": {f.APIKey}})
	if err != nil {
		return nil, err
	}
	return parseNewsAPI(body)
}

func parseNewsAPI(body []byte) ([]model.Article, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("decode: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if status := root.Get("status").String(); status != "ok" {
		return nil, fmt.Errorf("api error: %s: %s", root.Get("code").String(), root.Get("message").String())
	}

	var articles []model.Article
	root.Get("articles").ForEach(func(_, a gjson.Result) bool {
		title := strings.TrimSpace(a.Get("title").String())
		if title == "" || title == "[Removed]" {
			return true
		}
		art := model.Article{
			Title:  title,
			URL:    a.Get("url").String(),
			Source: a.Get("source.name").String(),
		}
		if t, err := time.Parse(time.RFC3339, a.Get("publishedAt").String()); err == nil {
			art.PublishedAt = t.UTC()
		}
		articles = append(articles, art)
		return true
	})
	return articles, nil
}

// News fetches the latest headlines about symbol and scores their polarity.
// An empty query searches for the company's long name, or the symbol when
// the provider reports none.
func (c *Collector) News(ctx context.Context, symbol, query string) (*model.NewsReport, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if c.NewsSource == nil {
		return nil, ErrNewsUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		query = c.newsQuery(ctx, sym)
	}

	start := time.Now()
	articles, err := c.NewsSource.FetchHeadlines(ctx, query)
	c.metrics.ObserveFetch(c.NewsSource.Name(), "news", start, err)
	if err != nil {
		if errors.Is(err, ErrNewsUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: fetch news from %s: %w", ErrProvider, c.NewsSource.Name(), err)
	}

	if articles == nil {
		articles = []model.Article{}
	}
	titles := make([]string, len(articles))
	for i, a := range articles {
		titles[i] = a.Title
	}
	scores, mean := sentiment.Score(titles)
	for i := range articles {
		articles[i].Polarity = scores[i]
	}

	c.logger.Info().Str("symbol", sym).Str("query", query).Int("articles", len(articles)).Float64("polarity", mean).Msg("News scored")
	return &model.NewsReport{
		Symbol:    sym,
		Query:     query,
		Source:    c.NewsSource.Name(),
		Articles:  articles,
		Polarity:  mean,
		Label:     sentiment.Label(mean),
		FetchedAt: c.now().UTC(),
	}, nil
}

func (c *Collector) newsQuery(ctx context.Context, sym string) string {
	f, err := c.Fundamentals(ctx, sym)
	if err != nil || f.LongName == nil || strings.TrimSpace(*f.LongName) == "" {
		return sym
	}
	return strings.TrimSpace(*f.LongName)
}
