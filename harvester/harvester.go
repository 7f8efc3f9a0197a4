// Package harvester polls the upstream headlines API per category,
// deduplicates by URL and persists new raw articles.
package harvester

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/brieflyhq/briefly/config"
	"github.com/brieflyhq/briefly/models"
	"github.com/brieflyhq/briefly/store"
)

// ErrMissingAPIKey aborts a run before any category is attempted.
var ErrMissingAPIKey = errors.New("news API key not configured")

const placeholderTitle = "[Removed]"

// Result aggregates one harvest run across all categories.
type Result struct {
	Inserted int      `json:"inserted"`
	Errors   []string `json:"errors"`
}

// Harvester pulls top headlines for each configured category and stores
// whatever it has not seen before.
type Harvester struct {
	store      *store.Store
	client     *http.Client
	baseURL    string
	apiKey     string
	pageSize   int
	categories []config.CategoryMapping
}

// New builds a harvester from the newsapi section of the config.
func New(st *store.Store, cfg *config.Config) *Harvester {
	timeout := cfg.NewsAPI.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Harvester{
		store:      st,
		client:     &http.Client{Timeout: timeout},
		baseURL:    cfg.NewsAPI.BaseURL,
		apiKey:     cfg.NewsAPI.APIKey,
		pageSize:   cfg.NewsAPI.PageSize,
		categories: cfg.NewsAPI.Categories,
	}
}

type upstreamArticle struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
}

type upstreamResponse struct {
	Articles []upstreamArticle `json:"articles"`
}

// Run polls every configured category once. A failing category is logged
// and skipped; it never aborts the remaining categories. Only storage
// failures end the run early.
func (h *Harvester) Run(ctx context.Context) (*Result, error) {
	if h.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	result := &Result{Errors: []string{}}

	for _, cat := range h.categories {
		if !cat.Label.Valid() {
			result.Errors = append(result.Errors, fmt.Sprintf("unknown category label %q for slug %s", cat.Label, cat.Slug))
			continue
		}

		items, err := h.fetchCategory(ctx, cat.Slug)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to fetch %s: %v", cat.Label, err))
			if logErr := h.store.RecordFetchLog(ctx, cat.Label, 0, models.FetchError, err.Error()); logErr != nil {
				return result, logErr
			}
			continue
		}

		inserted := 0
		for _, item := range items {
			if item.Title == "" || item.Title == placeholderTitle {
				continue
			}
			article := mapArticle(item, cat.Label)
			ok, err := h.store.InsertIfNew(ctx, &article)
			if err != nil {
				return result, err
			}
			if ok {
				inserted++
			}
		}

		result.Inserted += inserted
		if err := h.store.RecordFetchLog(ctx, cat.Label, inserted, models.FetchSuccess, ""); err != nil {
			return result, err
		}
		log.Printf("harvester: %s inserted %d of %d", cat.Label, inserted, len(items))
	}

	return result, nil
}

func (h *Harvester) fetchCategory(ctx context.Context, slug string) ([]upstreamArticle, error) {
	q := url.Values{}
	q.Set("category", slug)
	q.Set("language", "en")
	q.Set("pageSize", fmt.Sprintf("%d", h.pageSize))
	q.Set("apiKey", h.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Briefly/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, err
	}

	var parsed upstreamResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("invalid API response: %w", err)
	}
	if parsed.Articles == nil {
		return nil, errors.New("invalid API response: missing articles")
	}
	return parsed.Articles, nil
}

func mapArticle(item upstreamArticle, label models.Category) models.Article {
	source := item.Source.Name
	if source == "" {
		source = "Unknown"
	}
	published := time.Now()
	if item.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			published = t
		}
	}
	return models.Article{
		Title:       item.Title,
		OriginalURL: item.URL,
		SourceName:  source,
		Description: item.Description,
		Category:    label,
		Sentiment:   models.SentimentNeutral,
		PublishedAt: published,
	}
}
