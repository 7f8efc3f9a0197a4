// Package distiller enriches unprocessed articles with a summary, sentiment
// label and estimated reading time via an external summarizer service.
package distiller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/brieflyhq/briefly/config"
	"github.com/brieflyhq/briefly/models"
	"github.com/brieflyhq/briefly/store"
)

// DefaultBatchSize bounds one run when the config does not say otherwise.
const DefaultBatchSize = 20

// Result reports one distiller run.
type Result struct {
	Processed int `json:"processed"`
}

// Distiller drains the unprocessed backlog in bounded batches. The external
// summarizer being down never blocks it; every selected article ends up
// processed, with fallback values if need be.
type Distiller struct {
	store     *store.Store
	client    *http.Client
	url       string
	batchSize int
}

// New builds a distiller from the summarizer section of the config.
func New(st *store.Store, cfg *config.Config) *Distiller {
	timeout := cfg.Summarizer.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	batch := cfg.Distiller.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Distiller{
		store:     st,
		client:    &http.Client{Timeout: timeout},
		url:       cfg.Summarizer.URL,
		batchSize: batch,
	}
}

type summarizeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type summarizeResponse struct {
	Summary   string   `json:"summary"`
	Sentiment string   `json:"sentiment"`
	Score     *float64 `json:"score"`
}

// Run enriches up to the configured batch of unprocessed articles, oldest
// first. Summarizer failures fall back per article; only storage failures
// abort the run.
func (d *Distiller) Run(ctx context.Context) (*Result, error) {
	articles, err := d.store.FindUnprocessed(ctx, d.batchSize)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, article := range articles {
		enrichment := d.enrich(ctx, article)
		if err := d.store.ApplyEnrichment(ctx, article.ID, enrichment); err != nil {
			return result, err
		}
		result.Processed++
	}
	return result, nil
}

// enrich calls the summarizer and assembles the final values, defaulting
// field by field. The fallback summary is the description, or the title
// when the description is empty.
func (d *Distiller) enrich(ctx context.Context, article models.Article) store.Enrichment {
	fallbackSummary := article.Description
	if fallbackSummary == "" {
		fallbackSummary = article.Title
	}

	enrichment := store.Enrichment{
		Summary:   fallbackSummary,
		Sentiment: models.SentimentNeutral,
		Score:     0.0,
	}

	if resp, err := d.summarize(ctx, article); err != nil {
		log.Printf("distiller: summarizer failed for article %d: %v", article.ID, err)
	} else {
		if resp.Summary != "" {
			enrichment.Summary = resp.Summary
		}
		if resp.Sentiment != "" {
			enrichment.Sentiment = models.ParseSentiment(resp.Sentiment)
		}
		if resp.Score != nil {
			enrichment.Score = *resp.Score
		}
	}

	enrichment.ReadTimeSec = readTimeSeconds(enrichment.Summary)
	return enrichment
}

func (d *Distiller) summarize(ctx context.Context, article models.Article) (*summarizeResponse, error) {
	payload, err := json.Marshal(summarizeRequest{
		Title:       article.Title,
		Description: article.Description,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var parsed summarizeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// readTimeSeconds estimates reading time at ~200 words per minute with a
// 15 second floor.
func readTimeSeconds(summary string) int {
	words := len(strings.Fields(summary))
	sec := int(math.Round(float64(words) / 200 * 60))
	if sec < 15 {
		return 15
	}
	return sec
}
