package distiller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brieflyhq/briefly/config"
	"github.com/brieflyhq/briefly/models"
	"github.com/brieflyhq/briefly/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

func newTestDistiller(st *store.Store, url string) *Distiller {
	cfg := &config.Config{}
	cfg.Summarizer.URL = url
	cfg.Summarizer.Timeout = 2 * time.Second
	cfg.Distiller.BatchSize = 20
	return New(st, cfg)
}

func seedArticle(t *testing.T, st *store.Store, url, title, description string) *models.Article {
	t.Helper()
	a := &models.Article{
		Title:       title,
		OriginalURL: url,
		SourceName:  "Wire",
		Description: description,
		Category:    models.CategoryTech,
		Sentiment:   models.SentimentNeutral,
		PublishedAt: time.Now(),
	}
	if _, err := st.InsertIfNew(context.Background(), a); err != nil {
		t.Fatalf("seed %s: %v", url, err)
	}
	return a
}

func reload(t *testing.T, st *store.Store, url string) models.Article {
	t.Helper()
	articles, err := st.QueryFeed(context.Background(), "", 50)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for _, a := range articles {
		if a.OriginalURL == url {
			return a
		}
	}
	t.Fatalf("article %s not found among processed rows", url)
	return models.Article{}
}

func TestRunEmptyQueue(t *testing.T) {
	st := newTestStore(t)
	d := newTestDistiller(st, "http://unused")

	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Processed != 0 {
		t.Errorf("expected 0 processed for empty queue, got %d", result.Processed)
	}
}

func TestRunAdoptsSummarizerOutput(t *testing.T) {
	st := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"summary":"Markets rallied on strong earnings.","sentiment":"positive","score":0.8}`)
	}))
	defer srv.Close()

	seedArticle(t, st, "https://example.com/1", "Markets rally", "Stocks climbed today.")
	d := newTestDistiller(st, srv.URL)

	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("expected 1 processed, got %d", result.Processed)
	}

	got := reload(t, st, "https://example.com/1")
	if got.AISummary != "Markets rallied on strong earnings." {
		t.Errorf("unexpected summary %q", got.AISummary)
	}
	if got.Sentiment != models.SentimentPositive {
		t.Errorf("expected positive sentiment, got %s", got.Sentiment)
	}
	if got.SentimentScore != 0.8 {
		t.Errorf("expected score 0.8, got %v", got.SentimentScore)
	}
	if !got.IsProcessed {
		t.Error("expected IsProcessed true")
	}
}

func TestRunFallsBackWhenSummarizerFails(t *testing.T) {
	st := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	seedArticle(t, st, "https://example.com/down", "Outage headline", "The description text.")
	d := newTestDistiller(st, srv.URL)

	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("expected 1 processed even on failure, got %d", result.Processed)
	}

	got := reload(t, st, "https://example.com/down")
	if got.AISummary != "The description text." {
		t.Errorf("expected description fallback, got %q", got.AISummary)
	}
	if got.Sentiment != models.SentimentNeutral {
		t.Errorf("expected neutral fallback, got %s", got.Sentiment)
	}
	if got.SentimentScore != 0.0 {
		t.Errorf("expected 0.0 fallback score, got %v", got.SentimentScore)
	}
	if got.ReadTimeSec < 15 {
		t.Errorf("read time below floor: %d", got.ReadTimeSec)
	}
}

func TestRunFallsBackToTitleWithoutDescription(t *testing.T) {
	st := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer srv.Close()

	seedArticle(t, st, "https://example.com/bare", "Only a title", "")
	d := newTestDistiller(st, srv.URL)

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := reload(t, st, "https://example.com/bare")
	if got.AISummary != "Only a title" {
		t.Errorf("expected title fallback, got %q", got.AISummary)
	}
}

func TestRunDefaultsMissingFieldsIndividually(t *testing.T) {
	st := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"summary":"Partial response summary."}`)
	}))
	defer srv.Close()

	seedArticle(t, st, "https://example.com/partial", "Partial", "Some description.")
	d := newTestDistiller(st, srv.URL)

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := reload(t, st, "https://example.com/partial")
	if got.AISummary != "Partial response summary." {
		t.Errorf("expected adopted summary, got %q", got.AISummary)
	}
	if got.Sentiment != models.SentimentNeutral {
		t.Errorf("expected neutral default, got %s", got.Sentiment)
	}
	if got.SentimentScore != 0.0 {
		t.Errorf("expected 0.0 default score, got %v", got.SentimentScore)
	}
}

func TestRunRejectsUnknownSentimentLabels(t *testing.T) {
	st := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"summary":"ok","sentiment":"ecstatic","score":0.9}`)
	}))
	defer srv.Close()

	seedArticle(t, st, "https://example.com/odd", "Odd label", "desc")
	d := newTestDistiller(st, srv.URL)

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := reload(t, st, "https://example.com/odd")
	if got.Sentiment != models.SentimentNeutral {
		t.Errorf("unknown sentiment should map to neutral, got %s", got.Sentiment)
	}
}

func TestRunRespectsBatchSize(t *testing.T) {
	st := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"summary":"s","sentiment":"neutral","score":0}`)
	}))
	defer srv.Close()

	for i := 0; i < 5; i++ {
		seedArticle(t, st, fmt.Sprintf("https://example.com/b%d", i), "T", "d")
	}

	cfg := &config.Config{}
	cfg.Summarizer.URL = srv.URL
	cfg.Summarizer.Timeout = 2 * time.Second
	cfg.Distiller.BatchSize = 3
	d := New(st, cfg)

	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Processed != 3 {
		t.Errorf("expected batch of 3, got %d", result.Processed)
	}

	remaining, err := st.FindUnprocessed(context.Background(), 10)
	if err != nil {
		t.Fatalf("find unprocessed: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("expected 2 left unprocessed, got %d", len(remaining))
	}
}

func TestReadTimeSeconds(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    int
	}{
		{"empty", "", 15},
		{"short", "Just a few words here.", 15},
		{"floor boundary", strings.Repeat("word ", 50), 15},
		{"one minute", strings.Repeat("word ", 200), 60},
		{"rounds", strings.Repeat("word ", 130), 39},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readTimeSeconds(tt.summary); got != tt.want {
				t.Errorf("readTimeSeconds(%d words) = %d, want %d", len(strings.Fields(tt.summary)), got, tt.want)
			}
		})
	}
}
