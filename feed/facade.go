// Package feed projects stored articles into the shapes the presentation
// layer needs. All time bucketing takes an explicit reference time so the
// "today" boundary is deterministic under test.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brieflyhq/briefly/models"
	"github.com/brieflyhq/briefly/store"
)

const (
	defaultLimit = 20
	maxLimit     = 50
	todayLimit   = 20
)

// Article is a stored article annotated with display-only fields.
type Article struct {
	ID             uint            `json:"id"`
	Title          string          `json:"title"`
	URL            string          `json:"url"`
	Source         string          `json:"source"`
	Summary        string          `json:"summary"`
	Category       models.Category `json:"category"`
	Sentiment      string          `json:"sentiment"`
	SentimentIcon  string          `json:"sentimentIcon"`
	SentimentScore float64         `json:"sentimentScore"`
	ReadTime       string          `json:"readTime"`
	TimeAgo        string          `json:"timeAgo"`
}

// DayGroup is one archive day with its articles, newest-fetched first.
type DayGroup struct {
	Date     string    `json:"date"`
	Label    string    `json:"label"`
	Count    int       `json:"count"`
	Articles []Article `json:"articles"`
}

// Overview carries the header line shown above every feed.
type Overview struct {
	TotalStories int64  `json:"totalStories"`
	LastUpdated  string `json:"lastUpdated"`
}

// Facade is the read-only projection layer over the store.
type Facade struct {
	store *store.Store
}

func New(st *store.Store) *Facade {
	return &Facade{store: st}
}

// Today returns processed articles fetched on now's calendar date,
// newest-fetched first.
func (f *Facade) Today(ctx context.Context, now time.Time, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = todayLimit
	}
	articles, err := f.store.DayFeed(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	return annotate(articles, now), nil
}

// TodayCount returns the total number of processed articles fetched on
// now's calendar date, independent of any page limit.
func (f *Facade) TodayCount(ctx context.Context, now time.Time) (int64, error) {
	return f.store.CountProcessedOn(ctx, now)
}

// ByCategory returns processed articles for one category (empty or "All"
// means every category), newest-published first. The limit is clamped to
// [1, 50].
func (f *Facade) ByCategory(ctx context.Context, now time.Time, category string, limit int) ([]Article, error) {
	filter := models.Category("")
	if category != "" && category != "All" {
		filter = models.Category(category)
	}
	articles, err := f.store.QueryFeed(ctx, filter, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	return annotate(articles, now), nil
}

// Archive groups the last days days of processed articles (excluding today)
// by fetch date, newest day first.
func (f *Facade) Archive(ctx context.Context, now time.Time, days int) ([]DayGroup, error) {
	if days <= 0 {
		days = 7
	}
	articles, err := f.store.ArchiveRange(ctx, now, days)
	if err != nil {
		return nil, err
	}

	var groups []DayGroup
	index := map[string]int{}
	for _, a := range articles {
		date := a.FetchedAt.Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, DayGroup{
				Date:  date,
				Label: a.FetchedAt.Format("Monday, January 2, 2006"),
			})
		}
		groups[i].Articles = append(groups[i].Articles, annotateOne(a, now))
		groups[i].Count++
	}
	return groups, nil
}

// Overview reports the total processed count and a humanized "last updated"
// line derived from the most recent successful harvest.
func (f *Facade) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	total, err := f.store.CountProcessed(ctx)
	if err != nil {
		return nil, err
	}

	last, err := f.store.LatestSuccessfulFetchTime(ctx)
	if err != nil {
		return nil, err
	}

	updated := "Never"
	if last != nil {
		diff := now.Sub(*last)
		if diff < time.Hour {
			updated = fmt.Sprintf("%dm ago", int(diff.Minutes()+0.5))
		} else {
			updated = fmt.Sprintf("%dh ago", int(diff.Hours()+0.5))
		}
	}

	return &Overview{TotalStories: total, LastUpdated: updated}, nil
}

// ClampLimit bounds a requested result count to [1, 50], defaulting to 20
// when unset.
func ClampLimit(limit int) int {
	if limit == 0 {
		return defaultLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func annotate(articles []models.Article, now time.Time) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		out = append(out, annotateOne(a, now))
	}
	return out
}

func annotateOne(a models.Article, now time.Time) Article {
	return Article{
		ID:             a.ID,
		Title:          a.Title,
		URL:            a.OriginalURL,
		Source:         a.SourceName,
		Summary:        a.AISummary,
		Category:       a.Category,
		Sentiment:      titleCase(string(a.Sentiment)),
		SentimentIcon:  SentimentIcon(a.Sentiment),
		SentimentScore: a.SentimentScore,
		ReadTime:       FormatReadTime(a.ReadTimeSec),
		TimeAgo:        FormatTimeAgo(now, a.PublishedAt),
	}
}

// SentimentIcon maps a sentiment to its display glyph.
func SentimentIcon(s models.Sentiment) string {
	switch s {
	case models.SentimentPositive:
		return "↑"
	case models.SentimentNegative:
		return "↓"
	default:
		return "→"
	}
}

// FormatReadTime renders seconds under a minute as "N sec", everything else
// as rounded minutes.
func FormatReadTime(sec int) string {
	if sec >= 60 {
		return fmt.Sprintf("%d min", int(float64(sec)/60+0.5))
	}
	return fmt.Sprintf("%d sec", sec)
}

// FormatTimeAgo renders the elapsed time since t in minutes, hours or days
// with correct pluralization.
func FormatTimeAgo(now, t time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Hour:
		m := int(diff.Minutes() + 0.5)
		return fmt.Sprintf("%d %s ago", m, plural("minute", m))
	case diff < 24*time.Hour:
		h := int(diff.Hours() + 0.5)
		return fmt.Sprintf("%d %s ago", h, plural("hour", h))
	default:
		d := int(diff.Hours()/24 + 0.5)
		return fmt.Sprintf("%d %s ago", d, plural("day", d))
	}
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
