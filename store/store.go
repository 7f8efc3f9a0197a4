package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brieflyhq/briefly/models"
)

// Store is the persistence layer over the articles and fetch_log tables.
// It is constructed once at startup and passed to every component that
// needs it; there is no package-level database handle.
type Store struct {
	db *gorm.DB
}

// New wraps an open GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the two tables.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&models.Article{}, &models.FetchLog{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// InsertIfNew inserts the article unless a row with the same original URL
// already exists. Returns true only when a row was actually written, so
// duplicate harvests across runs count as zero insertions.
func (s *Store) InsertIfNew(ctx context.Context, article *models.Article) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "original_url"}},
			DoNothing: true,
		}).
		Create(article)
	if res.Error != nil {
		return false, fmt.Errorf("insert article: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// FindUnprocessed returns up to limit articles awaiting enrichment,
// oldest-inserted first so the backlog never starves.
func (s *Store) FindUnprocessed(ctx context.Context, limit int) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Where("is_processed = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("find unprocessed: %w", err)
	}
	return articles, nil
}

// Enrichment carries the distiller's output for one article.
type Enrichment struct {
	Summary     string
	Sentiment   models.Sentiment
	Score       float64
	ReadTimeSec int
}

// ApplyEnrichment writes the enrichment fields and marks the row processed.
// Re-applying the same values is a no-op in effect; IsProcessed never
// reverts to false.
func (s *Store) ApplyEnrichment(ctx context.Context, id uint, e Enrichment) error {
	err := s.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ai_summary":      e.Summary,
			"sentiment":       e.Sentiment,
			"sentiment_score": e.Score,
			"read_time_sec":   e.ReadTimeSec,
			"is_processed":    true,
		}).Error
	if err != nil {
		return fmt.Errorf("apply enrichment %d: %w", id, err)
	}
	return nil
}

// QueryFeed returns processed articles, optionally filtered by category,
// newest-published first.
func (s *Store) QueryFeed(ctx context.Context, category models.Category, limit int) ([]models.Article, error) {
	q := s.db.WithContext(ctx).Where("is_processed = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var articles []models.Article
	if err := q.Order("published_at DESC").Limit(limit).Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	return articles, nil
}

// DayFeed returns processed articles fetched on the given calendar day,
// newest-fetched first.
func (s *Store) DayFeed(ctx context.Context, day time.Time, limit int) ([]models.Article, error) {
	start := startOfDay(day)
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Where("is_processed = ?", true).
		Where("fetched_at >= ? AND fetched_at < ?", start, start.AddDate(0, 0, 1)).
		Order("fetched_at DESC").
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("day feed: %w", err)
	}
	return articles, nil
}

// ArchiveRange returns processed articles fetched strictly before today and
// within the last days days, newest-fetched first.
func (s *Store) ArchiveRange(ctx context.Context, today time.Time, days int) ([]models.Article, error) {
	start := startOfDay(today)
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Where("is_processed = ?", true).
		Where("fetched_at >= ? AND fetched_at < ?", start.AddDate(0, 0, -days), start).
		Order("fetched_at DESC").
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("archive range: %w", err)
	}
	return articles, nil
}

// RecordFetchLog appends one audit row for a harvest attempt.
func (s *Store) RecordFetchLog(ctx context.Context, category models.Category, count int, status models.FetchStatus, errMsg string) error {
	entry := models.FetchLog{
		Category:      category,
		ArticlesFound: count,
		Status:        status,
		ErrorMessage:  errMsg,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record fetch log: %w", err)
	}
	return nil
}

// LatestSuccessfulFetchTime returns the run time of the most recent
// successful harvest, or nil if there has never been one.
func (s *Store) LatestSuccessfulFetchTime(ctx context.Context) (*time.Time, error) {
	var entry models.FetchLog
	err := s.db.WithContext(ctx).
		Where("status = ?", models.FetchSuccess).
		Order("run_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest fetch time: %w", err)
	}
	return &entry.RunAt, nil
}

// CountProcessed returns the number of enriched articles.
func (s *Store) CountProcessed(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("is_processed = ?", true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count processed: %w", err)
	}
	return n, nil
}

// CountProcessedOn returns the number of enriched articles fetched on the
// given calendar day.
func (s *Store) CountProcessedOn(ctx context.Context, day time.Time) (int64, error) {
	start := startOfDay(day)
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("is_processed = ?", true).
		Where("fetched_at >= ? AND fetched_at < ?", start, start.AddDate(0, 0, 1)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count processed on %s: %w", start.Format("2006-01-02"), err)
	}
	return n, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
