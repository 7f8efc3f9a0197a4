package models

import "time"

// Category is the closed set of sections the harvester files articles under.
// Upstream API slugs are mapped to these labels at the ingestion boundary;
// anything unrecognized is rejected there.
type Category string

const (
	CategoryTech    Category = "Tech"
	CategoryFinance Category = "Finance"
	CategoryScience Category = "Science"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTech, CategoryFinance, CategoryScience:
		return true
	}
	return false
}

// Sentiment is the label attached to an article by the summarizer.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment maps a summarizer-provided label to a known sentiment,
// falling back to neutral for anything unrecognized.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return Sentiment(s)
	}
	return SentimentNeutral
}

// Article is one harvested headline. A row is created raw by the harvester
// (IsProcessed false) and enriched exactly once by the distiller; after that
// it is read-only.
type Article struct {
	ID             uint   `gorm:"primaryKey"`
	Title          string `gorm:"not null"`
	OriginalURL    string `gorm:"uniqueIndex;not null"`
	SourceName     string
	Description    string    `gorm:"type:text"`
	Category       Category  `gorm:"index"`
	AISummary      string    `gorm:"type:text"`
	Sentiment      Sentiment `gorm:"default:neutral"`
	SentimentScore float64
	ReadTimeSec    int
	IsProcessed    bool      `gorm:"index;default:false"`
	PublishedAt    time.Time `gorm:"index"`
	FetchedAt      time.Time `gorm:"index;autoCreateTime"`
}

// FetchStatus is the outcome recorded for one harvest attempt.
type FetchStatus string

const (
	FetchSuccess FetchStatus = "success"
	FetchError   FetchStatus = "error"
)

// FetchLog is the audit record of one harvest attempt for one category.
// Rows are append-only.
type FetchLog struct {
	ID            uint `gorm:"primaryKey"`
	Category      Category
	ArticlesFound int
	Status        FetchStatus
	ErrorMessage  string
	RunAt         time.Time `gorm:"index;autoCreateTime"`
}
