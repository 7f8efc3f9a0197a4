package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/brieflyhq/briefly/feed"
)

const (
	feedCacheKey = "feed:default"
	feedCacheTTL = 10 * time.Minute
)

type feedResponse struct {
	Success      bool           `json:"success"`
	TotalStories int64          `json:"totalStories"`
	LastUpdated  string         `json:"lastUpdated"`
	Articles     []feed.Article `json:"articles"`
}

// GetArticles serves the JSON feed: optional category filter, limit clamped
// to [1, 50]. The unfiltered default-limit variant is cached in Redis; any
// other variant goes straight to the store.
func (h *Handler) GetArticles(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.now()

	category := c.Query("category")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	cacheable := h.redis != nil && (category == "" || category == "All") && limit == 0
	if cacheable {
		if cached, err := h.redis.Get(ctx, feedCacheKey).Result(); err == nil {
			var resp feedResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		} else if err != redis.Nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	articles, err := h.facade.ByCategory(ctx, now, category, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	overview, err := h.facade.Overview(ctx, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := feedResponse{
		Success:      true,
		TotalStories: overview.TotalStories,
		LastUpdated:  overview.LastUpdated,
		Articles:     articles,
	}

	if cacheable {
		if data, err := json.Marshal(resp); err == nil {
			_ = h.redis.Set(ctx, feedCacheKey, data, feedCacheTTL).Err()
		}
	}

	c.JSON(http.StatusOK, resp)
}
