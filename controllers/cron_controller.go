package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brieflyhq/briefly/harvester"
)

// RunCron triggers the full harvest-then-distill pipeline. Step failures are
// reported inside the result, never as a failed request.
func (h *Handler) RunCron(c *gin.Context) {
	result := h.pipeline.Run(c.Request.Context())
	h.invalidateFeedCache()

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"results":   result,
	})
}

// FetchArticles runs just the harvest step.
func (h *Handler) FetchArticles(c *gin.Context) {
	result, err := h.harvester.Run(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, harvester.ErrMissingAPIKey) {
			status = http.StatusPreconditionFailed
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.invalidateFeedCache()

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"inserted": result.Inserted,
		"errors":   result.Errors,
	})
}

// ProcessArticles runs just the distill step.
func (h *Handler) ProcessArticles(c *gin.Context) {
	result, err := h.distiller.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.invalidateFeedCache()

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"processed": result.Processed,
	})
}

func (h *Handler) invalidateFeedCache() {
	if h.redis == nil {
		return
	}
	go func() {
		_ = h.redis.Del(context.Background(), feedCacheKey).Err()
	}()
}
