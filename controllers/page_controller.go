package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TodayPage renders the server-side view of today's feed.
func (h *Handler) TodayPage(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.now()

	articles, err := h.facade.Today(ctx, now, 0)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load feed: %v", err)
		return
	}

	count, err := h.facade.TodayCount(ctx, now)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load feed: %v", err)
		return
	}

	overview, err := h.facade.Overview(ctx, now)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load feed: %v", err)
		return
	}

	c.HTML(http.StatusOK, "today.html", gin.H{
		"Articles":    articles,
		"Count":       count,
		"LastUpdated": overview.LastUpdated,
		"Date":        now.Format("Monday, January 2, 2006"),
	})
}

// ArchivePage renders the past seven days grouped by fetch date.
func (h *Handler) ArchivePage(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.now()

	groups, err := h.facade.Archive(ctx, now, 7)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load archive: %v", err)
		return
	}

	total := 0
	for _, g := range groups {
		total += g.Count
	}

	c.HTML(http.StatusOK, "archive.html", gin.H{
		"Groups": groups,
		"Days":   len(groups),
		"Total":  total,
	})
}
