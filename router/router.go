package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/brieflyhq/briefly/controllers"
)

// InitRouter builds the gin engine: CORS, server-rendered pages and the
// JSON API.
func InitRouter(h *controllers.Handler) *gin.Engine {
	r := gin.Default()

	allowedOrigins := []string{"*"}
	if raw := os.Getenv("FRONTEND_ORIGINS"); raw != "" {
		split := strings.Split(raw, ",")
		allowedOrigins = allowedOrigins[:0]
		for _, v := range split {
			trimmed := strings.TrimSpace(v)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
		if len(allowedOrigins) == 0 {
			allowedOrigins = []string{"*"}
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.Static("/static", "./static")
	r.LoadHTMLGlob("templates/*")

	// Server-rendered views
	r.GET("/", h.TodayPage)
	r.GET("/archive", h.ArchivePage)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/articles", h.GetArticles)
		api.GET("/cron", h.RunCron)
		api.GET("/fetch", h.FetchArticles)
		api.GET("/process", h.ProcessArticles)
	}

	return r
}
