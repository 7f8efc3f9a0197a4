// Package controllers holds the gin handlers. All dependencies are carried
// by the Handler struct rather than package globals.
package controllers

import (
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/brieflyhq/briefly/distiller"
	"github.com/brieflyhq/briefly/feed"
	"github.com/brieflyhq/briefly/harvester"
	"github.com/brieflyhq/briefly/pipeline"
)

// Handler wires the pipeline components and the read facade into HTTP.
// A nil redis client disables response caching.
type Handler struct {
	facade    *feed.Facade
	harvester *harvester.Harvester
	distiller *distiller.Distiller
	pipeline  *pipeline.Pipeline
	redis     *redis.Client

	// Now is overridable so handler tests can pin the reference date.
	Now func() time.Time
}

func NewHandler(f *feed.Facade, h *harvester.Harvester, d *distiller.Distiller, p *pipeline.Pipeline, rdb *redis.Client) *Handler {
	return &Handler{
		facade:    f,
		harvester: h,
		distiller: d,
		pipeline:  p,
		redis:     rdb,
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
