// Package pipeline sequences the harvester and the distiller as one unit of
// scheduled work.
package pipeline

import (
	"context"
	"log"

	"github.com/brieflyhq/briefly/distiller"
	"github.com/brieflyhq/briefly/harvester"
)

// Result combines the outcomes of both steps. Each step is reported
// independently; a failed step carries its error string instead of a
// payload.
type Result struct {
	Fetch        *harvester.Result `json:"fetch,omitempty"`
	FetchError   string            `json:"fetch_error,omitempty"`
	Process      *distiller.Result `json:"process,omitempty"`
	ProcessError string            `json:"process_error,omitempty"`
}

// Pipeline runs the harvester, then the distiller. The steps share no
// transaction and do not gate each other: the distiller runs even when the
// harvest failed, draining whatever backlog exists.
type Pipeline struct {
	harvester *harvester.Harvester
	distiller *distiller.Distiller
}

func New(h *harvester.Harvester, d *distiller.Distiller) *Pipeline {
	return &Pipeline{harvester: h, distiller: d}
}

// Run executes both steps and reports their combined outcome. It never
// returns an error itself; failures surface inside the result.
func (p *Pipeline) Run(ctx context.Context) *Result {
	result := &Result{}

	fetch, err := p.harvester.Run(ctx)
	if err != nil {
		log.Printf("pipeline: harvest failed: %v", err)
		result.FetchError = err.Error()
	} else {
		result.Fetch = fetch
	}

	process, err := p.distiller.Run(ctx)
	if err != nil {
		log.Printf("pipeline: distill failed: %v", err)
		result.ProcessError = err.Error()
	} else {
		result.Process = process
	}

	return result
}
