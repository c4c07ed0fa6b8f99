package scraper

import (
	"context"
	"time"

	"harvester/harvester/utils/types"
)

// Hooks lets the caller report progress around each source.
type Hooks struct {
	OnStart  func(src Source)
	OnFinish func(res types.ExtractionResult)
}

// Aggregator runs extractors one after another with a courtesy pause in between.
type Aggregator struct {
	extractors []*Extractor
	pause      time.Duration
}

func NewAggregator(extractors []*Extractor, pause time.Duration) *Aggregator {
	return &Aggregator{extractors: extractors, pause: pause}
}

func (a *Aggregator) Run(ctx context.Context, hooks Hooks) types.AggregateResult {
	var out types.AggregateResult
	for i, ex := range a.extractors {
		if i > 0 {
			sleep(ctx, a.pause)
		}
		if hooks.OnStart != nil {
			hooks.OnStart(ex.Source())
		}
		res := ex.Extract(ctx)
		if hooks.OnFinish != nil {
			hooks.OnFinish(res)
		}
		out.Sources = append(out.Sources, res)
		out.Records = append(out.Records, res.Records...)
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
