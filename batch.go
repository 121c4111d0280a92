package emptyletters

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

// DefaultWorkers is the number of parallel requests against the catalog.
const DefaultWorkers = 4

// Kind returns a short name for the class of an error, empty for nil.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotReachable):
		return "not-reachable"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrWriteFailure):
		return "write-failure"
	case errors.Is(err, ErrBadNumber):
		return "bad-number"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "other"
}

// Result is what happened to a single number during a run.
type Result struct {
	Number  string
	Outcome Outcome
	Path    string
	Created bool
	Err     error
}

// Report summarizes a run. Results are in input order. Hits and Fetches
// count the fetch phase, even for numbers that failed later.
type Report struct {
	Results []Result
	Hits    int
	Fetches int
	Created int
	Failed  int
}

// Failures returns the results with an error.
func (r Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Batch runs the whole pipeline over a list of numbers: first every raw
// document is fetched or loaded from cache, then every letter is generated.
// A failing number is recorded in the report and does not stop the run.
type Batch struct {
	Cache     *MetadataCache
	OutputDir string
	Overwrite bool
	// Workers limits parallelism in both phases, DefaultWorkers if zero.
	Workers int
	// Progress is called after each number of the fetch phase. Calls are
	// serialized.
	Progress func(Stats)
}

// Run processes all numbers. On cancellation, numbers not yet started are
// reported with the context error.
func (b Batch) Run(ctx context.Context, numbers []string) Report {
	results := make([]Result, len(numbers))
	all := make([]int, len(numbers))
	for i, n := range numbers {
		results[i].Number = n
		all[i] = i
	}

	var mu sync.Mutex
	b.each(ctx, all, results, func(i int) {
		res := &results[i]
		res.Path, res.Outcome, res.Err = b.Cache.FetchOrLoad(ctx, res.Number, b.Overwrite)
		if res.Err != nil {
			log.WithFields(log.Fields{"number": res.Number, "kind": Kind(res.Err)}).WithError(res.Err).Warn("fetch failed")
		}
		if b.Progress != nil {
			mu.Lock()
			b.Progress(b.Cache.Stats())
			mu.Unlock()
		}
	})

	var available []int
	for i, res := range results {
		if res.Err == nil {
			available = append(available, i)
		}
	}
	b.each(ctx, available, results, func(i int) {
		res := &results[i]
		rec, err := ParseFile(res.Path)
		if err != nil {
			res.Err = err
			log.WithFields(log.Fields{"number": res.Number, "path": res.Path}).WithError(err).Warn("parse failed")
			return
		}
		res.Created, res.Err = Emit(res.Number, rec, b.OutputDir)
		if res.Err != nil {
			log.WithField("number", res.Number).WithError(res.Err).Warn("emit failed")
		}
	})

	report := Report{Results: results}
	for _, res := range results {
		switch res.Outcome {
		case Hit:
			report.Hits++
		case Fetched:
			report.Fetches++
		}
		switch {
		case res.Err != nil:
			report.Failed++
		case res.Created:
			report.Created++
		}
	}
	return report
}

// each calls fn for every index with a bounded number of workers. Indices
// that were not handed out before ctx is done get the context error.
func (b Batch) each(ctx context.Context, indices []int, results []Result, fn func(int)) {
	workers := b.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	queue := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				fn(i)
			}
		}()
	}
	for k, i := range indices {
		select {
		case queue <- i:
			continue
		case <-ctx.Done():
		}
		for _, j := range indices[k:] {
			results[j].Err = ctx.Err()
		}
		break
	}
	close(queue)
	wg.Wait()
}
