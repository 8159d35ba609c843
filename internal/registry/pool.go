package registry

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultDelay is the minimum spacing between two requests of one worker
const DefaultDelay = 200 * time.Millisecond

// Result is the outcome of looking up one registration number
type Result struct {
	Number string
	Status string
	Err    error
}

// Pool resolves registration numbers with a bounded set of workers. Every
// worker opens its own session and paces its own requests.
type Pool struct {
	workers    int
	delay      time.Duration
	newSession func() Session
}

// NewPool creates a pool of workers sessions built by newSession
func NewPool(workers int, delay time.Duration, newSession func() Session) *Pool {
	return &Pool{
		workers:    max(workers, 1),
		delay:      delay,
		newSession: newSession,
	}
}

// Resolve looks up each distinct non-empty number once. Lookup failures are
// reported per result; the returned error is only set when ctx ends early.
func (p *Pool) Resolve(ctx context.Context, numbers []string) (map[string]Result, error) {
	pending := distinct(numbers)
	out := make(map[string]Result, len(pending))
	if len(pending) == 0 {
		return out, nil
	}

	jobs := make(chan string)
	results := make(chan Result, len(pending))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for _, n := range pending {
			select {
			case jobs <- n:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for range min(p.workers, len(pending)) {
		g.Go(func() error {
			return p.work(ctx, jobs, results)
		})
	}

	err := g.Wait()
	close(results)
	for r := range results {
		out[r.Number] = r
	}
	return out, err
}

func (p *Pool) work(ctx context.Context, jobs <-chan string, results chan<- Result) error {
	session := p.newSession()
	defer session.Close()

	limit := rate.Inf
	if p.delay > 0 {
		limit = rate.Every(p.delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	for n := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		status, err := session.Lookup(ctx, n)
		if err != nil {
			slog.Warn("Registration lookup failed", "number", n, "error", err)
		} else {
			slog.Info("Looked up registration status", "number", n, "status", status)
		}
		results <- Result{Number: n, Status: status, Err: err}
	}
	return nil
}

// distinct drops empty and repeated numbers, keeping first-seen order
func distinct(numbers []string) []string {
	seen := make(map[string]bool, len(numbers))
	var out []string
	for _, n := range numbers {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
