package images

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/wudi/docforge/model"
	"github.com/wudi/docforge/observability"
)

// DefaultConcurrency is the number of keywords fetched in parallel.
const DefaultConcurrency = 4

// BatchResolver fetches keywords in parallel with a concurrency cap and an
// optional rate limit. Per-keyword failures are logged and leave the keyword
// unresolved; only context cancellation fails the batch.
type BatchResolver struct {
	fetcher     Fetcher
	concurrency int
	limiter     *rate.Limiter
	logger      observability.Logger
}

// BatchOption configures a BatchResolver.
type BatchOption func(*BatchResolver)

// WithConcurrency caps parallel fetches. Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchResolver) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithRate limits fetches to perSecond with a burst of one per worker. Zero
// or negative rates leave fetches unlimited.
func WithRate(perSecond float64) BatchOption {
	return func(b *BatchResolver) {
		if perSecond > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger used for skipped keywords.
func WithLogger(l observability.Logger) BatchOption {
	return func(b *BatchResolver) { b.logger = observability.OrNop(l) }
}

// NewBatchResolver wraps f.
func NewBatchResolver(f Fetcher, opts ...BatchOption) *BatchResolver {
	b := &BatchResolver{
		fetcher:     f,
		concurrency: DefaultConcurrency,
		logger:      observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.limiter != nil {
		b.limiter.SetBurst(b.concurrency)
	}
	return b
}

// Resolve implements Resolver. Duplicate and empty keywords are fetched
// once or not at all.
func (b *BatchResolver) Resolve(ctx context.Context, keywords []string) (model.Images, error) {
	keywords = dedupe(keywords)
	out := make(model.Images, len(keywords))
	if len(keywords) == 0 {
		return out, nil
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, b.concurrency)
	)
	for _, kw := range keywords {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		}
		wg.Add(1)
		go func(kw string) {
			defer wg.Done()
			defer func() { <-sem }()

			if b.limiter != nil {
				if err := b.limiter.Wait(ctx); err != nil {
					return
				}
			}
			a, err := b.fetcher.Fetch(ctx, kw)
			switch {
			case errors.Is(err, ErrNotFound):
				b.logger.Debug("image not found", observability.String("keyword", kw))
				return
			case err != nil:
				b.logger.Warn("image fetch failed", observability.String("keyword", kw), observability.Error("err", err))
				return
			case !a.Valid():
				b.logger.Warn("image skipped", observability.String("keyword", kw), observability.String("reason", "empty or unsized"))
				return
			}
			mu.Lock()
			out[kw] = a
			mu.Unlock()
		}(kw)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.logger.Debug("images resolved", observability.Int("requested", len(keywords)), observability.Int("resolved", len(out)))
	return out, nil
}

func dedupe(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
