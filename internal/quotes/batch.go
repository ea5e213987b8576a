package quotes

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "folio_tracker/internal/errors"
)

// Request is one named GET of a batch.
type Request struct {
	Name string
	Kind Kind
	URL  string
}

// Batch runs a set of requests concurrently as one unit: the first failure
// cancels the rest and nothing fetched is returned. A Batch runs one set at
// a time and can be stopped from another goroutine.
type Batch struct {
	client *Client
	limit  int

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewBatch creates a Batch issuing at most limit requests at once.
// limit <= 0 means no limit.
func NewBatch(c *Client, limit int) *Batch {
	return &Batch{client: c, limit: limit}
}

// Run fetches every request and returns bodies keyed by request name.
func (b *Batch) Run(ctx context.Context, reqs []Request) (map[string][]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.mu.Lock()
	if b.cancel != nil {
		b.mu.Unlock()
		return nil, apperrors.Conflict("a fetch is already running")
	}
	b.cancel = cancel
	b.stopped = false
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.cancel = nil
		b.mu.Unlock()
	}()

	var mu sync.Mutex
	out := make(map[string][]byte, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}
	for _, r := range reqs {
		g.Go(func() error {
			body, err := b.client.Get(gctx, r.Kind, r.URL)
			if err != nil {
				return err
			}
			mu.Lock()
			out[r.Name] = body
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	b.mu.Lock()
	stopped := b.stopped
	b.mu.Unlock()

	if stopped {
		return nil, apperrors.New(apperrors.ErrCanceled, "fetch stopped")
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stop cancels the running set, if any. It reports whether one was running.
func (b *Batch) Stop() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel == nil {
		return false
	}
	b.stopped = true
	b.cancel()
	return true
}

// Running reports whether a set is in flight.
func (b *Batch) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel != nil
}
