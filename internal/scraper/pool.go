package scraper

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chromedp/chromedp"
)

// PoolOptions configures a browser pool.
type PoolOptions struct {
	// Workers is the number of browser processes to run.
	Workers int
	// TabsPerWorker caps the concurrent tabs admitted per browser process.
	TabsPerWorker int
	// ChromePath optionally pins the Chrome executable.
	ChromePath string
}

// Pool distributes scrapes over a fixed set of browser processes. Each
// worker owns one Chrome exec allocator and a counted set of tab slots;
// acquiring a slot blocks until a tab frees up or the caller's context ends.
// Chrome itself is only started lazily, on the first tab opened against a
// worker's allocator.
type Pool struct {
	workers []*browserWorker
	next    atomic.Uint32
	closed  atomic.Bool

	closeOnce sync.Once
}

type browserWorker struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	slots    chan struct{}
}

// NewPool creates a pool of browser workers. Worker and slot counts below
// one are raised to one.
func NewPool(opts PoolOptions) *Pool {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.TabsPerWorker < 1 {
		opts.TabsPerWorker = 1
	}

	allocOpts := allocatorOptions(opts.ChromePath)
	workers := make([]*browserWorker, 0, opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
		workers = append(workers, &browserWorker{
			allocCtx: allocCtx,
			cancel:   cancel,
			slots:    make(chan struct{}, opts.TabsPerWorker),
		})
	}

	return &Pool{workers: workers}
}

// Acquire reserves a tab slot and returns the owning worker's allocator
// context, from which the caller derives a tab. The release function must be
// called once the tab is done.
func (p *Pool) Acquire(ctx context.Context) (context.Context, func(), error) {
	if p.closed.Load() {
		return nil, nil, ErrPoolClosed
	}

	// Fast path: take the first free slot, starting from the next worker in
	// round-robin order.
	start := int(p.next.Add(1))
	for i := 0; i < len(p.workers); i++ {
		w := p.workers[(start+i)%len(p.workers)]
		select {
		case w.slots <- struct{}{}:
			return w.allocCtx, func() { <-w.slots }, nil
		default:
		}
	}

	// All slots busy: wait for whichever worker frees a tab first. One
	// goroutine per worker races to claim a slot; losers hand theirs back
	// when done closes.
	winner := make(chan *browserWorker)
	done := make(chan struct{})
	defer close(done)

	for _, w := range p.workers {
		go func(w *browserWorker) {
			select {
			case w.slots <- struct{}{}:
				select {
				case winner <- w:
				case <-done:
					<-w.slots
				}
			case <-done:
			}
		}(w)
	}

	select {
	case w := <-winner:
		if p.closed.Load() {
			<-w.slots
			return nil, nil, ErrPoolClosed
		}
		return w.allocCtx, func() { <-w.slots }, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// Size reports the total number of tab slots across all workers.
func (p *Pool) Size() int {
	total := 0
	for _, w := range p.workers {
		total += cap(w.slots)
	}
	return total
}

// Close shuts down every browser process. In-flight tabs are cancelled.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		for _, w := range p.workers {
			w.cancel()
		}
	})
}
