// Package quoter keeps the route shown to the user fresh. It owns the
// current Route, drives the route client on input changes, manual refreshes
// and a fixed interval, and guarantees that the route it holds always
// corresponds to the most recently issued request.
package quoter

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"blink-swap/pkg/types"
)

// State of the controller. Transitions are driven by user input, fetch
// completion and the refresh ticker; there is no terminal state.
type State string

const (
	// StateIdle means no valid request has been issued yet.
	StateIdle State = "idle"
	// StateFetching means a route fetch is in flight.
	StateFetching State = "fetching"
	// StateReady means the controller holds the route for the latest request.
	StateReady State = "ready"
	// StateError means the latest fetch failed; retryable.
	StateError State = "error"
)

// Default policy values. The refresh interval matches the swap form's
// auto-refresh cadence; the debounce coalesces keystroke-driven edits.
const (
	DefaultRefreshInterval = 30 * time.Second
	DefaultDebounce        = 250 * time.Millisecond
)

// ErrClosed is returned when the controller is used after Close.
var ErrClosed = errors.New("quote controller is closed")

// RouteFetcher obtains a route for a request. Implemented by jupiter.Client.
type RouteFetcher interface {
	FetchRoute(ctx context.Context, req types.QuoteRequest) (*types.Route, error)
}

// Snapshot is a point-in-time view of the controller for display.
type Snapshot struct {
	State   State
	Route   *types.Route
	Stale   bool
	Err     error
	Request types.QuoteRequest
}

// Controller implements the quote freshness state machine for one swap form
// session. Exactly one fetch is logically current at a time: results of
// superseded requests are discarded regardless of arrival order.
type Controller struct {
	fetcher         RouteFetcher
	logger          *zap.Logger
	refreshInterval time.Duration
	debounce        time.Duration

	mu         sync.Mutex
	state      State
	route      *types.Route
	stale      bool
	lastErr    error
	current    types.QuoteRequest
	generation uint64
	cancel     context.CancelFunc
	pending    *time.Timer
	closed     bool

	done chan struct{}
	wg   sync.WaitGroup
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithRefreshInterval sets the auto-refresh period applied while Ready.
func WithRefreshInterval(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.refreshInterval = d
	}
}

// WithDebounce sets the coalescing window for Submit. Zero issues immediately.
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.debounce = d
	}
}

// NewController creates a controller and starts its refresh ticker. Close
// must be called when the swap session ends.
func NewController(fetcher RouteFetcher, logger *zap.Logger, opts ...ControllerOption) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		fetcher:         fetcher,
		logger:          logger,
		refreshInterval: DefaultRefreshInterval,
		debounce:        DefaultDebounce,
		state:           StateIdle,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.wg.Add(1)
	go c.refreshLoop()
	return c
}

// Submit hands the controller a new request, typically on every form edit.
// An invalid request (zero amount, identical assets, missing selection)
// returns the machine to Idle and cancels interest in any in-flight fetch.
// Valid requests are debounced before being issued.
func (c *Controller) Submit(req types.QuoteRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}

	if err := req.Validate(); err != nil {
		// input became invalid: drop any in-flight result and go Idle.
		// The generation bump orphans whatever is still in flight.
		c.supersedeLocked()
		c.generation++
		c.state = StateIdle
		c.route = nil
		c.stale = false
		c.lastErr = nil
		return
	}

	if c.debounce <= 0 {
		c.issueLocked(req)
		return
	}

	c.pending = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		c.pending = nil
		c.issueLocked(req)
	})
}

// Refresh forces an immediate re-fetch of the current request. It is the
// manual retry path out of Error and the manual refresh path out of Ready.
// In Idle there is nothing to refresh.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateIdle {
		return
	}
	c.issueLocked(c.current)
}

// Snapshot returns the current state for display. While a refresh is in
// flight the previous route remains available, marked stale.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:   c.state,
		Route:   c.route,
		Stale:   c.stale,
		Err:     c.lastErr,
		Request: c.current,
	}
}

// Close tears the controller down: cancels any in-flight fetch, stops the
// ticker and the pending debounce. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.supersedeLocked()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	close(c.done)
	c.mu.Unlock()

	c.wg.Wait()
}

// issueLocked makes req the latest issued request and starts its fetch.
// Callers must hold c.mu.
func (c *Controller) issueLocked(req types.QuoteRequest) {
	c.supersedeLocked()

	c.generation++
	gen := c.generation
	c.current = req
	c.state = StateFetching
	if c.route != nil {
		c.stale = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go c.fetch(ctx, gen, req)
}

// supersedeLocked cancels interest in the in-flight fetch, if any. The
// network call may keep running; its result is discarded by the generation
// check. Callers must hold c.mu.
func (c *Controller) supersedeLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) fetch(ctx context.Context, gen uint64, req types.QuoteRequest) {
	defer c.wg.Done()

	route, err := c.fetcher.FetchRoute(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.closed {
		// a newer request was issued while this one was in flight;
		// last request issued wins, whatever resolves last
		c.logger.Debug("discarding superseded route result",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", c.generation))
		return
	}

	if err != nil {
		c.logger.Warn("route fetch failed", zap.Error(err))
		c.state = StateError
		c.lastErr = err
		return
	}

	c.state = StateReady
	c.route = route
	c.stale = false
	c.lastErr = nil
	c.logger.Debug("route ready",
		zap.Uint64("in_amount", route.InAmount),
		zap.Uint64("out_amount", route.OutAmount),
		zap.Int("price_impact_bps", route.PriceImpactBps))
}

// refreshLoop re-issues the current request on a fixed interval. A tick that
// arrives while the controller is not Ready is a no-op.
func (c *Controller) refreshLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if !c.closed && c.state == StateReady {
				c.logger.Debug("refresh interval elapsed, re-quoting")
				c.issueLocked(c.current)
			}
			c.mu.Unlock()
		}
	}
}
