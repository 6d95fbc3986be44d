package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/store"
)

// SyncState represents the current state of the background refresh.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the refresh state shown in the status bar.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// RefreshResultMsg is a tea.Msg sent when a full load completes. Err is
// set instead of Snapshot when the load failed.
type RefreshResultMsg struct {
	Snapshot board.Snapshot
	Err      error
	Manual   bool
}

// fetchTimeout is the maximum time allowed for a single full load.
const fetchTimeout = 30 * time.Second

// Loader performs a full load.
type Loader interface {
	LoadAll(ctx context.Context) (board.Snapshot, error)
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithInterval sets the time between automatic loads. Zero or negative
// disables them; RefreshNow still works.
func WithInterval(d time.Duration) Option {
	return func(r *Refresher) {
		r.interval = d
	}
}

// WithCache saves every successful snapshot to c for offline use.
func WithCache(c store.Store, baseURL string) Option {
	return func(r *Refresher) {
		r.cache = c
		r.baseURL = baseURL
	}
}

// WithBusy skips automatic loads while busy returns true, for example
// while a board move awaits the backend.
func WithBusy(busy func() bool) Option {
	return func(r *Refresher) {
		r.busy = busy
	}
}

// Refresher runs full loads in the background and delivers the results
// to the Bubble Tea runtime.
type Refresher struct {
	loader    Loader
	cache     store.Store
	baseURL   string
	interval  time.Duration
	busy      func() bool
	status    SyncStatus
	resultCh  chan RefreshResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Refresher around loader.
func New(loader Loader, opts ...Option) *Refresher {
	r := &Refresher{
		loader:    loader,
		resultCh:  make(chan RefreshResultMsg, 4),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the refresh goroutine and returns a command that waits
// for the first result.
func (r *Refresher) Start() tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	go r.loop()

	return r.waitForResult()
}

// Stop halts the refresh goroutine.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	close(r.stopCh)
	r.running = false
}

// RefreshNow requests an immediate load. Requests made while one is
// already queued are merged.
func (r *Refresher) RefreshNow() {
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the current refresh status.
func (r *Refresher) Status() SyncStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Refresher) loop() {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.stopCh:
			return
		case <-tick:
			if r.busy != nil && r.busy() {
				log.Debug("skipping refresh while a move is in flight")
				continue
			}
			r.refresh(false)
		case <-r.triggerCh:
			r.refresh(true)
		}
	}
}

// refresh performs one full load, caches it and publishes the result.
func (r *Refresher) refresh(manual bool) {
	r.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	go func() {
		select {
		case <-r.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	snap, err := r.loader.LoadAll(ctx)
	if err != nil {
		r.setStatus(SyncError, err)
		r.sendResult(RefreshResultMsg{Err: err, Manual: manual})
		return
	}

	if r.cache != nil {
		if cacheErr := r.cache.SaveSnapshot(ctx, snap, r.baseURL); cacheErr != nil {
			log.WithError(cacheErr).Warn("caching snapshot")
		}
	}

	r.setStatus(SyncIdle, nil)
	r.sendResult(RefreshResultMsg{Snapshot: snap, Manual: manual})
}

func (r *Refresher) setStatus(state SyncState, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.State = state
	r.status.Error = err
	if state == SyncIdle && err == nil {
		r.status.LastSync = time.Now()
	}
}

// sendResult sends a result without blocking; if the UI is behind, the
// oldest queued result is discarded since a newer snapshot supersedes it.
func (r *Refresher) sendResult(msg RefreshResultMsg) {
	for {
		select {
		case r.resultCh <- msg:
			return
		default:
		}
		select {
		case <-r.resultCh:
		default:
		}
	}
}

// waitForResult returns a tea.Cmd that blocks until the next result.
func (r *Refresher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-r.resultCh:
			return result
		case <-r.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. Call it after handling each RefreshResultMsg.
func (r *Refresher) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}
