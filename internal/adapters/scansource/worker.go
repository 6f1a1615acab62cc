// Package scansource adapts wireless backends to the ScanSource port.
package scansource

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
)

// DefaultMinScanInterval is the shortest gap between two physical scans.
const DefaultMinScanInterval = 3 * time.Second

// ErrWorkerClosed is returned for requests made after Close.
var ErrWorkerClosed = errors.New("scan worker closed")

// Backend talks to the wireless hardware. Calls are never concurrent: the
// Worker serializes them on its own goroutine.
type Backend interface {
	Scan(ctx context.Context) ([]domain.Observation, error)
	Connection(ctx context.Context) (*domain.Observation, error)
	Available(ctx context.Context) bool
}

type requestKind int

const (
	requestScan requestKind = iota
	requestConnection
	requestAvailable
)

type request struct {
	kind  requestKind
	ctx   context.Context
	reply chan response
}

type response struct {
	observations []domain.Observation
	connection   *domain.Observation
	available    bool
	err          error
}

// Worker owns a Backend on a dedicated goroutine and enforces the minimum
// interval between physical scans. A scan requested too early gets an empty
// result and a nil error.
type Worker struct {
	backend     Backend
	minInterval time.Duration
	now         func() time.Time

	inbox chan request
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once

	// Owned by the worker goroutine.
	lastScan time.Time
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithMinInterval overrides DefaultMinScanInterval.
func WithMinInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.minInterval = d
		}
	}
}

// WithWorkerClock replaces time.Now, for tests.
func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *Worker) { w.now = now }
}

// NewWorker starts a worker goroutine for backend. Call Close to release it.
func NewWorker(backend Backend, opts ...WorkerOption) *Worker {
	w := &Worker{
		backend:     backend,
		minInterval: DefaultMinScanInterval,
		now:         time.Now,
		inbox:       make(chan request),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.loop()
	return w
}

// Close stops the worker goroutine and waits for it. A backend call in
// progress runs to completion first.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.quit) })
	<-w.done
}

// Scan requests a physical scan.
func (w *Worker) Scan(ctx context.Context) ([]domain.Observation, error) {
	resp, err := w.do(ctx, requestScan)
	if err != nil {
		return nil, err
	}
	return resp.observations, resp.err
}

// CurrentConnection returns the associated network, or nil.
func (w *Worker) CurrentConnection(ctx context.Context) (*domain.Observation, error) {
	resp, err := w.do(ctx, requestConnection)
	if err != nil {
		return nil, err
	}
	return resp.connection, resp.err
}

// InterfaceAvailable reports whether the backend has usable hardware.
func (w *Worker) InterfaceAvailable(ctx context.Context) bool {
	resp, err := w.do(ctx, requestAvailable)
	return err == nil && resp.available
}

func (w *Worker) do(ctx context.Context, kind requestKind) (response, error) {
	// Buffered so the worker never blocks on a caller that gave up.
	req := request{kind: kind, ctx: ctx, reply: make(chan response, 1)}

	select {
	case w.inbox <- req:
	case <-ctx.Done():
		return response{}, ctx.Err()
	case <-w.quit:
		return response{}, ErrWorkerClosed
	}

	select {
	case resp := <-req.reply:
		return resp, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case req := <-w.inbox:
			req.reply <- w.handle(req)
		}
	}
}

func (w *Worker) handle(req request) (resp response) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SCAN] Recovered from backend panic: %v", r)
			resp = response{err: domain.NewScanFailedError(fmt.Sprintf("backend panic: %v", r), nil)}
		}
	}()

	switch req.kind {
	case requestScan:
		now := w.now()
		if !w.lastScan.IsZero() && now.Sub(w.lastScan) < w.minInterval {
			return response{observations: []domain.Observation{}}
		}
		// Stamped at start so a slow scan does not shorten the next gap.
		w.lastScan = now
		obs, err := w.backend.Scan(req.ctx)
		return response{observations: obs, err: err}
	case requestConnection:
		conn, err := w.backend.Connection(req.ctx)
		return response{connection: conn, err: err}
	case requestAvailable:
		return response{available: w.backend.Available(req.ctx)}
	}
	return response{err: fmt.Errorf("unknown request kind %d", req.kind)}
}
