// Package scanner owns the scan poll loop and the authoritative snapshot of
// visible networks.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
	"github.com/lcalzada-xor/wbands/internal/core/services/history"
	"github.com/lcalzada-xor/wbands/internal/telemetry"
)

// Default cadences.
const (
	DefaultTickInterval = 1 * time.Second
	DefaultScanInterval = 3 * time.Second
	DefaultStaleWindow  = 5 * time.Minute
)

// Config tunes the poll loop.
type Config struct {
	TickInterval time.Duration // UI-facing poll cadence
	ScanInterval time.Duration // Minimum time between hardware scans
	StaleWindow  time.Duration // How long an absent identity keeps its first-seen time
	HistoryCap   int           // Points kept per network
}

// DefaultConfig returns the 1s tick / 3s scan / 5min stale defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval: DefaultTickInterval,
		ScanInterval: DefaultScanInterval,
		StaleWindow:  DefaultStaleWindow,
		HistoryCap:   domain.MaxHistoryPoints,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.ScanInterval <= 0 {
		c.ScanInterval = d.ScanInterval
	}
	if c.StaleWindow <= 0 {
		c.StaleWindow = d.StaleWindow
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = d.HistoryCap
	}
	return c
}

// snapshot is an immutable published view. It is replaced, never mutated.
type snapshot struct {
	networks []domain.Network // strongest first
	index    map[string]int
}

var emptySnapshot = &snapshot{index: map[string]int{}}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator polls a ScanSource and maintains the network snapshot and
// signal history. Exactly one goroutine writes; readers see atomically
// published snapshots.
type Orchestrator struct {
	source ports.ScanSource
	cfg    Config
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time

	snap    atomic.Pointer[snapshot]
	state   atomic.Pointer[domain.ScanState]
	stateMu sync.Mutex
	history *history.Store
	seen    *firstSeenTracker
	subject *updateSubject

	// Lifecycle transitions are serialized by mu. generation changes on every
	// Start/Stop so a scan in flight across a Stop can tell its result is stale.
	mu         sync.Mutex
	running    atomic.Bool
	cancel     context.CancelFunc
	done       chan struct{}
	generation atomic.Uint64

	// Writer-only state.
	lastScanAttempt time.Time

	resetHooks []func()
}

// NewOrchestrator creates a stopped orchestrator.
func NewOrchestrator(source ports.ScanSource, cfg Config, opts ...Option) *Orchestrator {
	cfg = cfg.withDefaults()
	o := &Orchestrator{
		source:  source,
		cfg:     cfg,
		logger:  slog.Default(),
		tracer:  otel.Tracer("scan-orchestrator"),
		now:     time.Now,
		history: history.NewStore(cfg.HistoryCap),
		seen:    newFirstSeenTracker(cfg.StaleWindow),
		subject: newUpdateSubject(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.snap.Store(emptySnapshot)
	o.state.Store(&domain.ScanState{})
	return o
}

// Start begins polling. Calling it while running is a no-op. It fails only when
// the scanning hardware is unavailable.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running.Load() {
		o.updateState(func(s *domain.ScanState) { s.Scanning = true })
		return nil
	}

	if !o.source.InterfaceAvailable(ctx) {
		o.updateState(func(s *domain.ScanState) {
			s.Scanning = false
			s.LastError = domain.ErrNoInterface.Error()
		})
		o.publishState()
		return domain.ErrNoInterface
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.running.Store(true)
	o.cancel = cancel
	o.done = make(chan struct{})
	gen := o.generation.Add(1)
	o.lastScanAttempt = time.Time{}

	o.updateState(func(s *domain.ScanState) {
		s.Scanning = true
		s.LastError = ""
	})
	o.publishState()

	o.logger.Info("scan orchestrator started",
		"tick", o.cfg.TickInterval, "scan_interval", o.cfg.ScanInterval)

	go o.run(loopCtx, gen, o.done)
	return nil
}

// Stop halts polling and waits for the loop to exit. A scan in flight is left
// to finish in the source and its result is discarded. Safe to call when stopped.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running.Load() {
		return
	}
	o.generation.Add(1)
	o.cancel()
	o.running.Store(false)
	// The loop never takes mu, so waiting here cannot deadlock.
	<-o.done

	o.updateState(func(s *domain.ScanState) {
		s.Scanning = false
		s.InitialScanComplete = false
	})
	o.publishState()
	o.logger.Info("scan orchestrator stopped")
}

// Running reports whether the poll loop is active.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.cfg.TickInterval)
	defer ticker.Stop()

	o.safePoll(ctx, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.safePoll(ctx, gen)
		}
	}
}

// safePoll runs one tick and turns a panic into a failed scan so the loop
// keeps going.
func (o *Orchestrator) safePoll(ctx context.Context, gen uint64) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		o.logger.Error("recovered from panic in scan loop", "panic", r)
		telemetry.ScansTotal.WithLabelValues("error").Inc()
		if o.stale(ctx, gen) {
			return
		}
		err := domain.NewScanFailedError(fmt.Sprintf("panic: %v", r), nil)
		o.updateState(func(s *domain.ScanState) { s.LastError = describeError(err) })
		o.publishState()
	}()
	o.poll(ctx, gen)
}

// poll runs once per tick. The hardware scan runs at most once per ScanInterval;
// other ticks return immediately.
func (o *Orchestrator) poll(ctx context.Context, gen uint64) {
	now := o.now()
	if !o.lastScanAttempt.IsZero() && now.Sub(o.lastScanAttempt) < o.cfg.ScanInterval {
		telemetry.ScansTotal.WithLabelValues("skipped").Inc()
		return
	}
	o.lastScanAttempt = now

	scanCtx, span := o.tracer.Start(ctx, "scan")
	defer span.End()
	start := time.Now()
	observations, err := o.source.Scan(scanCtx)
	telemetry.ScanDuration.Observe(time.Since(start).Seconds())

	if o.stale(ctx, gen) {
		span.SetAttributes(attribute.Bool("discarded", true))
		telemetry.ScansTotal.WithLabelValues("discarded").Inc()
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		telemetry.ScansTotal.WithLabelValues("error").Inc()
		o.logger.Warn("scan failed", "error", err)
		o.updateState(func(s *domain.ScanState) { s.LastError = describeError(err) })
		o.publishState()
		return
	}

	if len(observations) == 0 {
		// Rate-limited by the source or nothing heard: keep the previous view
		// and ask again on the next tick.
		o.lastScanAttempt = time.Time{}
		span.SetAttributes(attribute.Int("observations", 0))
		telemetry.ScansTotal.WithLabelValues("empty").Inc()
		return
	}

	networks := o.apply(observations, o.now())
	span.SetAttributes(
		attribute.Int("observations", len(observations)),
		attribute.Int("networks", len(networks)),
	)
	telemetry.ScansTotal.WithLabelValues("success").Inc()
}

// stale reports whether the loop was stopped or restarted since gen.
func (o *Orchestrator) stale(ctx context.Context, gen uint64) bool {
	return ctx.Err() != nil || o.generation.Load() != gen
}

// apply merges a non-empty scan into a new snapshot, publishes it and updates
// history and first-seen bookkeeping. Called only from the poll goroutine.
func (o *Orchestrator) apply(observations []domain.Observation, now time.Time) []domain.Network {
	merged := mergeStrongest(observations)

	networks := make([]domain.Network, 0, len(merged))
	active := make(map[string]struct{}, len(merged))
	for _, m := range merged {
		firstSeen := o.seen.observe(m.key, now)
		networks = append(networks, domain.NewNetwork(m.key, m.obs, firstSeen, now))
		active[m.key] = struct{}{}
	}
	domain.SortBySignal(networks)

	index := make(map[string]int, len(networks))
	for i, n := range networks {
		index[n.Key] = i
	}
	o.snap.Store(&snapshot{networks: networks, index: index})

	for _, n := range networks {
		o.history.Record(n.Key, n.RSSI, now)
	}
	if removed := o.history.Retain(active); removed > 0 {
		o.logger.Debug("dropped history for vanished networks", "count", removed)
	}
	o.seen.prune()

	o.updateState(func(s *domain.ScanState) {
		s.InitialScanComplete = true
		s.LastError = ""
		s.LastScan = now
		s.NetworkCount = len(networks)
	})
	o.recordGauges(networks)
	o.publish(networks)

	return networks
}

func (o *Orchestrator) recordGauges(networks []domain.Network) {
	perBand := make(map[domain.Band]int, len(domain.Bands))
	for _, n := range networks {
		perBand[n.Band]++
	}
	for _, b := range domain.Bands {
		telemetry.NetworksVisible.WithLabelValues(string(b)).Set(float64(perBand[b]))
	}
	telemetry.HistorySeries.Set(float64(o.history.Len()))
}

// updateState applies fn to a copy of the state and publishes the copy.
func (o *Orchestrator) updateState(fn func(*domain.ScanState)) {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	next := *o.state.Load()
	fn(&next)
	o.state.Store(&next)
}

func (o *Orchestrator) publishState() {
	o.subject.notify(domain.SnapshotUpdate{
		Networks: o.Networks(),
		State:    o.State(),
	})
}

func (o *Orchestrator) publish(networks []domain.Network) {
	out := make([]domain.Network, len(networks))
	copy(out, networks)
	o.subject.notify(domain.SnapshotUpdate{Networks: out, State: o.State()})
}

// describeError renders a scan error for display.
func describeError(err error) string {
	var failed *domain.ScanFailedError
	switch {
	case errors.Is(err, domain.ErrNoInterface):
		return domain.ErrNoInterface.Error()
	case errors.Is(err, domain.ErrPermissionDenied):
		return domain.ErrPermissionDenied.Error()
	case errors.As(err, &failed):
		return failed.Error()
	}
	return err.Error()
}

// Networks returns the current snapshot, strongest first.
func (o *Orchestrator) Networks() []domain.Network {
	s := o.snap.Load()
	out := make([]domain.Network, len(s.networks))
	copy(out, s.networks)
	return out
}

// NetworksByBand returns the visible networks on one band, strongest first.
func (o *Orchestrator) NetworksByBand(band domain.Band) []domain.Network {
	return domain.FilterByBand(o.snap.Load().networks, band)
}

// Network looks up one visible network by identity key.
func (o *Orchestrator) Network(key string) (domain.Network, bool) {
	s := o.snap.Load()
	i, ok := s.index[key]
	if !ok {
		return domain.Network{}, false
	}
	return s.networks[i], true
}

// History returns the signal history of a network; empty when untracked.
func (o *Orchestrator) History(key string) []domain.HistoryPoint {
	return o.history.Points(key)
}

// CurrentConnection asks the source for the associated network. It does not
// go through the poll loop and does not touch the snapshot.
func (o *Orchestrator) CurrentConnection(ctx context.Context) (*domain.Network, error) {
	obs, err := o.source.CurrentConnection(ctx)
	if err != nil {
		return nil, err
	}
	if obs == nil {
		return nil, nil
	}
	key := obs.Key()
	now := o.now()
	firstSeen, ok := o.seen.lookup(key)
	if !ok {
		firstSeen = now
	}
	n := domain.NewNetwork(key, *obs, firstSeen, now)
	return &n, nil
}

// State returns the current scan status.
func (o *Orchestrator) State() domain.ScanState {
	return *o.state.Load()
}

// Subscribe returns a channel of snapshot updates and a function to cancel it.
func (o *Orchestrator) Subscribe() (<-chan domain.SnapshotUpdate, func()) {
	return o.subject.subscribe()
}

// Reset clears the snapshot, history and bookkeeping. The loop must be stopped.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running.Load() {
		return domain.ErrScanRunning
	}
	o.snap.Store(emptySnapshot)
	o.history.Clear()
	o.seen.reset()
	o.updateState(func(s *domain.ScanState) {
		s.LastError = ""
		s.LastScan = time.Time{}
		s.NetworkCount = 0
	})
	for _, fn := range o.resetHooks {
		fn()
	}
	return nil
}

// OnReset registers fn to run after every successful Reset, so views derived
// from the snapshot can drop their cached state.
func (o *Orchestrator) OnReset(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetHooks = append(o.resetHooks, fn)
}
