package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"music-nearby/internal/domain"
	"music-nearby/internal/platform/obs"
	"music-nearby/internal/ports"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCadence is the interval between proximity cycles.
// The mobile client this replaces documented "every minute" but polled every 2 seconds;
// the polled value is the one kept.
const DefaultCadence = 2000 * time.Millisecond

// TransitionHook is called, in registration order, at the end of every cycle that
// changed the verdict.
type TransitionHook func(ctx context.Context, t domain.Transition)

// ProximityEngine maintains the single active proximity verdict.
//
// Each cycle requests permission, reads one position, refetches the full location set
// and picks the first location within the radius. Verdict writes happen only at the end
// of a cycle; reads (Current, Snapshot, subscribers) may happen at any time.
//
// Cycles started by the ticker are serialized: a tick that fires while the previous
// cycle is still in flight is skipped.
type ProximityEngine struct {
	sampler      ports.LocationSampler
	provider     ports.LocationProvider
	radiusMeters float64
	now          func() time.Time

	mu          sync.RWMutex
	verdict     domain.Verdict
	updatedAt   time.Time
	hooks       []TransitionHook
	subscribers map[int]chan domain.Verdict
	nextSubID   int

	inFlight atomic.Bool

	loopMu sync.Mutex
	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewProximityEngine(
	sampler ports.LocationSampler,
	provider ports.LocationProvider,
	radiusMeters float64,
) (*ProximityEngine, error) {
	if sampler == nil {
		return nil, errors.New("new proximity engine: sampler must be non-nil")
	}
	if provider == nil {
		return nil, errors.New("new proximity engine: location provider must be non-nil")
	}
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("new proximity engine: radius must be positive, got %v", radiusMeters)
	}

	return &ProximityEngine{
		sampler:      sampler,
		provider:     provider,
		radiusMeters: radiusMeters,
		now:          time.Now,
		verdict:      domain.NotNear,
		subscribers:  make(map[int]chan domain.Verdict),
	}, nil
}

// OnTransition registers a hook for verdict changes. Register hooks before Start.
func (e *ProximityEngine) OnTransition(hook TransitionHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

// Current returns the active verdict.
func (e *ProximityEngine) Current() domain.Verdict {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.verdict
}

// Snapshot returns the active verdict and when it was last written.
// The time is zero until the first cycle produced a verdict.
func (e *ProximityEngine) Snapshot() (domain.Verdict, time.Time) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.verdict, e.updatedAt
}

// Subscribe returns a channel that receives the verdict whenever it changes.
// Only the latest unread verdict is kept. The channel is closed by the returned func
// or by Stop, whichever comes first.
func (e *ProximityEngine) Subscribe() (<-chan domain.Verdict, func()) {
	ch := make(chan domain.Verdict, 1)

	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = ch
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if _, ok := e.subscribers[id]; ok {
				delete(e.subscribers, id)
				close(ch)
			}
		})
	}
}

// EvaluateOnce runs a single proximity cycle and returns the verdict in effect afterwards.
//
// A permission denial (up front, or reported by the position read) collapses the verdict
// to NotNear and is not an error. A failed permission request, position read or location
// fetch skips the cycle: the previous verdict is kept and returned together with an error
// wrapping domain.ErrPositionUnavailable or domain.ErrLocationFetchFailed.
func (e *ProximityEngine) EvaluateOnce(ctx context.Context) (_ domain.Verdict, err error) {
	if obs.RequestID(ctx) == "" {
		ctx = obs.WithRequestID(ctx)
	}
	defer obs.Time(ctx, "proximity.EvaluateOnce")(&err)

	start := time.Now()
	defer func() { obs.CycleDuration.Observe(time.Since(start).Seconds()) }()

	perm, err := e.sampler.RequestPermission(ctx)
	if err != nil {
		obs.CyclesTotal.WithLabelValues(obs.OutcomePositionUnavailable).Inc()
		return e.Current(), fmt.Errorf("evaluate proximity: request permission: %w: %w", domain.ErrPositionUnavailable, err)
	}
	if perm == domain.PermissionDenied {
		return e.denied(ctx), nil
	}

	pos, err := e.sampler.CurrentPosition(ctx)
	if errors.Is(err, domain.ErrPermissionDenied) {
		return e.denied(ctx), nil
	}
	if err != nil {
		obs.CyclesTotal.WithLabelValues(obs.OutcomePositionUnavailable).Inc()
		if !errors.Is(err, domain.ErrPositionUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrPositionUnavailable, err)
		}
		return e.Current(), fmt.Errorf("evaluate proximity: read position: %w", err)
	}

	locations, err := e.provider.ListLocations(ctx)
	if err != nil {
		obs.CyclesTotal.WithLabelValues(obs.OutcomeFetchFailed).Inc()
		return e.Current(), fmt.Errorf("evaluate proximity: %w: %w", domain.ErrLocationFetchFailed, err)
	}

	verdict := domain.NotNear
	if loc, ok := FirstWithin(pos, locations, e.radiusMeters); ok {
		verdict = domain.Near(loc.ID)
		obs.CyclesTotal.WithLabelValues(obs.OutcomeNear).Inc()
	} else {
		obs.CyclesTotal.WithLabelValues(obs.OutcomeNotNear).Inc()
	}

	e.apply(ctx, verdict, &pos)
	return verdict, nil
}

func (e *ProximityEngine) denied(ctx context.Context) domain.Verdict {
	log.Printf("req_id=%s location permission not granted verdict=%s", obs.RequestID(ctx), domain.NotNear)
	obs.CyclesTotal.WithLabelValues(obs.OutcomePermissionDenied).Inc()
	e.apply(ctx, domain.NotNear, nil)
	return domain.NotNear
}

// apply writes the verdict of a finished cycle, notifies subscribers on change and then
// runs transition hooks outside the lock.
func (e *ProximityEngine) apply(ctx context.Context, v domain.Verdict, pos *domain.Coordinate) {
	now := e.now()

	e.mu.Lock()
	prev := e.verdict
	e.verdict = v
	e.updatedAt = now
	changed := prev != v
	var hooks []TransitionHook
	if changed {
		for _, ch := range e.subscribers {
			offer(ch, v)
		}
		hooks = append(hooks, e.hooks...)
	}
	e.mu.Unlock()

	if !changed {
		return
	}

	t := domain.Transition{From: prev, To: v, Position: pos, OccurredAt: now}
	event := "exit"
	if t.Entered() {
		event = "enter"
	}
	obs.Transitions.WithLabelValues(event).Inc()
	log.Printf("req_id=%s verdict transition from=%s to=%s", obs.RequestID(ctx), prev, v)

	for _, hook := range hooks {
		hook(ctx, t)
	}
}

// offer replaces any unread verdict in ch with v. Callers hold e.mu, so no other
// sender can race for the freed slot.
func offer(ch chan domain.Verdict, v domain.Verdict) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// Start evaluates immediately and then every cadence until Stop is called or ctx ends.
// onVerdict (optional) receives the verdict of every cycle that produced one; skipped
// cycles do not call it. A run that ended with its ctx may be started again without Stop.
func (e *ProximityEngine) Start(ctx context.Context, cadence time.Duration, onVerdict func(domain.Verdict)) error {
	if cadence <= 0 {
		return fmt.Errorf("start proximity engine: cadence must be positive, got %s", cadence)
	}

	e.loopMu.Lock()
	defer e.loopMu.Unlock()

	if e.cancel != nil {
		if e.runCtx.Err() == nil {
			return errors.New("start proximity engine: already running")
		}
		e.cancel()
		e.wg.Wait()
	}

	ctx, cancel := context.WithCancel(ctx)
	e.runCtx, e.cancel = ctx, cancel

	e.wg.Add(1)
	go e.loop(ctx, cadence, onVerdict)

	log.Printf("proximity engine started cadence=%dms radius=%vm", cadence.Milliseconds(), e.radiusMeters)
	return nil
}

// Stop prevents future ticks and waits for the loop and any in-flight cycle to return.
// The in-flight cycle's context is cancelled, so its I/O ends early. Subscriber channels
// are closed. Stop is a no-op when the engine is not running.
func (e *ProximityEngine) Stop() {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()

	if e.cancel == nil {
		return
	}
	e.cancel()
	e.runCtx, e.cancel = nil, nil
	e.wg.Wait()

	e.mu.Lock()
	for id, ch := range e.subscribers {
		delete(e.subscribers, id)
		close(ch)
	}
	e.mu.Unlock()

	log.Printf("proximity engine stopped verdict=%s", e.Current())
}

func (e *ProximityEngine) loop(ctx context.Context, cadence time.Duration, onVerdict func(domain.Verdict)) {
	defer e.wg.Done()

	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	e.tick(ctx, onVerdict)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx, onVerdict)
		}
	}
}

func (e *ProximityEngine) tick(ctx context.Context, onVerdict func(domain.Verdict)) {
	if !e.inFlight.CompareAndSwap(false, true) {
		obs.TicksSkipped.Inc()
		log.Printf("proximity tick skipped: previous cycle still running")
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.inFlight.Store(false)

		v, err := e.EvaluateOnce(ctx)
		if err != nil {
			log.Printf("proximity cycle skipped verdict=%s err=%v", v, err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		if onVerdict != nil {
			onVerdict(v)
		}
	}()
}
