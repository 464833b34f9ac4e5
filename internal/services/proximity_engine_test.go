package services

import (
	"context"
	"errors"
	"music-nearby/internal/adapters/geolocation"
	"music-nearby/internal/adapters/remote"
	"music-nearby/internal/domain"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	origin = domain.Coordinate{Latitude: 0, Longitude: 0}
	far    = domain.Coordinate{Latitude: 1, Longitude: 1}
)

func newEngine(t *testing.T, sampler *geolocation.MockSampler, provider *remote.MockLocationProvider) *ProximityEngine {
	t.Helper()
	e, err := NewProximityEngine(sampler, provider, DefaultRadiusMeters)
	require.NoError(t, err)
	return e
}

func TestNewProximityEngineValidation(t *testing.T) {
	sampler := geolocation.NewMockSampler()
	provider := remote.NewMockLocationProvider()

	_, err := NewProximityEngine(nil, provider, 100)
	assert.Error(t, err)
	_, err = NewProximityEngine(sampler, nil, 100)
	assert.Error(t, err)
	_, err = NewProximityEngine(sampler, provider, 0)
	assert.Error(t, err)
}

func TestDefaultCadenceIsTwoSeconds(t *testing.T) {
	// The replaced client commented "checking every minute" but polled every 2000 ms.
	assert.Equal(t, 2*time.Second, DefaultCadence)
}

func TestEvaluateOnceInitialStateIsNotNear(t *testing.T) {
	e := newEngine(t, geolocation.NewMockSampler(), remote.NewMockLocationProvider())
	assert.Equal(t, domain.NotNear, e.Current())
}

func TestEvaluateOnceVerdicts(t *testing.T) {
	tests := []struct {
		name      string
		user      domain.Coordinate
		locations []domain.Location
		want      domain.Verdict
	}{
		{
			name: "none within radius",
			user: origin,
			locations: []domain.Location{
				{ID: 1, Coordinate: far},
				{ID: 2, Coordinate: domain.Coordinate{Latitude: 0.002, Longitude: 0}},
			},
			want: domain.NotNear,
		},
		{
			name:      "empty location set",
			user:      origin,
			locations: nil,
			want:      domain.NotNear,
		},
		{
			name: "exactly one within radius",
			user: origin,
			locations: []domain.Location{
				{ID: 1, Coordinate: far},
				{ID: 2, Coordinate: domain.Coordinate{Latitude: 0.0005, Longitude: 0}},
			},
			want: domain.Near(2),
		},
		{
			name: "first in provider order wins even when a later one is closer",
			user: origin,
			locations: []domain.Location{
				{ID: 1, Coordinate: domain.Coordinate{Latitude: 0, Longitude: 0.0005}},
				{ID: 2, Coordinate: domain.Coordinate{Latitude: 0, Longitude: 0}},
			},
			want: domain.Near(1),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t,
				geolocation.NewMockSampler(geolocation.Granted(tc.user)),
				remote.NewMockLocationProvider(tc.locations...),
			)

			got, err := e.EvaluateOnce(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, e.Current())
		})
	}
}

func TestEvaluateOncePermissionDeniedResetsNear(t *testing.T) {
	sampler := geolocation.NewMockSampler(
		geolocation.Granted(origin),
		geolocation.MockStep{Permission: domain.PermissionDenied},
	)
	provider := remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin})
	e := newEngine(t, sampler, provider)

	v, err := e.EvaluateOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.Near(7), v)

	v, err = e.EvaluateOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NotNear, v)
	assert.Equal(t, 1, provider.Calls(), "denied cycle must not fetch locations")
}

func TestEvaluateOncePermissionRevokedDuringRead(t *testing.T) {
	sampler := geolocation.NewMockSampler(
		geolocation.Granted(origin),
		geolocation.MockStep{Permission: domain.PermissionGranted, PositionErr: domain.ErrPermissionDenied},
	)
	e := newEngine(t, sampler, remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin}))

	_, err := e.EvaluateOnce(context.Background())
	require.NoError(t, err)

	v, err := e.EvaluateOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NotNear, v)
}

func TestEvaluateOncePositionFailureKeepsVerdict(t *testing.T) {
	sampler := geolocation.NewMockSampler(
		geolocation.Granted(origin),
		geolocation.MockStep{Permission: domain.PermissionGranted, PositionErr: errors.New("no fix")},
	)
	provider := remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin})
	e := newEngine(t, sampler, provider)

	_, err := e.EvaluateOnce(context.Background())
	require.NoError(t, err)

	v, err := e.EvaluateOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
	assert.Equal(t, domain.Near(7), v)
	assert.Equal(t, domain.Near(7), e.Current())
	assert.Equal(t, 1, provider.Calls(), "skipped cycle must not fetch locations")
}

func TestEvaluateOncePermissionRequestFailureKeepsVerdict(t *testing.T) {
	sampler := geolocation.NewMockSampler(
		geolocation.Granted(origin),
		geolocation.MockStep{PermissionErr: errors.New("prompt rejected")},
	)
	e := newEngine(t, sampler, remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin}))

	_, err := e.EvaluateOnce(context.Background())
	require.NoError(t, err)

	v, err := e.EvaluateOnce(context.Background())
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
	assert.Equal(t, domain.Near(7), v)
}

func TestEvaluateOnceFetchFailureKeepsVerdict(t *testing.T) {
	sampler := geolocation.NewMockSampler(geolocation.Granted(origin))
	provider := remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin})
	e := newEngine(t, sampler, provider)

	_, err := e.EvaluateOnce(context.Background())
	require.NoError(t, err)

	provider.Set(nil, errors.New("connection refused"))

	v, err := e.EvaluateOnce(context.Background())
	assert.ErrorIs(t, err, domain.ErrLocationFetchFailed)
	assert.Equal(t, domain.Near(7), v)
	assert.Equal(t, domain.Near(7), e.Current())
}

func TestEvaluateOnceNoHysteresis(t *testing.T) {
	sampler := geolocation.NewMockSampler(
		geolocation.Granted(origin),
		geolocation.Granted(far),
		geolocation.Granted(origin),
	)
	e := newEngine(t, sampler, remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin}))

	var got []domain.Verdict
	for i := 0; i < 3; i++ {
		v, err := e.EvaluateOnce(context.Background())
		require.NoError(t, err)
		got = append(got, v)
	}

	assert.Equal(t, []domain.Verdict{domain.Near(7), domain.NotNear, domain.Near(7)}, got)
}

func TestTransitionHooksFireOnlyOnChange(t *testing.T) {
	sampler := geolocation.NewMockSampler(
		geolocation.Granted(origin),
		geolocation.Granted(origin),
		geolocation.MockStep{Permission: domain.PermissionDenied},
	)
	e := newEngine(t, sampler, remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin}))

	fixed := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	var transitions []domain.Transition
	e.OnTransition(func(ctx context.Context, tr domain.Transition) {
		transitions = append(transitions, tr)
	})

	for i := 0; i < 3; i++ {
		_, err := e.EvaluateOnce(context.Background())
		require.NoError(t, err)
	}

	require.Len(t, transitions, 2)

	assert.Equal(t, domain.NotNear, transitions[0].From)
	assert.Equal(t, domain.Near(7), transitions[0].To)
	assert.True(t, transitions[0].Entered())
	require.NotNil(t, transitions[0].Position)
	assert.Equal(t, origin, *transitions[0].Position)
	assert.Equal(t, fixed, transitions[0].OccurredAt)

	assert.Equal(t, domain.NotNear, transitions[1].To)
	assert.False(t, transitions[1].Entered())
	assert.Nil(t, transitions[1].Position, "permission denial has no position")

	v, updated := e.Snapshot()
	assert.Equal(t, domain.NotNear, v)
	assert.Equal(t, fixed, updated)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	sampler := geolocation.NewMockSampler(geolocation.Granted(origin), geolocation.Granted(far))
	e := newEngine(t, sampler, remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin}))

	ch, unsubscribe := e.Subscribe()

	_, err := e.EvaluateOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Near(7), <-ch)

	_, err = e.EvaluateOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NotNear, <-ch)

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
}

func TestSubscribeKeepsOnlyLatest(t *testing.T) {
	sampler := geolocation.NewMockSampler(geolocation.Granted(origin), geolocation.Granted(far), geolocation.Granted(origin))
	e := newEngine(t, sampler, remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin}))

	ch, unsubscribe := e.Subscribe()
	defer unsubscribe()

	for i := 0; i < 3; i++ {
		_, err := e.EvaluateOnce(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, domain.Near(7), <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected stale verdict %v", v)
	default:
	}
}

func TestStartEvaluatesImmediatelyAndRepeats(t *testing.T) {
	sampler := geolocation.NewMockSampler(geolocation.Granted(origin))
	e := newEngine(t, sampler, remote.NewMockLocationProvider(domain.Location{ID: 7, Coordinate: origin}))

	var mu sync.Mutex
	var verdicts []domain.Verdict
	onVerdict := func(v domain.Verdict) {
		mu.Lock()
		defer mu.Unlock()
		verdicts = append(verdicts, v)
	}

	// A long cadence shows the first cycle does not wait for a tick.
	require.NoError(t, e.Start(context.Background(), time.Hour, onVerdict))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(verdicts) == 1
	}, time.Second, time.Millisecond)
	e.Stop()

	mu.Lock()
	assert.Equal(t, []domain.Verdict{domain.Near(7)}, verdicts)
	mu.Unlock()
	assert.Equal(t, 1, sampler.Calls())

	require.NoError(t, e.Start(context.Background(), 5*time.Millisecond, onVerdict))
	require.Eventually(t, func() bool { return sampler.Calls() >= 4 }, time.Second, time.Millisecond)
	e.Stop()
}

func TestStartRejectsBadInput(t *testing.T) {
	e := newEngine(t, geolocation.NewMockSampler(), remote.NewMockLocationProvider())

	assert.Error(t, e.Start(context.Background(), 0, nil))

	require.NoError(t, e.Start(context.Background(), time.Hour, nil))
	defer e.Stop()
	assert.Error(t, e.Start(context.Background(), time.Hour, nil), "second start must fail")
}

func TestStopPreventsFutureTicks(t *testing.T) {
	sampler := geolocation.NewMockSampler(geolocation.Granted(origin))
	e := newEngine(t, sampler, remote.NewMockLocationProvider())

	require.NoError(t, e.Start(context.Background(), 2*time.Millisecond, nil))
	require.Eventually(t, func() bool { return sampler.Calls() >= 2 }, time.Second, time.Millisecond)

	e.Stop()
	after := sampler.Calls()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, sampler.Calls())

	e.Stop()
}

type blockingProvider struct {
	release chan struct{}
	calls   atomic.Int32
}

func (p *blockingProvider) ListLocations(ctx context.Context) ([]domain.Location, error) {
	p.calls.Add(1)
	select {
	case <-p.release:
		return []domain.Location{{ID: 7, Coordinate: origin}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSlowCycleSkipsTicks(t *testing.T) {
	provider := &blockingProvider{release: make(chan struct{})}
	e, err := NewProximityEngine(geolocation.NewMockSampler(geolocation.Granted(origin)), provider, DefaultRadiusMeters)
	require.NoError(t, err)

	require.NoError(t, e.Start(context.Background(), 2*time.Millisecond, nil))
	defer e.Stop()

	require.Eventually(t, func() bool { return provider.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), provider.calls.Load(), "ticks during an in-flight cycle must be skipped")

	close(provider.release)
	require.Eventually(t, func() bool { return provider.calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, domain.Near(7), e.Current())
}

func TestStopCancelsInFlightCycle(t *testing.T) {
	provider := &blockingProvider{release: make(chan struct{})}
	e, err := NewProximityEngine(geolocation.NewMockSampler(geolocation.Granted(origin)), provider, DefaultRadiusMeters)
	require.NoError(t, err)

	called := atomic.Bool{}
	require.NoError(t, e.Start(context.Background(), time.Hour, func(domain.Verdict) { called.Store(true) }))
	require.Eventually(t, func() bool { return provider.calls.Load() == 1 }, time.Second, time.Millisecond)

	e.Stop()
	assert.False(t, called.Load())
	assert.Equal(t, domain.NotNear, e.Current())
}

func TestStartAgainAfterParentContextEnds(t *testing.T) {
	sampler := geolocation.NewMockSampler(geolocation.Granted(origin))
	e := newEngine(t, sampler, remote.NewMockLocationProvider())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.Start(ctx, time.Hour, nil))
	require.Eventually(t, func() bool { return sampler.Calls() == 1 }, time.Second, time.Millisecond)
	cancel()

	require.NoError(t, e.Start(context.Background(), time.Hour, nil))
	defer e.Stop()
	require.Eventually(t, func() bool { return sampler.Calls() == 2 }, time.Second, time.Millisecond)
}

func TestStopClosesSubscriptions(t *testing.T) {
	e := newEngine(t, geolocation.NewMockSampler(geolocation.Granted(far)), remote.NewMockLocationProvider())

	ch, unsubscribe := e.Subscribe()
	require.NoError(t, e.Start(context.Background(), time.Hour, nil))
	e.Stop()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription still open after Stop")
	}

	unsubscribe()
}
