package geolocation

import (
	"context"
	"music-nearby/internal/domain"
	"sync"
)

// MockStep scripts one cycle of MockSampler.
type MockStep struct {
	Permission    domain.PermissionState
	PermissionErr error
	Position      domain.Coordinate
	PositionErr   error
}

// MockSampler plays back MockSteps, one per RequestPermission call.
// The last step repeats once the script is exhausted.
type MockSampler struct {
	mu    sync.Mutex
	steps []MockStep
	cur   int
	calls int
}

func NewMockSampler(steps ...MockStep) *MockSampler {
	if len(steps) == 0 {
		steps = []MockStep{{Permission: domain.PermissionGranted}}
	}
	return &MockSampler{steps: steps, cur: -1}
}

// Granted returns a step that grants permission and reports c.
func Granted(c domain.Coordinate) MockStep {
	return MockStep{Permission: domain.PermissionGranted, Position: c}
}

func (m *MockSampler) RequestPermission(ctx context.Context) (domain.PermissionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.cur < len(m.steps)-1 {
		m.cur++
	}
	s := m.steps[m.cur]
	return s.Permission, s.PermissionErr
}

func (m *MockSampler) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.steps[max(m.cur, 0)]
	if s.PositionErr != nil {
		return domain.Coordinate{}, s.PositionErr
	}
	return s.Position, nil
}

// Calls returns how many cycles have requested permission.
func (m *MockSampler) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
