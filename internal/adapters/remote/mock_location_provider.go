package remote

import (
	"context"
	"music-nearby/internal/domain"
	"sync"
)

// MockLocationProvider serves a fixed, replaceable location set.
type MockLocationProvider struct {
	mu        sync.Mutex
	locations []domain.Location
	err       error
	calls     int
}

func NewMockLocationProvider(locations ...domain.Location) *MockLocationProvider {
	return &MockLocationProvider{locations: locations}
}

// Set replaces the served locations and the error returned with them.
func (p *MockLocationProvider) Set(locations []domain.Location, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locations = locations
	p.err = err
}

func (p *MockLocationProvider) ListLocations(ctx context.Context) ([]domain.Location, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]domain.Location, len(p.locations))
	copy(out, p.locations)
	return out, nil
}

func (p *MockLocationProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
