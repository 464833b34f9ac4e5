package session

import (
	"music-nearby/internal/domain"
	"strings"
	"sync"
)

// Profile holds the user's name and picture for the lifetime of the process.
// It is created once by the host and handed to every handler that needs it.
type Profile struct {
	mu      sync.RWMutex
	profile domain.Profile
}

func NewProfile() *Profile {
	return &Profile{}
}

func (p *Profile) Get() domain.Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.profile
}

// SetName replaces the display name. Surrounding whitespace is dropped.
func (p *Profile) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile.Name = strings.TrimSpace(name)
}

func (p *Profile) SetImage(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile.ImageURI = strings.TrimSpace(uri)
}

// Update applies only the fields that are non-nil.
func (p *Profile) Update(name, imageURI *string) domain.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()

	if name != nil {
		p.profile.Name = strings.TrimSpace(*name)
	}
	if imageURI != nil {
		p.profile.ImageURI = strings.TrimSpace(*imageURI)
	}
	return p.profile
}
