package base

import (
	"fmt"
	"sync"

	"github.com/chisports/gmengine/go/internal/models"
)

// SportPlugin defines the interface each sport plugin must implement.
type SportPlugin interface {
	Init(overrides Overrides) error
	Profile() *Profile
}

var (
	registry   = make(map[string]SportPlugin)
	registryMu sync.RWMutex
)

// RegisterPlugin adds a plugin implementation under a key.
// It should be called in each sport plugin's init() function.
// The plugin serves its built-in profile until InitializePlugin applies overrides.
func RegisterPlugin(key string, plugin SportPlugin) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if key == "" {
		return fmt.Errorf("plugin key cannot be empty")
	}
	if _, exists := registry[key]; exists {
		return fmt.Errorf("plugin already registered for key %q", key)
	}
	registry[key] = plugin
	return nil
}

// GetPlugin retrieves a plugin by key or returns an error if not found.
func GetPlugin(key string) (SportPlugin, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	plugin, exists := registry[key]
	if !exists {
		return nil, fmt.Errorf("no sport plugin registered for key %q", key)
	}
	return plugin, nil
}

// InitializePlugin initializes a specific plugin with config overrides.
func InitializePlugin(key string, overrides Overrides) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	plugin, exists := registry[key]
	if !exists {
		return fmt.Errorf("no sport plugin registered for key %q", key)
	}
	if err := plugin.Init(overrides); err != nil {
		return fmt.Errorf("failed to init plugin %q: %w", key, err)
	}
	return nil
}

// ProfileSource resolves the profile for a sport.
type ProfileSource interface {
	ProfileFor(sport models.Sport) (*Profile, error)
}

// Registry is the ProfileSource backed by the global plugin registry.
type Registry struct{}

func (Registry) ProfileFor(sport models.Sport) (*Profile, error) {
	plugin, err := GetPlugin(string(sport))
	if err != nil {
		return nil, err
	}
	return plugin.Profile(), nil
}

// StaticProfiles is a fixed ProfileSource, handy when a caller wants a
// subset of sports or hand-tuned profiles.
type StaticProfiles map[models.Sport]*Profile

func (s StaticProfiles) ProfileFor(sport models.Sport) (*Profile, error) {
	p, ok := s[sport]
	if !ok {
		return nil, fmt.Errorf("no profile for sport %q", sport)
	}
	return p, nil
}

// ProfilePlugin is a SportPlugin serving a static profile. Sport packages
// embed it and register in init().
type ProfilePlugin struct {
	mu      sync.RWMutex
	profile *Profile
}

func NewProfilePlugin(p *Profile) *ProfilePlugin {
	return &ProfilePlugin{profile: p}
}

func (p *ProfilePlugin) Init(overrides Overrides) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, err := p.profile.WithOverrides(overrides)
	if err != nil {
		return err
	}
	p.profile = next
	return nil
}

func (p *ProfilePlugin) Profile() *Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.profile
}
