package notify

import (
	"sort"
	"sync"

	"github.com/gosuda/gabinete/internal/messenger"
)

// Target is a messenger and the staff channel alerts go to on it.
type Target struct {
	Messenger messenger.Messenger
	Channel   string
}

// Registry holds one alert target per platform.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]Target
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]Target),
	}
}

// Register adds the messenger under its platform name. A later
// registration for the same platform replaces the earlier one.
func (r *Registry) Register(m messenger.Messenger, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[m.Platform()] = Target{Messenger: m, Channel: channel}
}

// Get returns the target for the given platform, or false if not registered.
func (r *Registry) Get(platform string) (Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[platform]
	return t, ok
}

// Targets returns every registered target ordered by platform.
func (r *Registry) Targets() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Target, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Messenger.Platform() < out[j].Messenger.Platform()
	})
	return out
}

// Len reports how many platforms are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}
