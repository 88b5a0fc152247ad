package agent

import (
	"fmt"
	"sync"

	"github.com/SahilAshar/ticket-triage-agent/internal/config"
)

// Factory is a constructor function that creates a new Agent instance from
// validated model settings.
type Factory func(cfg config.Model) (Agent, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes an agent factory available by mode name.
// It is typically called from an init() function in the implementing package.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("agent: duplicate registration for %q", name))
	}
	factories[name] = factory
}

// New creates a new Agent by mode name using the registered factory.
func New(name string, cfg config.Model) (Agent, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("agent: unknown mode %q", name)
	}
	return factory(cfg)
}

// Available returns the names of all registered agent modes.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
