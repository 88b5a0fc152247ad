package metrics

import (
	"fmt"
	"sync"

	"github.com/SahilAshar/ticket-triage-agent/internal/config"
)

// Factory is a constructor function that creates a Metric from evaluation
// settings.
type Factory func(cfg config.Eval) (Metric, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a metric factory available by name. Built-ins register from
// init(); additional metrics may register before the evaluator is built.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("metrics: duplicate registration for %q", name))
	}
	factories[name] = factory
}

// New resolves a metric by name using the registered factory.
func New(name string, cfg config.Eval) (Metric, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("metrics: unknown metric %q", name)
	}
	return factory(cfg)
}

// Defaults resolves the built-in metric set.
func Defaults(cfg config.Eval) ([]Metric, error) {
	names := []string{NameSchemaValid, NameCategoricalAccuracy, NameNextStepMatch, NameCost, NameTokens, NameLatency}
	out := make([]Metric, 0, len(names))
	for _, name := range names {
		m, err := New(name, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
