package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SahilAshar/ticket-triage-agent/internal/config"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"
)

func TestBudgetUse(t *testing.T) {
	b := NewBudget(2)

	if err := b.Use(); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if err := b.Use(); err != nil {
		t.Fatalf("second use: %v", err)
	}
	if err := b.Use(); !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("third use: got %v, want ErrBudgetExceeded", err)
	}
	if b.Used() != 2 {
		t.Errorf("used: got %d, want 2", b.Used())
	}
}

func TestBudgetZero(t *testing.T) {
	b := NewBudget(0)
	if err := b.Use(); !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("got %v, want ErrBudgetExceeded", err)
	}
	if b.Used() != 0 {
		t.Errorf("a rejected use must not count, got %d", b.Used())
	}
}

func TestBudgetConcurrentUse(t *testing.T) {
	b := NewBudget(10)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Use()
		}()
	}
	wg.Wait()
	if b.Used() != 10 {
		t.Errorf("used: got %d, want exactly the limit", b.Used())
	}
}

type stubAgent struct{ name string }

func (a *stubAgent) Name() string { return a.name }

func (a *stubAgent) Triage(context.Context, ticket.Task, *Budget) (ticket.Result, Usage, error) {
	return ticket.Result{}, Usage{}, nil
}

func TestRegistry(t *testing.T) {
	Register("stub", func(config.Model) (Agent, error) {
		return &stubAgent{name: "stub"}, nil
	})

	a, err := New("stub", config.Model{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Name() != "stub" {
		t.Errorf("got %q", a.Name())
	}

	found := false
	for _, name := range Available() {
		if name == "stub" {
			found = true
		}
	}
	if !found {
		t.Errorf("Available() missing stub: %v", Available())
	}
}

func TestRegistryUnknownMode(t *testing.T) {
	if _, err := New("missing", config.Model{}); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	Register("dup", func(config.Model) (Agent, error) { return &stubAgent{name: "dup"}, nil })
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on duplicate registration")
		}
	}()
	Register("dup", func(config.Model) (Agent, error) { return &stubAgent{name: "dup"}, nil })
}
