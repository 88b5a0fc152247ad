package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SahilAshar/ticket-triage-agent/internal/config"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"
	"github.com/SahilAshar/ticket-triage-agent/internal/logger"
	"github.com/SahilAshar/ticket-triage-agent/internal/port/agent"
)

const goodReply = `{"category":"incident","severity":"high","next_step":"Page the on-call engineer.","confidence":0.92}`

func completionBody(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 40},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func testTask() ticket.Task {
	return ticket.Task{
		TicketID:    "TKT-0001",
		Title:       "Login fails",
		Description: "Users cannot log in after deploy",
		Metadata:    map[string]string{"source": "email", "customer": "acme"},
	}
}

func TestTriage(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization: got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("X-Litellm-Response-Cost", "0.00312")
		_, _ = w.Write([]byte(completionBody(goodReply)))
	}))
	defer srv.Close()

	a := New(config.Model{
		Name:        "openai/gpt-4o-mini",
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Temperature: 0,
		TopP:        1,
		MaxTokens:   2048,
	})

	result, usage, err := a.Triage(context.Background(), testTask(), agent.NewBudget(2))
	if err != nil {
		t.Fatal(err)
	}
	if result.Category != ticket.CategoryIncident || result.Severity != ticket.SeverityHigh {
		t.Errorf("unexpected result %+v", result)
	}
	if usage.TokensIn != 120 || usage.TokensOut != 40 {
		t.Errorf("usage: got %+v", usage)
	}
	if usage.CostUSD != 0.00312 {
		t.Errorf("cost: got %v", usage.CostUSD)
	}

	// Generation parameters are pinned from config.
	if captured.Model != "openai/gpt-4o-mini" || captured.Temperature != 0 || captured.TopP != 1 || captured.MaxTokens != 2048 {
		t.Errorf("request parameters: got %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Errorf("messages: got %+v", captured.Messages)
	}
}

func TestTriageForwardsTicketID(t *testing.T) {
	var stamped string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stamped = r.Header.Get("X-Ticket-Id")
		_, _ = w.Write([]byte(completionBody(goodReply)))
	}))
	defer srv.Close()

	a := New(config.Model{Name: "m", BaseURL: srv.URL})

	// Without a ticket in the context the header stays absent.
	if _, _, err := a.Triage(context.Background(), testTask(), agent.NewBudget(2)); err != nil {
		t.Fatal(err)
	}
	if stamped != "" {
		t.Fatalf("header set without a ticket in context: %q", stamped)
	}

	ctx := logger.WithTicketID(context.Background(), "TKT-0001")
	if _, _, err := a.Triage(ctx, testTask(), agent.NewBudget(2)); err != nil {
		t.Fatal(err)
	}
	if stamped != "TKT-0001" {
		t.Errorf("correlation header: got %q, want TKT-0001", stamped)
	}
}

func TestTriageRespectsBudget(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		_, _ = w.Write([]byte(completionBody(goodReply)))
	}))
	defer srv.Close()

	a := New(config.Model{Name: "m", BaseURL: srv.URL})
	_, _, err := a.Triage(context.Background(), testTask(), agent.NewBudget(0))
	if !errors.Is(err, agent.ErrBudgetExceeded) {
		t.Fatalf("got %v, want ErrBudgetExceeded", err)
	}
	if called {
		t.Error("no request may be issued once the budget is spent")
	}
}

func TestTriageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := New(config.Model{Name: "m", BaseURL: srv.URL})
	if _, _, err := a.Triage(context.Background(), testTask(), agent.NewBudget(2)); err == nil {
		t.Fatal("expected an error on 429")
	}
}

func TestTriageRejectsMalformedReply(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "I think this is an incident."},
		{"unknown field", `{"category":"incident","severity":"high","next_step":"x","confidence":0.9,"vibe":"bad"}`},
		{"invalid enum", `{"category":"feature","severity":"high","next_step":"x","confidence":0.9}`},
		{"confidence out of range", `{"category":"incident","severity":"high","next_step":"x","confidence":1.5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(completionBody(tt.content)))
			}))
			defer srv.Close()

			a := New(config.Model{Name: "m", BaseURL: srv.URL})
			if _, _, err := a.Triage(context.Background(), testTask(), agent.NewBudget(2)); err == nil {
				t.Fatal("expected a parse error")
			}
		})
	}
}

func TestParseResultToleratesFencing(t *testing.T) {
	result, err := parseResult("```json\n" + goodReply + "\n```")
	if err != nil {
		t.Fatal(err)
	}
	if result.Category != ticket.CategoryIncident {
		t.Errorf("got %+v", result)
	}
}

func TestRenderTaskIsStable(t *testing.T) {
	task := testTask()
	first := renderTask(task)
	for i := 0; i < 10; i++ {
		if got := renderTask(task); got != first {
			t.Fatalf("prompt rendering diverged:\n%s\nvs\n%s", got, first)
		}
	}
}
