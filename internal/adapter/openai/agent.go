// Package openai implements the agent port against an OpenAI-compatible
// chat-completions endpoint (e.g. a LiteLLM proxy). Generation parameters
// are pinned from config on every request so repeated runs against the same
// model version reproduce identical structured output.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SahilAshar/ticket-triage-agent/internal/config"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"
	"github.com/SahilAshar/ticket-triage-agent/internal/logger"
	"github.com/SahilAshar/ticket-triage-agent/internal/port/agent"
)

const agentName = "openai"

// costHeader is set by LiteLLM-style proxies with the computed request cost.
const costHeader = "X-Litellm-Response-Cost"

// ticketHeader carries the ticket ID to the proxy for request correlation.
const ticketHeader = "X-Ticket-Id"

const systemPrompt = `You are a support ticket triage agent. Respond with a single JSON object and nothing else:
{"category": "bug"|"incident"|"request"|"question", "severity": "low"|"medium"|"high"|"critical", "next_step": string, "confidence": number in [0,1]}`

func init() {
	agent.Register(agentName, func(cfg config.Model) (agent.Agent, error) {
		return New(cfg), nil
	})
}

// Agent calls a chat-completions endpoint and parses its strict-JSON reply.
type Agent struct {
	cfg        config.Model
	httpClient *http.Client
}

// New creates an OpenAI-compatible agent from validated model settings.
func New(cfg config.Model) *Agent {
	return &Agent{
		cfg: cfg,
		httpClient: &http.Client{
			// Per-call deadlines come from the executor's context; this is a
			// hard upper bound against leaked connections.
			Timeout: 5 * time.Minute,
		},
	}
}

// Name returns "openai".
func (a *Agent) Name() string { return agentName }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// Triage sends one budgeted completion request and parses the result.
func (a *Agent) Triage(ctx context.Context, task ticket.Task, budget *agent.Budget) (ticket.Result, agent.Usage, error) {
	if err := budget.Use(); err != nil {
		return ticket.Result{}, agent.Usage{}, err
	}

	body, err := json.Marshal(chatRequest{
		Model: a.cfg.Name,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: renderTask(task)},
		},
		Temperature: a.cfg.Temperature,
		TopP:        a.cfg.TopP,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		return ticket.Result{}, agent.Usage{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return ticket.Result{}, agent.Usage{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}
	// Lets proxy-side logs be correlated with the ticket under execution.
	if id := logger.TicketID(ctx); id != "" {
		req.Header.Set(ticketHeader, id)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return ticket.Result{}, agent.Usage{}, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ticket.Result{}, agent.Usage{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return ticket.Result{}, agent.Usage{}, fmt.Errorf("completion API error %d: %s", resp.StatusCode, string(data))
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return ticket.Result{}, agent.Usage{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return ticket.Result{}, agent.Usage{}, fmt.Errorf("completion returned no choices")
	}

	usage := agent.Usage{
		TokensIn:  cr.Usage.PromptTokens,
		TokensOut: cr.Usage.CompletionTokens,
	}
	if v := resp.Header.Get(costHeader); v != "" {
		if cost, err := strconv.ParseFloat(v, 64); err == nil {
			usage.CostUSD = cost
		}
	}

	result, err := parseResult(cr.Choices[0].Message.Content)
	if err != nil {
		return ticket.Result{}, usage, fmt.Errorf("parse model output: %w", err)
	}
	return result, usage, nil
}

// renderTask builds the user message. Only the Task fields are included;
// evaluation metadata such as difficulty never reaches the model.
func renderTask(task ticket.Task) string {
	var b strings.Builder
	b.WriteString("Ticket " + task.TicketID + "\n")
	b.WriteString("Title: " + task.Title + "\n")
	b.WriteString("Description: " + task.Description + "\n")
	// Sorted so the rendered prompt is stable for identical tasks.
	keys := make([]string, 0, len(task.Metadata))
	for k := range task.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k + ": " + task.Metadata[k] + "\n")
	}
	return b.String()
}

// parseResult decodes the strict-JSON reply, tolerating markdown fencing.
func parseResult(content string) (ticket.Result, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var result ticket.Result
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&result); err != nil {
		return ticket.Result{}, err
	}
	if err := result.Validate(); err != nil {
		return ticket.Result{}, err
	}
	return result, nil
}
