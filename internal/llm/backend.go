package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// BackendError wraps any failure of a text-generation call: transport errors,
// timeouts, or unusable responses. Callers recover by degrading, never by
// crashing the session.
type BackendError struct {
	Agent string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend call failed for %s: %v", e.Agent, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// HistoryTurn is one prior exchange folded into the prompt as context.
type HistoryTurn struct {
	Speaker string
	Text    string
}

// Backend is the single typed wrapper around every LLM call site. It applies
// one bounded timeout per call and at most one retry; repeated automatic
// retries are deliberately not supported.
type Backend struct {
	gen     TextGenerator
	timeout time.Duration
	log     zerolog.Logger
}

// NewBackend wraps a TextGenerator with the call policy. A zero timeout
// defaults to 30s.
func NewBackend(gen TextGenerator, timeout time.Duration, log zerolog.Logger) *Backend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Backend{gen: gen, timeout: timeout, log: log}
}

// Generate runs one generation call for the named agent. History is folded
// into the prompt; only the last few turns are carried to keep prompts small.
// On failure it returns a *BackendError together with whatever AgentMeta was
// observed, so the caller can still record the attempt.
func (b *Backend) Generate(ctx context.Context, agent, prompt string, history []HistoryTurn, opts GenerateOptions) (ContentResponse, AgentMeta, error) {
	full := prompt
	if len(history) > 0 {
		full = fmt.Sprintf("Conversation so far:\n%s\n%s", formatHistory(history, 5), prompt)
	}

	start := time.Now()
	resp, err := b.callOnce(ctx, full, opts)
	if err != nil && ctx.Err() == nil {
		// Single retry, no backoff. A cancelled session is not retried.
		b.log.Warn().Str("agent", agent).Err(err).Msg("backend call failed, retrying once")
		resp, err = b.callOnce(ctx, full, opts)
	}

	meta := AgentMeta{
		AgentName: agent,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	if err != nil {
		return ContentResponse{}, meta, &BackendError{Agent: agent, Err: err}
	}
	if strings.TrimSpace(resp.Content) == "" {
		return ContentResponse{}, meta, &BackendError{Agent: agent, Err: fmt.Errorf("empty response")}
	}

	b.log.Debug().
		Str("agent", agent).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("latency", meta.Latency).
		Msg("backend call complete")

	return resp, meta, nil
}

func (b *Backend) callOnce(ctx context.Context, prompt string, opts GenerateOptions) (ContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.gen.GenerateContent(callCtx, prompt, opts)
}

// formatHistory renders the last n turns as "speaker: text" lines.
func formatHistory(history []HistoryTurn, n int) string {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	var sb strings.Builder
	for _, t := range history {
		fmt.Fprintf(&sb, "%s: %s\n", t.Speaker, t.Text)
	}
	return sb.String()
}
