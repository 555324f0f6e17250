package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// CompletionClient is the narrow slice of the OpenAI-compatible client the
// orchestrator needs; tests substitute a scripted fake.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewCompletionClient builds a completion client for the resolved endpoint.
// Any OpenAI-compatible proxy works.
func NewCompletionClient(apiKey, baseURL string) CompletionClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Turn is one prior message of the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	maxToolRounds   = 8
	maxParseRetries = 2
	temperature     = 0.2
)

const systemPrompt = `You are an assistant for a Canvas learning management platform.
- When the user asks about assignments, deadlines or due dates, prefer get_upcoming_assignments.
- When the user wants their course list, or you cannot tell which course they mean, call list_my_courses.
- When the user asks about announcements or notices, call get_announcements (with or without course_name).
- When the user wants to browse or download course files, call browse_course_files and include the returned control string in your final answer exactly as returned, byte for byte.
- Summarize tool output concisely and keep dates, course names, assignment names and announcement titles.`

// Orchestrator drives one user turn through an LLM tool-calling loop. Two
// conventions are tried: a structured JSON-reply strategy first, then the
// native tool-calls API. Which convention a given model handles well is
// unpredictable, so the orchestrator absorbs the variability instead of
// failing the turn.
type Orchestrator struct {
	client    CompletionClient
	toolset   *Toolset
	model     string
	logger    *slog.Logger
	verbose   bool
	requestID string
}

func NewOrchestrator(client CompletionClient, toolset *Toolset, model string, logger *slog.Logger, verbose bool, requestID string) *Orchestrator {
	if requestID == "" {
		requestID = "-"
	}
	return &Orchestrator{
		client:    client,
		toolset:   toolset,
		model:     model,
		logger:    logger,
		verbose:   verbose,
		requestID: requestID,
	}
}

// Answer runs the primary strategy and, when it comes back empty or broken,
// the fallback. A fallback failure is absorbed: the caller tells "model
// said nothing" (empty answer, nil error) from "both strategies crashed"
// (empty answer, non-nil error).
func (o *Orchestrator) Answer(ctx context.Context, message string, history []Turn) (string, error) {
	answer, primaryErr := o.runStructured(ctx, message, history)
	if primaryErr != nil {
		o.logger.Warn("primary strategy failed", "error", primaryErr, "request_id", o.requestID)
		answer = ""
	}
	if strings.TrimSpace(answer) != "" {
		return answer, nil
	}

	o.logger.Info("empty primary answer, falling back to native tool calls", "request_id", o.requestID)
	fallback, fallbackErr := o.runToolCalls(ctx, message, history)
	if fallbackErr != nil {
		o.logger.Warn("fallback strategy failed", "error", fallbackErr, "request_id", o.requestID)
		if primaryErr != nil {
			return "", errors.Join(primaryErr, fallbackErr)
		}
		return answer, nil
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback, nil
	}
	return answer, nil
}

func (o *Orchestrator) baseMessages(message string, history []Turn, systemSuffix string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt + systemSuffix,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…[truncated]"
}
