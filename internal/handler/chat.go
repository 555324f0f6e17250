package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"canvasgw/internal/agent"
	"canvasgw/internal/canvas"
	"canvasgw/internal/config"
	"canvasgw/internal/domain"
	"canvasgw/internal/httputil"
)

// ChatHandler serves the agent-mediated chat path and the direct tool
// diagnostics path.
type ChatHandler struct {
	cfg    *config.Config
	logger *slog.Logger
	// completion is swappable so tests can script the model.
	completion func(apiKey, baseURL string) agent.CompletionClient
}

// NewChatHandler creates a new chat handler
func NewChatHandler(cfg *config.Config, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		cfg:        cfg,
		logger:     logger,
		completion: agent.NewCompletionClient,
	}
}

type chatRequest struct {
	Message     string       `json:"message"`
	CanvasToken string       `json:"canvas_token"`
	History     []agent.Turn `json:"history,omitempty"`
}

func (req *chatRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Message, validation.Required),
		validation.Field(&req.CanvasToken, validation.Required),
	)
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// Chat runs one agent turn over the caller's question
// POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := httputil.GetRequestID(r)

	// LLM configuration: request headers override process defaults. The
	// Canvas token is the opposite: it arrives only with the request and is
	// never read from the process environment.
	llmBase := firstNonEmpty(r.Header.Get("X-LLM-Base"), h.cfg.LLMBaseURL)
	llmKey := firstNonEmpty(r.Header.Get("X-LLM-Key"), h.cfg.LLMAPIKey)
	llmModel := firstNonEmpty(r.Header.Get("X-LLM-Model"), h.cfg.LLMModel)
	verbose := h.cfg.AgentVerbose
	if v := strings.ToLower(r.Header.Get("X-Agent-Verbose")); v != "" {
		verbose = v == "1" || v == "true" || v == "yes"
	}

	if llmKey == "" {
		handleError(w, &domain.ConfigError{Message: "LLM_API_KEY is not configured and no X-LLM-Key header was provided"})
		return
	}
	if llmBase == "" {
		handleError(w, &domain.ConfigError{Message: "LLM_BASE_URL is not configured and no X-LLM-Base header was provided"})
		return
	}
	if h.cfg.CanvasBaseURL == "" {
		handleError(w, &domain.ConfigError{Message: "CANVAS_BASE_URL is not configured"})
		return
	}

	if verbose {
		h.logger.Info("chat request",
			"message", truncateForLog(req.Message),
			"model", llmModel,
			"request_id", requestID,
		)
	}

	client := canvas.New(h.cfg.CanvasBaseURL, strings.TrimSpace(req.CanvasToken), h.logger, requestID)
	toolset := agent.NewToolset(client, h.logger, requestID)
	orchestrator := agent.NewOrchestrator(h.completion(llmKey, llmBase), toolset, llmModel, h.logger, verbose, requestID)

	answer, err := orchestrator.Answer(r.Context(), req.Message, req.History)
	if err != nil {
		h.logger.Error("agent produced no answer", "error", err, "request_id", requestID)
	}
	if strings.TrimSpace(answer) == "" {
		handleError(w, &domain.GatewayError{Message: "upstream model produced no answer"})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

type toolTestRequest struct {
	Tool        string `json:"tool"`
	CanvasToken string `json:"canvas_token"`
	CourseName  string `json:"course_name,omitempty"`
}

func (req *toolTestRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Tool, validation.Required,
			validation.In("list_my_courses", "get_upcoming_assignments", "get_announcements")),
		validation.Field(&req.CanvasToken, validation.Required),
	)
}

type toolTestResponse struct {
	Result string `json:"result"`
}

// ToolTest invokes one domain query directly, bypassing the agent loop
// POST /tool_test
func (h *ChatHandler) ToolTest(w http.ResponseWriter, r *http.Request) {
	var req toolTestRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.cfg.CanvasBaseURL == "" {
		handleError(w, &domain.ConfigError{Message: "CANVAS_BASE_URL is not configured"})
		return
	}

	client := canvas.New(h.cfg.CanvasBaseURL, strings.TrimSpace(req.CanvasToken), h.logger, httputil.GetRequestID(r))

	var (
		result string
		err    error
	)
	switch req.Tool {
	case "list_my_courses":
		result, err = client.ListCoursesReport(r.Context())
	case "get_upcoming_assignments":
		result, err = client.UpcomingAssignments(r.Context(), time.Now())
	case "get_announcements":
		result, err = client.AnnouncementsReport(r.Context(), strings.TrimSpace(req.CourseName))
	}
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, toolTestResponse{Result: result})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func truncateForLog(s string) string {
	const max = 500
	if len(s) <= max {
		return s
	}
	return s[:max] + "…[truncated]"
}
