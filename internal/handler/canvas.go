package handler

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"canvasgw/internal/canvas"
	"canvasgw/internal/domain"
	"canvasgw/internal/httputil"
)

// CanvasHandler serves the non-agent browsing paths: course listing, file
// tree and file download. The caller's token arrives per request and is
// bound to a client instance that dies with the request.
type CanvasHandler struct {
	canvasBaseURL string
	logger        *slog.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(canvasBaseURL string, logger *slog.Logger) *CanvasHandler {
	return &CanvasHandler{
		canvasBaseURL: canvasBaseURL,
		logger:        logger,
	}
}

// client builds a request-scoped Canvas client from the supplied token.
// Plain link downloads cannot set headers, so a token query parameter is
// accepted as a fallback.
func (h *CanvasHandler) client(r *http.Request) (*canvas.Client, error) {
	token := strings.TrimSpace(r.Header.Get("X-Canvas-Token"))
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	if token == "" {
		return nil, &domain.ValidationError{Message: "missing Canvas token"}
	}
	if h.canvasBaseURL == "" {
		return nil, &domain.ConfigError{Message: "CANVAS_BASE_URL is not configured"}
	}
	return canvas.New(h.canvasBaseURL, token, h.logger, httputil.GetRequestID(r)), nil
}

// HealthCheck reports service liveness
// GET /health
func (h *CanvasHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCourses returns the caller's active courses sorted by code then name
// GET /courses
func (h *CanvasHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	client, err := h.client(r)
	if err != nil {
		handleError(w, err)
		return
	}

	courses, err := client.ActiveCourses(r.Context())
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	sort.SliceStable(courses, func(i, j int) bool {
		if courses[i].Code != courses[j].Code {
			return courses[i].Code < courses[j].Code
		}
		return courses[i].Name < courses[j].Name
	})

	type courseDTO struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Code string `json:"code,omitempty"`
	}
	out := make([]courseDTO, 0, len(courses))
	for _, course := range courses {
		out = append(out, courseDTO{ID: course.ID, Name: course.Name, Code: course.Code})
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"courses": out})
}

// GetFileTree returns the synthesized folder/file tree for one course
// GET /courses/{id}/file_tree
func (h *CanvasHandler) GetFileTree(w http.ResponseWriter, r *http.Request) {
	client, err := h.client(r)
	if err != nil {
		handleError(w, err)
		return
	}

	courseID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || courseID <= 0 {
		httputil.RespondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	tree, err := client.BuildFileTree(r.Context(), courseID)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
