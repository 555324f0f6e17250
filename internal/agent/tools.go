package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"canvasgw/internal/canvas"
)

// Tool is one callable exposed to the model: a name, a JSON-schema input
// declaration and a handler bound to the caller's Canvas client.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Run         func(ctx context.Context, input map[string]any) (string, error)
}

// Toolset is the closed tool set for one request. Dispatch matches names
// over the fixed slice.
type Toolset struct {
	tools     []Tool
	logger    *slog.Logger
	requestID string
}

const (
	uiSentinelOpen       = "<<CANVAS_UI>>"
	uiSentinelClose      = "<<END_CANVAS_UI>>"
	maxDisambiguationIDs = 5
)

// FileBrowserSentinel is the control directive for the frontend file
// browser. The agent must relay it byte-for-byte: a downstream presentation
// layer parses it out of the final answer.
func FileBrowserSentinel(courseID int) string {
	return fmt.Sprintf(`%s{"action": "open_file_browser", "courseId": %d}%s`,
		uiSentinelOpen, courseID, uiSentinelClose)
}

var emptySchema = map[string]any{
	"type":       "object",
	"properties": map[string]any{},
}

// NewToolset binds the domain query functions to one caller's client and
// one trace id.
func NewToolset(client *canvas.Client, logger *slog.Logger, requestID string) *Toolset {
	if requestID == "" {
		requestID = "-"
	}
	return &Toolset{
		logger:    logger,
		requestID: requestID,
		tools: []Tool{
			{
				Name:        "list_my_courses",
				Description: "List the full names and ids of every course the user is actively enrolled in. Use when the user asks for their courses or a course reference is unclear.",
				Parameters:  emptySchema,
				Run: func(ctx context.Context, _ map[string]any) (string, error) {
					return client.ListCoursesReport(ctx)
				},
			},
			{
				Name:        "get_upcoming_assignments",
				Description: "List assignments across all active courses that are not yet due. Use when the user mentions assignments, deadlines or due dates.",
				Parameters:  emptySchema,
				Run: func(ctx context.Context, _ map[string]any) (string, error) {
					return client.UpcomingAssignments(ctx, time.Now())
				},
			},
			{
				Name:        "get_announcements",
				Description: "Fetch course announcements. Pass course_name to scope to one course, or leave it empty for all active courses.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"course_name": map[string]any{
							"type":        "string",
							"description": "Course name, code or id; empty for all courses",
						},
					},
				},
				Run: func(ctx context.Context, input map[string]any) (string, error) {
					hint, _ := input["course_name"].(string)
					return client.AnnouncementsReport(ctx, strings.TrimSpace(hint))
				},
			},
			{
				Name:        "browse_course_files",
				Description: "Open the file browser for one course. Pass the course id, name or code. Include the returned control string in the final answer exactly as returned, byte for byte.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"course": map[string]any{
							"type":        "string",
							"description": "Course id, name or code",
						},
					},
					"required": []string{"course"},
				},
				Run: func(ctx context.Context, input map[string]any) (string, error) {
					hint, _ := input["course"].(string)
					return browseCourseFiles(ctx, client, strings.TrimSpace(hint))
				},
			},
		},
	}
}

// browseCourseFiles resolves the course reference and emits the UI control
// sentinel on a unique match. Ambiguity is pushed back into the
// conversation rather than silently resolved.
func browseCourseFiles(ctx context.Context, client *canvas.Client, hint string) (string, error) {
	if hint == "" {
		return "Please name the course whose files you want to browse.", nil
	}
	courses, err := client.ActiveCourses(ctx)
	if err != nil {
		return "", err
	}

	ids := canvas.ResolveCourseByHint(courses, hint)
	switch len(ids) {
	case 0:
		return fmt.Sprintf("No course matching %q.", hint), nil
	case 1:
		return FileBrowserSentinel(ids[0]), nil
	default:
		capped := ids
		if len(capped) > maxDisambiguationIDs {
			capped = capped[:maxDisambiguationIDs]
		}
		parts := make([]string, len(capped))
		for i, id := range capped {
			parts[i] = strconv.Itoa(id)
		}
		return fmt.Sprintf("Multiple courses match %q (ids: %s). Ask the user to pick one id.",
			hint, strings.Join(parts, ", ")), nil
	}
}

// Tools returns the declared tool set in registration order.
func (t *Toolset) Tools() []Tool {
	return t.tools
}

// Execute dispatches one tool call, timing and logging entry, exit and
// error. Tokens never reach the log.
func (t *Toolset) Execute(ctx context.Context, name string, input map[string]any) (string, error) {
	for _, tool := range t.tools {
		if tool.Name != name {
			continue
		}

		start := time.Now()
		t.logger.Info("tool start", "tool", name, "request_id", t.requestID)
		out, err := tool.Run(ctx, input)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			t.logger.Error("tool error",
				"tool", name,
				"elapsed_ms", elapsed,
				"error", err,
				"request_id", t.requestID,
			)
			return "", err
		}
		t.logger.Info("tool end", "tool", name, "elapsed_ms", elapsed, "request_id", t.requestID)
		return out, nil
	}
	return "", fmt.Errorf("tool not found: %s", name)
}
