package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	stdhtml "html"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Announcement is one discussion-topic record from the aggregated
// announcements endpoint.
type Announcement struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	ContextCode string `json:"context_code"`
	CourseID    int    `json:"course_id"`
	CreatedAt   string `json:"created_at"`
	PostedAt    string `json:"posted_at"`
}

const (
	announcementPageSize = "5"
	summaryMaxRunes      = 240
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	spaceRun    = regexp.MustCompile(`\s+`)
)

// StripHTML flattens markup to plain text, collapses whitespace and
// truncates to maxRunes with an ellipsis marker.
func StripHTML(html string, maxRunes int) string {
	text := stdhtml.UnescapeString(stripPolicy.Sanitize(html))
	text = strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
	runes := []rune(text)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes]) + "…"
	}
	return text
}

// AnnouncementsReport fetches announcements for the courses matching the
// hint (all active courses when the hint is empty), newest first. Records
// with unparseable timestamps sort as the oldest possible instant.
func (c *Client) AnnouncementsReport(ctx context.Context, courseHint string) (string, error) {
	courses, err := c.ActiveCourses(ctx)
	if err != nil {
		return "", err
	}

	var targets []int
	if courseHint != "" {
		targets = ResolveCourseByHint(courses, courseHint)
		if len(targets) == 0 {
			return fmt.Sprintf("No course matching %q.", courseHint), nil
		}
	} else {
		for _, course := range courses {
			targets = append(targets, course.ID)
		}
	}
	if len(targets) == 0 {
		return "No announcements found.", nil
	}

	params := url.Values{"per_page": {announcementPageSize}}
	for _, id := range targets {
		params.Add("context_codes[]", fmt.Sprintf("course_%d", id))
	}

	resp, err := c.Get(ctx, "/announcements", params)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Status: resp.StatusCode}
	}

	var announcements []Announcement
	if err := json.NewDecoder(resp.Body).Decode(&announcements); err != nil {
		return "", fmt.Errorf("decode announcements: %w", err)
	}
	if len(announcements) == 0 {
		return "No announcements found.", nil
	}

	type dated struct {
		created time.Time
		line    string
	}
	items := make([]dated, 0, len(announcements))
	for _, a := range announcements {
		created, ok := parseInstant(a.CreatedAt)
		if !ok {
			created, ok = parseInstant(a.PostedAt)
		}

		title := a.Title
		if title == "" {
			title = "(untitled)"
		}
		courseRef := strings.TrimPrefix(a.ContextCode, "course_")
		if a.CourseID > 0 {
			courseRef = strconv.Itoa(a.CourseID)
		}
		date := "unknown"
		if ok {
			date = formatInstant(created)
		}

		items = append(items, dated{
			created: created,
			line: fmt.Sprintf("Announcement: %s | Course: %s | Date: %s | Summary: %s",
				title, courseRef, date, StripHTML(a.Message, summaryMaxRunes)),
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].created.After(items[j].created) })

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.line)
	}
	return strings.Join(lines, "\n"), nil
}
