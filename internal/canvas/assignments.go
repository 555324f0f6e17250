package canvas

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Assignment is one course assignment; DueAt is kept raw because the
// platform emits null and occasionally malformed timestamps.
type Assignment struct {
	Name  string `json:"name"`
	DueAt string `json:"due_at"`
}

// parseInstant parses a platform timestamp. Unparseable values are treated
// as absent.
func parseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// UpcomingAssignments reports every assignment across the caller's active
// courses whose due instant is strictly after now, globally ordered by due
// instant ascending. Comparison happens in UTC to avoid timezone skew.
func (c *Client) UpcomingAssignments(ctx context.Context, now time.Time) (string, error) {
	courses, err := c.ActiveCourses(ctx)
	if err != nil {
		return "", err
	}
	now = now.UTC()

	type upcoming struct {
		due  time.Time
		line string
	}
	var items []upcoming

	for _, course := range courses {
		assignments, err := collect[Assignment](c.Paginate(ctx, fmt.Sprintf("/courses/%d/assignments", course.ID), nil))
		if err != nil {
			return "", err
		}
		for _, a := range assignments {
			due, ok := parseInstant(a.DueAt)
			if !ok || !due.After(now) {
				continue
			}
			name := a.Name
			if name == "" {
				name = "(unnamed)"
			}
			items = append(items, upcoming{
				due:  due,
				line: fmt.Sprintf("Course: %s | Assignment: %s | Due: %s", course.Name, name, formatInstant(due)),
			})
		}
	}

	if len(items) == 0 {
		return "No upcoming assignments.", nil
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].due.Before(items[j].due) })

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.line)
	}
	return strings.Join(lines, "\n"), nil
}
