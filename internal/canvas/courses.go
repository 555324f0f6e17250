package canvas

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Course is one active-enrollment course as reported by the platform.
type Course struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"course_code"`
}

// ActiveCourses pages through the caller's active-enrollment courses,
// dropping records without a usable id or name.
func (c *Client) ActiveCourses(ctx context.Context) ([]Course, error) {
	params := url.Values{"enrollment_state": {"active"}}
	all, err := collect[Course](c.Paginate(ctx, "/courses", params))
	if err != nil {
		return nil, err
	}

	courses := make([]Course, 0, len(all))
	for _, course := range all {
		if course.ID <= 0 || course.Name == "" {
			continue
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// ListCoursesReport renders the active course set as a deterministic
// human-readable listing, sorted by name. An empty course set is a valid
// answer, not an error.
func (c *Client) ListCoursesReport(ctx context.Context) (string, error) {
	courses, err := c.ActiveCourses(ctx)
	if err != nil {
		return "", err
	}
	if len(courses) == 0 {
		return "No active courses found.", nil
	}

	sort.SliceStable(courses, func(i, j int) bool {
		if courses[i].Name != courses[j].Name {
			return courses[i].Name < courses[j].Name
		}
		return courses[i].ID < courses[j].ID
	})

	lines := make([]string, 0, len(courses))
	for _, course := range courses {
		lines = append(lines, fmt.Sprintf("Course: %s | id: %d", course.Name, course.ID))
	}
	return strings.Join(lines, "\n"), nil
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// codeSuffix returns the last run of digits in a course code, or "".
func codeSuffix(code string) string {
	runs := digitRun.FindAllString(code, -1)
	if len(runs) == 0 {
		return ""
	}
	return runs[len(runs)-1]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolveCourseByHint matches a free-text course reference against the
// course set. Priority order: exact case-insensitive code match, numeric
// code suffix when the hint is all digits, case-insensitive name substring,
// then literal course id. Multiple matches are returned as-is so the caller
// can surface the ambiguity instead of guessing.
func ResolveCourseByHint(courses []Course, hint string) []int {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return nil
	}

	var ids []int
	for _, course := range courses {
		if strings.EqualFold(course.Code, hint) {
			ids = append(ids, course.ID)
		}
	}
	if len(ids) > 0 {
		return ids
	}

	if isDigits(hint) {
		for _, course := range courses {
			if codeSuffix(course.Code) == hint {
				ids = append(ids, course.ID)
			}
		}
		if len(ids) > 0 {
			return ids
		}
	}

	lowered := strings.ToLower(hint)
	for _, course := range courses {
		if strings.Contains(strings.ToLower(course.Name), lowered) {
			ids = append(ids, course.ID)
		}
	}
	if len(ids) > 0 {
		return ids
	}

	if id, err := strconv.Atoi(hint); err == nil && id > 0 {
		return []int{id}
	}
	return nil
}
