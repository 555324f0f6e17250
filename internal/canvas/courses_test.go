package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

// courseServer serves a fixed /courses payload.
func courseServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/courses" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.URL.Query().Get("enrollment_state"); got != "active" {
			t.Errorf("enrollment_state = %q, want active", got)
		}
		fmt.Fprint(w, payload)
	}))
}

func TestActiveCoursesFiltersInvalidRecords(t *testing.T) {
	srv := courseServer(t, `[
		{"id":1,"name":"Databases","course_code":"SDSC5003"},
		{"id":0,"name":"No id"},
		{"id":2,"name":"","course_code":"EMPTY1"},
		{"id":3,"name":"Networks","course_code":"COMP5003X"}
	]`)
	defer srv.Close()

	client := New(srv.URL, "tok", testLogger(), "")
	courses, err := client.ActiveCourses(context.Background())
	if err != nil {
		t.Fatalf("ActiveCourses: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2: %+v", len(courses), courses)
	}
	if courses[0].ID != 1 || courses[1].ID != 3 {
		t.Errorf("unexpected courses %+v", courses)
	}
}

func TestListCoursesReportOrderedAndIdempotent(t *testing.T) {
	srv := courseServer(t, `[
		{"id":20,"name":"Zoology"},
		{"id":10,"name":"Algebra"},
		{"id":30,"name":"Networks"}
	]`)
	defer srv.Close()

	client := New(srv.URL, "tok", testLogger(), "")

	first, err := client.ListCoursesReport(context.Background())
	if err != nil {
		t.Fatalf("ListCoursesReport: %v", err)
	}
	want := "Course: Algebra | id: 10\nCourse: Networks | id: 30\nCourse: Zoology | id: 20"
	if first != want {
		t.Errorf("report = %q, want %q", first, want)
	}

	second, err := client.ListCoursesReport(context.Background())
	if err != nil {
		t.Fatalf("second ListCoursesReport: %v", err)
	}
	if first != second {
		t.Errorf("report not idempotent:\nfirst:  %q\nsecond: %q", first, second)
	}
}

func TestListCoursesReportEmpty(t *testing.T) {
	srv := courseServer(t, `[]`)
	defer srv.Close()

	client := New(srv.URL, "tok", testLogger(), "")
	got, err := client.ListCoursesReport(context.Background())
	if err != nil {
		t.Fatalf("ListCoursesReport: %v", err)
	}
	if got != "No active courses found." {
		t.Errorf("empty report = %q", got)
	}
}

func TestResolveCourseByHint(t *testing.T) {
	courses := []Course{
		{ID: 11, Name: "Database Systems", Code: "SDSC5003"},
		{ID: 22, Name: "Advanced Networks", Code: "COMP5003X"},
		{ID: 33, Name: "Machine Learning", Code: "SDSC6012"},
	}

	cases := []struct {
		name string
		hint string
		want []int
	}{
		{"exact code wins over suffix and substring", "SDSC5003", []int{11}},
		{"exact code is case-insensitive", "sdsc6012", []int{33}},
		{"numeric suffix matches all codes ending in it", "5003", []int{11, 22}},
		{"suffix rule survives trailing letters in the code", "6012", []int{33}},
		{"name substring", "networks", []int{22}},
		{"name substring multiple", "a", []int{11, 22, 33}},
		{"literal id fallback", "777", []int{777}},
		{"no match", "quantum basket weaving", nil},
		{"empty hint", "", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ResolveCourseByHint(courses, c.hint)
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("ResolveCourseByHint(%q) = %v, want %v", c.hint, got, c.want)
			}
		})
	}
}

func TestCodeSuffix(t *testing.T) {
	cases := map[string]string{
		"SDSC5003":  "5003",
		"COMP5003X": "5003",
		"CS101-2b":  "2",
		"NOCODE":    "",
		"":          "",
	}
	for code, want := range cases {
		if got := codeSuffix(code); got != want {
			t.Errorf("codeSuffix(%q) = %q, want %q", code, got, want)
		}
	}
}
