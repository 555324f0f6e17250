package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func intp(i int) *int { return &i }

func TestSelectRootPrefersCourseFilesPrefix(t *testing.T) {
	folders := []rawFolder{
		{ID: 1, Name: "Course Files", FullName: "course files", ContextType: "Course", ContextID: 5},
		{ID: 2, Name: "Misc", FullName: "misc", ContextType: "Course", ContextID: 5},
	}

	root := assembleTree(5, folders, nil)
	if root.ID != 1 {
		t.Errorf("root id = %d, want 1", root.ID)
	}
}

func TestSelectRootFirstCourseCandidateWithoutPrefix(t *testing.T) {
	folders := []rawFolder{
		{ID: 7, Name: "Handouts", FullName: "handouts", ContextType: "Course", ContextID: 5},
		{ID: 8, Name: "Slides", FullName: "slides", ContextType: "Course", ContextID: 5},
	}

	root := assembleTree(5, folders, nil)
	if root.ID != 7 {
		t.Errorf("root id = %d, want first candidate 7", root.ID)
	}
}

func TestSelectRootIgnoresOtherCourseContexts(t *testing.T) {
	folders := []rawFolder{
		{ID: 1, Name: "Wrong course", FullName: "course files", ContextType: "Course", ContextID: 99},
		{ID: 2, Name: "Right course", FullName: "files", ContextType: "Course", ContextID: 5},
	}

	root := assembleTree(5, folders, nil)
	if root.ID != 2 {
		t.Errorf("root id = %d, want 2", root.ID)
	}
}

func TestDegenerateRootSynthesized(t *testing.T) {
	folders := []rawFolder{
		{ID: 3, Name: "beta", FullName: "beta", ContextType: "User", ContextID: 1},
		{ID: 4, Name: "Alpha", FullName: "alpha", ContextType: "User", ContextID: 1},
	}

	root := assembleTree(5, folders, nil)
	if root.ID != 0 || root.Name != "Course Files" {
		t.Fatalf("expected virtual root, got %+v", root)
	}
	if len(root.Folders) != 2 {
		t.Fatalf("virtual root children = %d, want 2", len(root.Folders))
	}
	// Case-insensitive ordering.
	if root.Folders[0].ID != 4 || root.Folders[1].ID != 3 {
		t.Errorf("children order = %d, %d", root.Folders[0].ID, root.Folders[1].ID)
	}
}

func TestAssembleTreeNestingAndSorting(t *testing.T) {
	folders := []rawFolder{
		{ID: 1, Name: "course files", FullName: "course files", ContextType: "Course", ContextID: 5},
		{ID: 2, Name: "zeta", FullName: "course files/zeta", ParentFolderID: intp(1)},
		{ID: 3, Name: "Alpha", FullName: "course files/Alpha", ParentFolderID: intp(1)},
		{ID: 4, Name: "alpha", FullName: "course files/alpha", ParentFolderID: intp(1)},
	}
	files := []rawFile{
		{ID: 10, DisplayName: "b.pdf", FolderID: intp(1)},
		{ID: 11, DisplayName: "A.pdf", FolderID: intp(1)},
		{ID: 12, DisplayName: "orphan.pdf", FolderID: nil},
		{ID: 13, DisplayName: "lost.pdf", FolderID: intp(999)},
	}

	root := assembleTree(5, folders, files)
	if root.ID != 1 {
		t.Fatalf("root id = %d", root.ID)
	}

	if len(root.Folders) != 3 {
		t.Fatalf("child folders = %d, want 3", len(root.Folders))
	}
	// "Alpha" (id 3) ties with "alpha" (id 4) case-insensitively; id breaks it.
	wantOrder := []int{3, 4, 2}
	for i, want := range wantOrder {
		if root.Folders[i].ID != want {
			t.Errorf("child %d id = %d, want %d", i, root.Folders[i].ID, want)
		}
	}

	if len(root.Files) != 2 {
		t.Fatalf("files = %d, want 2 (orphans dropped)", len(root.Files))
	}
	if root.Files[0].ID != 11 || root.Files[1].ID != 10 {
		t.Errorf("file order = %d, %d", root.Files[0].ID, root.Files[1].ID)
	}
}

func TestBuildFileTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/courses/5/folders":
			fmt.Fprint(w, `[
				{"id":1,"name":"course files","full_name":"course files","parent_folder_id":null,"context_type":"Course","context_id":5},
				{"id":2,"name":"week1","full_name":"course files/week1","parent_folder_id":1}
			]`)
		case "/api/v1/courses/5/files":
			fmt.Fprint(w, `[{"id":10,"display_name":"notes.pdf","folder_id":2,"size":1024,"content-type":"application/pdf"}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "tok", testLogger(), "")
	root, err := client.BuildFileTree(context.Background(), 5)
	if err != nil {
		t.Fatalf("BuildFileTree: %v", err)
	}
	if root.ID != 1 || len(root.Folders) != 1 {
		t.Fatalf("unexpected root %+v", root)
	}
	week1 := root.Folders[0]
	if week1.Name != "week1" || len(week1.Files) != 1 {
		t.Fatalf("unexpected child %+v", week1)
	}
	file := week1.Files[0]
	if file.DisplayName != "notes.pdf" || file.ContentType != "application/pdf" || file.Size != 1024 {
		t.Errorf("unexpected file %+v", file)
	}
}
