package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/burakyalinat/portfolio/internal/apperror"
	"github.com/burakyalinat/portfolio/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeProjectRepo is an in-memory repository.ProjectRepository.
// It mimics the SQLite store closely enough for the service rules:
// ids increase and are never reused, unknown ids report ErrNotFound.
type fakeProjectRepo struct {
	projects map[int64]model.Project
	nextID   int64
	// set to a non-nil error to simulate a database failure
	createErr error
	listErr   error
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[int64]model.Project), nextID: 1}
}

func (f *fakeProjectRepo) CreateProject(ctx context.Context, p *model.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.projects[p.ID] = *p
	return nil
}

func (f *fakeProjectRepo) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, apperror.NotFound("project", id)
	}
	return &p, nil
}

func (f *fakeProjectRepo) ListProjects(ctx context.Context) ([]model.Project, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProjectRepo) PatchProject(ctx context.Context, id int64, patch model.ProjectPatch) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, apperror.NotFound("project", id)
	}
	p.Apply(patch)
	p.UpdatedAt = time.Now()
	f.projects[id] = p
	return &p, nil
}

func (f *fakeProjectRepo) DeleteProject(ctx context.Context, id int64) error {
	if _, ok := f.projects[id]; !ok {
		return apperror.NotFound("project", id)
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectRepo) CountProjects(ctx context.Context) (int, error) {
	return len(f.projects), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProjectService(repo *fakeProjectRepo) *ProjectService {
	return NewProjectService(repo, discardLogger())
}

func strPtr(s string) *string { return &s }

func mustAdd(t *testing.T, svc *ProjectService, in ProjectInput) *model.Project {
	t.Helper()
	p, err := svc.AddProject(context.Background(), in)
	if err != nil {
		t.Fatalf("AddProject(%+v) error = %v", in, err)
	}
	return p
}

// =========================================================================
// AddProject TESTS
// =========================================================================

func TestAddProject_StoresTrimmedFields(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := newTestProjectService(repo)

	p := mustAdd(t, svc, ProjectInput{
		Title:       "  Chat Bot  ",
		Description: "Gemini powered\n",
		GitHubLink:  " https://github.com/burakyalinat/chat ",
	})

	if p.ID == 0 {
		t.Error("ID should be assigned")
	}
	if p.Title != "Chat Bot" {
		t.Errorf("Title = %q, want %q", p.Title, "Chat Bot")
	}
	if p.Description != "Gemini powered" {
		t.Errorf("Description = %q, want %q", p.Description, "Gemini powered")
	}
	if p.GitHubLink != "https://github.com/burakyalinat/chat" {
		t.Errorf("GitHubLink = %q", p.GitHubLink)
	}
	if n, _ := repo.CountProjects(context.Background()); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestAddProject_OptionalLinksDefaultToEmpty(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())

	p := mustAdd(t, svc, ProjectInput{Title: "T", Description: "D"})

	if p.GitHubLink != "" || p.ImageURL != "" {
		t.Errorf("links = (%q, %q), want both empty", p.GitHubLink, p.ImageURL)
	}
}

func TestAddProject_ValidationLeavesStoreUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		in    ProjectInput
		field string
	}{
		{"missing title", ProjectInput{Description: "D"}, "title"},
		{"blank title", ProjectInput{Title: "   ", Description: "D"}, "title"},
		{"missing description", ProjectInput{Title: "T"}, "description"},
		{"blank description", ProjectInput{Title: "T", Description: "\t"}, "description"},
		{"title too long", ProjectInput{Title: strings.Repeat("x", MaxTitleLength+1), Description: "D"}, "title"},
		{"image url too long", ProjectInput{Title: "T", Description: "D", ImageURL: strings.Repeat("x", MaxLinkLength+1)}, "image_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeProjectRepo()
			svc := newTestProjectService(repo)
			mustAdd(t, svc, ProjectInput{Title: "Existing", Description: "D"})

			_, err := svc.AddProject(context.Background(), tt.in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.field)
			}
			if n, _ := repo.CountProjects(context.Background()); n != 1 {
				t.Errorf("count = %d, want 1 (nothing written)", n)
			}
		})
	}
}

func TestAddProject_TitleLimitCountsCharacters(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())

	// 200 two-byte runes: over 200 bytes, exactly 200 characters.
	title := strings.Repeat("ş", MaxTitleLength)
	if _, err := svc.AddProject(context.Background(), ProjectInput{Title: title, Description: "D"}); err != nil {
		t.Fatalf("AddProject() error = %v, want nil for %d characters", err, MaxTitleLength)
	}
}

func TestAddProject_RepositoryError(t *testing.T) {
	repo := newFakeProjectRepo()
	repo.createErr = errors.New("disk full")
	svc := newTestProjectService(repo)

	_, err := svc.AddProject(context.Background(), ProjectInput{Title: "T", Description: "D"})
	if err == nil || errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want the repository error", err)
	}
}

// =========================================================================
// EditProject TESTS
// =========================================================================

func TestEditProject_OnlyTitleChanges(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())
	orig := mustAdd(t, svc, ProjectInput{
		Title: "Old", Description: "Desc", GitHubLink: "gh", ImageURL: "img",
	})

	got, err := svc.EditProject(context.Background(), orig.ID, model.ProjectPatch{Title: strPtr("New")})
	if err != nil {
		t.Fatalf("EditProject() error = %v", err)
	}

	if got.Title != "New" {
		t.Errorf("Title = %q, want %q", got.Title, "New")
	}
	if got.Description != "Desc" || got.GitHubLink != "gh" || got.ImageURL != "img" {
		t.Errorf("other fields changed: %+v", got)
	}
}

func TestEditProject_BlankTitleKeepsOldValue(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())
	orig := mustAdd(t, svc, ProjectInput{Title: "Keep me", Description: "Desc"})

	got, err := svc.EditProject(context.Background(), orig.ID, model.ProjectPatch{
		Title:       strPtr("  "),
		Description: strPtr(""),
		ImageURL:    strPtr("new.png"),
	})
	if err != nil {
		t.Fatalf("EditProject() error = %v", err)
	}

	if got.Title != "Keep me" {
		t.Errorf("Title = %q, want %q", got.Title, "Keep me")
	}
	if got.Description != "Desc" {
		t.Errorf("Description = %q, want %q", got.Description, "Desc")
	}
	if got.ImageURL != "new.png" {
		t.Errorf("ImageURL = %q, want %q", got.ImageURL, "new.png")
	}
}

func TestEditProject_BlankLinkClearsIt(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())
	orig := mustAdd(t, svc, ProjectInput{Title: "T", Description: "D", GitHubLink: "https://github.com/x"})

	got, err := svc.EditProject(context.Background(), orig.ID, model.ProjectPatch{GitHubLink: strPtr(" ")})
	if err != nil {
		t.Fatalf("EditProject() error = %v", err)
	}
	if got.GitHubLink != "" {
		t.Errorf("GitHubLink = %q, want empty", got.GitHubLink)
	}
}

func TestEditProject_EmptyPatchReturnsCurrent(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())
	orig := mustAdd(t, svc, ProjectInput{Title: "T", Description: "D"})

	got, err := svc.EditProject(context.Background(), orig.ID, model.ProjectPatch{})
	if err != nil {
		t.Fatalf("EditProject() error = %v", err)
	}
	if got.Title != "T" {
		t.Errorf("Title = %q, want %q", got.Title, "T")
	}
}

func TestEditProject_NotFound(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())

	for _, patch := range []model.ProjectPatch{{}, {Title: strPtr("x")}} {
		_, err := svc.EditProject(context.Background(), 999, patch)
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("EditProject(999, %+v) error = %v, want ErrNotFound", patch, err)
		}
	}
}

func TestEditProject_LinkTooLong(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())
	orig := mustAdd(t, svc, ProjectInput{Title: "T", Description: "D"})

	_, err := svc.EditProject(context.Background(), orig.ID, model.ProjectPatch{
		GitHubLink: strPtr(strings.Repeat("g", MaxLinkLength+1)),
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// DeleteProject / ListProjects TESTS
// =========================================================================

func TestDeleteProject_RemovesOnlyThatProject(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := newTestProjectService(repo)
	a := mustAdd(t, svc, ProjectInput{Title: "A", Description: "D"})
	b := mustAdd(t, svc, ProjectInput{Title: "B", Description: "D"})

	if err := svc.DeleteProject(context.Background(), a.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}

	list, err := svc.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("remaining = %+v, want only project %d", list, b.ID)
	}
}

func TestDeleteProject_NotFound(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())

	if err := svc.DeleteProject(context.Background(), 42); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListProjects_AscendingIDs(t *testing.T) {
	svc := newTestProjectService(newFakeProjectRepo())
	for _, title := range []string{"one", "two", "three"} {
		mustAdd(t, svc, ProjectInput{Title: title, Description: "D"})
	}

	list, err := svc.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatalf("ids not ascending: %d then %d", list[i-1].ID, list[i].ID)
		}
	}
}

func TestListProjects_RepositoryError(t *testing.T) {
	repo := newFakeProjectRepo()
	repo.listErr = errors.New("locked")
	svc := newTestProjectService(repo)

	if _, err := svc.ListProjects(context.Background()); err == nil {
		t.Fatal("ListProjects() should propagate repository errors")
	}
}
