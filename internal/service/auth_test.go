package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/burakyalinat/portfolio/internal/apperror"
	"github.com/burakyalinat/portfolio/internal/auth"
	"github.com/burakyalinat/portfolio/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeAdminRepo is an in-memory repository.AdminRepository.
type fakeAdminRepo struct {
	admins map[string]*model.Admin
	nextID int64
	// set to a non-nil error to simulate a database failure
	getErr error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*model.Admin), nextID: 1}
}

func (f *fakeAdminRepo) CreateAdmin(ctx context.Context, a *model.Admin) error {
	if _, ok := f.admins[a.Username]; ok {
		return apperror.Conflict("admin", a.Username)
	}
	a.ID = f.nextID
	f.nextID++
	a.CreatedAt = time.Now()
	copied := *a
	f.admins[a.Username] = &copied
	return nil
}

func (f *fakeAdminRepo) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.admins[username]
	if !ok {
		return nil, apperror.NotFound("admin", username)
	}
	return a, nil
}

func (f *fakeAdminRepo) CountAdmins(ctx context.Context) (int, error) {
	return len(f.admins), nil
}

// newTestAuthService returns an AuthService wired with fake dependencies.
func newTestAuthService(t *testing.T, repo *fakeAdminRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	// Cost 4 is bcrypt minimum, which makes tests fast
	ps := auth.NewPasswordServiceWithCost(4)

	return NewAuthService(repo, ts, ps, discardLogger())
}

func newServiceWithAdmin(t *testing.T) *AuthService {
	t.Helper()
	svc := newTestAuthService(t, newFakeAdminRepo())
	if _, err := svc.CreateAdmin(context.Background(), "admin", "correct horse"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	return svc
}

// =========================================================================
// Login TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	svc := newServiceWithAdmin(t)

	result, err := svc.Login(context.Background(), "admin", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Fatal("Login() returned empty Token")
	}
	if result.Principal != "admin" {
		t.Errorf("Principal = %q, want %q", result.Principal, "admin")
	}

	principal, err := svc.tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if principal != "admin" {
		t.Errorf("token principal = %q, want %q", principal, "admin")
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc := newServiceWithAdmin(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "wrong"},
		{"unknown user", "nobody", "correct horse"},
		{"empty input", "", ""},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Login(context.Background(), tt.username, tt.password)
			if result != nil {
				t.Fatalf("Login() result = %+v, want nil", result)
			}
			if !errors.Is(err, apperror.ErrUnauthorized) {
				t.Fatalf("error = %v, want ErrUnauthorized", err)
			}
			messages = append(messages, err.Error())
		})
	}

	for _, m := range messages[1:] {
		if m != messages[0] {
			t.Errorf("error messages differ: %q vs %q", messages[0], m)
		}
	}
}

func TestLogin_RepositoryErrorIsNotUnauthorized(t *testing.T) {
	repo := newFakeAdminRepo()
	repo.getErr = errors.New("database is locked")
	svc := newTestAuthService(t, repo)

	_, err := svc.Login(context.Background(), "admin", "pw")
	if err == nil || errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("error = %v, want the repository error", err)
	}
}

// =========================================================================
// LoginGitHub TESTS
// =========================================================================

func TestLoginGitHub_AllowlistedAccount(t *testing.T) {
	svc := newTestAuthService(t, newFakeAdminRepo())
	svc.AllowGitHubLogins([]string{" BurakYalinat ", ""})

	result, err := svc.LoginGitHub(context.Background(), &auth.GitHubUser{ID: 1, Login: "burakyalinat"})
	if err != nil {
		t.Fatalf("LoginGitHub() error = %v", err)
	}
	if result.Principal != "github:burakyalinat" {
		t.Errorf("Principal = %q, want %q", result.Principal, "github:burakyalinat")
	}
}

func TestLoginGitHub_Rejected(t *testing.T) {
	svc := newTestAuthService(t, newFakeAdminRepo())
	svc.AllowGitHubLogins([]string{"owner"})

	for _, u := range []*auth.GitHubUser{nil, {ID: 2, Login: "stranger"}} {
		if _, err := svc.LoginGitHub(context.Background(), u); !errors.Is(err, apperror.ErrUnauthorized) {
			t.Errorf("LoginGitHub(%+v) error = %v, want ErrUnauthorized", u, err)
		}
	}
}

// =========================================================================
// CreateAdmin TESTS
// =========================================================================

func TestCreateAdmin_StoresHashNotPassword(t *testing.T) {
	repo := newFakeAdminRepo()
	svc := newTestAuthService(t, repo)

	a, err := svc.CreateAdmin(context.Background(), " admin ", "s3cret")
	if err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}
	if a.Username != "admin" {
		t.Errorf("Username = %q, want trimmed %q", a.Username, "admin")
	}
	if a.PasswordHash == "" || a.PasswordHash == "s3cret" {
		t.Errorf("PasswordHash = %q, want a bcrypt hash", a.PasswordHash)
	}
}

func TestCreateAdmin_Validation(t *testing.T) {
	svc := newTestAuthService(t, newFakeAdminRepo())

	if _, err := svc.CreateAdmin(context.Background(), "", "pw"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("empty username: error = %v, want ErrValidation", err)
	}
	if _, err := svc.CreateAdmin(context.Background(), "admin", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("empty password: error = %v, want ErrValidation", err)
	}
}

func TestCreateAdmin_Duplicate(t *testing.T) {
	svc := newServiceWithAdmin(t)

	_, err := svc.CreateAdmin(context.Background(), "admin", "other")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}
