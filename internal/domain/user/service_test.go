package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/apperror"
	"github.com/your-org/storefront/internal/pkg/logger"
)

type memRepo struct {
	byID map[string]User
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]User{}}
}

func (m *memRepo) emailTaken(email, exceptID string) bool {
	for id, u := range m.byID {
		if u.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

func (m *memRepo) Create(_ context.Context, u *User) error {
	if m.emailTaken(u.Email, "") {
		return apperror.Conflict("user with this email already exists")
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memRepo) FindByID(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (m *memRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *memRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	if m.emailTaken(u.Email, u.ID) {
		return apperror.Conflict("user with this email already exists")
	}
	m.byID[u.ID] = *u
	return nil
}

type recordingNotifier struct {
	welcomed []string
	err      error
}

func (r *recordingNotifier) SendWelcomeEmail(_ context.Context, email, _ string) error {
	r.welcomed = append(r.welcomed, email)
	return r.err
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Storefront"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func newTestService() (*Service, *memRepo, *recordingNotifier) {
	repo := newMemRepo()
	n := &recordingNotifier{}
	return NewService(repo, n, testConfig(), logger.Discard()), repo, n
}

func register(t *testing.T, s *Service, email string) *AuthResponse {
	t.Helper()
	resp, err := s.Register(context.Background(), &RegisterRequest{
		FirstName: "Jane", LastName: "Doe", Email: email, Password: "correct-horse1",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	s, repo, n := newTestService()

	resp := register(t, s, "  Jane@Example.com ")
	assert.Equal(t, "Jane Doe", resp.User.Name)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, []string{"jane@example.com"}, n.welcomed)

	stored := repo.byID[resp.User.ID]
	assert.NotEqual(t, "correct-horse1", stored.Password)
	assert.Equal(t, "Jane", stored.FirstName())
}

func TestRegister_Validation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	_, err := s.Register(ctx, &RegisterRequest{Email: "a@b.com"})
	ve, ok := apperror.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"first_name", "last_name", "password"}, ve.Fields)

	_, err = s.Register(ctx, &RegisterRequest{FirstName: "a", LastName: "b", Email: "not-an-email", Password: "correct-horse1"})
	ve, ok = apperror.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"email"}, ve.Fields)

	_, err = s.Register(ctx, &RegisterRequest{FirstName: "a", LastName: "b", Email: "a@b.com", Password: "short"})
	ve, ok = apperror.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"password"}, ve.Fields)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _, _ := newTestService()
	register(t, s, "jane@example.com")

	_, err := s.Register(context.Background(), &RegisterRequest{
		FirstName: "J", LastName: "D", Email: "JANE@example.com", Password: "correct-horse1",
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRegister_WelcomeFailureIsIgnored(t *testing.T) {
	s, _, n := newTestService()
	n.err = errors.New("smtp down")

	resp := register(t, s, "jane@example.com")
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogin(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()
	reg := register(t, s, "jane@example.com")

	resp, err := s.Login(ctx, &LoginRequest{Email: "JANE@example.com", Password: "correct-horse1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)
	assert.NotNil(t, repo.byID[reg.User.ID].LastLoginAt)

	_, err = s.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "wrong-password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperror.ErrNotAuthenticated)

	_, err = s.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "correct-horse1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()
	reg := register(t, s, "jane@example.com")

	resp, err := s.RefreshToken(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)

	_, err = s.RefreshToken(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrNotAuthenticated)

	delete(repo.byID, reg.User.ID)
	_, err = s.RefreshToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrNotAuthenticated)
}

func TestUpdateSettings(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()
	jane := register(t, s, "jane@example.com")
	register(t, s, "john@example.com")

	u, err := s.UpdateSettings(ctx, jane.User.ID, &SettingsRequest{Name: "Jane Smith"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", u.Name)
	assert.Equal(t, "jane@example.com", u.Email)

	_, err = s.UpdateSettings(ctx, jane.User.ID, &SettingsRequest{Email: "john@example.com"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = s.UpdateSettings(ctx, jane.User.ID, &SettingsRequest{Email: "bad"})
	_, ok := apperror.IsValidation(err)
	assert.True(t, ok)

	u, err = s.UpdateSettings(ctx, jane.User.ID, &SettingsRequest{Email: "Jane.Smith@example.com", Password: "new-secret-42"})
	require.NoError(t, err)
	assert.Equal(t, "jane.smith@example.com", repo.byID[jane.User.ID].Email)

	_, err = s.Login(ctx, &LoginRequest{Email: "jane.smith@example.com", Password: "new-secret-42"})
	assert.NoError(t, err)
	_, err = s.Login(ctx, &LoginRequest{Email: "jane.smith@example.com", Password: "correct-horse1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.UpdateSettings(ctx, "", &SettingsRequest{})
	assert.ErrorIs(t, err, apperror.ErrNotAuthenticated)
	_, err = s.UpdateSettings(ctx, "ghost", &SettingsRequest{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
