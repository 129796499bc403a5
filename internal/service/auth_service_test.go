package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type mockAuthRepo struct {
	users            map[string]*models.User
	profiles         map[string]*models.Profile
	refreshTokens    map[string]*models.RefreshToken
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
	revokedAll       bool
	createErr        error
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:         make(map[string]*models.User),
		profiles:      make(map[string]*models.Profile),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

func (m *mockAuthRepo) addUser(t *testing.T, id, email, password string, role models.UserRole, status *models.ProfileStatus) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: id, Email: email, PasswordHash: string(hash), FullName: "Test User", Role: role, Active: true}
	m.users[id] = user
	m.profiles[id] = &models.Profile{ID: "p-" + id, UserID: id, Email: email, Status: status}
	return user
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) CreateAccount(ctx context.Context, user *models.User, profile *models.Profile) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "u" + time.Now().Format("150405.000000000")
	profile.ID = "p-" + user.ID
	profile.UserID = user.ID
	m.users[user.ID] = user
	m.profiles[user.ID] = profile
	return nil
}

func (m *mockAuthRepo) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if u, ok := m.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAll = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newTestAuthService(repo *mockAuthRepo, adminSecret string) *AuthService {
	return NewAuthService(repo, repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		AdminSecret:        adminSecret,
	})
}

func TestAuthServiceSignUpCreatesVolunteer(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo, "")

	res, err := svc.SignUp(context.Background(), dto.SignUpRequest{Email: "New@Example.com ", Password: "secret1", FullName: "Amal"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleVolunteer, res.User.Role)
	assert.NotEmpty(t, res.User.ProfileID)
	assert.NotEmpty(t, res.AccessToken)

	profile := repo.profiles[res.User.ID]
	require.NotNil(t, profile)
	assert.Nil(t, profile.Status)
	assert.Equal(t, "new@example.com", profile.Email)
}

func TestAuthServiceSignUpDuplicateEmail(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "u1", "taken@example.com", "secret1", models.RoleVolunteer, nil)
	svc := newTestAuthService(repo, "")

	_, err := svc.SignUp(context.Background(), dto.SignUpRequest{Email: "taken@example.com", Password: "secret1", FullName: "Amal"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))
}

func TestAuthServiceRegisterAdmin(t *testing.T) {
	cases := []struct {
		name     string
		secret   string
		code     string
		wantCode string
	}{
		{name: "matching code", secret: "s3cret", code: "s3cret"},
		{name: "wrong code", secret: "s3cret", code: "nope", wantCode: appErrors.ErrForbidden.Code},
		{name: "secret not configured", secret: "", code: "anything", wantCode: appErrors.ErrForbidden.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockAuthRepo()
			svc := newTestAuthService(repo, tc.secret)

			res, err := svc.RegisterAdmin(context.Background(), dto.AdminRegisterRequest{
				Email: "admin@example.com", Password: "secret1", FullName: "Admin", AdminCode: tc.code,
			})
			if tc.wantCode != "" {
				require.Error(t, err)
				assert.True(t, appErrors.HasCode(err, tc.wantCode))
				assert.Empty(t, repo.users)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.RoleAdmin, res.User.Role)
			assert.Equal(t, models.ProfileStatusActive, repo.profiles[res.User.ID].CurrentStatus())
		})
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "123", "user@example.com", "password", models.RoleVolunteer, nil)
	svc := newTestAuthService(repo, "")

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "p-123", res.User.ProfileID)
	assert.True(t, repo.lastLoginUpdated)
	assert.Len(t, repo.auditLogs, 1)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "p-123", claims.ProfileID)
}

func TestAuthServiceLoginNormalizesEmail(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "123", "user@example.com", "password", models.RoleVolunteer, nil)
	svc := newTestAuthService(repo, "")

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "  User@Example.COM ", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "p-123", res.User.ProfileID)
}

func TestAuthServiceRegisterAdminNormalizesEmail(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo, "s3cret")

	res, err := svc.RegisterAdmin(context.Background(), dto.AdminRegisterRequest{
		Email: " Chief@Example.org", Password: "secret1", FullName: "Chief", AdminCode: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "chief@example.org", repo.profiles[res.User.ID].Email)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "123", "user@example.com", "password", models.RoleVolunteer, nil)
	svc := newTestAuthService(repo, "")

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := newMockAuthRepo()
	user := repo.addUser(t, "123", "user@example.com", "password", models.RoleVolunteer, nil)
	user.Active = false
	svc := newTestAuthService(repo, "")

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshToken(t *testing.T) {
	repo := newMockAuthRepo()
	user := repo.addUser(t, "u1", "user@example.com", "password", models.RoleAdmin, nil)
	repo.refreshTokens["token"] = &models.RefreshToken{ID: "rt1", UserID: user.ID, Token: "token", ExpiresAt: time.Now().Add(time.Hour)}
	svc := newTestAuthService(repo, "")

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := newMockAuthRepo()
	repo.refreshTokens["token"] = &models.RefreshToken{ID: "rt1", UserID: "someone-else", Token: "token", ExpiresAt: time.Now().Add(time.Hour)}
	svc := newTestAuthService(repo, "")

	err := svc.Logout(context.Background(), &models.Session{UserID: "u1"}, "token", "", "")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
	assert.False(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := newMockAuthRepo()
	user := repo.addUser(t, "u1", "user@example.com", "old", models.RoleVolunteer, nil)
	oldHash := user.PasswordHash
	svc := newTestAuthService(repo, "")

	err := svc.ChangePassword(context.Background(), &models.Session{UserID: "u1"}, models.ChangePasswordRequest{OldPassword: "old", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.True(t, repo.revokedAll)
}

func TestAuthServiceCurrentSession(t *testing.T) {
	pending := models.ProfileStatusPending
	rejected := models.ProfileStatusRejected
	reason := "missing documents"

	cases := []struct {
		name     string
		role     models.UserRole
		status   *models.ProfileStatus
		complete bool
		want     models.NextStep
	}{
		{name: "fresh volunteer", role: models.RoleVolunteer, want: models.NextStepOnboarding},
		{name: "pending volunteer", role: models.RoleVolunteer, status: &pending, complete: true, want: models.NextStepAwaitingApproval},
		{name: "rejected volunteer", role: models.RoleVolunteer, status: &rejected, complete: true, want: models.NextStepRejected},
		{name: "admin", role: models.RoleAdmin, want: models.NextStepReady},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockAuthRepo()
			repo.addUser(t, "u1", "user@example.com", "password", tc.role, tc.status)
			if tc.complete {
				fillProfile(repo.profiles["u1"])
				repo.profiles["u1"].RejectionReason = &reason
			}
			svc := newTestAuthService(repo, "")

			res, err := svc.CurrentSession(context.Background(), &models.Session{UserID: "u1", Role: tc.role})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.NextStep)
			assert.Equal(t, "p-u1", res.User.ProfileID)
			if tc.want == models.NextStepRejected {
				require.NotNil(t, res.RejectionReason)
				assert.Equal(t, reason, *res.RejectionReason)
			}
		})
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo, "")
	token, err := svc.generateAccessToken(&models.User{ID: "u1", Email: "user@example.com", Role: models.RoleAdmin}, "p1")
	require.NoError(t, err)

	other := NewAuthService(repo, repo, nil, nil, AuthConfig{AccessTokenSecret: "other", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}

// fillProfile sets the mandatory onboarding fields.
func fillProfile(p *models.Profile) {
	gender, gov, city, phone := "femme", "Tunis", "Tunis", "+21620000000"
	dob := models.NewDate(time.Date(1995, 4, 2, 0, 0, 0, 0, time.UTC))
	p.Gender, p.Governorate, p.City, p.Phone = &gender, &gov, &city, &phone
	p.DateOfBirth = &dob
}
