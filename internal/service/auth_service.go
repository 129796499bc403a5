package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/database"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAccount(ctx context.Context, user *models.User, profile *models.Profile) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type authProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
	Audience           []string
	SingleSession      bool
	// AdminSecret gates admin self-registration. Empty disables it.
	AdminSecret string
}

// AuthService provides identity and session use cases.
type AuthService struct {
	repo      authUserRepository
	profiles  authProfileRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, profiles authProfileRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	return &AuthService{repo: repo, profiles: profiles, validator: newValidator(validate), logger: newLogger(logger), config: config}
}

// SignUp creates a volunteer account with an empty profile and signs it in.
// The role is always volunteer regardless of the payload.
func (s *AuthService) SignUp(ctx context.Context, req dto.SignUpRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid sign up payload")
	}
	user, profile, err := s.createAccount(ctx, req.Email, req.Password, req.FullName, req.Phone, models.RoleVolunteer, nil)
	if err != nil {
		return nil, err
	}
	writeAudit(ctx, s.repo, s.logger, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionSignUp,
		Resource:   "auth",
		ResourceID: &user.ID,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	})
	return s.issueTokens(ctx, user, profile.ID, req.IP, req.UserAgent)
}

// RegisterAdmin creates an administrator when the shared code matches the configured secret.
func (s *AuthService) RegisterAdmin(ctx context.Context, req dto.AdminRegisterRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid admin registration payload")
	}
	if !s.adminCodeMatches(req.AdminCode) {
		s.logger.Warn("admin registration refused", zap.String("email", req.Email), zap.String("ip", req.IP))
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid admin code")
	}
	active := models.ProfileStatusActive
	user, profile, err := s.createAccount(ctx, req.Email, req.Password, req.FullName, "", models.RoleAdmin, &active)
	if err != nil {
		return nil, err
	}
	writeAudit(ctx, s.repo, s.logger, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionAdminRegister,
		Resource:   "auth",
		ResourceID: &user.ID,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	})
	return s.issueTokens(ctx, user, profile.ID, req.IP, req.UserAgent)
}

// BootstrapAdmin creates an administrator without the shared code. It backs the operator CLI.
func (s *AuthService) BootstrapAdmin(ctx context.Context, email, password, fullName string) (*models.User, error) {
	email = normalizeEmail(email)
	req := dto.AdminRegisterRequest{Email: email, Password: password, FullName: fullName, AdminCode: "cli"}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid admin payload")
	}
	active := models.ProfileStatusActive
	user, _, err := s.createAccount(ctx, email, password, fullName, "", models.RoleAdmin, &active)
	return user, err
}

// normalizeEmail is applied before validation and lookups.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) adminCodeMatches(code string) bool {
	if s.config.AdminSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(s.config.AdminSecret)) == 1
}

func (s *AuthService) createAccount(ctx context.Context, email, password, fullName, phone string, role models.UserRole, status *models.ProfileStatus) (*models.User, *models.Profile, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, internalError(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, internalError(err, "failed to hash password")
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		Active:       true,
	}
	profile := &models.Profile{
		FullName: user.FullName,
		Email:    email,
		Phone:    nullIfEmpty(phone),
		Status:   status,
	}
	if err := s.repo.CreateAccount(ctx, user, profile); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, nil, internalError(err, "failed to create account")
	}
	return user, profile, nil
}

// Login authenticates a user and returns issued tokens.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, internalError(err, "failed to fetch user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if s.config.SingleSession {
		if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
			s.logger.Warn("failed to revoke previous refresh tokens", zap.Error(err))
		}
	}

	profileID, err := s.profileID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	resp, err := s.issueTokens(ctx, user, profileID, req.IP, req.UserAgent)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	writeAudit(ctx, s.repo, s.logger, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: &user.ID,
		NewValues:  []byte(`{"status":"success"}`),
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	})
	return resp, nil
}

// RefreshToken exchanges a refresh token for a new access token pair.
func (s *AuthService) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid refresh payload")
	}

	storedToken, err := s.repo.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return nil, internalError(err, "failed to fetch refresh token")
	}
	if storedToken.Revoked || time.Now().UTC().After(storedToken.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is expired or revoked")
	}

	user, err := s.repo.FindByID(ctx, storedToken.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "associated user no longer exists")
		}
		return nil, internalError(err, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := s.repo.RevokeRefreshToken(ctx, storedToken.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to revoke used refresh token", zap.Error(err))
	}

	profileID, err := s.profileID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	resp, err := s.issueTokens(ctx, user, profileID, req.IP, req.UserAgent)
	if err != nil {
		return nil, err
	}
	return &models.RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		IssuedAt:     resp.IssuedAt,
	}, nil
}

// Logout revokes the provided refresh token.
func (s *AuthService) Logout(ctx context.Context, session *models.Session, refreshToken, ip, userAgent string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	storedToken, err := s.repo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return internalError(err, "failed to load refresh token")
	}
	if storedToken.UserID != session.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "token does not belong to user")
	}
	if err := s.repo.RevokeRefreshToken(ctx, storedToken.ID, time.Now().UTC()); err != nil {
		return internalError(err, "failed to revoke refresh token")
	}
	writeAudit(ctx, s.repo, s.logger, &models.AuditLog{
		UserID:     &session.UserID,
		Action:     models.AuditActionLogout,
		Resource:   "auth",
		ResourceID: &session.UserID,
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
	return nil
}

// ChangePassword replaces the caller's password and revokes their refresh tokens.
func (s *AuthService) ChangePassword(ctx context.Context, session *models.Session, req models.ChangePasswordRequest) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid change password payload")
	}

	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		return notFoundOr(err, "user not found", "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalError(err, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(newHash), time.Now().UTC()); err != nil {
		return internalError(err, "failed to update password")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens after password change", zap.Error(err))
	}
	writeAudit(ctx, s.repo, s.logger, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionPasswordChange,
		Resource:   "auth",
		ResourceID: &user.ID,
	})
	return nil
}

// CurrentSession resolves the caller's account, profile and routing decision.
func (s *AuthService) CurrentSession(ctx context.Context, session *models.Session) (*dto.SessionResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, internalError(err, "failed to load user")
	}
	profile, err := s.profiles.FindByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to load profile")
	}

	resp := &dto.SessionResponse{
		User: models.UserInfo{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: user.Role},
		Role: user.Role,
	}
	if profile == nil {
		resp.NextStep = models.NextStepOnboarding
		return resp, nil
	}
	resp.User.ProfileID = profile.ID
	resp.Profile = profile
	resp.Status = string(profile.CurrentStatus())
	resp.ProfileComplete = profile.IsComplete()
	resp.NextStep = profile.NextStep()
	if user.Role == models.RoleAdmin {
		resp.NextStep = models.NextStepReady
	}
	if profile.CurrentStatus() == models.ProfileStatusRejected {
		resp.RejectionReason = profile.RejectionReason
	}
	return resp, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) profileID(ctx context.Context, userID string) (string, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", internalError(err, "failed to load profile")
	}
	return profile.ID, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, profileID, ip, userAgent string) (*models.LoginResponse, error) {
	accessToken, err := s.generateAccessToken(user, profileID)
	if err != nil {
		return nil, internalError(err, "failed to create access token")
	}
	refreshTokenValue, err := generateRefreshTokenString()
	if err != nil {
		return nil, internalError(err, "failed to create refresh token")
	}
	now := time.Now().UTC()
	refreshToken := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     refreshTokenValue,
		ExpiresAt: now.Add(s.config.RefreshTokenExpiry),
		CreatedAt: now,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.repo.CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, internalError(err, "failed to persist refresh token")
	}
	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:     now,
		User: models.UserInfo{
			ID:        user.ID,
			ProfileID: profileID,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      user.Role,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, profileID string) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:    user.ID,
		ProfileID: profileID,
		Role:      user.Role,
		Email:     user.Email,
		FullName:  user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			Audience:  s.config.Audience,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}

func generateRefreshTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
