// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// dummyPasswordHash is compared against when the email is unknown so that a
// miss costs about as much as a wrong password.
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("catalog-dummy-password"), bcrypt.DefaultCost)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
	now func() time.Time
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,confusable_email,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"max=255"`
	IsStaff  bool   `json:"isStaff"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
		now: time.Now,
	}
}

// Authenticate checks credentials and the account state. Every failure is
// reported as ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return nil, apperror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(password); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.IsActive || !user.JWTValidAfter.Before(s.now()) {
		return nil, apperror.ErrInvalidCredentials
	}

	return &user, nil
}

// Login authenticates a staff member and issues a token. Both graphs only
// accept staff credentials.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if verrs := utils.ValidateFields(req); verrs != nil {
		return nil, verrs
	}

	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if !user.IsStaff {
		return nil, apperror.ErrPermissionDenied
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}
	user.LastLoginAt = &now

	return &AuthResponse{User: user, Token: token}, nil
}

// IssueToken signs a token issued now. The issue instant is kept strictly
// after the user's watermark so a token minted right after a revocation in
// the same microsecond is still valid.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	issuedAt := s.now().Truncate(time.Microsecond)
	watermark := user.JWTValidAfter.Truncate(time.Microsecond)
	if !issuedAt.After(watermark) {
		issuedAt = watermark.Add(time.Microsecond)
	}

	token, err := utils.GenerateJWT(user.ID, issuedAt, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, nil
}

// ValidateToken resolves the user behind token. Tokens issued at or before
// the user's watermark are rejected.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ValidateJWT(token)
	if err != nil {
		return nil, apperror.ErrAuthenticationFailed
	}

	issuedAt, ok := claims.IssuedAtTime()
	if !ok {
		return nil, apperror.ErrAuthenticationFailed
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !user.IsActive {
		return nil, apperror.ErrAuthenticationFailed
	}

	if !issuedAt.After(user.JWTValidAfter.Truncate(time.Microsecond)) {
		return nil, apperror.ErrAuthenticationFailed
	}

	return &user, nil
}

// RevokeAllSessions moves the user's watermark to now, invalidating every
// token issued so far. The watermark never moves backwards.
func (s *AuthService) RevokeAllSessions(ctx context.Context, user *models.User) error {
	now := s.now()
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND jwt_valid_after < ?", user.ID, now).
		Update("jwt_valid_after", now)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke sessions: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		user.JWTValidAfter = now
	}

	logrus.WithField("user_id", user.ID).Info("User sessions revoked")
	return nil
}

// ChangePassword replaces the password, revokes every existing session and
// returns a token for the caller's new session.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, req *ChangePasswordRequest) (*AuthResponse, error) {
	if verrs := utils.ValidateFields(req); verrs != nil {
		return nil, verrs
	}

	if err := user.CheckPassword(req.OldPassword); err != nil {
		return nil, apperror.Field("oldPassword", i18n.KeyAuthWrongPassword, nil)
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.RevokeAllSessions(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// CreateUser registers an active account. Emails are unique regardless of case.
func (s *AuthService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if verrs := utils.ValidateFields(req); verrs != nil {
		return nil, verrs
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, apperror.Field("email", i18n.KeyValidationDuplicateName, apperror.ErrDuplicateName)
	}

	// Back-date the watermark one microsecond so the account can sign in at once.
	now := s.now()
	user := &models.User{
		Email:         email,
		FullName:      req.FullName,
		IsStaff:       req.IsStaff,
		IsActive:      true,
		JoinedAt:      now,
		JWTValidAfter: now.Add(-time.Microsecond),
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// EnsureStaffUser creates the configured staff account when no staff member
// exists yet. A password is generated and logged when none is configured.
func (s *AuthService) EnsureStaffUser(ctx context.Context, cfg config.AdminConfig) error {
	var staffCount int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("is_staff = ?", true).Count(&staffCount).Error; err != nil {
		return fmt.Errorf("failed to count staff users: %w", err)
	}
	if staffCount > 0 {
		return nil
	}

	password := cfg.Password
	if password == "" {
		generated, err := utils.GenerateRandomString(20)
		if err != nil {
			return fmt.Errorf("failed to generate admin password: %w", err)
		}
		password = generated
		logrus.WithFields(logrus.Fields{
			"email":    cfg.Email,
			"password": password,
		}).Warn("ADMIN_PASSWORD not set, generated a password for the default staff user")
	}

	user, err := s.CreateUser(ctx, &CreateUserRequest{
		Email:    cfg.Email,
		Password: password,
		FullName: cfg.FullName,
		IsStaff:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to create staff user: %w", err)
	}

	logrus.WithField("email", user.Email).Info("Default staff user created successfully")
	return nil
}
