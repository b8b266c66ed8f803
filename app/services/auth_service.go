package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// Claims is the JWT payload issued on every successful authentication.
// Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepo  repositories.UserRepositoryImpl
	jwtSecret []byte
}

func NewAuthService(userRepo repositories.UserRepositoryImpl, jwtSecret []byte) *AuthService {
	return &AuthService{userRepo: userRepo, jwtSecret: jwtSecret}
}

// Register creates a password-based account. A user that only ever existed
// implicitly (guest checkout by phone, the AUTO flow) is upgraded in place
// instead of rejected, so their order history survives the upgrade.
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (*models.User, string, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if existing == nil && phone != "" {
		existing, err = s.userRepo.FindByPhone(ctx, phone)
		if err != nil {
			return nil, "", fmt.Errorf("failed to look up user: %w", err)
		}
	}
	if existing != nil && !existing.AutoOnly() {
		return nil, "", apperrors.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	var user *models.User
	if existing != nil {
		existing.Name = name
		existing.Email = &email
		if phone != "" {
			existing.Phone = &phone
		}
		existing.Password = &hashed
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, "", fmt.Errorf("failed to upgrade user: %w", err)
		}
		if err := s.userRepo.AddAuthMethod(ctx, existing.ID, models.AuthFlowBasic); err != nil {
			return nil, "", fmt.Errorf("failed to attach auth method: %w", err)
		}
		user = existing
	} else {
		user = &models.User{
			Name:     name,
			Email:    &email,
			Password: &hashed,
			Role:     models.RoleUser,
			AuthMethods: []models.AuthMethod{
				{Name: models.AuthFlowBasic},
			},
		}
		if phone != "" {
			user.Phone = &phone
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to create user: %w", err)
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates the password flow. Accounts created through Google or
// guest checkout have no password; they get a dedicated error instead of a
// generic mismatch so the client can point at the right flow.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, "", apperrors.ErrUserNotFound
	}
	if user.Password == nil || !user.HasFlow(models.AuthFlowBasic) {
		return nil, "", apperrors.ErrBasicFlowIncomplete
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidPassword
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LoginGoogle signs a user in from an already verified Google profile. The
// id-token verification itself happens upstream; this only maps the profile
// onto a local account, creating or linking one as needed.
func (s *AuthService) LoginGoogle(ctx context.Context, email, name string) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		user = &models.User{
			Name:  name,
			Email: &email,
			Role:  models.RoleUser,
			AuthMethods: []models.AuthMethod{
				{Name: models.AuthFlowGoogle},
			},
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to create user: %w", err)
		}
	} else if !user.HasFlow(models.AuthFlowGoogle) {
		if err := s.userRepo.AddAuthMethod(ctx, user.ID, models.AuthFlowGoogle); err != nil {
			return nil, "", fmt.Errorf("failed to attach auth method: %w", err)
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetProfile returns the requesting user's own record.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile rewrites the user's own name, email and phone. A new email
// or phone must not collide with another account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, email, phone string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if email != "" && (user.Email == nil || *user.Email != email) {
		taken, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		if taken != nil && taken.ID != userID {
			return nil, apperrors.ErrUserAlreadyExists
		}
		user.Email = &email
	}
	if phone != "" && (user.Phone == nil || *user.Phone != phone) {
		taken, err := s.userRepo.FindByPhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		if taken != nil && taken.ID != userID {
			return nil, apperrors.ErrUserAlreadyExists
		}
		user.Phone = &phone
	}
	if name != "" {
		user.Name = name
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the old password before setting the new one. An
// account without a password yet (Google or guest origin) sets its first
// password here and gains the password flow.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	if user.Password != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(oldPassword)); err != nil {
			return apperrors.ErrWrongOldPassword
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if !user.HasFlow(models.AuthFlowBasic) {
		if err := s.userRepo.AddAuthMethod(ctx, userID, models.AuthFlowBasic); err != nil {
			return fmt.Errorf("failed to attach auth method: %w", err)
		}
	}
	return nil
}

// ParseToken validates a bearer token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	claims := Claims{
		Email: email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
