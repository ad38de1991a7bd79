package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"examtrack-backend/internal/middleware"
	"examtrack-backend/internal/models"
	"examtrack-backend/internal/repository"
)

// AuthService is the thin identity boundary the rest of the API needs.
// Token issuing and password hashing only; identity federation belongs to an
// external provider.
type AuthService struct {
	userRepo    *repository.UserRepo
	profileRepo *repository.ProfileRepo
	jwt         *middleware.JWTAuth
}

func NewAuthService(userRepo *repository.UserRepo, profileRepo *repository.ProfileRepo, jwt *middleware.JWTAuth) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		jwt:         jwt,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	fieldErrors := make(map[string]string)

	if req.DisplayName == "" {
		fieldErrors["display_name"] = "Display name is required"
	}
	if !emailRegex.MatchString(req.Email) {
		fieldErrors["email"] = "Invalid email format"
	}
	if len(req.Password) < 8 {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}
	if len(fieldErrors) > 0 {
		return nil, "", &ValidationError{Fields: fieldErrors}
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", &ConflictError{Message: "An account with this email already exists"}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	// Every student starts with a zero-activity profile.
	if err := s.profileRepo.Create(ctx, user.ID, models.NewStudentProfile(user.DisplayName)); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", &UnauthorizedError{Message: "Invalid email or password"}
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, "", &UnauthorizedError{Message: "Invalid email or password"}
	}

	s.userRepo.UpdateLastLogin(ctx, user.ID)

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }
