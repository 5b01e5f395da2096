package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"learnoted/internal/domain"
	"learnoted/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrOAuthInvalid       = errors.New("oauth data invalid")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
)

// UserService coordina reglas de negocio para usuarios.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
	}
}

type CreateUserInput struct {
	Email        string
	DisplayName  string
	AuthProvider string
	AuthSubject  string
	Password     string
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		return domain.User{}, ErrInvalidEmail
	}

	displayName := strings.TrimSpace(input.DisplayName)
	authProvider := strings.ToLower(strings.TrimSpace(input.AuthProvider))
	authSubject := strings.TrimSpace(input.AuthSubject)
	password := strings.TrimSpace(input.Password)

	var passwordHash string
	if password != "" {
		hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		passwordHash = string(hashBytes)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:               uuid.NewString(),
		Email:            email,
		DisplayName:      displayName,
		AuthProvider:     authProvider,
		AuthSubject:      authSubject,
		PasswordHash:     passwordHash,
		SubscriptionPlan: domain.PlanFree,
		WordSearchCount:  0,
		MonthlyResetDate: now,
		CreatedAt:        now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

type OAuthInput struct {
	Provider    string
	Subject     string
	Email       string
	DisplayName string
}

// UpsertOAuthUser crea el usuario en su primera autenticación exitosa, o
// vincula la identidad OAuth a un registro existente con el mismo email.
func (s *UserService) UpsertOAuthUser(ctx context.Context, input OAuthInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	subject := strings.TrimSpace(input.Subject)
	emailAddr := normalizeEmail(input.Email)
	displayName := strings.TrimSpace(input.DisplayName)

	if provider == "" || subject == "" {
		return domain.User{}, ErrOAuthInvalid
	}

	user, err := s.users.GetByAuth(ctx, provider, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	if emailAddr != "" {
		existing, err := s.users.GetByEmail(ctx, emailAddr)
		if err == nil {
			if err := s.users.LinkOAuth(ctx, existing.ID, provider, subject); err != nil {
				return domain.User{}, err
			}
			existing.AuthProvider = provider
			existing.AuthSubject = subject
			if displayName != "" && existing.DisplayName == "" {
				existing.DisplayName = displayName
			}
			return existing, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, err
		}
	}

	if emailAddr == "" {
		return domain.User{}, ErrOAuthInvalid
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:               uuid.NewString(),
		Email:            emailAddr,
		DisplayName:      displayName,
		AuthProvider:     provider,
		AuthSubject:      subject,
		SubscriptionPlan: domain.PlanFree,
		WordSearchCount:  0,
		MonthlyResetDate: now,
		CreatedAt:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
