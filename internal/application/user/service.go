// Package user provides the application layer for account management
package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healyfit/healy/internal/domain/user"
	"github.com/healyfit/healy/internal/infrastructure/monitoring"
	"github.com/healyfit/healy/internal/ports/outbound"
	apperrors "github.com/healyfit/healy/pkg/errors"
)

// Service implements account management use cases
type Service struct {
	userRepo      outbound.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	validate      *validator.Validate
	logger        *zap.Logger
	metrics       *monitoring.Metrics
}

// NewService creates a new user service
func NewService(
	userRepo outbound.UserRepository,
	jwtSecret string,
	jwtExpiration time.Duration,
	logger *zap.Logger,
	metrics *monitoring.Metrics,
) *Service {
	return &Service{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		validate:      validator.New(),
		logger:        logger.Named("user-service"),
		metrics:       metrics,
	}
}

// RegisterCommand contains user registration data
type RegisterCommand struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required,min=2,max=100"`
	Password string `validate:"required,min=8,max=128"`
}

// LoginCommand contains user login data
type LoginCommand struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// UpdateProfileCommand contains fitness profile data
type UpdateProfileCommand struct {
	Age          int      `validate:"omitempty,min=13,max=120"`
	HeightCM     float64  `validate:"omitempty,min=50,max=280"`
	WeightKG     float64  `validate:"omitempty,min=20,max=500"`
	FitnessLevel string   `validate:"omitempty,oneof=beginner intermediate advanced"`
	Goals        []string `validate:"max=10,dive,max=200"`
	Injuries     []string `validate:"max=10,dive,max=200"`
}

// UserDTO represents user data exposed to the presentation layer
type UserDTO struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
}

// AuthResponse contains authentication response data
type AuthResponse struct {
	User        UserDTO
	AccessToken string
	ExpiresIn   int
}

// Claims represents JWT token claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*AuthResponse, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	s.logger.Info("Registering new user", zap.String("email", cmd.Email))

	// Check if user already exists
	if existing, err := s.userRepo.FindByEmail(ctx, cmd.Email); err == nil && existing != nil {
		return nil, apperrors.NewEmailAlreadyExistsError(cmd.Email)
	}

	newUser, err := user.NewUser(cmd.Email, cmd.Name, cmd.Password)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	accessToken, err := s.generateToken(newUser)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate token").WithCause(err)
	}

	s.logger.Info("User registered successfully",
		zap.String("user_id", newUser.ID().String()),
		zap.String("email", newUser.Email()),
	)
	s.metrics.RecordUserRegistered()

	return &AuthResponse{
		User:        s.entityToDTO(newUser),
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtExpiration.Seconds()),
	}, nil
}

// Login authenticates a user against the stored record
func (s *Service) Login(ctx context.Context, cmd LoginCommand) (*AuthResponse, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, apperrors.NewInvalidCredentialsError()
	}

	s.logger.Info("User login attempt", zap.String("email", cmd.Email))

	userEntity, err := s.userRepo.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, apperrors.NewInvalidCredentialsError()
	}

	if err := userEntity.CheckPassword(cmd.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("email", cmd.Email))
		return nil, apperrors.NewInvalidCredentialsError()
	}

	if !userEntity.IsActive() {
		return nil, apperrors.NewAccountDeactivatedError()
	}

	// Update last login
	userEntity.RecordLogin()
	if err := s.userRepo.Update(ctx, userEntity); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	accessToken, err := s.generateToken(userEntity)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate token").WithCause(err)
	}

	return &AuthResponse{
		User:        s.entityToDTO(userEntity),
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtExpiration.Seconds()),
	}, nil
}

// GetByID loads a user record. Used by session reconciliation to confirm
// the remote record still exists and is active.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// UpdateProfile replaces the user's fitness profile
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, cmd UpdateProfileCommand) error {
	if err := s.validate.Struct(cmd); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	userEntity.UpdateProfile(&user.Profile{
		Age:          cmd.Age,
		HeightCM:     cmd.HeightCM,
		WeightKG:     cmd.WeightKG,
		FitnessLevel: user.FitnessLevel(cmd.FitnessLevel),
		Goals:        cmd.Goals,
		Injuries:     cmd.Injuries,
	})

	return s.userRepo.Update(ctx, userEntity)
}

// ParseToken validates a JWT and returns its claims
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.NewUnauthorizedError("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid token")
	}

	return claims, nil
}

// generateToken creates a signed JWT for the user
func (s *Service) generateToken(u *user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID(),
		Email:  u.Email(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// entityToDTO maps a user entity to its DTO
func (s *Service) entityToDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Email:     u.Email(),
		Name:      u.Name(),
		CreatedAt: u.CreatedAt(),
	}
}
