package services

import (
	"context"
	"errors"

	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ITokenService abstracts token issuance for testability.
type ITokenService interface {
	GenerateToken(userID, email, role string) (string, error)
}

// AuthService defines the interface for registration and login.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, *ServiceError)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, *ServiceError)
	Me(ctx context.Context, userID string) (*models.User, *ServiceError)
}

type authServiceImpl struct {
	userRepo repository.UserRepository
	tokens   ITokenService
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens ITokenService, logger *zap.Logger) AuthService {
	return &authServiceImpl{userRepo: userRepo, tokens: tokens, logger: logger}
}

// Register creates a new account. The role is always customer at
// creation; escalation happens only through the admin user-update path.
func (s *authServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, *ServiceError) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Registration failed"}
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     models.RoleCustomer,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, &ServiceError{StatusCode: 409, Message: "Email already registered"}
		}
		s.logger.Error("User insert failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Registration failed"}
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		s.logger.Error("Token generation failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Registration failed"}
	}

	s.logger.Info("User registered", zap.String("email", user.Email))
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Unknown email and
// wrong password return the same message.
func (s *authServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, *ServiceError) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 401, Message: "Invalid credentials"}
		}
		s.logger.Error("User lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Login failed"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, &ServiceError{StatusCode: 401, Message: "Invalid credentials"}
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		s.logger.Error("Token generation failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Login failed"}
	}

	s.logger.Info("User logged in", zap.String("email", user.Email))
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Me returns the authenticated user's profile.
func (s *authServiceImpl) Me(ctx context.Context, userID string) (*models.User, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
	}

	user, err := s.userRepo.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ServiceError{StatusCode: 404, Message: "User not found"}
	}
	if err != nil {
		s.logger.Error("User lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch profile"}
	}
	return user, nil
}
