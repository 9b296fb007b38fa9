package services

import (
	"context"
	"errors"

	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService defines the interface for administrative user management.
type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, *ServiceError)
	GetUser(ctx context.Context, userID string) (*models.User, *ServiceError)
	UpdateUser(ctx context.Context, userID string, req *models.UpdateUserRequest, actorRole string) (*models.User, *ServiceError)
	DeleteUser(ctx context.Context, userID string) *ServiceError
}

type userServiceImpl struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{userRepo: userRepo, logger: logger}
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]models.User, *ServiceError) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch users"}
	}
	return users, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID string) (*models.User, *ServiceError) {
	return s.findUser(ctx, userID)
}

// UpdateUser edits a user. Role changes are a privileged mutation: the
// acting caller must already hold the admin role, regardless of how the
// route is gated.
func (s *userServiceImpl) UpdateUser(ctx context.Context, userID string, req *models.UpdateUserRequest, actorRole string) (*models.User, *ServiceError) {
	user, svcErr := s.findUser(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	updates := bson.M{}
	if req.Name != nil {
		updates["name"] = *req.Name
		user.Name = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
		user.Email = *req.Email
	}
	if req.Role != nil {
		if actorRole != models.RoleAdmin {
			return nil, &ServiceError{StatusCode: 403, Message: "Not authorized to change roles"}
		}
		updates["role"] = *req.Role
		user.Role = *req.Role
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("Password hashing failed", zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "Failed to update user"}
		}
		updates["password"] = string(hashed)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.userRepo.Update(ctx, user.ID, updates); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, &ServiceError{StatusCode: 409, Message: "Email already registered"}
		case errors.Is(err, repository.ErrNotFound):
			return nil, &ServiceError{StatusCode: 404, Message: "User not found"}
		}
		s.logger.Error("Failed to update user", zap.String("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update user"}
	}

	s.logger.Info("User updated", zap.String("user_id", userID))
	return user, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, userID string) *ServiceError {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
	}

	if err := s.userRepo.Delete(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ServiceError{StatusCode: 404, Message: "User not found"}
		}
		s.logger.Error("Failed to delete user", zap.String("user_id", userID), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete user"}
	}

	s.logger.Info("User deleted", zap.String("user_id", userID))
	return nil
}

func (s *userServiceImpl) findUser(ctx context.Context, userID string) (*models.User, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
	}

	user, err := s.userRepo.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ServiceError{StatusCode: 404, Message: "User not found"}
	}
	if err != nil {
		s.logger.Error("User lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch user"}
	}
	return user, nil
}
