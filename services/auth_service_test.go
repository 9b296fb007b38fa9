package services

import (
	"context"
	"sync"
	"testing"

	"storefront-backend/models"
	"storefront-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks and fakes ---

type MockTokenService struct{ mock.Mock }

func (m *MockTokenService) GenerateToken(userID, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindAll(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if email, ok := updates["email"].(string); ok {
		for oid, other := range f.users {
			if oid != id && other.Email == email {
				return repository.ErrDuplicateKey
			}
		}
		u.Email = email
	}
	if name, ok := updates["name"].(string); ok {
		u.Name = name
	}
	if role, ok := updates["role"].(string); ok {
		u.Role = role
	}
	if password, ok := updates["password"].(string); ok {
		u.Password = password
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

// --- Tests ---

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Defaults To Customer", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		mockTokens := new(MockTokenService)
		mockTokens.On("GenerateToken", mock.Anything, "new@example.com", models.RoleCustomer).Return("signed-token", nil).Once()
		authService := NewAuthService(userRepo, mockTokens, zap.NewNop())

		resp, svcErr := authService.Register(ctx, &models.RegisterRequest{
			Name:     "New User",
			Email:    "new@example.com",
			Password: "strongpassword",
		})

		require.Nil(t, svcErr)
		assert.Equal(t, "signed-token", resp.Token)
		assert.Equal(t, models.RoleCustomer, resp.User.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(resp.User.Password), []byte("strongpassword")))
		mockTokens.AssertExpectations(t)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		existing := &models.User{ID: primitive.NewObjectID(), Email: "taken@example.com"}
		userRepo := newFakeUserRepo(existing)
		authService := NewAuthService(userRepo, new(MockTokenService), zap.NewNop())

		_, svcErr := authService.Register(ctx, &models.RegisterRequest{
			Name:     "Someone",
			Email:    "taken@example.com",
			Password: "strongpassword",
		})

		require.NotNil(t, svcErr)
		assert.Equal(t, 409, svcErr.StatusCode)
	})
}

func TestLoginService(t *testing.T) {
	ctx := context.Background()

	password := "strongpassword123"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	testUser := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "test@example.com",
		Password: string(hashed),
		Role:     models.RoleCustomer,
	}

	t.Run("Success", func(t *testing.T) {
		userRepo := newFakeUserRepo(testUser)
		mockTokens := new(MockTokenService)
		mockTokens.On("GenerateToken", testUser.ID.Hex(), testUser.Email, testUser.Role).Return("signed-token", nil).Once()
		authService := NewAuthService(userRepo, mockTokens, zap.NewNop())

		resp, svcErr := authService.Login(ctx, &models.LoginRequest{Email: testUser.Email, Password: password})

		require.Nil(t, svcErr)
		assert.Equal(t, "signed-token", resp.Token)
		mockTokens.AssertExpectations(t)
	})

	t.Run("User Not Found", func(t *testing.T) {
		authService := NewAuthService(newFakeUserRepo(), new(MockTokenService), zap.NewNop())

		_, svcErr := authService.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: password})

		require.NotNil(t, svcErr)
		assert.Equal(t, 401, svcErr.StatusCode)
		assert.Equal(t, "Invalid credentials", svcErr.Message)
	})

	t.Run("Incorrect Password", func(t *testing.T) {
		authService := NewAuthService(newFakeUserRepo(testUser), new(MockTokenService), zap.NewNop())

		_, svcErr := authService.Login(ctx, &models.LoginRequest{Email: testUser.Email, Password: "wrongpassword"})

		require.NotNil(t, svcErr)
		assert.Equal(t, 401, svcErr.StatusCode)
		// Same message as the unknown-email case.
		assert.Equal(t, "Invalid credentials", svcErr.Message)
	})
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	testUser := &models.User{ID: primitive.NewObjectID(), Email: "test@example.com", Role: models.RoleCustomer}
	authService := NewAuthService(newFakeUserRepo(testUser), new(MockTokenService), zap.NewNop())

	t.Run("Success", func(t *testing.T) {
		user, svcErr := authService.Me(ctx, testUser.ID.Hex())
		require.Nil(t, svcErr)
		assert.Equal(t, testUser.Email, user.Email)
	})

	t.Run("Unknown User", func(t *testing.T) {
		_, svcErr := authService.Me(ctx, primitive.NewObjectID().Hex())
		require.NotNil(t, svcErr)
		assert.Equal(t, 404, svcErr.StatusCode)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		_, svcErr := authService.Me(ctx, "not-an-id")
		require.NotNil(t, svcErr)
		assert.Equal(t, 400, svcErr.StatusCode)
	})
}
