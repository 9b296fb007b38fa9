package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-backend/controllers"
	"storefront-backend/models"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ---- concrete mock implementing services.AuthService ----

type mockAuthSvc struct {
	resp        *models.AuthResponse
	user        *models.User
	registerErr *services.ServiceError
	loginErr    *services.ServiceError
}

func (m *mockAuthSvc) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, *services.ServiceError) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.resp, nil
}
func (m *mockAuthSvc) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, *services.ServiceError) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.resp, nil
}
func (m *mockAuthSvc) Me(ctx context.Context, userID string) (*models.User, *services.ServiceError) {
	return m.user, nil
}

func setupAuthRouter(svc services.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := controllers.NewAuthController(svc)
	r.POST("/auth/register", c.Register)
	r.POST("/auth/login", c.Login)
	return r
}

// ---- tests ----

func TestRegister_Success(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "new@example.com", Role: models.RoleCustomer}
	svc := &mockAuthSvc{resp: &models.AuthResponse{Token: "signed-token", User: user}}
	r := setupAuthRouter(svc)

	body := models.RegisterRequest{Name: "New User", Email: "new@example.com", Password: "strongpassword"}
	req := httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed-token", resp.Token)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)
}

func TestRegister_ValidationFailures(t *testing.T) {
	r := setupAuthRouter(&mockAuthSvc{})

	cases := []struct {
		name string
		body string
	}{
		{"Missing Email", `{"name":"X","password":"strongpassword"}`},
		{"Bad Email", `{"name":"X","email":"not-an-email","password":"strongpassword"}`},
		{"Short Password", `{"name":"X","email":"x@example.com","password":"abc"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(tc.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := &mockAuthSvc{registerErr: &services.ServiceError{StatusCode: 409, Message: "Email already registered"}}
	r := setupAuthRouter(svc)

	body := models.RegisterRequest{Name: "X", Email: "taken@example.com", Password: "strongpassword"}
	req := httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockAuthSvc{loginErr: &services.ServiceError{StatusCode: 401, Message: "Invalid credentials"}}
	r := setupAuthRouter(svc)

	body := models.LoginRequest{Email: "x@example.com", Password: "wrongpassword"}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid credentials", resp["error"])
}
