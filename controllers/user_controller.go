package controllers

import (
	"net/http"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService services.UserService
}

func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// ListUsers returns every registered user. Admin only.
func (uc *UserController) ListUsers(ctx *gin.Context) {
	users, svcErr := uc.userService.ListUsers(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser returns a single user by ID. Admin only.
func (uc *UserController) GetUser(ctx *gin.Context) {
	user, svcErr := uc.userService.GetUser(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser applies a partial update to a user. Role changes require the
// caller to be an admin.
func (uc *UserController) UpdateUser(ctx *gin.Context) {
	var req models.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, svcErr := uc.userService.UpdateUser(ctx.Request.Context(), ctx.Param("id"), &req, middleware.GetRole(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes a user account. Admin only.
func (uc *UserController) DeleteUser(ctx *gin.Context) {
	if svcErr := uc.userService.DeleteUser(ctx.Request.Context(), ctx.Param("id")); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
