package routes

import (
	"storefront-backend/controllers"
	"storefront-backend/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers bundles everything the router needs.
type Controllers struct {
	Auth    *controllers.AuthController
	Users   *controllers.UserController
	Product *controllers.ProductController
	Order   *controllers.OrderController
}

// Register wires the full API surface onto the engine. Auth routes get an
// extra per-IP rate limit on top of the global middleware chain.
func Register(r *gin.Engine, c Controllers, tokens middleware.TokenValidator, authLimiter *middleware.RateLimiter) {
	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Use(authLimiter.Middleware())
	{
		authRoutes.POST("/register", c.Auth.Register)
		authRoutes.POST("/login", c.Auth.Login)
		authRoutes.GET("/me", middleware.AuthMiddleware(tokens), c.Auth.Me)
	}

	productRoutes := api.Group("/products")
	{
		productRoutes.GET("", c.Product.ListProducts)
		productRoutes.GET("/:id", c.Product.GetProduct)

		adminProducts := productRoutes.Group("")
		adminProducts.Use(middleware.AuthMiddleware(tokens), middleware.AdminOnly())
		{
			adminProducts.POST("", c.Product.CreateProduct)
			adminProducts.PUT("/:id", c.Product.UpdateProduct)
			adminProducts.DELETE("/:id", c.Product.DeleteProduct)
		}
	}

	orderRoutes := api.Group("/orders")
	orderRoutes.Use(middleware.AuthMiddleware(tokens))
	{
		orderRoutes.POST("", c.Order.CreateOrder)
		orderRoutes.GET("/my-orders", c.Order.GetOrders)
		orderRoutes.GET("/:id", c.Order.GetOrderByID)

		adminOrders := orderRoutes.Group("")
		adminOrders.Use(middleware.AdminOnly())
		{
			adminOrders.GET("", c.Order.GetAllOrders)
			adminOrders.PUT("/:id/status", c.Order.UpdateOrderStatus)
			adminOrders.PUT("/:id/shipping", c.Order.UpdateOrderShipping)
			adminOrders.DELETE("/:id", c.Order.DeleteOrder)
		}
	}

	userRoutes := api.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(tokens), middleware.AdminOnly())
	{
		userRoutes.GET("", c.Users.ListUsers)
		userRoutes.GET("/:id", c.Users.GetUser)
		userRoutes.PATCH("/:id", c.Users.UpdateUser)
		userRoutes.DELETE("/:id", c.Users.DeleteUser)
	}
}
