package controllers

import (
	"net/http"
	"strconv"

	"storefront-backend/models"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService services.ProductService
	cache          *CacheManager
}

// NewProductController builds a catalog controller. The cache manager is
// optional; pass nil to serve straight from the repository.
func NewProductController(productService services.ProductService, cache *CacheManager) *ProductController {
	return &ProductController{
		productService: productService,
		cache:          cache,
	}
}

// ListProducts returns a paginated catalog page, optionally filtered by
// category and featured flag. Public.
func (pc *ProductController) ListProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	filters := parseProductFilters(ctx)

	if pc.cache != nil {
		if cached, ok := pc.cache.GetProductList(ctx.Request.Context(), page, limit, filters); ok {
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	products, total, svcErr := pc.productService.ListProducts(ctx.Request.Context(), filters, page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	response := map[string]interface{}{
		"products": products,
		"meta": models.PageMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasMore:    int64(page) < totalPages,
		},
	}

	if pc.cache != nil {
		pc.cache.SetProductListAsync(page, limit, filters, response)
	}

	ctx.JSON(http.StatusOK, response)
}

// GetProduct returns a single product by ID. Public.
func (pc *ProductController) GetProduct(ctx *gin.Context) {
	productID := ctx.Param("id")

	if pc.cache != nil {
		if product, ok := pc.cache.GetProduct(ctx.Request.Context(), productID); ok {
			ctx.JSON(http.StatusOK, gin.H{"product": product})
			return
		}
	}

	product, svcErr := pc.productService.GetProduct(ctx.Request.Context(), productID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	if pc.cache != nil {
		pc.cache.SetProductAsync(productID, product)
	}

	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct adds a product to the catalog. Admin only.
func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.productService.CreateProduct(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	if pc.cache != nil {
		pc.cache.InvalidateProduct(ctx.Request.Context(), product.ID.Hex())
	}

	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct applies a partial update to a product. Admin only.
func (pc *ProductController) UpdateProduct(ctx *gin.Context) {
	var req models.UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	productID := ctx.Param("id")
	product, svcErr := pc.productService.UpdateProduct(ctx.Request.Context(), productID, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	if pc.cache != nil {
		pc.cache.InvalidateProduct(ctx.Request.Context(), productID)
	}

	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes a product from the catalog. Admin only.
func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	productID := ctx.Param("id")
	if svcErr := pc.productService.DeleteProduct(ctx.Request.Context(), productID); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	if pc.cache != nil {
		pc.cache.InvalidateProduct(ctx.Request.Context(), productID)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func parseProductFilters(ctx *gin.Context) *models.ProductFilters {
	filters := &models.ProductFilters{
		Category: ctx.Query("category"),
	}
	if raw := ctx.Query("featured"); raw != "" {
		if featured, err := strconv.ParseBool(raw); err == nil {
			filters.Featured = &featured
		}
	}
	return filters
}
