package services

import (
	"context"
	"errors"

	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultCategory = "General"

// ProductService defines the interface for catalog management.
type ProductService interface {
	ListProducts(ctx context.Context, filters *models.ProductFilters, page, limit int) ([]models.Product, int64, *ServiceError)
	GetProduct(ctx context.Context, productID string) (*models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, productID string, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, productID string) *ServiceError
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(productRepo repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productServiceImpl{productRepo: productRepo, logger: logger}
}

func (s *productServiceImpl) ListProducts(ctx context.Context, filters *models.ProductFilters, page, limit int) ([]models.Product, int64, *ServiceError) {
	products, total, err := s.productRepo.Find(ctx, filters, page, limit)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "Failed to fetch products"}
	}
	return products, total, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, productID string) (*models.Product, *ServiceError) {
	return s.findProduct(ctx, productID)
}

// CreateProduct inserts a catalog entry. When size variants are supplied
// the general stock is the sum of the per-size stocks, whatever the
// request carried.
func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	category := req.Category
	if category == "" {
		category = defaultCategory
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    category,
		Featured:    req.Featured,
		Stock:       req.Stock,
		Sizes:       req.Sizes,
		Images:      req.Images,
	}
	if product.Sizes == nil {
		product.Sizes = []models.SizeStock{}
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	if len(product.Sizes) > 0 {
		product.Stock = models.TotalSizeStock(product.Sizes)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("Product insert failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID.Hex()), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct edits a catalog entry. Supplying sizes replaces the
// breakdown and recomputes the general stock from it.
func (s *productServiceImpl) UpdateProduct(ctx context.Context, productID string, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	product, svcErr := s.findProduct(ctx, productID)
	if svcErr != nil {
		return nil, svcErr
	}

	updates := bson.M{}
	if req.Name != nil {
		updates["name"] = *req.Name
		product.Name = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		product.Description = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
		product.Price = *req.Price
	}
	if req.Category != nil {
		updates["category"] = *req.Category
		product.Category = *req.Category
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
		product.Featured = *req.Featured
	}
	if req.Images != nil {
		updates["images"] = *req.Images
		product.Images = *req.Images
	}
	if req.Sizes != nil {
		product.Sizes = *req.Sizes
		product.Stock = models.TotalSizeStock(product.Sizes)
		updates["sizes"] = product.Sizes
		updates["stock"] = product.Stock
	} else if req.Stock != nil {
		// The general stock of a sized product is derived from its size
		// entries; a bare stock write would desync the two.
		if product.HasSizes() {
			return nil, &ServiceError{StatusCode: 400, Message: "Stock is derived from sizes for this product; update sizes instead"}
		}
		updates["stock"] = *req.Stock
		product.Stock = *req.Stock
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.productRepo.Update(ctx, product.ID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to update product", zap.String("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update product"}
	}

	s.logger.Info("Product updated", zap.String("product_id", productID))
	return product, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, productID string) *ServiceError {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return &ServiceError{StatusCode: 400, Message: "Invalid product ID format"}
	}

	if err := s.productRepo.Delete(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to delete product", zap.String("product_id", productID), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete product"}
	}

	s.logger.Info("Product deleted", zap.String("product_id", productID))
	return nil
}

func (s *productServiceImpl) findProduct(ctx context.Context, productID string) (*models.Product, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid product ID format"}
	}

	product, err := s.productRepo.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
	}
	if err != nil {
		s.logger.Error("Product lookup failed", zap.String("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}
	return product, nil
}
