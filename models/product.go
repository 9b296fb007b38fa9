package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SizeStock is one size variant of a product and its available quantity.
type SizeStock struct {
	Size  string `json:"size" bson:"size" binding:"required"`
	Stock int    `json:"stock" bson:"stock" binding:"gte=0"`
}

// Product is the persisted catalog document. Stock is the general count;
// whenever Sizes is non-empty it equals the sum of the per-size stocks
// (recomputed on every size update).
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	Category    string             `json:"category" bson:"category"`
	Featured    bool               `json:"featured" bson:"featured"`
	Stock       int                `json:"stock" bson:"stock"`
	Sizes       []SizeStock        `json:"sizes" bson:"sizes"`
	Images      []string           `json:"images" bson:"images"`
	CreatedAt   time.Time          `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updatedAt"`
}

// HasSizes reports whether the product tracks stock per size variant.
func (p *Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// SizeStockFor returns the stock entry for the given size label.
func (p *Product) SizeStockFor(size string) (SizeStock, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s, true
		}
	}
	return SizeStock{}, false
}

// TotalSizeStock sums the per-size stock counts.
func TotalSizeStock(sizes []SizeStock) int {
	total := 0
	for _, s := range sizes {
		total += s.Stock
	}
	return total
}

// CreateProductRequest is the admin payload for creating a product.
// Images are plain URL references.
type CreateProductRequest struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	Price       float64     `json:"price" binding:"required,gte=0"`
	Category    string      `json:"category"`
	Featured    bool        `json:"featured"`
	Stock       int         `json:"stock" binding:"gte=0"`
	Sizes       []SizeStock `json:"sizes" binding:"omitempty,dive"`
	Images      []string    `json:"images"`
}

// UpdateProductRequest is the admin payload for editing a product.
// Nil fields are left untouched; supplying Sizes replaces the size
// breakdown and recomputes the general stock from it.
type UpdateProductRequest struct {
	Name        *string      `json:"name" binding:"omitempty,min=1"`
	Description *string      `json:"description"`
	Price       *float64     `json:"price" binding:"omitempty,gte=0"`
	Category    *string      `json:"category"`
	Featured    *bool        `json:"featured"`
	Stock       *int         `json:"stock" binding:"omitempty,gte=0"`
	Sizes       *[]SizeStock `json:"sizes" binding:"omitempty,dive"`
	Images      *[]string    `json:"images"`
}

// ProductFilters holds the supported catalog list filters.
type ProductFilters struct {
	Category string
	Featured *bool
}
