package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus enumerates the order lifecycle states.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
	StatusRefunded  OrderStatus = "Refunded"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// SizeQuantity is one size label and the quantity purchased for it.
type SizeQuantity struct {
	Size     string `json:"size" bson:"size" binding:"required"`
	Quantity int    `json:"quantity" bson:"quantity" binding:"required,min=1"`
}

// Customization holds optional per-item personalization details.
type Customization struct {
	Text     string `json:"text,omitempty" bson:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty" bson:"imageUrl,omitempty"`
	Color    string `json:"color,omitempty" bson:"color,omitempty"`
	Notes    string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// OrderItem is a line item with the product snapshot taken at purchase
// time, so later catalog edits do not alter historical orders.
type OrderItem struct {
	Product       primitive.ObjectID `json:"product" bson:"product"`
	Name          string             `json:"name" bson:"name"`
	Price         float64            `json:"price" bson:"price"`
	Category      string             `json:"category" bson:"category"`
	Description   string             `json:"description" bson:"description"`
	ImageURL      string             `json:"image_url" bson:"imageUrl"`
	Sizes         []SizeQuantity     `json:"sizes" bson:"sizes"`
	Customization *Customization     `json:"customization,omitempty" bson:"customization,omitempty"`
	SKU           string             `json:"sku,omitempty" bson:"sku,omitempty"`
	IsPromo       bool               `json:"is_promo,omitempty" bson:"isPromo,omitempty"`
	OriginalPrice float64            `json:"original_price,omitempty" bson:"originalPrice,omitempty"`
	Discount      float64            `json:"discount,omitempty" bson:"discount,omitempty"`
}

// TotalQuantity sums the quantities across the item's size entries.
func (i OrderItem) TotalQuantity() int {
	total := 0
	for _, s := range i.Sizes {
		total += s.Quantity
	}
	return total
}

// ShippingAddress is the delivery address captured with the order.
type ShippingAddress struct {
	FullName   string `json:"full_name" bson:"fullName"`
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	Phone      string `json:"phone" bson:"phone"`
	PostalCode string `json:"postal_code,omitempty" bson:"postalCode,omitempty"`
	Country    string `json:"country" bson:"country"`
}

// ShippingInfo holds external carrier tracking details, set by admins.
type ShippingInfo struct {
	Carrier        string `json:"carrier,omitempty" bson:"carrier,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty" bson:"trackingNumber,omitempty"`
	TrackingURL    string `json:"tracking_url,omitempty" bson:"trackingUrl,omitempty"`
	Status         string `json:"status,omitempty" bson:"status,omitempty"`
}

// PaymentDetails holds payment transaction data, set by admins.
type PaymentDetails struct {
	TransactionID string  `json:"transaction_id,omitempty" bson:"transactionId,omitempty"`
	PaymentStatus string  `json:"payment_status,omitempty" bson:"paymentStatus,omitempty"`
	AmountPaid    float64 `json:"amount_paid,omitempty" bson:"amountPaid,omitempty"`
	Method        string  `json:"method,omitempty" bson:"method,omitempty"`
}

// StatusChange is one entry in an order's status history.
type StatusChange struct {
	Status    OrderStatus `json:"status" bson:"status"`
	Date      time.Time   `json:"date" bson:"date"`
	ChangedBy string      `json:"changed_by" bson:"changedBy"`
}

// Order is the persisted order document. OrderCode carries the
// human-readable sequential code (PED-0001, PED-0002, ...).
type Order struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderCode         string             `json:"order_code" bson:"orderCode"`
	User              primitive.ObjectID `json:"user" bson:"user"`
	Items             []OrderItem        `json:"items" bson:"items"`
	ShippingAddress   ShippingAddress    `json:"shipping_address" bson:"shippingAddress"`
	PaymentMethod     string             `json:"payment_method" bson:"paymentMethod"`
	TotalPrice        float64            `json:"total_price" bson:"totalPrice"`
	Subtotal          float64            `json:"subtotal" bson:"subtotal"`
	DiscountTotal     float64            `json:"discount_total" bson:"discountTotal"`
	Status            OrderStatus        `json:"status" bson:"status"`
	EstimatedDelivery *time.Time         `json:"estimated_delivery,omitempty" bson:"estimatedDelivery,omitempty"`
	ShippingInfo      *ShippingInfo      `json:"shipping_info,omitempty" bson:"shippingInfo,omitempty"`
	PaymentDetails    *PaymentDetails    `json:"payment_details,omitempty" bson:"paymentDetails,omitempty"`
	Notes             string             `json:"notes,omitempty" bson:"notes,omitempty"`
	StatusHistory     []StatusChange     `json:"status_history" bson:"statusHistory"`
	CreatedAt         time.Time          `json:"created_at" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updatedAt"`
}

// OrderLineRequest is one requested line item. Sizes may be empty for
// products without size variants, in which case Quantity applies to the
// general stock.
type OrderLineRequest struct {
	Product       string         `json:"product" binding:"required"`
	Sizes         []SizeQuantity `json:"sizes" binding:"omitempty,dive"`
	Quantity      int            `json:"quantity" binding:"omitempty,min=1"`
	Customization *Customization `json:"customization"`
}

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	Items           []OrderLineRequest `json:"items" binding:"required,dive"`
	ShippingAddress ShippingAddress    `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
}

// UpdateOrderStatusRequest is the admin payload for a status transition.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderShippingRequest is the admin payload for shipping/payment
// sub-field edits. Nil fields are left untouched.
type UpdateOrderShippingRequest struct {
	EstimatedDelivery *time.Time      `json:"estimated_delivery"`
	ShippingInfo      *ShippingInfo   `json:"shipping_info"`
	PaymentDetails    *PaymentDetails `json:"payment_details"`
	Notes             *string         `json:"notes"`
}

// OrderListResponse is a paginated page of orders.
type OrderListResponse struct {
	Orders []Order  `json:"orders"`
	Meta   PageMeta `json:"meta"`
}

// PageMeta describes a pagination window.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}
