package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-backend/models"
	"storefront-backend/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	orderCodePrefix  = "PED"
	orderCounterName = "orders"

	// sizeLabelNone marks the single implicit entry recorded for
	// products without size variants.
	sizeLabelNone = "One Size"
)

// OrderService defines the interface for order business logic.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.Order, *ServiceError)
	GetUserOrders(ctx context.Context, userID string, page, limit int) (*models.OrderListResponse, *ServiceError)
	GetAllOrders(ctx context.Context, page, limit int) (*models.OrderListResponse, *ServiceError)
	GetOrderByID(ctx context.Context, userID, role, orderID string) (*models.Order, *ServiceError)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, actor string) (*models.Order, *ServiceError)
	UpdateShipping(ctx context.Context, orderID string, req *models.UpdateOrderShippingRequest) (*models.Order, *ServiceError)
	DeleteOrder(ctx context.Context, orderID string) *ServiceError
}

type orderServiceImpl struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	counterRepo repository.CounterRepository
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	counterRepo repository.CounterRepository,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		counterRepo: counterRepo,
		logger:      logger,
	}
}

// reservation records one applied stock decrement so it can be
// compensated if a later entry of the same order fails.
type reservation struct {
	productID primitive.ObjectID
	size      string
	quantity  int
}

// PlaceOrder converts a cart-like request into a priced, stock-validated,
// persisted order. All products are resolved and the request shape is
// validated before any stock write; stock is then reserved per entry with
// atomic conditional decrements, and every applied decrement is rolled
// back if a later entry fails, so a rejected order never loses stock.
func (s *orderServiceImpl) PlaceOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.Order, *ServiceError) {
	if len(req.Items) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Order must contain at least one item"}
	}

	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
	}

	type plannedLine struct {
		product *models.Product
		request models.OrderLineRequest
		sizes   []models.SizeQuantity
	}

	// Phase 1: resolve products and validate line shape. No mutation yet.
	lines := make([]plannedLine, 0, len(req.Items))
	for _, line := range req.Items {
		productOID, err := primitive.ObjectIDFromHex(line.Product)
		if err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Invalid product ID %q", line.Product)}
		}

		product, err := s.productRepo.FindByID(ctx, productOID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: fmt.Sprintf("Product not found (%s)", line.Product)}
		}
		if err != nil {
			s.logger.Error("Failed to resolve product", zap.String("product_id", line.Product), zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "Failed to place order"}
		}

		sizes := line.Sizes
		if len(sizes) == 0 {
			if line.Quantity < 1 {
				return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Quantity is required for product %s", product.Name)}
			}
			if product.HasSizes() {
				return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Product %s requires a size selection", product.Name)}
			}
			sizes = []models.SizeQuantity{{Size: sizeLabelNone, Quantity: line.Quantity}}
		} else {
			for _, sq := range sizes {
				if sq.Quantity < 1 {
					return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Quantity must be at least 1 for size %s of %s", sq.Size, product.Name)}
				}
				if _, ok := product.SizeStockFor(sq.Size); !ok {
					return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Size %s does not exist for product %s", sq.Size, product.Name)}
				}
			}
		}

		lines = append(lines, plannedLine{product: product, request: line, sizes: sizes})
	}

	// Phase 2: reserve stock in input order. Conditional decrements keep
	// concurrent orders from overselling; on failure every prior
	// reservation is released before returning.
	var reserved []reservation
	release := func() {
		// The request context may already be dead (client disconnect,
		// timeout); compensation must still land or reserved stock is
		// lost for good.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		for i := len(reserved) - 1; i >= 0; i-- {
			r := reserved[i]
			if err := s.productRepo.IncrementStock(relCtx, r.productID, r.size, r.quantity); err != nil {
				s.logger.Error("Failed to release reserved stock",
					zap.String("product_id", r.productID.Hex()),
					zap.String("size", r.size),
					zap.Int("quantity", r.quantity),
					zap.Error(err))
			}
		}
	}

	totalPrice := 0.0
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product := line.product
		for _, sq := range line.sizes {
			sizeLabel := sq.Size
			if !product.HasSizes() {
				sizeLabel = ""
			}
			if err := s.productRepo.DecrementStock(ctx, product.ID, sizeLabel, sq.Quantity); err != nil {
				release()
				switch {
				case errors.Is(err, repository.ErrSizeNotFound):
					return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Size %s does not exist for product %s", sq.Size, product.Name)}
				case errors.Is(err, repository.ErrInsufficientStock):
					if sizeLabel == "" {
						return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Insufficient stock for %s", product.Name)}
					}
					return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Insufficient stock for size %s of %s", sq.Size, product.Name)}
				case errors.Is(err, repository.ErrNotFound):
					return nil, &ServiceError{StatusCode: 404, Message: fmt.Sprintf("Product not found (%s)", product.ID.Hex())}
				default:
					s.logger.Error("Stock decrement failed", zap.String("product_id", product.ID.Hex()), zap.Error(err))
					return nil, &ServiceError{StatusCode: 500, Message: "Failed to place order"}
				}
			}
			reserved = append(reserved, reservation{productID: product.ID, size: sizeLabel, quantity: sq.Quantity})
			totalPrice += product.Price * float64(sq.Quantity)
		}

		imageURL := ""
		if len(product.Images) > 0 {
			imageURL = product.Images[0]
		}
		items = append(items, models.OrderItem{
			Product:       product.ID,
			Name:          product.Name,
			Price:         product.Price,
			Category:      product.Category,
			Description:   product.Description,
			ImageURL:      imageURL,
			Sizes:         line.sizes,
			Customization: line.request.Customization,
		})
	}

	order := &models.Order{
		User:            userOID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      totalPrice,
		Subtotal:        totalPrice,
		DiscountTotal:   0,
		Status:          models.StatusPending,
		StatusHistory: []models.StatusChange{
			{Status: models.StatusPending, Date: time.Now().UTC(), ChangedBy: userID},
		},
	}

	if svcErr := s.persistWithCode(ctx, order); svcErr != nil {
		release()
		return nil, svcErr
	}

	s.logger.Info("Order placed",
		zap.String("order_code", order.OrderCode),
		zap.String("user_id", userID),
		zap.Float64("total", order.TotalPrice),
		zap.Int("items", len(order.Items)))
	return order, nil
}

// persistWithCode assigns the next sequential code and inserts the
// order. A duplicate-code insert is retried once with a fresh counter
// value.
func (s *orderServiceImpl) persistWithCode(ctx context.Context, order *models.Order) *ServiceError {
	for attempt := 0; attempt < 2; attempt++ {
		seq, err := s.counterRepo.Next(ctx, orderCounterName)
		if err != nil {
			s.logger.Error("Order counter increment failed", zap.Error(err))
			return &ServiceError{StatusCode: 500, Message: "Failed to place order"}
		}
		order.OrderCode = fmt.Sprintf("%s-%04d", orderCodePrefix, seq)

		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrDuplicateKey) {
			s.logger.Warn("Order code collision, retrying", zap.String("order_code", order.OrderCode))
			continue
		}
		s.logger.Error("Order insert failed", zap.String("order_code", order.OrderCode), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to place order"}
	}
	return &ServiceError{StatusCode: 500, Message: "Failed to place order"}
}

// GetUserOrders returns paginated orders for a specific user, newest
// first.
func (s *orderServiceImpl) GetUserOrders(ctx context.Context, userID string, page, limit int) (*models.OrderListResponse, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
	}

	orders, total, err := s.orderRepo.FindByUser(ctx, userOID, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch user orders", zap.String("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}
	return &models.OrderListResponse{Orders: orders, Meta: pageMeta(page, limit, total)}, nil
}

// GetAllOrders returns paginated orders across all users (admin).
func (s *orderServiceImpl) GetAllOrders(ctx context.Context, page, limit int) (*models.OrderListResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}
	return &models.OrderListResponse{Orders: orders, Meta: pageMeta(page, limit, total)}, nil
}

// GetOrderByID fetches one order. Non-admin callers may only fetch
// orders they own.
func (s *orderServiceImpl) GetOrderByID(ctx context.Context, userID, role, orderID string) (*models.Order, *ServiceError) {
	order, svcErr := s.findOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	if role != models.RoleAdmin && order.User.Hex() != userID {
		return nil, &ServiceError{StatusCode: 403, Message: "Access denied"}
	}
	return order, nil
}

// UpdateStatus overwrites the order status and appends a history entry.
// Any known status may move to any other; no transition table is
// enforced.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, actor string) (*models.Order, *ServiceError) {
	if !models.ValidStatus(status) {
		return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Unknown order status %q", status)}
	}

	order, svcErr := s.findOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	change := models.StatusChange{Status: status, Date: time.Now().UTC(), ChangedBy: actor}
	if err := s.orderRepo.AppendStatus(ctx, order.ID, status, change); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to update order status", zap.String("order_id", orderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update order"}
	}

	order.Status = status
	order.StatusHistory = append(order.StatusHistory, change)
	s.logger.Info("Order status updated",
		zap.String("order_code", order.OrderCode),
		zap.String("status", string(status)),
		zap.String("changed_by", actor))
	return order, nil
}

// UpdateShipping edits the shipping/payment sub-fields of an order.
func (s *orderServiceImpl) UpdateShipping(ctx context.Context, orderID string, req *models.UpdateOrderShippingRequest) (*models.Order, *ServiceError) {
	order, svcErr := s.findOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	updates := bson.M{}
	if req.EstimatedDelivery != nil {
		updates["estimatedDelivery"] = *req.EstimatedDelivery
		order.EstimatedDelivery = req.EstimatedDelivery
	}
	if req.ShippingInfo != nil {
		updates["shippingInfo"] = *req.ShippingInfo
		order.ShippingInfo = req.ShippingInfo
	}
	if req.PaymentDetails != nil {
		updates["paymentDetails"] = *req.PaymentDetails
		order.PaymentDetails = req.PaymentDetails
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
		order.Notes = *req.Notes
	}
	if len(updates) == 0 {
		return order, nil
	}

	if err := s.orderRepo.Update(ctx, order.ID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to update order shipping", zap.String("order_id", orderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update order"}
	}
	return order, nil
}

// DeleteOrder hard-deletes an order (admin only).
func (s *orderServiceImpl) DeleteOrder(ctx context.Context, orderID string) *ServiceError {
	order, svcErr := s.findOrder(ctx, orderID)
	if svcErr != nil {
		return svcErr
	}

	if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to delete order", zap.String("order_id", orderID), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete order"}
	}

	s.logger.Info("Order deleted", zap.String("order_code", order.OrderCode))
	return nil
}

func (s *orderServiceImpl) findOrder(ctx context.Context, orderID string) (*models.Order, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid order ID format"}
	}

	order, err := s.orderRepo.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
	}
	if err != nil {
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order"}
	}
	return order, nil
}

func pageMeta(page, limit int, total int64) models.PageMeta {
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return models.PageMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    total > int64(page*limit),
	}
}
