package services

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateOrderInput carries the optional order attributes chosen at checkout.
type CreateOrderInput struct {
	ProviderID *string
	AddressID  *string
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders    repositories.OrderRepository
	payments  repositories.PaymentRepository
	txManager repositories.TransactionManager
	resolver  *PricingResolver
	publisher EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(
	orders repositories.OrderRepository,
	payments repositories.PaymentRepository,
	txManager repositories.TransactionManager,
	resolver *PricingResolver,
	publisher EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		payments:  payments,
		txManager: txManager,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateOrder turns the owner's cart into an order in one transaction. The cart row stays
// locked until commit, every line is priced from the catalog, and the cart is emptied.
// Concurrent callers on the same cart get one order; the others see an empty cart.
func (s *OrderService) CreateOrder(ctx context.Context, ownerID string, in CreateOrderInput) (*models.Order, error) {
	var order *models.Order

	err := s.txManager.WithinTx(ctx, func(r repositories.TxRepos) error {
		cart, err := r.Carts().FindByOwner(ctx, ownerID, true)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				return apperrors.ErrEmptyCart
			}
			return err
		}

		cartLines, err := r.Carts().ListLines(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(cartLines) == 0 {
			return apperrors.ErrEmptyCart
		}

		now := time.Now()
		o := &models.Order{
			ID:          uuid.New().String(),
			OwnerID:     ownerID,
			ProviderID:  in.ProviderID,
			AddressID:   in.AddressID,
			Status:      models.OrderStatusCreated,
			TotalAmount: decimal.Zero,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		lines := make([]models.OrderLine, 0, len(cartLines))
		for _, cl := range cartLines {
			priced, err := s.resolver.Resolve(ctx, r.Catalog(), cl.Selection(), cl.Quantity)
			if err != nil {
				return err
			}
			lines = append(lines, models.OrderLine{
				ID:        uuid.New().String(),
				OrderID:   o.ID,
				ServiceID: cl.ServiceID,
				PackageID: cl.PackageID,
				AddonID:   cl.AddonID,
				Quantity:  cl.Quantity,
				UnitPrice: priced.UnitPrice,
				Price:     priced.Price,
				CreatedAt: now,
			})
			o.TotalAmount = o.TotalAmount.Add(priced.Price)
		}

		if err := r.Orders().Create(ctx, o); err != nil {
			return err
		}
		if err := r.Orders().CreateLines(ctx, lines); err != nil {
			return err
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return err
		}

		o.Lines = lines
		order = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("owner_id", ownerID),
		zap.String("total", order.TotalAmount.StringFixed(moneyScale)),
		zap.Int("lines", len(order.Lines)))

	publishEvent(s.publisher, s.logger, EventOrderCreated, map[string]interface{}{
		"order_id": order.ID,
		"owner_id": order.OwnerID,
		"status":   order.Status,
		"total":    order.TotalAmount.StringFixed(moneyScale),
	})
	return order, nil
}

// GetOrder retrieves one of the owner's orders. Orders of other owners are not found.
func (s *OrderService) GetOrder(ctx context.Context, ownerID, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.OwnerID != ownerID {
		return nil, fmt.Errorf("get order %s: %w", orderID, apperrors.ErrNotFound)
	}
	return order, nil
}

// ListOrders retrieves the owner's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, ownerID string) ([]models.Order, error) {
	orders, err := s.orders.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListPayments retrieves the payments recorded against one of the owner's orders.
func (s *OrderService) ListPayments(ctx context.Context, ownerID, orderID string) ([]models.Payment, error) {
	if _, err := s.GetOrder(ctx, ownerID, orderID); err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
